package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// CartItem is one desired inventory quantity in a user's cart. Consumed items
// stay behind as the source record of the order line that replaced them.
type CartItem struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	InventoryID uuid.UUID            `gorm:"column:inventory_id;type:uuid;not null"`
	Quantity    int                  `gorm:"column:quantity;not null"`
	Status      enums.CartItemStatus `gorm:"column:status;type:cart_item_status;not null;default:'active'"`
	OrderID     *uuid.UUID           `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Inventory *InventoryItem `gorm:"foreignKey:InventoryID;references:ID"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	if c.Status == "" {
		c.Status = enums.CartItemStatusActive
	}
	return nil
}
