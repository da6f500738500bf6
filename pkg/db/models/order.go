package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// Order is the durable result of a checkout.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Checkouts []Checkout `gorm:"foreignKey:OrderID;references:ID"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	if o.Status == "" {
		o.Status = enums.OrderStatusPending
	}
	return nil
}

// Checkout is a priced order line. UnitPrice is a snapshot, later price
// changes on the inventory item do not touch it.
type Checkout struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	CartItemID  uuid.UUID       `gorm:"column:cart_item_id;type:uuid;not null"`
	InventoryID uuid.UUID       `gorm:"column:inventory_id;type:uuid;not null;index"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	SubTotal    decimal.Decimal `gorm:"column:sub_total;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (c *Checkout) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
