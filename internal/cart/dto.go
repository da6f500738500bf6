package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/internal/inventory"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// AddItemInput is the payload for adding a line to the current user's cart.
type AddItemInput struct {
	InventoryID uuid.UUID `json:"inventory_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,gte=1"`
}

// ItemDTO is one cart line. Inventory is omitted when the item has been deleted.
type ItemDTO struct {
	ID          uuid.UUID            `json:"id"`
	InventoryID uuid.UUID            `json:"inventory_id"`
	Quantity    int                  `json:"quantity"`
	Status      enums.CartItemStatus `json:"status"`
	Inventory   *inventory.ItemDTO   `json:"inventory,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CartDTO is the listing shape for GET cart-items.
type CartDTO struct {
	Items []ItemDTO `json:"items"`
}

func FromModel(item *models.CartItem) *ItemDTO {
	if item == nil {
		return nil
	}
	return &ItemDTO{
		ID:          item.ID,
		InventoryID: item.InventoryID,
		Quantity:    item.Quantity,
		Status:      item.Status,
		Inventory:   inventory.FromModel(item.Inventory),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func FromModels(rows []models.CartItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
