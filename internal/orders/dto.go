package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// CheckoutDTO is one priced order line.
type CheckoutDTO struct {
	ID          uuid.UUID       `json:"id"`
	CartItemID  uuid.UUID       `json:"cart_item_id"`
	InventoryID uuid.UUID       `json:"inventory_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SubTotal    decimal.Decimal `json:"sub_total"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderDTO is an order with its lines.
type OrderDTO struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Status    enums.OrderStatus `json:"status"`
	Total     decimal.Decimal   `json:"total"`
	Checkouts []CheckoutDTO     `json:"checkouts"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	lines := make([]CheckoutDTO, 0, len(order.Checkouts))
	for _, line := range order.Checkouts {
		lines = append(lines, CheckoutDTO{
			ID:          line.ID,
			CartItemID:  line.CartItemID,
			InventoryID: line.InventoryID,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.Round(2),
			SubTotal:    line.SubTotal.Round(2),
			CreatedAt:   line.CreatedAt,
		})
	}
	return &OrderDTO{
		ID:        order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		Total:     order.Total.Round(2),
		Checkouts: lines,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func FromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
