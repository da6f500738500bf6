package checkout

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// PlaceOrderInput is the optional body of POST /users/current/orders.
type PlaceOrderInput struct {
	MissingInventory enums.MissingInventoryPolicy `json:"missing_inventory,omitempty" validate:"omitempty,oneof=fail skip"`
}

// LineResult reports what checkout did with one cart line.
type LineResult struct {
	CartItemID  uuid.UUID                 `json:"cart_item_id"`
	InventoryID uuid.UUID                 `json:"inventory_id"`
	Quantity    int                       `json:"quantity"`
	Outcome     enums.CheckoutLineOutcome `json:"outcome"`
	CheckoutID  *uuid.UUID                `json:"checkout_id,omitempty"`
}

// Result is a placed order plus the per-line outcomes.
type Result struct {
	Order *orders.OrderDTO `json:"order"`
	Lines []LineResult     `json:"lines"`
}
