package enums

import "fmt"

// CartItemStatus tracks whether a cart line is still in the cart or was turned into an order line.
type CartItemStatus string

const (
	CartItemStatusActive   CartItemStatus = "active"
	CartItemStatusConsumed CartItemStatus = "consumed"
)

var validCartItemStatuses = []CartItemStatus{
	CartItemStatusActive,
	CartItemStatusConsumed,
}

func (s CartItemStatus) String() string {
	return string(s)
}

func (s CartItemStatus) IsValid() bool {
	for _, candidate := range validCartItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseCartItemStatus(value string) (CartItemStatus, error) {
	for _, candidate := range validCartItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item status %q", value)
}
