package enums

import (
	"fmt"
	"strings"
)

// MissingInventoryPolicy decides what checkout does with a cart line whose
// inventory item no longer exists.
type MissingInventoryPolicy string

const (
	MissingInventoryFail MissingInventoryPolicy = "fail"
	MissingInventorySkip MissingInventoryPolicy = "skip"
)

func (p MissingInventoryPolicy) String() string {
	return string(p)
}

func (p MissingInventoryPolicy) IsValid() bool {
	return p == MissingInventoryFail || p == MissingInventorySkip
}

// ParseMissingInventoryPolicy converts raw input; empty input yields the zero value.
func ParseMissingInventoryPolicy(value string) (MissingInventoryPolicy, error) {
	normalized := MissingInventoryPolicy(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" || normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid missing inventory policy %q", value)
}

// CheckoutLineOutcome tags what happened to each cart line during checkout.
type CheckoutLineOutcome string

const (
	LineIncluded                  CheckoutLineOutcome = "included"
	LineSkippedMissingInventory   CheckoutLineOutcome = "skipped_missing_inventory"
	LineRejectedInsufficientStock CheckoutLineOutcome = "rejected_insufficient_stock"
)

func (o CheckoutLineOutcome) String() string {
	return string(o)
}
