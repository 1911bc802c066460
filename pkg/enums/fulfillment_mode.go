package enums

import (
	"fmt"
	"strings"
)

// FulfillmentMode describes how the customer receives the order.
type FulfillmentMode string

const (
	FulfillmentDelivery FulfillmentMode = "delivery"
	FulfillmentPickup   FulfillmentMode = "pickup"
)

var validFulfillmentModes = []FulfillmentMode{
	FulfillmentDelivery,
	FulfillmentPickup,
}

// String implements fmt.Stringer.
func (f FulfillmentMode) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentMode.
func (f FulfillmentMode) IsValid() bool {
	for _, candidate := range validFulfillmentModes {
		if candidate == f {
			return true
		}
	}
	return false
}

// Label is the customer-facing wording used in order messages.
func (f FulfillmentMode) Label() string {
	if f == FulfillmentDelivery {
		return "Entrega"
	}
	return "Retirada no Local"
}

// ParseFulfillmentMode converts raw input into a FulfillmentMode.
func ParseFulfillmentMode(value string) (FulfillmentMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validFulfillmentModes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment mode %q", value)
}
