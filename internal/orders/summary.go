package orders

import (
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

// MinAddressLength is the shortest delivery address accepted at checkout.
const MinAddressLength = 5

// StoreProfile is the store data checkout needs.
type StoreProfile struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	DeliveryFee money.Cents `json:"delivery_fee_cents"`
	OwnerEmail  string      `json:"owner_email,omitempty"`
}

// Summary is the priced outcome of a cart and a fulfillment choice.
type Summary struct {
	Subtotal    money.Cents           `json:"subtotal_cents"`
	DeliveryFee money.Cents           `json:"delivery_fee_cents"`
	Total       money.Cents           `json:"total_cents"`
	Mode        enums.FulfillmentMode `json:"fulfillment_mode"`
	Address     string                `json:"address,omitempty"`
	Payment     enums.PaymentMethod   `json:"payment_method"`
}

// ComputeSummary prices c for the given mode. The store fee only applies to
// deliveries, and deliveries need an address of at least MinAddressLength
// characters.
func ComputeSummary(c *cart.Cart, mode enums.FulfillmentMode, address string, profile *StoreProfile) (Summary, error) {
	if c == nil {
		c = cart.New()
	}
	if !mode.IsValid() {
		return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment mode")
	}
	summary := Summary{
		Subtotal: c.Subtotal(),
		Mode:     mode,
		Payment:  enums.DefaultPaymentMethod,
	}
	if mode == enums.FulfillmentDelivery {
		// The length counts the address as typed; blank input still fails.
		trimmed := strings.TrimSpace(address)
		if trimmed == "" || utf8.RuneCountInString(address) < MinAddressLength {
			return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "address required")
		}
		summary.Address = trimmed
		if profile != nil && profile.DeliveryFee > 0 {
			summary.DeliveryFee = profile.DeliveryFee
		}
	}
	summary.Total = summary.Subtotal + summary.DeliveryFee
	return summary, nil
}
