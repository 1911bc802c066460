package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a customer intends to settle an order on hand-off.
type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

// DefaultPaymentMethod is preselected at checkout.
const DefaultPaymentMethod = PaymentMethodPix

var validPaymentMethods = []PaymentMethod{
	PaymentMethodPix,
	PaymentMethodCard,
	PaymentMethodCash,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// Label returns the customer-facing name of the method.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentMethodPix:
		return "Pix"
	case PaymentMethodCard:
		return "Cartão"
	case PaymentMethodCash:
		return "Dinheiro"
	}
	return string(p)
}

// ParsePaymentMethod converts raw input into a PaymentMethod. Blank input
// yields DefaultPaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return DefaultPaymentMethod, nil
	}
	for _, candidate := range validPaymentMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
