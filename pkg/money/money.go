// Package money keeps prices as integer minor units (centavos) and converts
// them from and to the decimal strings customers and owners type.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

// MaxCents bounds every parsed amount, keeping line and order totals far
// from int64 overflow.
const MaxCents Cents = 100_000_000_000

var maxDecimal = decimal.NewFromInt(int64(MaxCents))

var (
	ErrEmpty    = errors.New("amount is empty")
	ErrNegative = errors.New("amount is negative")
	ErrInvalid  = errors.New("amount is not a number")
)

// Parse reads "29,90", "29.90" or "29" into cents. Amounts are rounded half
// away from zero to two decimal places and may not exceed MaxCents.
func Parse(raw string) (Cents, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, ErrEmpty
	}
	value = strings.ReplaceAll(value, ",", ".")
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	if d.IsNegative() {
		return 0, ErrNegative
	}
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(maxDecimal) {
		return 0, fmt.Errorf("%w: %q exceeds %s", ErrInvalid, raw, MaxCents)
	}
	return Cents(cents.IntPart()), nil
}

// ParseOrZero is Parse with every failure collapsed to zero.
func ParseOrZero(raw string) Cents {
	c, err := Parse(raw)
	if err != nil {
		return 0
	}
	return c
}

// Decimal returns the amount as a decimal in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount with two decimals and a dot separator.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Format renders the amount prefixed by symbol, e.g. "R$ 64.80".
func (c Cents) Format(symbol string) string {
	if symbol == "" {
		return c.String()
	}
	return symbol + " " + c.String()
}

// Mul multiplies by a quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}
