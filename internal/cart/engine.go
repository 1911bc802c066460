// Package cart holds the per-session shopping cart: a store-exclusive list of
// lines with quantity merge rules and exact integer-cent totals.
package cart

import (
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

// State is the cart's coarse lifecycle state.
type State string

const (
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

// Product is what the cart needs to know about a catalog item at add time.
// A nil Price means the catalog entry carries no usable price.
type Product struct {
	ID    uuid.UUID
	Name  string
	Price *money.Cents
}

// Line is one product in the cart. UnitPrice is a snapshot taken when the
// product was first added.
type Line struct {
	ProductID uuid.UUID   `json:"product_id"`
	Name      string      `json:"name"`
	UnitPrice money.Cents `json:"unit_price_cents"`
	Quantity  int         `json:"quantity"`
	StoreID   uuid.UUID   `json:"store_id"`
}

// Total is unit price times quantity.
func (l Line) Total() money.Cents {
	return l.UnitPrice.Mul(l.Quantity)
}

// Cart is not safe for concurrent use; Service serializes access per session.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// FromLines rebuilds a cart from persisted lines. Lines that break the
// single-store or positive-quantity rules are dropped.
func FromLines(lines []Line) *Cart {
	c := New()
	for _, l := range lines {
		if l.Quantity < 1 || l.ProductID == uuid.Nil {
			continue
		}
		if len(c.lines) > 0 && c.lines[0].StoreID != l.StoreID {
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// Add puts one unit of p into the cart for storeID. When the cart holds lines
// of another store they are discarded first.
func (c *Cart) Add(p Product, storeID uuid.UUID) error {
	if p.ID == uuid.Nil {
		return invalidProduct("product id is required", p)
	}
	if p.Price == nil {
		return invalidProduct("product price is missing", p)
	}
	if *p.Price < 0 {
		return invalidProduct("product price is negative", p)
	}
	if storeID == uuid.Nil {
		return invalidProduct("store id is required", p)
	}

	if current, ok := c.StoreID(); ok && current != storeID {
		c.lines = nil
	}

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return nil
		}
	}

	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: *p.Price,
		Quantity:  1,
		StoreID:   storeID,
	})
	return nil
}

// Remove takes one unit of productID out of the cart. Unknown ids are ignored.
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		if c.lines[i].Quantity > 1 {
			c.lines[i].Quantity--
			return
		}
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Subtotal is the exact sum of line totals.
func (c *Cart) Subtotal() money.Cents {
	var total money.Cents
	for _, l := range c.lines {
		total += l.Total()
	}
	return total
}

// StoreID reports the store every line belongs to, if any.
func (c *Cart) StoreID() (uuid.UUID, bool) {
	if len(c.lines) == 0 {
		return uuid.Nil, false
	}
	return c.lines[0].StoreID, true
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) State() State {
	if c.IsEmpty() {
		return StateEmpty
	}
	return StatePopulated
}

func invalidProduct(msg string, p Product) error {
	details := map[string]any{}
	if p.ID != uuid.Nil {
		details["product_id"] = p.ID.String()
	}
	return pkgerrors.New(pkgerrors.CodeInvalidProduct, msg).WithDetails(details)
}
