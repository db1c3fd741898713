// Package cart is the order pricing engine: it turns (item, size, quantity)
// selections into priced lines and derives totals. It is a pure transformation
// over an immutable catalog view and the cart state it owns; persistence and
// rendering live elsewhere.
package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountRate is the flat senior/PWD discount applied to the subtotal.
var DiscountRate = decimal.NewFromFloat(0.10)

// DefaultSize is preferred when the caller does not pick a size.
const DefaultSize = "base"

var (
	ErrInvalidSize     = errors.New("size not offered for this item")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	ErrNoPricing       = errors.New("item has no pricing")
	ErrLineNotFound    = errors.New("line not found")
)

// PriceOption is one size entry of an item's pricing. Options keep their
// declaration order so the fallback default size is deterministic.
type PriceOption struct {
	Label string
	Price decimal.Decimal
}

// Item is the catalog view the cart prices against.
type Item struct {
	ID      uuid.UUID
	Name    string
	Pricing []PriceOption
}

// PriceFor returns the unit price for a size label.
func (it Item) PriceFor(size string) (decimal.Decimal, bool) {
	for _, opt := range it.Pricing {
		if opt.Label == size {
			return opt.Price, true
		}
	}
	return decimal.Zero, false
}

// defaultSize picks "base" when declared, else the first declared option.
func (it Item) defaultSize() (string, error) {
	if len(it.Pricing) == 0 {
		return "", ErrNoPricing
	}
	if _, ok := it.PriceFor(DefaultSize); ok {
		return DefaultSize, nil
	}
	return it.Pricing[0].Label, nil
}

// Line is a priced selection. UnitPrice is captured at add time and never
// re-derived, so catalog changes do not retroactively reprice an open order.
type Line struct {
	ID           uuid.UUID
	ItemID       uuid.UUID
	ItemName     string
	SelectedSize string
	UnitPrice    decimal.Decimal
	Quantity     int32
}

// Subtotal is unit price times quantity, unrounded.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// Totals is a derived value object, recomputed on every change.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Cart is an in-progress order: its lines plus the discount flag.
type Cart struct {
	Lines           []Line
	DiscountApplied bool
}

// AddLine prices a selection and adds it to the cart. An empty size selects
// the item's default. A line matching the same item and size is merged by
// incrementing its quantity instead of duplicating.
func (c *Cart) AddLine(item Item, size string, qty int32) (*Line, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if size == "" {
		var err error
		size, err = item.defaultSize()
		if err != nil {
			return nil, err
		}
	}
	price, ok := item.PriceFor(size)
	if !ok {
		return nil, ErrInvalidSize
	}

	for i := range c.Lines {
		if c.Lines[i].ItemID == item.ID && c.Lines[i].SelectedSize == size {
			c.Lines[i].Quantity += qty
			return &c.Lines[i], nil
		}
	}

	c.Lines = append(c.Lines, Line{
		ID:           uuid.New(),
		ItemID:       item.ID,
		ItemName:     item.Name,
		SelectedSize: size,
		UnitPrice:    price,
		Quantity:     qty,
	})
	return &c.Lines[len(c.Lines)-1], nil
}

// UpdateQuantity applies a +/- delta. Quantity never drops below 1 here;
// removal requires an explicit Void.
func (c *Cart) UpdateQuantity(lineID uuid.UUID, delta int32) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			q := c.Lines[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			c.Lines[i].Quantity = q
			return nil
		}
	}
	return ErrLineNotFound
}

// UpdateSize switches a line to another of the item's sizes, re-resolving the
// unit price from the catalog.
func (c *Cart) UpdateSize(lineID uuid.UUID, item Item, newSize string) error {
	price, ok := item.PriceFor(newSize)
	if !ok {
		return ErrInvalidSize
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].SelectedSize = newSize
			c.Lines[i].UnitPrice = price
			return nil
		}
	}
	return ErrLineNotFound
}

// Void removes a line unconditionally. Voiding a line that is already gone is
// a no-op, so double-fired UI events stay harmless.
func (c *Cart) Void(lineID uuid.UUID) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Totals derives {subtotal, discount, total} from the lines and the discount
// flag. Values are unrounded; callers round at the presentation boundary.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	discount := decimal.Zero
	if c.DiscountApplied {
		discount = subtotal.Mul(DiscountRate)
	}
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// TotalQuantity sums quantities across all lines.
func (c *Cart) TotalQuantity() int32 {
	var n int32
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
