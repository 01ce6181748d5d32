package domain

import "github.com/shopspring/decimal"

// CartLineItem is one distinct (product, material) combination in a cart.
type CartLineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Material  string          `json:"material"`
	Color     string          `json:"color"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Key returns the merge key of the line.
func (i CartLineItem) Key() LineKey {
	return LineKey{ID: i.ID, Material: i.Material}
}

// Subtotal is UnitPrice × Quantity.
func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineKey identifies a line item independently of its position in the cart.
type LineKey struct {
	ID       string `json:"id"`
	Material string `json:"material"`
}

// CartCandidate is what a producer offers to the cart; quantity is decided by the cart.
type CartCandidate struct {
	ID        string
	Name      string
	Material  string
	Color     string
	UnitPrice decimal.Decimal
}

func (c CartCandidate) Key() LineKey {
	return LineKey{ID: c.ID, Material: c.Material}
}

// CopyItems returns a slice that shares no storage with items.
func CopyItems(items []CartLineItem) []CartLineItem {
	out := make([]CartLineItem, len(items))
	copy(out, items)
	return out
}
