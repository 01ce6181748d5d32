// Package pricing derives monetary values from cart contents.
package pricing

import (
	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Total is Σ unitPrice × quantity. An empty cart totals zero.
func Total(items []domain.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

func LineTotal(item domain.CartLineItem) decimal.Decimal {
	return item.Subtotal()
}

// Count is Σ quantity, shown on the cart badge.
func Count(items []domain.CartLineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// ToMinorUnits converts a major-unit amount to minor units, rounding half up.
func ToMinorUnits(amount decimal.Decimal) int64 {
	// Round is half away from zero, which is half up for the non-negative amounts we charge.
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
