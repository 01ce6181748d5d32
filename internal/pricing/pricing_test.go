package pricing

import (
	"testing"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(id, material, price string, qty int) domain.CartLineItem {
	return domain.CartLineItem{ID: id, Material: material, UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestTotal_Empty(t *testing.T) {
	assert.True(t, Total(nil).IsZero())
	assert.True(t, Total([]domain.CartLineItem{}).IsZero())
	assert.Equal(t, "0", Total(nil).String())
}

func TestTotal_SumsLines(t *testing.T) {
	items := []domain.CartLineItem{
		item("a", "Walnut", "850", 2),
		item("b", "Ebony", "150.50", 3),
	}
	assert.Equal(t, "2151.5", Total(items).String())
	assert.Equal(t, 5, Count(items))
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0", 0},
		{"1700", 170000},
		{"19.99", 1999},
		{"0.005", 1},
		{"0.004", 0},
		{"10.125", 1013},
		{"10.135", 1014},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMinorUnits(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1700").Equal(FromMinorUnits(170000)))
	assert.True(t, decimal.RequireFromString("0.01").Equal(FromMinorUnits(1)))
}
