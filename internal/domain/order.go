package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const CurrencyGHS = "GHS"

type OrderStatus string

const (
	OrderStatusPaid OrderStatus = "PAID"
	// OrderStatusUnmatched marks money taken for a reference no live checkout owns.
	OrderStatusUnmatched OrderStatus = "UNMATCHED"
)

// Order is the write-once record of one successful payment.
type Order struct {
	ID            string          `json:"id"`
	Reference     string          `json:"reference"`
	Items         []CartLineItem  `json:"items"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	AmountCharged int64           `json:"amount_charged"`
	Currency      string          `json:"currency"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewPaidOrder builds an order from a cart snapshot. Items are copied so the
// order never aliases cart storage. CreatedAt is left for the store to assign.
func NewPaidOrder(reference string, snapshot CartSnapshot, amountCharged int64) *Order {
	items := CopyItems(snapshot.Items)
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return &Order{
		ID:            uuid.NewString(),
		Reference:     reference,
		Items:         items,
		TotalPaid:     total,
		AmountCharged: amountCharged,
		Currency:      CurrencyGHS,
		Status:        OrderStatusPaid,
	}
}

// NewUnmatchedOrder records a charge that arrived with no cart to attach it to.
func NewUnmatchedOrder(reference string, amountCharged int64) *Order {
	return &Order{
		ID:            uuid.NewString(),
		Reference:     reference,
		Items:         []CartLineItem{},
		TotalPaid:     decimal.New(amountCharged, -2),
		AmountCharged: amountCharged,
		Currency:      CurrencyGHS,
		Status:        OrderStatusUnmatched,
	}
}
