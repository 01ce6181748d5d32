package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartSnapshot represents the full cart state at a given instant
type CartSnapshot struct {
	Items      []CartLineItem  `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	IsOpen     bool            `json:"is_open"`
	Currency   string          `json:"currency"`
	CapturedAt time.Time       `json:"captured_at"`
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Items) == 0
}
