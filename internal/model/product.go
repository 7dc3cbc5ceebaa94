package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the read-only view of a catalogue product needed for pricing.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Title     string          `json:"title" db:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
