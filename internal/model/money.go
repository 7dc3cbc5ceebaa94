package model

import (
	"github.com/shopspring/decimal"
)

// Money is an amount rendered in JSON as a string with two fractional digits,
// so 25 is written as "25.00". Decoding accepts anything decimal accepts.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MarshalJSON renders m with exactly two fractional digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
