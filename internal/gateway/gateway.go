// Package gateway talks to the external payment processor: it creates payment
// intents and turns signed webhook deliveries into settlement events.
package gateway

import (
	"context"
	"strings"

	"shopcore/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types the reconciler acts on. Everything else is acknowledged and ignored.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// IntentRequest describes a payment intent to create for an order.
type IntentRequest struct {
	OrderID     uuid.UUID
	AmountMinor int64
	Currency    string
}

// IdempotencyKey is sent with intent creation so a retried request cannot
// create a second remote intent for the same order.
func (r IntentRequest) IdempotencyKey() string {
	return "order-" + r.OrderID.String() + "-intent"
}

// Intent is a remote payment intent.
type Intent struct {
	ID           string
	ClientSecret string
}

// Gateway is the payment processor boundary.
type Gateway interface {
	// CreateIntent creates a remote intent tagged with the order id.
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)

	// GetIntent fetches an existing intent.
	GetIntent(ctx context.Context, id string) (*Intent, error)

	// ParseEvent verifies a webhook delivery and extracts the settlement it
	// describes. Outcome is empty for event types that carry no settlement.
	ParseEvent(payload []byte, signature string) (*model.SettlementEvent, error)
}

// Currencies whose minor unit is not a hundredth, as charged by Stripe.
var (
	zeroDecimalCurrencies = map[string]bool{
		"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
		"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
		"vuv": true, "xaf": true, "xof": true, "xpf": true,
	}
	threeDecimalCurrencies = map[string]bool{
		"bhd": true, "jod": true, "kwd": true, "omr": true, "tnd": true,
	}
)

// CurrencyExponent returns the number of decimal places of currency's minor unit.
func CurrencyExponent(currency string) int32 {
	c := strings.ToLower(currency)
	switch {
	case zeroDecimalCurrencies[c]:
		return 0
	case threeDecimalCurrencies[c]:
		return 3
	default:
		return 2
	}
}

// ToMinorUnits converts a major-unit amount into the gateway's integer
// minor-unit representation for currency, truncating sub-minor fractions.
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(CurrencyExponent(currency)).IntPart()
}

// FromMinorUnits converts a minor-unit amount back into major units.
func FromMinorUnits(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -CurrencyExponent(currency))
}

// IsRepresentable reports whether amount has no fraction below currency's minor unit.
func IsRepresentable(amount decimal.Decimal, currency string) bool {
	shifted := amount.Shift(CurrencyExponent(currency))
	return shifted.Equal(shifted.Truncate(0))
}
