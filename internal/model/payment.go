package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the ledger state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentMethod is how the buyer intends to pay.
type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "gateway"
	PaymentMethodCOD     PaymentMethod = "cod"
)

// Payment is the single payment record attached to an order.
type Payment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"orderId" db:"order_id"`
	GatewayID *string         `json:"gatewayId,omitempty" db:"gateway_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Status    PaymentStatus   `json:"status" db:"status"`
	Method    PaymentMethod   `json:"method" db:"method"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// PaymentSummary is the payment view embedded in order responses.
type PaymentSummary struct {
	ID     uuid.UUID     `json:"id"`
	Status PaymentStatus `json:"status"`
	Method PaymentMethod `json:"method"`
	Amount Money         `json:"amount"`
}

// PaymentIntentRequest is the payload of the payment-intent entrypoint.
type PaymentIntentRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

// PaymentIntentResponse carries the secret the client uses to complete payment.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// SettlementOutcome is the result of a settlement event from the gateway.
type SettlementOutcome string

const (
	SettlementSucceeded SettlementOutcome = "succeeded"
	SettlementFailed    SettlementOutcome = "failed"
)

// PaymentStatus maps the outcome onto the ledger state.
func (o SettlementOutcome) PaymentStatus() PaymentStatus {
	if o == SettlementSucceeded {
		return PaymentCompleted
	}
	return PaymentFailed
}

// OrderPaymentStatus maps the outcome onto the order header state.
func (o SettlementOutcome) OrderPaymentStatus() OrderPaymentStatus {
	if o == SettlementSucceeded {
		return OrderPaymentCompleted
	}
	return OrderPaymentFailed
}

// SettlementEvent is a verified gateway event reduced to what the ledger needs.
type SettlementEvent struct {
	EventID   string
	Type      string
	GatewayID string
	Outcome   SettlementOutcome
}

// WebhookResult reports what the reconciler did with an event.
type WebhookResult struct {
	EventID string `json:"eventId,omitempty"`
	Applied bool   `json:"applied"`
	Status  string `json:"status"`
}
