// Package events publishes order and payment domain events to the message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeOrderCreated   = "order.created"
	TypePaymentSettled = "payment.settled"
)

const producerName = "shopcore"

// Envelope wraps every published payload.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderCreatedPayload is published after a checkout commits.
type OrderCreatedPayload struct {
	OrderID       string `json:"order_id"`
	CustomerID    string `json:"customer_id"`
	PaymentMethod string `json:"payment_method"`
	ItemCount     int    `json:"item_count"`
	Total         string `json:"total"`
}

// PaymentSettledPayload is published after a webhook settles a payment.
type PaymentSettledPayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	GatewayID string `json:"gateway_id"`
	Status    string `json:"status"`
}

// Publisher emits domain events. Publishing is best effort: it never blocks
// the caller on the bus and never fails the business operation.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
	Close() error
}

// NewEnvelope builds the envelope for payload, correlated by key.
func NewEnvelope(eventType, key string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: key,
		Payload:       raw,
	}, nil
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that discards events.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, any) {}

func (nopPublisher) Close() error { return nil }
