package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishAndClose(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, 8, zerolog.Nop())

	p.Publish(context.Background(), TypeOrderCreated, "order-1", OrderCreatedPayload{
		OrderID:       "order-1",
		PaymentMethod: "cod",
		ItemCount:     2,
		Total:         "25.00",
	})
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	assert.True(t, w.closed)
	assert.Equal(t, "order-1", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
	assert.Equal(t, TypeOrderCreated, env.EventType)
	assert.Equal(t, "order-1", env.CorrelationID)
	assert.Equal(t, 1, env.EventVersion)

	var payload OrderCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "25.00", payload.Total)

	// Publishing after Close is dropped, and Close is idempotent.
	p.Publish(context.Background(), TypeOrderCreated, "order-2", OrderCreatedPayload{})
	assert.NoError(t, p.Close())
	assert.Len(t, w.msgs, 1)
}

func TestKafkaPublisher_WriteErrorIsLogged(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, 8, zerolog.Nop())

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), TypePaymentSettled, "order-1", PaymentSettledPayload{Status: "completed"})
	})
	require.NoError(t, p.Close())
	assert.Empty(t, w.msgs)
}

func TestKafkaPublisher_UnencodablePayload(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, 8, zerolog.Nop())

	p.Publish(context.Background(), TypeOrderCreated, "order-1", make(chan int))
	require.NoError(t, p.Close())

	assert.Empty(t, w.msgs)
}

func TestNopPublisher(t *testing.T) {
	p := NewNopPublisher()

	p.Publish(context.Background(), TypeOrderCreated, "k", nil)
	assert.NoError(t, p.Close())
}
