package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes envelopes to a single topic, keyed by order id so
// every event of one order lands on the same partition.
type KafkaPublisher struct {
	w      messageWriter
	inbox  chan kafka.Message
	done   chan struct{}
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher starts a publisher for topic on brokers. buf bounds the
// number of events waiting to be written.
func NewKafkaPublisher(brokers []string, topic string, buf int, logger zerolog.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf, logger)
}

func newKafkaPublisher(w messageWriter, buf int, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		w:      w,
		inbox:  make(chan kafka.Message, buf),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "event-publisher").Logger(),
	}
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer close(p.done)

	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			p.logger.Error().
				Err(err).
				Str("key", string(m.Key)).
				Msg("failed to publish event")
		}
		cancel()
	}
}

// Publish queues the event. A full buffer drops it with a warning.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) {
	env, err := NewEnvelope(eventType, key, payload)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to encode event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn().Str("event_type", eventType).Msg("event dropped: publisher closed")
		return
	}

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().Str("event_type", eventType).Str("key", key).Msg("event dropped: buffer full")
	}
}

// Close flushes queued events and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.done
	return p.w.Close()
}
