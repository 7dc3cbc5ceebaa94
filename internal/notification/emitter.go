// Package notification sends buyer-facing messages through a pluggable
// transport. Order and payment notices are queued and delivered by a worker
// pool; their failures are logged and never reach the caller.
package notification

import (
	"context"
	"sync"
	"time"

	"shopcore/internal/metrics"
	"shopcore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// EmitterOptions tunes the delivery worker pool.
type EmitterOptions struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// DefaultEmitterOptions returns the options used when none are configured.
func DefaultEmitterOptions() EmitterOptions {
	return EmitterOptions{
		Workers:     2,
		QueueSize:   256,
		SendTimeout: 15 * time.Second,
	}
}

type message struct {
	template   string
	subject    string
	body       string
	recipients []string
	orderID    string
}

// Emitter renders and delivers notifications.
type Emitter struct {
	transport Transport
	templates *Templates
	metrics   *metrics.Metrics
	opts      EmitterOptions
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan message
	wg     sync.WaitGroup
}

// NewEmitter starts opts.Workers delivery workers. Call Close to drain them.
func NewEmitter(transport Transport, templates *Templates, m *metrics.Metrics, opts EmitterOptions, logger zerolog.Logger) *Emitter {
	defaults := DefaultEmitterOptions()
	if opts.Workers < 1 {
		opts.Workers = defaults.Workers
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = defaults.QueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaults.SendTimeout
	}
	if templates == nil {
		templates = DefaultTemplates()
	}

	e := &Emitter{
		transport: transport,
		templates: templates,
		metrics:   m,
		opts:      opts,
		logger:    logger.With().Str("component", "notification").Logger(),
		queue:     make(chan message, opts.QueueSize),
	}

	for i := 0; i < opts.Workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	return e
}

type orderConfirmationData struct {
	OrderID string
	Items   []model.OrderItem
	Total   decimal.Decimal
	Method  model.PaymentMethod
}

// NotifyOrderCreated queues the order confirmation. It must only be called
// once the order has been committed.
func (e *Emitter) NotifyOrderCreated(order *model.Order, method model.PaymentMethod, recipient string) {
	e.enqueue(TemplateOrderConfirmation, order.ID, recipient, orderConfirmationData{
		OrderID: order.ID.String(),
		Items:   order.Items,
		Total:   order.Total(),
		Method:  method,
	})
}

type paymentSettledData struct {
	OrderID string
	Status  model.PaymentStatus
}

// NotifyPaymentSettled queues the payment status notice for an order.
func (e *Emitter) NotifyPaymentSettled(orderID uuid.UUID, status model.PaymentStatus, recipient string) {
	e.enqueue(TemplatePaymentSettled, orderID, recipient, paymentSettledData{
		OrderID: orderID.String(),
		Status:  status,
	})
}

// DeliverVerificationCode sends code synchronously. The caller cannot proceed
// without the code, so a failure is returned as a NotificationError telling
// the user to request a resend.
func (e *Emitter) DeliverVerificationCode(ctx context.Context, email, code string) error {
	subject, body, err := e.templates.Render(TemplateVerificationCode, struct{ Code string }{Code: code})
	if err != nil {
		e.metrics.Notification(TemplateVerificationCode, "render_failed")
		return model.NewNotificationError("verification code could not be delivered, request a resend", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.SendTimeout)
	defer cancel()

	if err := e.transport.Send(ctx, subject, body, []string{email}); err != nil {
		e.logger.Error().Err(err).Msg("failed to deliver verification code")
		e.metrics.Notification(TemplateVerificationCode, "failed")
		return model.NewNotificationError("verification code could not be delivered, request a resend", err)
	}

	e.metrics.Notification(TemplateVerificationCode, "sent")
	return nil
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Emitter) enqueue(template string, orderID uuid.UUID, recipient string, data any) {
	log := e.logger.With().Str("template", template).Str("order_id", orderID.String()).Logger()

	if recipient == "" {
		log.Warn().Msg("notification skipped: no recipient")
		e.metrics.Notification(template, "skipped")
		return
	}

	subject, body, err := e.templates.Render(template, data)
	if err != nil {
		log.Warn().Err(model.NewNotificationError("failed to render notification", err)).Msg("notification dropped")
		e.metrics.Notification(template, "render_failed")
		return
	}

	msg := message{
		template:   template,
		subject:    subject,
		body:       body,
		recipients: []string{recipient},
		orderID:    orderID.String(),
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		log.Warn().Msg("notification dropped: emitter closed")
		e.metrics.Notification(template, "dropped")
		return
	}

	select {
	case e.queue <- msg:
	default:
		log.Warn().Int("queue_size", e.opts.QueueSize).Msg("notification dropped: queue full")
		e.metrics.Notification(template, "dropped")
	}
}

func (e *Emitter) worker() {
	defer e.wg.Done()

	for msg := range e.queue {
		e.deliver(msg)
	}
}

func (e *Emitter) deliver(msg message) {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.SendTimeout)
	defer cancel()

	if err := e.transport.Send(ctx, msg.subject, msg.body, msg.recipients); err != nil {
		e.logger.Warn().
			Err(model.NewNotificationError("notification delivery failed", err)).
			Str("template", msg.template).
			Str("order_id", msg.orderID).
			Msg("notification not delivered")
		e.metrics.Notification(msg.template, "failed")
		return
	}

	e.metrics.Notification(msg.template, "sent")
}
