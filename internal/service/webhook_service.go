package service

import (
	"context"

	"shopcore/internal/dedup"
	"shopcore/internal/events"
	"shopcore/internal/gateway"
	"shopcore/internal/metrics"
	"shopcore/internal/model"
	"shopcore/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Webhook result statuses.
const (
	WebhookApplied  = "applied"
	WebhookIgnored  = "ignored"
	WebhookReplayed = "replayed"
	WebhookAbsorbed = "absorbed"
)

// webhookService implements WebhookService.
type webhookService struct {
	txr       repository.Transactor
	gateway   gateway.Gateway
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	events    repository.WebhookEventRepository
	dedup     dedup.Store
	notifier  Notifier
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewWebhookService creates a new webhook reconciler.
func NewWebhookService(
	txr repository.Transactor,
	gw gateway.Gateway,
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	webhookEvents repository.WebhookEventRepository,
	store dedup.Store,
	notifier Notifier,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) WebhookService {
	return &webhookService{
		txr:       txr,
		gateway:   gw,
		payments:  payments,
		orders:    orders,
		customers: customers,
		events:    webhookEvents,
		dedup:     store,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With().Str("service", "webhook").Logger(),
	}
}

// Handle verifies the signature before anything else, then applies the
// settlement to the payment and its order in one transaction. Replays and
// events for payments already out of pending leave state untouched.
func (s *webhookService) Handle(ctx context.Context, payload []byte, signature string) (*model.WebhookResult, error) {
	event, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		s.metrics.Webhook(model.KindOf(err).String())
		s.logger.Warn().Err(err).Msg("webhook rejected")
		return nil, err
	}

	log := s.logger.With().
		Str("event_id", event.EventID).
		Str("event_type", event.Type).
		Logger()

	if event.Outcome == "" {
		s.metrics.Webhook(WebhookIgnored)
		log.Debug().Msg("webhook event type ignored")
		return &model.WebhookResult{EventID: event.EventID, Status: WebhookIgnored}, nil
	}

	seen, err := s.dedup.Seen(ctx, event.EventID)
	if err != nil {
		log.Warn().Err(err).Msg("dedup lookup failed, falling back to database")
	}
	if seen {
		s.metrics.Webhook(WebhookReplayed)
		log.Info().Msg("webhook event already processed")
		return &model.WebhookResult{EventID: event.EventID, Status: WebhookReplayed}, nil
	}

	log = log.With().Str("gateway_id", event.GatewayID).Logger()

	status := WebhookApplied
	var (
		payment   *model.Payment
		recipient string
	)
	err = inTx(ctx, s.txr, log, func(tx pgx.Tx) error {
		recorded, err := s.events.Record(ctx, tx, *event)
		if err != nil {
			return err
		}
		if !recorded {
			status = WebhookReplayed
			return nil
		}

		payment, err = s.payments.GetByGatewayIDForUpdate(ctx, tx, event.GatewayID)
		if err != nil {
			return err
		}
		if payment == nil {
			return model.ErrPaymentNotFound
		}

		if payment.Status != model.PaymentPending {
			status = WebhookAbsorbed
			return nil
		}

		next := event.Outcome.PaymentStatus()
		if err := s.payments.UpdateStatus(ctx, tx, payment.ID, next); err != nil {
			return err
		}
		if err := s.orders.UpdatePaymentStatus(ctx, tx, payment.OrderID, event.Outcome.OrderPaymentStatus()); err != nil {
			return err
		}
		payment.Status = next

		recipient, err = s.customers.EmailForOrder(ctx, tx, payment.OrderID)
		return err
	})
	if err != nil {
		s.metrics.Webhook(model.KindOf(err).String())
		log.Error().Err(err).Msg("failed to apply webhook event")
		return nil, err
	}

	if err := s.dedup.Mark(ctx, event.EventID); err != nil {
		log.Warn().Err(err).Msg("failed to mark webhook event as processed")
	}
	s.metrics.Webhook(status)

	if status != WebhookApplied {
		log.Info().Str("status", status).Msg("webhook event left state unchanged")
		return &model.WebhookResult{EventID: event.EventID, Status: status}, nil
	}

	log.Info().
		Str("order_id", payment.OrderID.String()).
		Str("payment_status", string(payment.Status)).
		Msg("payment settled")

	s.notifier.NotifyPaymentSettled(payment.OrderID, payment.Status, recipient)
	s.publisher.Publish(ctx, events.TypePaymentSettled, payment.OrderID.String(), events.PaymentSettledPayload{
		OrderID:   payment.OrderID.String(),
		PaymentID: payment.ID.String(),
		GatewayID: event.GatewayID,
		Status:    string(payment.Status),
	})

	return &model.WebhookResult{EventID: event.EventID, Applied: true, Status: WebhookApplied}, nil
}
