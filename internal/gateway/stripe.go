package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shopcore/internal/model"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig configures the Stripe adapter.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration

	// BaseURL overrides the API endpoint. Empty means Stripe's production API.
	BaseURL string
}

// stripeGateway implements Gateway on a dedicated Stripe client instance.
type stripeGateway struct {
	api           *client.API
	webhookSecret string
	timeout       time.Duration
	logger        zerolog.Logger
}

// NewStripeGateway constructs a Stripe-backed Gateway. Each call to the
// processor is a single attempt bounded by cfg.Timeout.
func NewStripeGateway(cfg StripeConfig, logger zerolog.Logger) Gateway {
	logger = logger.With().Str("component", "gateway").Str("provider", "stripe").Logger()

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripeLogger{logger: logger},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})

	return &stripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		timeout:       cfg.Timeout,
		logger:        logger,
	}
}

// CreateIntent creates a PaymentIntent carrying the order id as metadata.
func (g *stripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID.String())
	params.SetIdempotencyKey(req.IdempotencyKey())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("order_id", req.OrderID.String()).
			Int64("amount_minor", req.AmountMinor).
			Msg("failed to create payment intent")
		return nil, model.NewGatewayError("payment processor is unavailable, try again later", err)
	}

	g.logger.Info().
		Str("order_id", req.OrderID.String()).
		Str("gateway_id", pi.ID).
		Int64("amount_minor", req.AmountMinor).
		Msg("payment intent created")

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// GetIntent retrieves an existing PaymentIntent.
func (g *stripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		g.logger.Error().Err(err).Str("gateway_id", id).Msg("failed to fetch payment intent")
		return nil, model.NewGatewayError("payment processor is unavailable, try again later", err)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseEvent checks the Stripe-Signature header before looking at the body.
func (g *stripeGateway) ParseEvent(payload []byte, signature string) (*model.SettlementEvent, error) {
	if err := webhook.ValidatePayloadWithTolerance(payload, signature, g.webhookSecret, webhook.DefaultTolerance); err != nil {
		g.logger.Warn().Err(err).Msg("webhook signature verification failed")
		return nil, &model.DomainError{
			Kind:    model.KindAuthentication,
			Code:    model.ErrCodeInvalidSignature,
			Message: model.ErrInvalidSignature.Message,
			Err:     err,
		}
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, malformed(err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, malformed(errors.New("event id or type missing"))
	}

	settlement := &model.SettlementEvent{
		EventID: event.ID,
		Type:    string(event.Type),
	}

	switch settlement.Type {
	case EventIntentSucceeded:
		settlement.Outcome = model.SettlementSucceeded
	case EventIntentFailed:
		settlement.Outcome = model.SettlementFailed
	default:
		return settlement, nil
	}

	if event.Data == nil {
		return nil, malformed(errors.New("event data missing"))
	}
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, malformed(err)
	}
	if intent.ID == "" {
		return nil, malformed(errors.New("payment intent id missing"))
	}
	settlement.GatewayID = intent.ID

	return settlement, nil
}

func malformed(err error) error {
	return &model.DomainError{
		Kind:    model.KindMalformedPayload,
		Code:    model.ErrCodeInvalidPayload,
		Message: model.ErrInvalidPayload.Message,
		Err:     fmt.Errorf("failed to parse webhook body: %w", err),
	}
}

// stripeLogger routes stripe-go's internal logging through zerolog.
type stripeLogger struct {
	logger zerolog.Logger
}

func (l *stripeLogger) Debugf(format string, v ...interface{}) { l.logger.Debug().Msgf(format, v...) }
func (l *stripeLogger) Infof(format string, v ...interface{}) { l.logger.Debug().Msgf(format, v...) }
func (l *stripeLogger) Warnf(format string, v ...interface{}) { l.logger.Warn().Msgf(format, v...) }
func (l *stripeLogger) Errorf(format string, v ...interface{}) { l.logger.Error().Msgf(format, v...) }
