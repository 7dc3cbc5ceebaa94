package service

import (
	"context"
	"fmt"
	"strings"

	"shopcore/internal/gateway"
	"shopcore/internal/metrics"
	"shopcore/internal/model"
	"shopcore/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// IntentOptions holds the gateway currency and its minimum chargeable amount.
type IntentOptions struct {
	Currency       string
	MinAmountMinor int64
}

// paymentService implements PaymentService.
type paymentService struct {
	txr      repository.Transactor
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	ledger   *PaymentLedger
	gateway  gateway.Gateway
	opts     IntentOptions
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	txr repository.Transactor,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	ledger *PaymentLedger,
	gw gateway.Gateway,
	opts IntentOptions,
	m *metrics.Metrics,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		txr:      txr,
		orders:   orders,
		payments: payments,
		ledger:   ledger,
		gateway:  gw,
		opts:     opts,
		metrics:  m,
		logger:   logger.With().Str("service", "payment").Logger(),
	}
}

// CreateIntent checks the chargeable amount, moves the payment to pending with
// the gateway method and returns the client secret of its remote intent. An
// intent already recorded for the payment is reused.
func (s *paymentService) CreateIntent(ctx context.Context, orderID uuid.UUID) (*model.PaymentIntentResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		s.metrics.Intent("not_found")
		return nil, model.ErrOrderNotFound
	}

	total := order.Total()
	places := gateway.CurrencyExponent(s.opts.Currency)
	amountMinor := gateway.ToMinorUnits(total, s.opts.Currency)
	if !gateway.IsRepresentable(total, s.opts.Currency) {
		s.metrics.Intent("unrepresentable")
		return nil, model.NewDomainError(model.KindValidation, model.ErrCodeAmountPrecision, fmt.Sprintf(
			"The total amount (%s) cannot be charged in %s. Choose cash on delivery.",
			total.String(), strings.ToUpper(s.opts.Currency),
		))
	}
	if amountMinor <= 0 {
		s.metrics.Intent("empty")
		return nil, model.ErrEmptyOrder
	}
	if amountMinor < s.opts.MinAmountMinor {
		s.metrics.Intent("below_minimum")
		minimum := gateway.FromMinorUnits(s.opts.MinAmountMinor, s.opts.Currency)
		return nil, model.NewDomainError(model.KindValidation, model.ErrCodeBelowMinimum, fmt.Sprintf(
			"The total amount (%s) is below the minimum chargeable amount (%s). Add more items or choose cash on delivery.",
			total.StringFixed(places), minimum.StringFixed(places),
		))
	}

	log := s.logger.With().Str("order_id", orderID.String()).Logger()

	var intent *gateway.Intent
	err = inTx(ctx, s.txr, log, func(tx pgx.Tx) error {
		payment, err := s.ledger.UpsertForOrder(ctx, tx, orderID, model.PaymentMethodGateway)
		if err != nil {
			return err
		}

		if payment.GatewayID != nil && *payment.GatewayID != "" {
			intent, err = s.gateway.GetIntent(ctx, *payment.GatewayID)
			return err
		}

		intent, err = s.gateway.CreateIntent(ctx, gateway.IntentRequest{
			OrderID:     orderID,
			AmountMinor: amountMinor,
			Currency:    s.opts.Currency,
		})
		if err != nil {
			return err
		}
		return s.payments.SetGatewayID(ctx, tx, payment.ID, intent.ID)
	})
	if err != nil {
		s.metrics.Intent("failed")
		log.Warn().Err(err).Msg("payment intent failed")
		return nil, err
	}

	s.metrics.Intent("created")
	log.Info().
		Str("gateway_id", intent.ID).
		Int64("amount_minor", amountMinor).
		Msg("payment intent ready")

	return &model.PaymentIntentResponse{ClientSecret: intent.ClientSecret}, nil
}
