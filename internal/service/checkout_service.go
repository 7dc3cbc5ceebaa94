package service

import (
	"context"
	"time"

	"shopcore/internal/events"
	"shopcore/internal/metrics"
	"shopcore/internal/model"
	"shopcore/internal/repository"
	"shopcore/internal/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	txr          repository.Transactor
	identity     IdentityResolver
	materializer *Materializer
	orders       repository.OrderRepository
	ledger       *PaymentLedger
	notifier     Notifier
	publisher    events.Publisher
	validator    *validation.Validator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	txr repository.Transactor,
	identity IdentityResolver,
	materializer *Materializer,
	orders repository.OrderRepository,
	ledger *PaymentLedger,
	notifier Notifier,
	publisher events.Publisher,
	validator *validation.Validator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		txr:          txr,
		identity:     identity,
		materializer: materializer,
		orders:       orders,
		ledger:       ledger,
		notifier:     notifier,
		publisher:    publisher,
		validator:    validator,
		metrics:      m,
		logger:       logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout resolves the buyer, creates the order from the cart or single
// product, and attaches a pending payment, all in one transaction. The
// confirmation email and the order.created event follow the commit and never
// affect the result.
func (s *checkoutService) Checkout(ctx context.Context, identity model.Identity, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	method := string(req.PaymentMethod)

	if err := s.validator.CheckoutRequest(req, identity.Authenticated()); err != nil {
		s.metrics.Checkout(method, "invalid")
		return nil, err
	}
	if !identity.Authenticated() && identity.Guest == nil {
		guest := req.GuestContact
		identity.Guest = &guest
	}

	src := OrderSource{ProductID: req.ProductID, Quantity: req.Quantity}
	if req.CartID != "" {
		cartID, err := uuid.Parse(req.CartID)
		if err != nil {
			return nil, model.NewValidationError("request validation failed", map[string]string{
				"cart_id": "Must be a valid UUID.",
			})
		}
		src.CartID = &cartID
	}

	order := &model.Order{
		ID:            uuid.New(),
		PlacedAt:      time.Now().UTC(),
		PaymentStatus: model.OrderPaymentNotStarted,
	}

	var (
		customer *model.Customer
		payment  *model.Payment
	)
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		customer, err = s.identity.Resolve(ctx, tx, identity)
		if err != nil {
			return err
		}
		order.CustomerID = customer.ID

		if err := s.orders.CreateOrder(ctx, tx, order); err != nil {
			return err
		}

		items, err := s.materializer.Materialize(ctx, tx, order.ID, src)
		if err != nil {
			return err
		}
		if err := s.orders.CreateOrderItems(ctx, tx, items); err != nil {
			return err
		}
		order.Items = items

		payment, err = s.ledger.UpsertForOrder(ctx, tx, order.ID, req.PaymentMethod)
		if err != nil {
			return err
		}
		order.PaymentStatus = model.OrderPaymentPending
		return nil
	})
	if err != nil {
		s.metrics.Checkout(method, "failed")
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("checkout failed")
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", customer.ID.String()).
		Int("item_count", len(order.Items)).
		Str("total", order.Total().StringFixed(2)).
		Str("payment_method", method).
		Msg("order placed")

	s.metrics.Checkout(method, "placed")
	s.notifier.NotifyOrderCreated(order, req.PaymentMethod, customer.Email)
	s.publisher.Publish(ctx, events.TypeOrderCreated, order.ID.String(), events.OrderCreatedPayload{
		OrderID:       order.ID.String(),
		CustomerID:    customer.ID.String(),
		PaymentMethod: method,
		ItemCount:     len(order.Items),
		Total:         order.Total().StringFixed(2),
	})

	return model.NewOrderResponse(order, payment), nil
}
