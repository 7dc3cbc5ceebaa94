package service

import (
	"context"
	"fmt"

	"shopcore/internal/model"
	"shopcore/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// PaymentLedger keeps exactly one payment per order.
type PaymentLedger struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	logger   zerolog.Logger
}

// NewPaymentLedger creates a payment ledger.
func NewPaymentLedger(payments repository.PaymentRepository, orders repository.OrderRepository, logger zerolog.Logger) *PaymentLedger {
	return &PaymentLedger{
		payments: payments,
		orders:   orders,
		logger:   logger.With().Str("service", "ledger").Logger(),
	}
}

// UpsertForOrder creates the order's payment, or resets an unfinished one to
// pending with the given method. A completed payment yields
// model.ErrPaymentCompleted. The payment row stays locked until tx ends.
//
// The amount is summed from the items visible to tx, so it must be called
// after the order items were inserted in the same transaction.
func (l *PaymentLedger) UpsertForOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, method model.PaymentMethod) (*model.Payment, error) {
	log := l.logger.With().Str("order_id", orderID.String()).Logger()

	existing, err := l.payments.GetByOrderIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		amount, err := l.orders.SumItems(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}

		payment := &model.Payment{
			ID:      uuid.New(),
			OrderID: orderID,
			Amount:  amount,
			Status:  model.PaymentPending,
			Method:  method,
		}
		inserted, err := l.payments.InsertIfAbsent(ctx, tx, payment)
		if err != nil {
			return nil, err
		}
		if inserted {
			if err := l.orders.UpdatePaymentStatus(ctx, tx, orderID, model.OrderPaymentPending); err != nil {
				return nil, err
			}
			log.Info().
				Str("payment_id", payment.ID.String()).
				Str("amount", payment.Amount.StringFixed(2)).
				Str("method", string(method)).
				Msg("payment created")
			return payment, nil
		}

		// A concurrent request created it first; converge on that row.
		existing, err = l.payments.GetByOrderIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("payment for order %s missing after conflict", orderID)
		}
	}

	if existing.Status == model.PaymentCompleted {
		log.Warn().Str("payment_id", existing.ID.String()).Msg("retry rejected: payment already completed")
		return nil, model.ErrPaymentCompleted
	}

	if err := l.payments.ResetForRetry(ctx, tx, existing.ID, method); err != nil {
		return nil, err
	}
	if err := l.orders.UpdatePaymentStatus(ctx, tx, orderID, model.OrderPaymentPending); err != nil {
		return nil, err
	}

	log.Info().
		Str("payment_id", existing.ID.String()).
		Str("previous_status", string(existing.Status)).
		Str("method", string(method)).
		Msg("payment reset for retry")

	existing.Status = model.PaymentPending
	existing.Method = method
	return existing, nil
}
