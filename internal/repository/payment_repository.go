package repository

import (
	"context"
	"errors"
	"fmt"

	"shopcore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// paymentRepository implements the PaymentRepository interface using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

const paymentColumns = `id, order_id, gateway_id, amount, status, method, created_at, updated_at`

// InsertIfAbsent relies on the unique order_id constraint so that concurrent
// first calls for the same order produce exactly one row.
func (r *paymentRepository) InsertIfAbsent(ctx context.Context, tx pgx.Tx, payment *model.Payment) (bool, error) {
	query := `
		INSERT INTO payments (id, order_id, gateway_id, amount, status, method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (order_id) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.GatewayID,
		payment.Amount,
		payment.Status,
		payment.Method,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if pgErrorCode(err) == pgForeignKeyViolation {
			return false, model.ErrOrderNotFound
		}
		if pgErrorCode(err) == pgNumericOutOfRange {
			return false, model.ErrAmountOutOfRange
		}
		r.logger.Error().
			Err(err).
			Str("order_id", payment.OrderID.String()).
			Msg("failed to insert payment")
		return false, fmt.Errorf("failed to insert payment: %w", err)
	}

	r.logger.Debug().
		Str("payment_id", payment.ID.String()).
		Str("order_id", payment.OrderID.String()).
		Str("method", string(payment.Method)).
		Msg("payment created")

	return true, nil
}

// GetByOrderIDForUpdate locks and returns the order's payment.
func (r *paymentRepository) GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 FOR UPDATE`

	payment, err := scanPayment(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to lock payment by order")
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	return payment, nil
}

// GetByGatewayIDForUpdate locks and returns the payment for a gateway transaction.
func (r *paymentRepository) GetByGatewayIDForUpdate(ctx context.Context, tx pgx.Tx, gatewayID string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_id = $1 FOR UPDATE`

	payment, err := scanPayment(tx.QueryRow(ctx, query, gatewayID))
	if err != nil {
		r.logger.Error().Err(err).Str("gateway_id", gatewayID).Msg("failed to lock payment by gateway id")
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	return payment, nil
}

// ResetForRetry puts the payment back to pending and overwrites its method.
// Amount and gateway id are left untouched.
func (r *paymentRepository) ResetForRetry(ctx context.Context, tx pgx.Tx, id uuid.UUID, method model.PaymentMethod) error {
	query := `
		UPDATE payments
		SET status = $1, method = $2, updated_at = NOW()
		WHERE id = $3
	`
	return r.exec(ctx, tx, "reset payment", id, query, model.PaymentPending, method, id)
}

// SetGatewayID records the remote transaction id.
func (r *paymentRepository) SetGatewayID(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayID string) error {
	query := `UPDATE payments SET gateway_id = $1, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, tx, "set gateway id", id, query, gatewayID, id)
}

// UpdateStatus sets the payment status.
func (r *paymentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus) error {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, tx, "update payment status", id, query, status, id)
}

// GetByOrderID retrieves the order's payment without locking.
func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return payment, nil
}

func (r *paymentRepository) exec(ctx context.Context, tx pgx.Tx, op string, id uuid.UUID, query string, args ...any) error {
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msgf("failed to %s", op)
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}
	return nil
}

// scanPayment scans one payment row. Returns nil, nil when there is no row.
func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.GatewayID,
		&p.Amount,
		&p.Status,
		&p.Method,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
