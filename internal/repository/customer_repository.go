package repository

import (
	"context"
	"errors"
	"fmt"

	"shopcore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

// EnsureGuestAccount resolves the account keyed by email, inserting it when absent.
// The boolean reports whether a new account was created.
func (r *customerRepository) EnsureGuestAccount(ctx context.Context, tx pgx.Tx, email, username, firstName string) (*model.Account, bool, error) {
	insert := `
		INSERT INTO accounts (id, email, username, first_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, username, first_name, created_at
	`

	var account model.Account
	err := tx.QueryRow(ctx, insert, uuid.New(), email, username, firstName).Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.FirstName,
		&account.CreatedAt,
	)
	if err == nil {
		r.logger.Debug().Str("account_id", account.ID.String()).Msg("guest account created")
		return &account, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if pgErrorCode(err) == pgUniqueViolation {
			r.logger.Warn().Str("username", username).Msg("guest username collision")
			return nil, false, model.NewConflictError(model.ErrCodeDuplicate, "generated guest username already taken, retry checkout")
		}
		r.logger.Error().Err(err).Msg("failed to insert guest account")
		return nil, false, fmt.Errorf("failed to insert guest account: %w", err)
	}

	// The email is already registered; reuse that account.
	query := `
		SELECT id, email, username, first_name, created_at
		FROM accounts
		WHERE email = $1
	`
	err = tx.QueryRow(ctx, query, email).Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.FirstName,
		&account.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query account by email")
		return nil, false, fmt.Errorf("failed to query account by email: %w", err)
	}

	return &account, false, nil
}

// EnsureCustomer returns the customer owning accountID, creating it when absent.
func (r *customerRepository) EnsureCustomer(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*model.Customer, error) {
	insert := `
		INSERT INTO customers (id, account_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO NOTHING
	`

	if _, err := tx.Exec(ctx, insert, uuid.New(), accountID); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			r.logger.Debug().Str("account_id", accountID.String()).Msg("account not found")
			return nil, model.ErrAccountNotFound
		}
		r.logger.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to insert customer")
		return nil, fmt.Errorf("failed to insert customer: %w", err)
	}

	query := `
		SELECT c.id, c.account_id, c.phone, c.membership, c.created_at, a.email
		FROM customers c
		JOIN accounts a ON a.id = c.account_id
		WHERE c.account_id = $1
	`

	var customer model.Customer
	err := tx.QueryRow(ctx, query, accountID).Scan(
		&customer.ID,
		&customer.AccountID,
		&customer.Phone,
		&customer.Membership,
		&customer.CreatedAt,
		&customer.Email,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return &customer, nil
}

// EmailForOrder returns the notification address for an order's customer.
func (r *customerRepository) EmailForOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (string, error) {
	query := `
		SELECT a.email
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		JOIN accounts a ON a.id = c.account_id
		WHERE o.id = $1
	`

	var email string
	if err := tx.QueryRow(ctx, query, orderID).Scan(&email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", model.ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order email")
		return "", fmt.Errorf("failed to query order email: %w", err)
	}

	return email, nil
}
