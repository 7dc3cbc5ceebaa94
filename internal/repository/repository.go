package repository

import (
	"context"

	"shopcore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Transactor starts database transactions shared by several repositories.
type Transactor interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// CustomerRepository defines data access for accounts and their customers.
type CustomerRepository interface {
	// EnsureGuestAccount returns the account registered under email, creating it
	// with the given username and first name when absent.
	EnsureGuestAccount(ctx context.Context, tx pgx.Tx, email, username, firstName string) (*model.Account, bool, error)

	// EnsureCustomer returns the customer owning accountID, creating it when absent.
	// Returns model.ErrAccountNotFound when the account does not exist.
	EnsureCustomer(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*model.Customer, error)

	// EmailForOrder returns the account email of the customer who placed orderID.
	EmailForOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (string, error)
}

// ProductRepository defines read access to the catalogue.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CartRepository defines data access for carts.
type CartRepository interface {
	// AddItem creates the cart when needed and accumulates quantity for the product.
	AddItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string, quantity int) (*model.CartItem, error)

	// GetByID retrieves a cart with its items and live product prices. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Cart, error)

	// SetItemQuantity replaces the quantity of an existing line. Reports false when absent.
	SetItemQuantity(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string, quantity int) (bool, error)

	// RemoveItem deletes a line. Reports false when absent.
	RemoveItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string) (bool, error)

		// LockItems locks the cart row and returns its items with live product prices.
	// A nonexistent cart yields no items.
	LockItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error)

	// Delete removes the cart and its items.
	Delete(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository defines data access for orders. Placed order items can only
// be inserted and read.
type OrderRepository interface {
	// CreateOrder inserts a new order header within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems bulk-inserts order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// SumItems computes the order total from the items visible to tx.
	SumItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (decimal.Decimal, error)

	// UpdatePaymentStatus sets the payment status mirrored on the order header.
	UpdatePaymentStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderPaymentStatus) error

	// GetByID retrieves an order by its ID along with its items. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	// InsertIfAbsent inserts payment unless the order already has one.
	// Reports whether the row was inserted.
	InsertIfAbsent(ctx context.Context, tx pgx.Tx, payment *model.Payment) (bool, error)

	// GetByOrderIDForUpdate locks and returns the order's payment. Returns nil when absent.
	GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error)

	// GetByGatewayIDForUpdate locks and returns the payment for a gateway transaction. Returns nil when absent.
	GetByGatewayIDForUpdate(ctx context.Context, tx pgx.Tx, gatewayID string) (*model.Payment, error)

	// ResetForRetry sets the payment back to pending with the given method.
	ResetForRetry(ctx context.Context, tx pgx.Tx, id uuid.UUID, method model.PaymentMethod) error

	// SetGatewayID records the remote transaction id.
	SetGatewayID(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayID string) error

	// UpdateStatus sets the payment status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus) error

	// GetByOrderID retrieves the order's payment. Returns nil when absent.
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Payment, error)
}

// WebhookEventRepository records gateway events that were applied.
type WebhookEventRepository interface {
	// Record stores the event id. Reports false when it was already recorded.
	Record(ctx context.Context, tx pgx.Tx, event model.SettlementEvent) (bool, error)
}
