package service

import (
	"context"

	"shopcore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdentityResolver maps a checkout identity to exactly one Customer.
type IdentityResolver interface {
	// Resolve returns the customer for identity, creating the guest account
	// and the customer inside tx when they do not exist yet.
	Resolve(ctx context.Context, tx pgx.Tx, identity model.Identity) (*model.Customer, error)
}

// CartService defines operations on pre-order carts.
type CartService interface {
	// AddItem adds a product to the cart, creating the cart when cartID is nil.
	AddItem(ctx context.Context, cartID *uuid.UUID, req *model.AddCartItemRequest) (*model.CartResponse, error)

	// UpdateItem replaces the quantity of the cart's line for productID.
	UpdateItem(ctx context.Context, cartID uuid.UUID, productID string, req *model.UpdateCartItemRequest) (*model.CartResponse, error)

	// RemoveItem deletes the cart's line for productID.
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error

	// GetCart returns the cart with live prices.
	GetCart(ctx context.Context, cartID uuid.UUID) (*model.CartResponse, error)
}

// CheckoutService turns a cart or a single product into a placed order.
type CheckoutService interface {
	// Checkout places the order, attaches its pending payment and returns it.
	Checkout(ctx context.Context, identity model.Identity, req *model.CheckoutRequest) (*model.OrderResponse, error)
}

// PaymentService manages remote payment intents.
type PaymentService interface {
	// CreateIntent returns the client secret of the order's payment intent.
	CreateIntent(ctx context.Context, orderID uuid.UUID) (*model.PaymentIntentResponse, error)
}

// WebhookService applies gateway settlement events.
type WebhookService interface {
	// Handle verifies and applies one webhook delivery.
	Handle(ctx context.Context, payload []byte, signature string) (*model.WebhookResult, error)
}

// OrderService defines read operations on placed orders.
type OrderService interface {
	// GetByID retrieves an order with its items, total and payment summary.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// Notifier is the fire-and-forget notification boundary.
type Notifier interface {
	NotifyOrderCreated(order *model.Order, method model.PaymentMethod, recipient string)
	NotifyPaymentSettled(orderID uuid.UUID, status model.PaymentStatus, recipient string)
}
