package service

import (
	"context"

	"shopcore/internal/model"
	"shopcore/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderSource is where the lines of a new order come from: a cart, or a
// single product and quantity.
type OrderSource struct {
	CartID    *uuid.UUID
	ProductID string
	Quantity  int
}

// Materializer turns an OrderSource into order items with prices captured now.
type Materializer struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewMaterializer creates a Materializer.
func NewMaterializer(carts repository.CartRepository, products repository.ProductRepository) *Materializer {
	return &Materializer{carts: carts, products: products}
}

// Materialize builds the items of orderID. For a cart source the cart is
// deleted inside tx, so it disappears exactly when the order commits. A
// missing or empty cart yields no items.
func (m *Materializer) Materialize(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, src OrderSource) ([]model.OrderItem, error) {
	if src.CartID != nil {
		cartItems, err := m.carts.LockItems(ctx, tx, *src.CartID)
		if err != nil {
			return nil, err
		}

		items := make([]model.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			items = append(items, model.OrderItem{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: ci.ProductID,
				UnitPrice: ci.Product.UnitPrice,
				Quantity:  ci.Quantity,
			})
		}

		if err := m.carts.Delete(ctx, tx, *src.CartID); err != nil {
			return nil, err
		}
		return items, nil
	}

	if src.ProductID == "" {
		return nil, model.ErrMissingOrderSource
	}

	product, err := m.products.GetByID(ctx, src.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	quantity := src.Quantity
	if quantity < 1 {
		quantity = 1
	}

	return []model.OrderItem{{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: product.ID,
		UnitPrice: product.UnitPrice,
		Quantity:  quantity,
	}}, nil
}
