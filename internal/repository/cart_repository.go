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

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// AddItem creates the cart on first add and accumulates quantity on repeated adds.
func (r *cartRepository) AddItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string, quantity int) (*model.CartItem, error) {
	if _, err := tx.Exec(ctx, `INSERT INTO carts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, quantity
	`

	var item model.CartItem
	err := tx.QueryRow(ctx, query, uuid.New(), cartID, productID, quantity).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, model.ErrProductNotFound
		}
		if isOutOfRange(err) {
			return nil, model.ErrQuantityOutOfRange
		}
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return &item, nil
}

// SetItemQuantity replaces the quantity of the cart's line for productID.
// Reports false when the cart has no such line.
func (r *cartRepository) SetItemQuantity(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string, quantity int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3`,
		quantity, cartID, productID)
	if err != nil {
		if isOutOfRange(err) {
			return false, model.ErrQuantityOutOfRange
		}
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to update cart item")
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// RemoveItem deletes the cart's line for productID. Reports false when the
// cart has no such line.
func (r *cartRepository) RemoveItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to remove cart item")
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetByID retrieves a cart with its items and live product prices.
func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Cart, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`, id).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	if !exists {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, cartItemsQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}

	items, err := scanCartItems(rows)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to scan cart items")
		return nil, err
	}

	return &model.Cart{ID: id, Items: items}, nil
}

// LockItems locks the cart row so concurrent checkouts of the same cart are
// serialised, then returns its items with the prices current at this instant.
func (r *cartRepository) LockItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error) {
	var locked uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("cart_id", cartID.String()).Msg("cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to lock cart")
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	rows, err := tx.Query(ctx, cartItemsQuery, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}

	return scanCartItems(rows)
}

// Delete removes the cart; its items cascade.
func (r *cartRepository) Delete(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	r.logger.Debug().Str("cart_id", cartID.String()).Msg("cart deleted")

	return nil
}

const cartItemsQuery = `
	SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, p.title, p.unit_price, p.created_at
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	WHERE ci.cart_id = $1
	ORDER BY p.title, ci.id
`

func scanCartItems(rows pgx.Rows) ([]model.CartItem, error) {
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		product := &model.Product{}
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&product.Title,
			&product.UnitPrice,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		product.ID = item.ProductID
		item.Product = product
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}
