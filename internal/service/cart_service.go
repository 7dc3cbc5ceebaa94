package service

import (
	"context"

	"shopcore/internal/model"
	"shopcore/internal/repository"
	"shopcore/internal/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	txr       repository.Transactor
	carts     repository.CartRepository
	products  repository.ProductRepository
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	txr repository.Transactor,
	carts repository.CartRepository,
	products repository.ProductRepository,
	validator *validation.Validator,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		txr:       txr,
		carts:     carts,
		products:  products,
		validator: validator,
		logger:    logger.With().Str("service", "cart").Logger(),
	}
}

// AddItem validates the product and accumulates its quantity in the cart.
func (s *cartService) AddItem(ctx context.Context, cartID *uuid.UUID, req *model.AddCartItemRequest) (*model.CartResponse, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	id := uuid.New()
	if cartID != nil {
		id = *cartID
	}

	err = inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		_, err := s.carts.AddItem(ctx, tx, id, product.ID, req.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("cart_id", id.String()).
		Str("product_id", product.ID).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return s.GetCart(ctx, id)
}

// UpdateItem sets the quantity of an existing cart line.
func (s *cartService) UpdateItem(ctx context.Context, cartID uuid.UUID, productID string, req *model.UpdateCartItemRequest) (*model.CartResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		updated, err := s.carts.SetItemQuantity(ctx, tx, cartID, productID, req.Quantity)
		if err != nil {
			return err
		}
		if !updated {
			return model.ErrCartItemNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("cart_id", cartID.String()).
		Str("product_id", productID).
		Int("quantity", req.Quantity).
		Msg("cart item updated")

	return s.GetCart(ctx, cartID)
}

// RemoveItem deletes a cart line. The cart itself stays, possibly empty.
func (s *cartService) RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error {
	return inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		removed, err := s.carts.RemoveItem(ctx, tx, cartID, productID)
		if err != nil {
			return err
		}
		if !removed {
			return model.ErrCartItemNotFound
		}
		return nil
	})
}

// GetCart returns the cart with live prices and its current total.
func (s *cartService) GetCart(ctx context.Context, cartID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}

	items := cart.Items
	if items == nil {
		items = []model.CartItem{}
	}
	return &model.CartResponse{
		ID:         cart.ID,
		Items:      items,
		TotalPrice: model.NewMoney(cart.Total()),
	}, nil
}
