package service

import (
	"context"

	"shopcore/internal/model"
	"shopcore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	logger   zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, payments repository.PaymentRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orders:   orders,
		payments: payments,
		logger:   logger.With().Str("service", "order").Logger(),
	}
}

// GetByID retrieves an order with its total and payment summary.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	payment, err := s.payments.GetByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}

	return model.NewOrderResponse(order, payment), nil
}
