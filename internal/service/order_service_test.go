package service

import (
	"context"
	"errors"
	"testing"

	"shopcore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	tests := []struct {
		name        string
		order       *model.Order
		orderErr    error
		payment     *model.Payment
		expectError error
	}{
		{
			name:  "Order with payment",
			order: orderWithTotal(orderID, "12.50", 2),
			payment: &model.Payment{
				ID:      uuid.New(),
				OrderID: orderID,
				Amount:  decimal.RequireFromString("25.00"),
				Status:  model.PaymentPending,
				Method:  model.PaymentMethodCOD,
			},
		},
		{
			name:        "Order not found",
			order:       nil,
			expectError: model.ErrOrderNotFound,
		},
		{
			name:        "Repository error",
			orderErr:    errors.New("database error"),
			expectError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(MockOrderRepository)
			payments := new(MockPaymentRepository)

			if tt.order != nil {
				orders.On("GetByID", ctx, orderID).Return(tt.order, tt.orderErr)
				payments.On("GetByOrderID", ctx, orderID).Return(tt.payment, nil)
			} else {
				orders.On("GetByID", ctx, orderID).Return(nil, tt.orderErr)
			}

			resp, err := NewOrderService(orders, payments, zerolog.Nop()).GetByID(ctx, orderID)

			if tt.expectError != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError.Error())
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "25.00", resp.Total.StringFixed(2))
			require.NotNil(t, resp.Payment)
			assert.Equal(t, model.PaymentPending, resp.Payment.Status)
			orders.AssertExpectations(t)
			payments.AssertExpectations(t)
		})
	}
}
