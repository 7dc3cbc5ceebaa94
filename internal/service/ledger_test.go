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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPaymentLedger_UpsertForOrder(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	gatewayID := "pi_123"

	tests := []struct {
		name          string
		setup         func(payments *MockPaymentRepository, orders *MockOrderRepository, tx *MockTx)
		method        model.PaymentMethod
		expectError   error
		expectAmount  string
		expectGateway *string
	}{
		{
			name:   "Creates pending payment with amount summed from items",
			method: model.PaymentMethodCOD,
			setup: func(payments *MockPaymentRepository, orders *MockOrderRepository, tx *MockTx) {
				payments.On("GetByOrderIDForUpdate", ctx, tx, orderID).Return(nil, nil).Once()
				orders.On("SumItems", ctx, tx, orderID).Return(decimal.RequireFromString("25.00"), nil)
				payments.On("InsertIfAbsent", ctx, tx, mock.MatchedBy(func(p *model.Payment) bool {
					return p.OrderID == orderID && p.Status == model.PaymentPending && p.Method == model.PaymentMethodCOD
				})).Return(true, nil)
				orders.On("UpdatePaymentStatus", ctx, tx, orderID, model.OrderPaymentPending).Return(nil)
			},
			expectAmount: "25.00",
		},
		{
			name:   "Converges on payment inserted by a concurrent request",
			method: model.PaymentMethodGateway,
			setup: func(payments *MockPaymentRepository, orders *MockOrderRepository, tx *MockTx) {
				winner := &model.Payment{ID: uuid.New(), OrderID: orderID, Amount: decimal.RequireFromString("25.00"), Status: model.PaymentPending, Method: model.PaymentMethodCOD}
				payments.On("GetByOrderIDForUpdate", ctx, tx, orderID).Return(nil, nil).Once()
				orders.On("SumItems", ctx, tx, orderID).Return(decimal.RequireFromString("25.00"), nil)
				payments.On("InsertIfAbsent", ctx, tx, mock.AnythingOfType("*model.Payment")).Return(false, nil)
				payments.On("GetByOrderIDForUpdate", ctx, tx, orderID).Return(winner, nil).Once()
				payments.On("ResetForRetry", ctx, tx, winner.ID, model.PaymentMethodGateway).Return(nil)
				orders.On("UpdatePaymentStatus", ctx, tx, orderID, model.OrderPaymentPending).Return(nil)
			},
			expectAmount: "25.00",
		},
		{
			name:   "Resets failed payment to pending and keeps the gateway id",
			method: model.PaymentMethodGateway,
			setup: func(payments *MockPaymentRepository, orders *MockOrderRepository, tx *MockTx) {
				existing := &model.Payment{ID: uuid.New(), OrderID: orderID, GatewayID: &gatewayID, Amount: decimal.RequireFromString("25.00"), Status: model.PaymentFailed, Method: model.PaymentMethodGateway}
				payments.On("GetByOrderIDForUpdate", ctx, tx, orderID).Return(existing, nil)
				payments.On("ResetForRetry", ctx, tx, existing.ID, model.PaymentMethodGateway).Return(nil)
				orders.On("UpdatePaymentStatus", ctx, tx, orderID, model.OrderPaymentPending).Return(nil)
			},
			expectAmount:  "25.00",
			expectGateway: &gatewayID,
		},
		{
			name:   "Rejects retry of completed payment",
			method: model.PaymentMethodGateway,
			setup: func(payments *MockPaymentRepository, orders *MockOrderRepository, tx *MockTx) {
				existing := &model.Payment{ID: uuid.New(), OrderID: orderID, Amount: decimal.RequireFromString("25.00"), Status: model.PaymentCompleted, Method: model.PaymentMethodGateway}
				payments.On("GetByOrderIDForUpdate", ctx, tx, orderID).Return(existing, nil)
			},
			expectError: model.ErrPaymentCompleted,
		},
		{
			name:   "Propagates sum failure",
			method: model.PaymentMethodCOD,
			setup: func(payments *MockPaymentRepository, orders *MockOrderRepository, tx *MockTx) {
				payments.On("GetByOrderIDForUpdate", ctx, tx, orderID).Return(nil, nil)
				orders.On("SumItems", ctx, tx, orderID).Return(decimal.Zero, errors.New("database error"))
			},
			expectError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := new(MockPaymentRepository)
			orders := new(MockOrderRepository)
			tx := new(MockTx)
			tt.setup(payments, orders, tx)

			ledger := NewPaymentLedger(payments, orders, zerolog.Nop())
			payment, err := ledger.UpsertForOrder(ctx, tx, orderID, tt.method)

			if tt.expectError != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError.Error())
				assert.Nil(t, payment)
				payments.AssertNotCalled(t, "ResetForRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				require.NotNil(t, payment)
				assert.Equal(t, model.PaymentPending, payment.Status)
				assert.Equal(t, tt.method, payment.Method)
				assert.Equal(t, tt.expectAmount, payment.Amount.StringFixed(2))
				assert.Equal(t, tt.expectGateway, payment.GatewayID)
			}

			payments.AssertExpectations(t)
			orders.AssertExpectations(t)
		})
	}
}

func TestPaymentLedger_UpsertForOrder_CompletedIsConflict(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	payments := new(MockPaymentRepository)
	orders := new(MockOrderRepository)
	tx := new(MockTx)

	payments.On("GetByOrderIDForUpdate", ctx, tx, orderID).
		Return(&model.Payment{ID: uuid.New(), OrderID: orderID, Status: model.PaymentCompleted}, nil)

	_, err := NewPaymentLedger(payments, orders, zerolog.Nop()).UpsertForOrder(ctx, tx, orderID, model.PaymentMethodCOD)

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindConflict))
	orders.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
