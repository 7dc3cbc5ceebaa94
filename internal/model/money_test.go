package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_JSON(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"25.00", `"25.00"`},
		{"25", `"25.00"`},
		{"0.3", `"0.30"`},
		{"0", `"0.00"`},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			out, err := json.Marshal(NewMoney(decimal.RequireFromString(tt.amount)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}

	t.Run("Decodes back", func(t *testing.T) {
		var resp CartResponse
		require.NoError(t, json.Unmarshal([]byte(`{"totalPrice":"25.00"}`), &resp))
		assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("25")))
	})
}

func TestNewOrderResponse_RendersMoney(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{ProductID: "P001", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{ProductID: "P002", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
	}}
	payment := &Payment{Amount: decimal.RequireFromString("25.00"), Status: PaymentPending, Method: PaymentMethodCOD}

	out, err := json.Marshal(NewOrderResponse(order, payment))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(out, &body))
	assert.Equal(t, "25.00", body["total"])
	assert.Equal(t, "25.00", body["payment"].(map[string]any)["amount"])
}
