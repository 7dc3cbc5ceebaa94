package validation

import (
	"testing"

	"shopcore/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGuest() model.GuestContact {
	return model.GuestContact{
		Name:       "Ana Lima",
		Email:      "ana@example.com",
		Address:    "1 Main St",
		City:       "Lisbon",
		Country:    "PT",
		PostalCode: "1000-001",
	}
}

func TestValidator_CheckoutRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name          string
		req           model.CheckoutRequest
		authenticated bool
		expectError   bool
		errorCode     string
		fields        []string
	}{
		{
			name:          "Authenticated cart checkout",
			req:           model.CheckoutRequest{CartID: "0b4e1b7c-8f5e-4c1c-9d67-4d3f5d0f9a11", PaymentMethod: model.PaymentMethodCOD},
			authenticated: true,
		},
		{
			name:          "Guest product checkout",
			req:           model.CheckoutRequest{ProductID: "sku-1", PaymentMethod: model.PaymentMethodGateway, GuestContact: validGuest()},
			authenticated: false,
		},
		{
			name:          "Neither cart nor product",
			req:           model.CheckoutRequest{PaymentMethod: model.PaymentMethodCOD},
			authenticated: true,
			expectError:   true,
			errorCode:     model.ErrCodeMissingSource,
		},
		{
			name:          "Both cart and product",
			req:           model.CheckoutRequest{CartID: "0b4e1b7c-8f5e-4c1c-9d67-4d3f5d0f9a11", ProductID: "sku-1", PaymentMethod: model.PaymentMethodCOD},
			authenticated: true,
			expectError:   true,
			errorCode:     model.ErrCodeValidation,
			fields:        []string{"cart_id", "product_id"},
		},
		{
			name:          "Unknown payment method",
			req:           model.CheckoutRequest{ProductID: "sku-1", PaymentMethod: "cheque"},
			authenticated: true,
			expectError:   true,
			errorCode:     model.ErrCodeValidation,
			fields:        []string{"payment_method"},
		},
		{
			name:          "Malformed cart id",
			req:           model.CheckoutRequest{CartID: "not-a-uuid", PaymentMethod: model.PaymentMethodCOD},
			authenticated: true,
			expectError:   true,
			errorCode:     model.ErrCodeValidation,
			fields:        []string{"cart_id"},
		},
		{
			name: "Guest without postal code",
			req: func() model.CheckoutRequest {
				g := validGuest()
				g.PostalCode = ""
				return model.CheckoutRequest{ProductID: "sku-1", PaymentMethod: model.PaymentMethodCOD, GuestContact: g}
			}(),
			authenticated: false,
			expectError:   true,
			errorCode:     model.ErrCodeValidation,
			fields:        []string{"postal_code"},
		},
		{
			name:          "Quantity at the line maximum",
			req:           model.CheckoutRequest{ProductID: "sku-1", Quantity: model.MaxItemQuantity, PaymentMethod: model.PaymentMethodCOD},
			authenticated: true,
		},
		{
			name:          "Quantity above the line maximum",
			req:           model.CheckoutRequest{ProductID: "sku-1", Quantity: model.MaxItemQuantity + 1, PaymentMethod: model.PaymentMethodCOD},
			authenticated: true,
			expectError:   true,
			errorCode:     model.ErrCodeValidation,
			fields:        []string{"quantity"},
		},
		{
			name:          "Quantity beyond the integer column",
			req:           model.CheckoutRequest{ProductID: "sku-1", Quantity: 3_000_000_000, PaymentMethod: model.PaymentMethodCOD},
			authenticated: true,
			expectError:   true,
			errorCode:     model.ErrCodeValidation,
			fields:        []string{"quantity"},
		},
		{
			name:          "Guest fields ignored when authenticated",
			req:           model.CheckoutRequest{ProductID: "sku-1", PaymentMethod: model.PaymentMethodCOD},
			authenticated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckoutRequest(&tt.req, tt.authenticated)

			if !tt.expectError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindValidation))
			de, ok := err.(*model.DomainError)
			require.True(t, ok)
			assert.Equal(t, tt.errorCode, de.Code)
			for _, f := range tt.fields {
				assert.Contains(t, de.Fields, f)
			}
		})
	}
}

func TestValidator_Guest(t *testing.T) {
	v := New()

	t.Run("Every missing field is named", func(t *testing.T) {
		err := v.Guest(&model.GuestContact{})

		require.Error(t, err)
		de, ok := err.(*model.DomainError)
		require.True(t, ok)
		assert.Len(t, de.Fields, 6)
		assert.Equal(t, "This field is required.", de.Fields["postal_code"])
	})

	t.Run("Invalid email", func(t *testing.T) {
		g := validGuest()
		g.Email = "not-an-email"

		err := v.Guest(&g)

		require.Error(t, err)
		de := err.(*model.DomainError)
		assert.Equal(t, "Enter a valid email address.", de.Fields["email"])
	})
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(&model.AddCartItemRequest{ProductID: "sku-1", Quantity: 2}))

	err := v.Struct(&model.AddCartItemRequest{ProductID: "sku-1", Quantity: 0})
	require.Error(t, err)
	de := err.(*model.DomainError)
	assert.Equal(t, "Must be at least 1.", de.Fields["quantity"])

	quantities := []struct {
		name string
		req  any
	}{
		{"Cart add above maximum", &model.AddCartItemRequest{ProductID: "sku-1", Quantity: model.MaxItemQuantity + 1}},
		{"Cart add beyond integer column", &model.AddCartItemRequest{ProductID: "sku-1", Quantity: 3_000_000_000}},
		{"Cart update above maximum", &model.UpdateCartItemRequest{Quantity: model.MaxItemQuantity + 1}},
	}
	for _, tt := range quantities {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			require.Error(t, err)
			de := err.(*model.DomainError)
			assert.Equal(t, "Must be at most 10000.", de.Fields["quantity"])
		})
	}

	assert.NoError(t, v.Struct(&model.UpdateCartItemRequest{Quantity: model.MaxItemQuantity}))

	err = v.Struct(&model.PaymentIntentRequest{})
	require.Error(t, err)
	assert.Contains(t, err.(*model.DomainError).Fields, "order_id")
}
