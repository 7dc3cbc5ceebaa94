package service

import (
	"context"
	"regexp"
	"testing"

	"shopcore/internal/model"
	"shopcore/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validGuest() *model.GuestContact {
	return &model.GuestContact{
		Name:       "Ada Lovelace",
		Email:      "Ada@Example.com",
		Address:    "12 St James's Square",
		City:       "London",
		Country:    "UK",
		PostalCode: "SW1Y 4JH",
	}
}

func TestIdentityResolver_Authenticated(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	customer := &model.Customer{ID: uuid.New(), AccountID: accountID, Email: "user@example.com"}

	customers := new(MockCustomerRepository)
	tx := new(MockTx)
	customers.On("EnsureCustomer", ctx, tx, accountID).Return(customer, nil)

	resolver := NewIdentityResolver(customers, validation.New(), zerolog.Nop())
	got, err := resolver.Resolve(ctx, tx, model.Identity{AccountID: &accountID, Guest: validGuest()})

	require.NoError(t, err)
	assert.Equal(t, customer, got)
	customers.AssertNotCalled(t, "EnsureGuestAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	customers.AssertExpectations(t)
}

func TestIdentityResolver_Guest(t *testing.T) {
	ctx := context.Background()
	account := &model.Account{ID: uuid.New(), Email: "ada@example.com"}
	customer := &model.Customer{ID: uuid.New(), AccountID: account.ID, Email: account.Email}

	customers := new(MockCustomerRepository)
	tx := new(MockTx)
	usernamePattern := regexp.MustCompile(`^ada_lovelace_[0-9a-f]{6}$`)
	customers.On("EnsureGuestAccount", ctx, tx, "ada@example.com",
		mock.MatchedBy(func(u string) bool { return usernamePattern.MatchString(u) }),
		"Ada Lovelace",
	).Return(account, true, nil)
	customers.On("EnsureCustomer", ctx, tx, account.ID).Return(customer, nil)

	resolver := NewIdentityResolver(customers, validation.New(), zerolog.Nop())
	got, err := resolver.Resolve(ctx, tx, model.Identity{Guest: validGuest()})

	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
	customers.AssertExpectations(t)
}

func TestIdentityResolver_GuestValidation(t *testing.T) {
	tests := []struct {
		name        string
		guest       *model.GuestContact
		expectField string
	}{
		{
			name:  "Missing contact bundle",
			guest: nil,
		},
		{
			name: "Missing postal code",
			guest: func() *model.GuestContact {
				g := validGuest()
				g.PostalCode = ""
				return g
			}(),
			expectField: "postal_code",
		},
		{
			name: "Invalid email",
			guest: func() *model.GuestContact {
				g := validGuest()
				g.Email = "not-an-email"
				return g
			}(),
			expectField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customers := new(MockCustomerRepository)
			resolver := NewIdentityResolver(customers, validation.New(), zerolog.Nop())

			_, err := resolver.Resolve(context.Background(), new(MockTx), model.Identity{Guest: tt.guest})

			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindValidation))
			if tt.expectField != "" {
				var derr *model.DomainError
				require.ErrorAs(t, err, &derr)
				assert.Contains(t, derr.Fields, tt.expectField)
			}
			customers.AssertNotCalled(t, "EnsureGuestAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			customers.AssertNotCalled(t, "EnsureCustomer", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGuestUsername(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{name: "Ada Lovelace", prefix: "ada_lovelace_"},
		{name: "  Grace   Hopper ", prefix: "grace_hopper_"},
		{name: "", prefix: "guest_"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got := guestUsername(tt.name)
			assert.Regexp(t, "^"+regexp.QuoteMeta(tt.prefix)+"[0-9a-f]{6}$", got)
		})
	}

	assert.NotEqual(t, guestUsername("Ada Lovelace"), guestUsername("Ada Lovelace"))
}
