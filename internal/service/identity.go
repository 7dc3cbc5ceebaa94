package service

import (
	"context"
	"strings"

	"shopcore/internal/model"
	"shopcore/internal/repository"
	"shopcore/internal/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// identityResolver implements IdentityResolver.
type identityResolver struct {
	customers repository.CustomerRepository
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewIdentityResolver creates an identity resolver.
func NewIdentityResolver(customers repository.CustomerRepository, validator *validation.Validator, logger zerolog.Logger) IdentityResolver {
	return &identityResolver{
		customers: customers,
		validator: validator,
		logger:    logger.With().Str("service", "identity").Logger(),
	}
}

func (r *identityResolver) Resolve(ctx context.Context, tx pgx.Tx, identity model.Identity) (*model.Customer, error) {
	if identity.Authenticated() {
		return r.customers.EnsureCustomer(ctx, tx, *identity.AccountID)
	}

	if identity.Guest == nil {
		return nil, model.NewValidationError("guest contact details are required", nil)
	}
	guest := *identity.Guest
	guest.Email = strings.ToLower(strings.TrimSpace(guest.Email))
	if err := r.validator.Guest(&guest); err != nil {
		return nil, err
	}

	account, created, err := r.customers.EnsureGuestAccount(ctx, tx, guest.Email, guestUsername(guest.Name), guest.Name)
	if err != nil {
		return nil, err
	}
	if created {
		r.logger.Info().Str("account_id", account.ID.String()).Msg("guest account created")
	}

	// Customers are created here rather than by a hook on account creation.
	return r.customers.EnsureCustomer(ctx, tx, account.ID)
}

// guestUsername derives a handle from the name plus a short random suffix.
func guestUsername(name string) string {
	base := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	if base == "" {
		base = "guest"
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
