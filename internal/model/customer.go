package model

import (
	"time"

	"github.com/google/uuid"
)

// Membership tiers.
const (
	MembershipBronze = "B"
	MembershipSilver = "S"
	MembershipGold   = "G"
)

// Account is a registered or guest-created user account.
type Account struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	FirstName string    `json:"firstName" db:"first_name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Customer identifies a buyer. There is at most one Customer per account.
type Customer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	AccountID  uuid.UUID `json:"accountId" db:"account_id"`
	Phone      string    `json:"phone,omitempty" db:"phone"`
	Membership string    `json:"membership,omitempty" db:"membership"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Email is joined from the owning account; used as the notification recipient.
	Email string `json:"-" db:"-"`
}

// GuestContact is the contact bundle required for an unauthenticated checkout.
type GuestContact struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	Country    string `json:"country" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
}

// Identity is the tagged input of the identity resolver: exactly one of
// AccountID (authenticated) or Guest is meaningful.
type Identity struct {
	AccountID *uuid.UUID
	Guest     *GuestContact
}

// Authenticated reports whether the identity carries an authenticated principal.
func (i Identity) Authenticated() bool {
	return i.AccountID != nil
}
