package model

import (
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain"
)

// User is an authenticated account. A user may also own a business, in which
// case the business document shares the user's id.
type User struct {
	ID          string // UUID
	Email       string
	DisplayName string
	CreatedAt   time.Time

	// Billing identifiers, set once the user buys a business plan.
	StripeCustomerID     string
	StripeSubscriptionID string
}

func NewUser(id, email, displayName string) (*User, error) {
	if id == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}, nil
}
