package repository

import (
	"context"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	FindByStripeCustomerID(ctx context.Context, tx Tx, customerID string) (*model.User, error)
	UpdateBilling(ctx context.Context, tx Tx, userID, stripeCustomerID, stripeSubscriptionID string) error
}
