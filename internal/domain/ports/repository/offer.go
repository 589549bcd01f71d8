package repository

import (
	"context"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
)

type OfferRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Offer) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Offer, error)
	ListActive(ctx context.Context, tx Tx, businessID string, now time.Time) ([]*model.Offer, error)
	// CountSince counts offers a business sent at or after the given time;
	// used to enforce the weekly quota.
	CountSince(ctx context.Context, tx Tx, businessID string, since time.Time) (int, error)
	IncrementViews(ctx context.Context, tx Tx, id string) error
	IncrementClaims(ctx context.Context, tx Tx, id string) error
}
