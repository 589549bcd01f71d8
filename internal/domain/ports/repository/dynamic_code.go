package repository

import (
	"context"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
)

type DynamicCodeRepository interface {
	Save(ctx context.Context, tx Tx, c *model.DynamicCode) error
	Find(ctx context.Context, tx Tx, businessID, transactionID string) (*model.DynamicCode, error)
	// MarkUsed flips the single-use flag. ErrCodeUsed when already consumed.
	MarkUsed(ctx context.Context, tx Tx, businessID, transactionID string) error
	// DeleteExpired removes codes whose validity window passed before cutoff
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
	// DeactivateByBusiness removes all pending codes of a business, used when
	// its subscription is cancelled.
	DeactivateByBusiness(ctx context.Context, tx Tx, businessID string) error
}
