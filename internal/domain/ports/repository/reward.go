package repository

import (
	"context"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
)

type RewardRepository interface {
	// Insert stores a reward keyed by (user, business, totalScans). It reports
	// created=false without error when that milestone reward already exists,
	// which makes issuance retries idempotent.
	Insert(ctx context.Context, tx Tx, r *model.Reward) (created bool, err error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Reward, error)
	// ListActive returns the user's unredeemed, unexpired rewards.
	ListActive(ctx context.Context, tx Tx, userID string, now time.Time) ([]*model.Reward, error)
	SetRedeemed(ctx context.Context, tx Tx, id string, at time.Time) error
	// CountExpiredUnredeemed counts rewards that lapsed inside the window.
	CountExpiredUnredeemed(ctx context.Context, tx Tx, from, to time.Time) (int, error)
}
