package repository

import (
	"context"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
)

type ScanRecordRepository interface {
	// Find returns the record for a (user, business) pair, or ErrNotFound on
	// first visit. The scan transaction always calls this with its tx handle so
	// the read participates in conflict detection.
	Find(ctx context.Context, tx Tx, userID, businessID string) (*model.ScanRecord, error)
	Upsert(ctx context.Context, tx Tx, rec *model.ScanRecord) error
}

// StatsRepository holds the aggregates written alongside each accepted scan
// plus the read side for business dashboards.
type StatsRepository interface {
	IncrementScanStats(ctx context.Context, tx Tx, businessID string, firstVisit bool, at time.Time) error
	IncrementDailyBucket(ctx context.Context, tx Tx, businessID string, day time.Time, firstVisit bool) error
	IncrementRewardsIssued(ctx context.Context, tx Tx, businessID string, at time.Time) error

	FindScanStats(ctx context.Context, tx Tx, businessID string) (*model.ScanStats, error)
	FindRewardStats(ctx context.Context, tx Tx, businessID string) (*model.RewardStats, error)
	DailySeries(ctx context.Context, tx Tx, businessID string, from, to time.Time) ([]*model.DailyStat, error)
}
