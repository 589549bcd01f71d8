package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

var _ repository.StatsRepository = (*statsRepo)(nil)

type statsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *statsRepo {
	return &statsRepo{pool: pool}
}

func (r *statsRepo) IncrementScanStats(ctx context.Context, tx repository.Tx, businessID string, firstVisit bool, at time.Time) error {
	const q = `
INSERT INTO business_scan_stats (business_id, total_scans, unique_customers, last_scan_at)
VALUES ($1, 1, $2, $3)
ON CONFLICT (business_id) DO UPDATE SET
  total_scans      = business_scan_stats.total_scans + 1,
  unique_customers = business_scan_stats.unique_customers + $2,
  last_scan_at     = $3;`
	uniq := 0
	if firstVisit {
		uniq = 1
	}
	_, err := execSQL(ctx, r.pool, tx, q, businessID, uniq, at)
	return err
}

func (r *statsRepo) IncrementDailyBucket(ctx context.Context, tx repository.Tx, businessID string, day time.Time, firstVisit bool) error {
	const q = `
INSERT INTO business_daily_stats (business_id, day, scans, unique_customers)
VALUES ($1, $2, 1, $3)
ON CONFLICT (business_id, day) DO UPDATE SET
  scans            = business_daily_stats.scans + 1,
  unique_customers = business_daily_stats.unique_customers + $3;`
	uniq := 0
	if firstVisit {
		uniq = 1
	}
	_, err := execSQL(ctx, r.pool, tx, q, businessID, day, uniq)
	return err
}

func (r *statsRepo) IncrementRewardsIssued(ctx context.Context, tx repository.Tx, businessID string, at time.Time) error {
	const q = `
INSERT INTO business_reward_stats (business_id, total_rewards_issued, last_reward_issued_at)
VALUES ($1, 1, $2)
ON CONFLICT (business_id) DO UPDATE SET
  total_rewards_issued  = business_reward_stats.total_rewards_issued + 1,
  last_reward_issued_at = $2;`
	_, err := execSQL(ctx, r.pool, tx, q, businessID, at)
	return err
}

func (r *statsRepo) FindScanStats(ctx context.Context, tx repository.Tx, businessID string) (*model.ScanStats, error) {
	const q = `
SELECT business_id, total_scans, unique_customers, last_scan_at
  FROM business_scan_stats
 WHERE business_id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, businessID)
	if err != nil {
		return nil, err
	}
	var s model.ScanStats
	if err := row.Scan(&s.BusinessID, &s.TotalScans, &s.UniqueCustomers, &s.LastScanAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *statsRepo) FindRewardStats(ctx context.Context, tx repository.Tx, businessID string) (*model.RewardStats, error) {
	const q = `
SELECT business_id, total_rewards_issued, last_reward_issued_at
  FROM business_reward_stats
 WHERE business_id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, businessID)
	if err != nil {
		return nil, err
	}
	var s model.RewardStats
	if err := row.Scan(&s.BusinessID, &s.TotalRewardsIssued, &s.LastRewardIssuedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *statsRepo) DailySeries(ctx context.Context, tx repository.Tx, businessID string, from, to time.Time) ([]*model.DailyStat, error) {
	const q = `
SELECT business_id, day, scans, unique_customers
  FROM business_daily_stats
 WHERE business_id=$1 AND day >= $2 AND day <= $3
 ORDER BY day ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, businessID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.DailyStat
	for rows.Next() {
		var d model.DailyStat
		if err := rows.Scan(&d.BusinessID, &d.Day, &d.Scans, &d.UniqueCustomers); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
