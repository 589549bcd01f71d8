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

var _ repository.RewardRepository = (*rewardRepo)(nil)

type rewardRepo struct {
	pool *pgxpool.Pool
}

func NewRewardRepo(pool *pgxpool.Pool) *rewardRepo {
	return &rewardRepo{pool: pool}
}

func (r *rewardRepo) Insert(ctx context.Context, tx repository.Tx, rw *model.Reward) (bool, error) {
	// The (user, business, total_scans) key makes re-issuance after a partial
	// failure a no-op.
	const q = `
INSERT INTO rewards (id, user_id, business_id, total_scans, created_at, expires_at, redeemed)
VALUES ($1, $2, $3, $4, $5, $6, FALSE)
ON CONFLICT (user_id, business_id, total_scans) DO NOTHING;`
	tag, err := execSQL(ctx, r.pool, tx, q,
		rw.ID, rw.UserID, rw.BusinessID, rw.TotalScans, rw.CreatedAt, rw.ExpiresAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *rewardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Reward, error) {
	const q = `
SELECT id, user_id, business_id, total_scans, created_at, expires_at, redeemed, redeemed_at
  FROM rewards
 WHERE id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanReward(row)
}

func (r *rewardRepo) ListActive(ctx context.Context, tx repository.Tx, userID string, now time.Time) ([]*model.Reward, error) {
	const q = `
SELECT id, user_id, business_id, total_scans, created_at, expires_at, redeemed, redeemed_at
  FROM rewards
 WHERE user_id=$1 AND redeemed=FALSE AND expires_at > $2
 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Reward
	for rows.Next() {
		var rw model.Reward
		if err := rows.Scan(&rw.ID, &rw.UserID, &rw.BusinessID, &rw.TotalScans,
			&rw.CreatedAt, &rw.ExpiresAt, &rw.Redeemed, &rw.RedeemedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &rw)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *rewardRepo) SetRedeemed(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	const q = `UPDATE rewards SET redeemed=TRUE, redeemed_at=$2 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rewardRepo) CountExpiredUnredeemed(ctx context.Context, tx repository.Tx, from, to time.Time) (int, error) {
	const q = `
SELECT COUNT(*) FROM rewards
 WHERE redeemed=FALSE AND expires_at > $1 AND expires_at <= $2;`
	row, err := queryRow(ctx, r.pool, tx, q, from, to)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanReward(row pgx.Row) (*model.Reward, error) {
	var rw model.Reward
	if err := row.Scan(&rw.ID, &rw.UserID, &rw.BusinessID, &rw.TotalScans,
		&rw.CreatedAt, &rw.ExpiresAt, &rw.Redeemed, &rw.RedeemedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rw, nil
}
