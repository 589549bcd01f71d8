package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

var _ repository.LoyaltySettingsRepository = (*loyaltySettingsRepo)(nil)

type loyaltySettingsRepo struct {
	pool *pgxpool.Pool
}

func NewLoyaltySettingsRepo(pool *pgxpool.Pool) *loyaltySettingsRepo {
	return &loyaltySettingsRepo{pool: pool}
}

func (r *loyaltySettingsRepo) Find(ctx context.Context, tx repository.Tx, businessID string) (*model.LoyaltySettings, error) {
	const q = `
SELECT business_id, scans_required, reward, last_modified
  FROM loyalty_settings
 WHERE business_id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, businessID)
	if err != nil {
		return nil, err
	}
	var s model.LoyaltySettings
	if err := row.Scan(&s.BusinessID, &s.ScansRequired, &s.Reward, &s.LastModified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *loyaltySettingsRepo) Save(ctx context.Context, tx repository.Tx, s *model.LoyaltySettings) error {
	const q = `
INSERT INTO loyalty_settings (business_id, scans_required, reward, last_modified)
VALUES ($1,$2,$3,$4)
ON CONFLICT (business_id) DO UPDATE SET
  scans_required=$2, reward=$3, last_modified=$4;`
	_, err := execSQL(ctx, r.pool, tx, q, s.BusinessID, s.ScansRequired, s.Reward, s.LastModified)
	return err
}
