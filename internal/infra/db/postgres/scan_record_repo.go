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

var _ repository.ScanRecordRepository = (*scanRecordRepo)(nil)

type scanRecordRepo struct {
	pool *pgxpool.Pool
}

func NewScanRecordRepo(pool *pgxpool.Pool) *scanRecordRepo {
	return &scanRecordRepo{pool: pool}
}

func (r *scanRecordRepo) Find(ctx context.Context, tx repository.Tx, userID, businessID string) (*model.ScanRecord, error) {
	const q = `
SELECT user_id, business_id, total_scans, last_scan_at
  FROM scan_records
 WHERE user_id=$1 AND business_id=$2;`
	row, err := queryRow(ctx, r.pool, tx, q, userID, businessID)
	if err != nil {
		return nil, err
	}
	var rec model.ScanRecord
	if err := row.Scan(&rec.UserID, &rec.BusinessID, &rec.TotalScans, &rec.LastScanAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *scanRecordRepo) Upsert(ctx context.Context, tx repository.Tx, rec *model.ScanRecord) error {
	const q = `
INSERT INTO scan_records (user_id, business_id, total_scans, last_scan_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id, business_id) DO UPDATE SET
  total_scans=$3, last_scan_at=$4;`
	_, err := execSQL(ctx, r.pool, tx, q, rec.UserID, rec.BusinessID, rec.TotalScans, rec.LastScanAt)
	return err
}
