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

var _ repository.DynamicCodeRepository = (*dynamicCodeRepo)(nil)

type dynamicCodeRepo struct {
	pool *pgxpool.Pool
}

func NewDynamicCodeRepo(pool *pgxpool.Pool) *dynamicCodeRepo {
	return &dynamicCodeRepo{pool: pool}
}

func (r *dynamicCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.DynamicCode) error {
	const q = `
INSERT INTO dynamic_codes (business_id, transaction_id, amount_cents, metadata, created_at, expires_at, used)
VALUES ($1,$2,$3,$4,$5,$6,FALSE);`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.BusinessID, c.TransactionID, c.AmountCents, c.Metadata, c.CreatedAt, c.ExpiresAt)
	if isPgErr(err, uniqueViolation) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *dynamicCodeRepo) Find(ctx context.Context, tx repository.Tx, businessID, transactionID string) (*model.DynamicCode, error) {
	const q = `
SELECT business_id, transaction_id, amount_cents, metadata, created_at, expires_at, used
  FROM dynamic_codes
 WHERE business_id=$1 AND transaction_id=$2;`
	row, err := queryRow(ctx, r.pool, tx, q, businessID, transactionID)
	if err != nil {
		return nil, err
	}
	var c model.DynamicCode
	if err := row.Scan(&c.BusinessID, &c.TransactionID, &c.AmountCents, &c.Metadata,
		&c.CreatedAt, &c.ExpiresAt, &c.Used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *dynamicCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, businessID, transactionID string) error {
	// The used=FALSE guard makes consumption first-writer-wins.
	const q = `
UPDATE dynamic_codes SET used=TRUE
 WHERE business_id=$1 AND transaction_id=$2 AND used=FALSE;`
	tag, err := execSQL(ctx, r.pool, tx, q, businessID, transactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeUsed
	}
	return nil
}

func (r *dynamicCodeRepo) DeleteExpired(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	const q = `DELETE FROM dynamic_codes WHERE expires_at <= $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *dynamicCodeRepo) DeactivateByBusiness(ctx context.Context, tx repository.Tx, businessID string) error {
	const q = `DELETE FROM dynamic_codes WHERE business_id=$1 AND used=FALSE;`
	_, err := execSQL(ctx, r.pool, tx, q, businessID)
	return err
}
