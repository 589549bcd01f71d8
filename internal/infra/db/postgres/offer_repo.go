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

var _ repository.OfferRepository = (*offerRepo)(nil)

type offerRepo struct {
	pool *pgxpool.Pool
}

func NewOfferRepo(pool *pgxpool.Pool) *offerRepo {
	return &offerRepo{pool: pool}
}

const offerColumns = `id, business_id, title, description, terms, valid_from, valid_until, views, claims, sent_at`

func (r *offerRepo) Save(ctx context.Context, tx repository.Tx, o *model.Offer) error {
	const q = `
INSERT INTO offers (` + offerColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  title=$3, description=$4, terms=$5, valid_from=$6, valid_until=$7;`
	_, err := execSQL(ctx, r.pool, tx, q,
		o.ID, o.BusinessID, o.Title, o.Description, o.Terms,
		o.ValidFrom, o.ValidUntil, o.Views, o.Claims, o.SentAt)
	return err
}

func (r *offerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Offer, error) {
	const q = `SELECT ` + offerColumns + ` FROM offers WHERE id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var o model.Offer
	if err := row.Scan(&o.ID, &o.BusinessID, &o.Title, &o.Description, &o.Terms,
		&o.ValidFrom, &o.ValidUntil, &o.Views, &o.Claims, &o.SentAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *offerRepo) ListActive(ctx context.Context, tx repository.Tx, businessID string, now time.Time) ([]*model.Offer, error) {
	const q = `
SELECT ` + offerColumns + `
  FROM offers
 WHERE business_id=$1 AND valid_from <= $2 AND valid_until >= $2
 ORDER BY sent_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, businessID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Offer
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(&o.ID, &o.BusinessID, &o.Title, &o.Description, &o.Terms,
			&o.ValidFrom, &o.ValidUntil, &o.Views, &o.Claims, &o.SentAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *offerRepo) CountSince(ctx context.Context, tx repository.Tx, businessID string, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM offers WHERE business_id=$1 AND sent_at >= $2;`
	row, err := queryRow(ctx, r.pool, tx, q, businessID, since)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *offerRepo) IncrementViews(ctx context.Context, tx repository.Tx, id string) error {
	return r.increment(ctx, tx, id, `UPDATE offers SET views = views + 1 WHERE id=$1;`)
}

func (r *offerRepo) IncrementClaims(ctx context.Context, tx repository.Tx, id string) error {
	return r.increment(ctx, tx, id, `UPDATE offers SET claims = claims + 1 WHERE id=$1;`)
}

func (r *offerRepo) increment(ctx context.Context, tx repository.Tx, id, q string) error {
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
