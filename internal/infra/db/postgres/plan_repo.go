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

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	const q = `
INSERT INTO plans (id, name, price_cents, stripe_price_id, monthly_scan_limit, weekly_offer_limit, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=$2, price_cents=$3, stripe_price_id=$4, monthly_scan_limit=$5, weekly_offer_limit=$6;`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Name, p.PriceCents, p.StripePriceID, p.MonthlyScanLimit, p.WeeklyOfferLimit, p.CreatedAt)
	return err
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id model.PlanID) (*model.Plan, error) {
	const q = `
SELECT id, name, price_cents, stripe_price_id, monthly_scan_limit, weekly_offer_limit, created_at
  FROM plans WHERE id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var p model.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.StripePriceID,
		&p.MonthlyScanLimit, &p.WeeklyOfferLimit, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *planRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const q = `
SELECT id, name, price_cents, stripe_price_id, monthly_scan_limit, weekly_offer_limit, created_at
  FROM plans ORDER BY price_cents ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Plan
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.StripePriceID,
			&p.MonthlyScanLimit, &p.WeeklyOfferLimit, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
