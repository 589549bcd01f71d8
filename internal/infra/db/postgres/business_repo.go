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

var _ repository.BusinessRepository = (*businessRepo)(nil)

type businessRepo struct {
	pool *pgxpool.Pool
}

func NewBusinessRepo(pool *pgxpool.Pool) *businessRepo {
	return &businessRepo{pool: pool}
}

const businessColumns = `
id, owner_id, name, type, email, phone, street, city, postal_code,
qr_type, api_key, plan, plan_status, plan_started_at,
active, created_at, deactivated_at`

func (r *businessRepo) Save(ctx context.Context, tx repository.Tx, b *model.Business) error {
	const q = `
INSERT INTO businesses (` + businessColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
ON CONFLICT (id) DO UPDATE SET
  name=$3, type=$4, email=$5, phone=$6, street=$7, city=$8, postal_code=$9,
  qr_type=$10, api_key=$11, plan=$12, plan_status=$13, plan_started_at=$14,
  active=$15, deactivated_at=$17;`
	_, err := execSQL(ctx, r.pool, tx, q,
		b.ID, b.OwnerID, b.Name, b.Type, b.Email, b.Phone,
		b.Address.Street, b.Address.City, b.Address.PostalCode,
		b.QRType, b.APIKey, b.Plan, b.PlanStatus, b.PlanStartedAt,
		b.Active, b.CreatedAt, b.DeactivatedAt)
	if isPgErr(err, uniqueViolation) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *businessRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Business, error) {
	const q = `SELECT ` + businessColumns + ` FROM businesses WHERE id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanBusiness(row)
}

func (r *businessRepo) FindByAPIKey(ctx context.Context, tx repository.Tx, apiKey string) (*model.Business, error) {
	const q = `SELECT ` + businessColumns + ` FROM businesses WHERE api_key=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, apiKey)
	if err != nil {
		return nil, err
	}
	return scanBusiness(row)
}

func (r *businessRepo) SetPlan(ctx context.Context, tx repository.Tx, id string, plan model.PlanID, status model.PlanStatus, startedAt *time.Time) error {
	const q = `
UPDATE businesses SET plan=$2, plan_status=$3, plan_started_at=$4 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, plan, status, startedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *businessRepo) Deactivate(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	const q = `
UPDATE businesses SET active=FALSE, deactivated_at=$2 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *businessRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM businesses WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanBusiness(row pgx.Row) (*model.Business, error) {
	var b model.Business
	if err := row.Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.Type, &b.Email, &b.Phone,
		&b.Address.Street, &b.Address.City, &b.Address.PostalCode,
		&b.QRType, &b.APIKey, &b.Plan, &b.PlanStatus, &b.PlanStartedAt,
		&b.Active, &b.CreatedAt, &b.DeactivatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
