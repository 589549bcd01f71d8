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

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

const userColumns = `id, email, display_name, created_at, stripe_customer_id, stripe_subscription_id`

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  email=$2, display_name=$3, stripe_customer_id=$5, stripe_subscription_id=$6;`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Email, u.DisplayName, u.CreatedAt, u.StripeCustomerID, u.StripeSubscriptionID)
	if isPgErr(err, uniqueViolation) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByStripeCustomerID(ctx context.Context, tx repository.Tx, customerID string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, customerID)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) UpdateBilling(ctx context.Context, tx repository.Tx, userID, stripeCustomerID, stripeSubscriptionID string) error {
	const q = `
UPDATE users SET stripe_customer_id=$2, stripe_subscription_id=$3 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, stripeCustomerID, stripeSubscriptionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt,
		&u.StripeCustomerID, &u.StripeSubscriptionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
