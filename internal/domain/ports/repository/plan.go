package repository

import (
	"context"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
)

type PlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id model.PlanID) (*model.Plan, error)
	List(ctx context.Context, tx Tx) ([]*model.Plan, error)
}
