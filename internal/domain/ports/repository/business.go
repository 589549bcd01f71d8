package repository

import (
	"context"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
)

type BusinessRepository interface {
	Save(ctx context.Context, tx Tx, b *model.Business) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Business, error)
	FindByAPIKey(ctx context.Context, tx Tx, apiKey string) (*model.Business, error)
	// SetPlan moves the business through its plan lifecycle
	// (pending -> active -> cancelled).
	SetPlan(ctx context.Context, tx Tx, id string, plan model.PlanID, status model.PlanStatus, startedAt *time.Time) error
	// Deactivate marks the business inactive; it stops accepting scans but its
	// historical counters remain.
	Deactivate(ctx context.Context, tx Tx, id string, at time.Time) error
	Delete(ctx context.Context, tx Tx, id string) error
}

type LoyaltySettingsRepository interface {
	// Find returns the business's settings, or ErrNotFound when it never
	// configured any.
	Find(ctx context.Context, tx Tx, businessID string) (*model.LoyaltySettings, error)
	Save(ctx context.Context, tx Tx, s *model.LoyaltySettings) error
}
