package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// BusinessDashboard aggregates what the business analytics screen shows.
type BusinessDashboard struct {
	Scans   *model.ScanStats   `json:"scans"`
	Rewards *model.RewardStats `json:"rewards"`
	Daily   []*model.DailyStat `json:"daily"`
}

// StatsUseCase serves the business analytics dashboard.
type StatsUseCase interface {
	// Dashboard returns scan and reward totals plus the last 30 days of daily
	// buckets. Businesses without any scans get zeroed counters.
	Dashboard(ctx context.Context, businessID string) (*BusinessDashboard, error)
}

var _ StatsUseCase = (*statsUC)(nil)

type statsUC struct {
	stats repository.StatsRepository
	now   func() time.Time
	log   *zerolog.Logger
}

func NewStatsUseCase(stats repository.StatsRepository, logger *zerolog.Logger, clock ...func() time.Time) StatsUseCase {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	l := logger.With().Str("component", "StatsUseCase").Logger()
	return &statsUC{stats: stats, now: now, log: &l}
}

func (uc *statsUC) Dashboard(ctx context.Context, businessID string) (*BusinessDashboard, error) {
	if businessID == "" {
		return nil, domain.ErrInvalidArgument
	}

	scans, err := uc.stats.FindScanStats(ctx, repository.NoTX, businessID)
	if errors.Is(err, domain.ErrNotFound) {
		scans = &model.ScanStats{BusinessID: businessID}
	} else if err != nil {
		return nil, err
	}

	rewards, err := uc.stats.FindRewardStats(ctx, repository.NoTX, businessID)
	if errors.Is(err, domain.ErrNotFound) {
		rewards = &model.RewardStats{BusinessID: businessID}
	} else if err != nil {
		return nil, err
	}

	now := uc.now()
	daily, err := uc.stats.DailySeries(ctx, repository.NoTX, businessID, now.AddDate(0, 0, -30), now)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return &BusinessDashboard{Scans: scans, Rewards: rewards, Daily: daily}, nil
}
