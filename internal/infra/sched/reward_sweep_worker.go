package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/infra/metrics"
	"github.com/bekimbicaku/scan-perks/internal/usecase"
)

// RewardSweepWorker periodically counts rewards that lapsed unredeemed, for
// reporting. Expiry itself is enforced at read time by ListActive and Redeem.
type RewardSweepWorker struct {
	interval time.Duration
	rewardUC usecase.RewardUseCase
	lastRun  time.Time
	log      *zerolog.Logger
}

func NewRewardSweepWorker(interval time.Duration, rewardUC usecase.RewardUseCase, logger *zerolog.Logger) *RewardSweepWorker {
	wl := logger.With().Str("component", "RewardSweepWorker").Logger()
	return &RewardSweepWorker{
		interval: interval,
		rewardUC: rewardUC,
		log:      &wl,
	}
}

func (w *RewardSweepWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting reward sweep worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.lastRun = time.Now()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reward sweep worker")
			return ctx.Err()
		case now := <-ticker.C:
			n, err := w.rewardUC.SweepExpired(ctx, w.lastRun, now)
			if err != nil {
				w.log.Error().Err(err).Msg("reward sweep error")
				continue
			}
			w.lastRun = now
			if n > 0 {
				metrics.AddRewardsExpired(n)
				w.log.Info().Int("count", n).Msg("rewards expired unredeemed")
			}
		}
	}
}
