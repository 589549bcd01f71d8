package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/infra/metrics"
	"github.com/bekimbicaku/scan-perks/internal/usecase"
)

// CodePurgeWorker removes dynamic codes whose five-minute window passed.
type CodePurgeWorker struct {
	interval time.Duration
	qrUC     usecase.QRUseCase
	log      *zerolog.Logger
}

func NewCodePurgeWorker(interval time.Duration, qrUC usecase.QRUseCase, logger *zerolog.Logger) *CodePurgeWorker {
	wl := logger.With().Str("component", "CodePurgeWorker").Logger()
	return &CodePurgeWorker{
		interval: interval,
		qrUC:     qrUC,
		log:      &wl,
	}
}

func (w *CodePurgeWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting code purge worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping code purge worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.qrUC.PurgeExpired(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("code purge error")
				continue
			}
			if n > 0 {
				metrics.AddDynamicCodesPurged(n)
				w.log.Info().Int("count", n).Msg("expired dynamic codes purged")
			}
		}
	}
}
