package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// ScanUseCase is the scan accounting service: it validates a scanned code,
// enforces the once-per-day-per-business rule, updates all counters in a
// single transaction and issues a reward at every milestone.
type ScanUseCase interface {
	// RecordScan processes one scanned payload for an authenticated user.
	//
	// Error kinds, each surfaced verbatim:
	//   ErrNotAuthenticated   - empty user id
	//   ErrMalformedCode      - payload undecodable or missing businessId
	//   ErrBusinessNotFound   - referenced business does not exist
	//   ErrDailyLimitExceeded - second scan of the same business on the same
	//                           calendar day; expected, no state mutated
	//   ErrTransactionFailed  - counter transaction could not commit; safe to
	//                           retry with the same payload
	RecordScan(ctx context.Context, userID, payload string) (*model.ScanOutcome, error)
}

var _ ScanUseCase = (*scanUC)(nil)

type scanUC struct {
	businesses repository.BusinessRepository
	settings   repository.LoyaltySettingsRepository
	scans      repository.ScanRecordRepository
	stats      repository.StatsRepository
	rewards    repository.RewardRepository
	tx         repository.TransactionManager
	now        func() time.Time
	log        *zerolog.Logger
}

// NewScanUseCase constructs the scan accounting service. An optional clock can
// be supplied by tests; production callers omit it.
func NewScanUseCase(
	businesses repository.BusinessRepository,
	settings repository.LoyaltySettingsRepository,
	scans repository.ScanRecordRepository,
	stats repository.StatsRepository,
	rewards repository.RewardRepository,
	tx repository.TransactionManager,
	logger *zerolog.Logger,
	clock ...func() time.Time,
) ScanUseCase {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	l := logger.With().Str("component", "ScanUseCase").Logger()
	return &scanUC{
		businesses: businesses,
		settings:   settings,
		scans:      scans,
		stats:      stats,
		rewards:    rewards,
		tx:         tx,
		now:        now,
		log:        &l,
	}
}

func (uc *scanUC) RecordScan(ctx context.Context, userID, payload string) (*model.ScanOutcome, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	p, err := model.DecodeQRPayload(payload)
	if err != nil {
		return nil, err
	}

	biz, err := uc.businesses.FindByID(ctx, repository.NoTX, p.BusinessID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrBusinessNotFound
		}
		return nil, err
	}

	now := uc.now()
	var (
		total    int
		required int
	)

	// All three counters move in one serializable transaction. The ScanRecord
	// read happens inside it so that two racing scans for the same pair cannot
	// both observe "no existing record": the store aborts one and the manager
	// re-runs its callback, which then sees the winner's write and trips the
	// daily-limit check.
	txErr := uc.tx.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(ctx context.Context, tx repository.Tx) error {
		rec, err := uc.scans.Find(ctx, tx, userID, biz.ID)
		firstVisit := false
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNotFound):
			firstVisit = true
			rec = &model.ScanRecord{UserID: userID, BusinessID: biz.ID}
		default:
			return err
		}

		if rec.ScannedOn(now) {
			return domain.ErrDailyLimitExceeded
		}

		// The threshold is read inside the transaction so the outcome reflects
		// the business's current setting, not a stale or hardcoded one.
		required = model.DefaultScansRequired
		switch s, err := uc.settings.Find(ctx, tx, biz.ID); {
		case err == nil && s.ScansRequired > 0:
			required = s.ScansRequired
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}

		rec.TotalScans++
		rec.LastScanAt = now
		if err := uc.scans.Upsert(ctx, tx, rec); err != nil {
			return err
		}
		if err := uc.stats.IncrementScanStats(ctx, tx, biz.ID, firstVisit, now); err != nil {
			return err
		}
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if err := uc.stats.IncrementDailyBucket(ctx, tx, biz.ID, day, firstVisit); err != nil {
			return err
		}

		total = rec.TotalScans
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrDailyLimitExceeded) {
			// Expected outcome, not a fault: the caller shows "come back
			// tomorrow" rather than an error screen.
			return nil, txErr
		}
		uc.log.Error().Err(txErr).Str("user_id", userID).Str("business_id", biz.ID).Msg("scan transaction failed")
		return nil, domain.ErrTransactionFailed
	}

	outcome := &model.ScanOutcome{
		TotalScans:       total,
		ScansUntilReward: (required - total%required) % required,
		RewardEarned:     total%required == 0,
	}

	if outcome.RewardEarned {
		// Separate best-effort step. The (user, business, totalScans) key makes
		// issuance idempotent against a crash-and-retry between the counter
		// transaction and this write.
		created, err := uc.issueReward(ctx, userID, biz.ID, total, now)
		if err != nil {
			uc.log.Warn().Err(err).Str("user_id", userID).Str("business_id", biz.ID).Int("total_scans", total).Msg("reward issuance deferred to retry")
		}
		outcome.RewardIssued = created
	}
	return outcome, nil
}

// issueReward reports whether this call minted the reward; a replay that hits
// the already-issued milestone returns false with no error.
func (uc *scanUC) issueReward(ctx context.Context, userID, businessID string, totalScans int, now time.Time) (bool, error) {
	r, err := model.NewReward(uuid.NewString(), userID, businessID, totalScans, now)
	if err != nil {
		return false, err
	}
	created, err := uc.rewards.Insert(ctx, repository.NoTX, r)
	if err != nil {
		return false, err
	}
	if !created {
		// A previous attempt already minted this milestone's reward.
		return false, nil
	}
	return true, uc.stats.IncrementRewardsIssued(ctx, repository.NoTX, businessID, now)
}
