package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// RewardUseCase exposes a user's earned rewards and their redemption.
type RewardUseCase interface {
	// ListActive returns the caller's unredeemed, unexpired rewards.
	ListActive(ctx context.Context, userID string) ([]*model.Reward, error)
	// Redeem marks a reward used. ErrRewardRedeemed on double redemption,
	// ErrRewardExpired past the 30-day window, ErrNotFound for foreign ids.
	Redeem(ctx context.Context, userID, rewardID string) (*model.Reward, error)
	// SweepExpired counts rewards that lapsed unredeemed inside the window;
	// called by the background worker for reporting.
	SweepExpired(ctx context.Context, from, to time.Time) (int, error)
}

var _ RewardUseCase = (*rewardUC)(nil)

type rewardUC struct {
	rewards repository.RewardRepository
	now     func() time.Time
	log     *zerolog.Logger
}

func NewRewardUseCase(rewards repository.RewardRepository, logger *zerolog.Logger, clock ...func() time.Time) RewardUseCase {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	l := logger.With().Str("component", "RewardUseCase").Logger()
	return &rewardUC{rewards: rewards, now: now, log: &l}
}

func (uc *rewardUC) ListActive(ctx context.Context, userID string) ([]*model.Reward, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return uc.rewards.ListActive(ctx, repository.NoTX, userID, uc.now())
}

func (uc *rewardUC) Redeem(ctx context.Context, userID, rewardID string) (*model.Reward, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	r, err := uc.rewards.FindByID(ctx, repository.NoTX, rewardID)
	if err != nil {
		return nil, err
	}
	// A reward is only visible to its owner.
	if r.UserID != userID {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	if err := r.Redeem(now); err != nil {
		return nil, err
	}
	if err := uc.rewards.SetRedeemed(ctx, repository.NoTX, r.ID, now); err != nil {
		return nil, err
	}
	return r, nil
}

func (uc *rewardUC) SweepExpired(ctx context.Context, from, to time.Time) (int, error) {
	return uc.rewards.CountExpiredUnredeemed(ctx, repository.NoTX, from, to)
}
