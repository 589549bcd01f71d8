package model

import (
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain"
)

// RewardTTL is how long an issued reward stays redeemable.
const RewardTTL = 30 * 24 * time.Hour

// Reward is a redeemable benefit earned at a scan milestone. The
// (UserID, BusinessID, TotalScans) triple is its idempotency key: re-running
// issuance after a crash cannot mint a second reward for the same milestone.
type Reward struct {
	ID         string // UUID
	UserID     string
	BusinessID string
	TotalScans int // the milestone scan count that earned it
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Redeemed   bool
	RedeemedAt *time.Time
}

// NewReward constructs a reward for a milestone reached at now.
func NewReward(id, userID, businessID string, totalScans int, now time.Time) (*Reward, error) {
	if id == "" || userID == "" || businessID == "" || totalScans <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Reward{
		ID:         id,
		UserID:     userID,
		BusinessID: businessID,
		TotalScans: totalScans,
		CreatedAt:  now,
		ExpiresAt:  now.Add(RewardTTL),
	}, nil
}

// Expired reports whether the reward can no longer be redeemed.
func (r *Reward) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Redeem marks the reward used. A reward redeems exactly once and never after
// expiry.
func (r *Reward) Redeem(now time.Time) error {
	if r.Redeemed {
		return domain.ErrRewardRedeemed
	}
	if r.Expired(now) {
		return domain.ErrRewardExpired
	}
	r.Redeemed = true
	r.RedeemedAt = &now
	return nil
}
