package model

import "time"

// ScanRecord tracks one user's visits to one business. It is mutated only by
// the scan accounting transaction.
type ScanRecord struct {
	UserID     string
	BusinessID string
	TotalScans int
	LastScanAt time.Time
}

// ScannedOn reports whether the record's last scan falls on the same calendar
// day as t (year, month and day equal — not a rolling 24h window).
func (r *ScanRecord) ScannedOn(t time.Time) bool {
	if r == nil || r.LastScanAt.IsZero() {
		return false
	}
	y1, m1, d1 := r.LastScanAt.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ScanStats are per-business aggregate counters, written transactionally
// alongside each accepted scan.
type ScanStats struct {
	BusinessID      string
	TotalScans      int
	UniqueCustomers int
	LastScanAt      time.Time
}

// RewardStats count rewards issued by a business.
type RewardStats struct {
	BusinessID         string
	TotalRewardsIssued int
	LastRewardIssuedAt time.Time
}

// DailyStat is a write-only analytics bucket keyed by calendar day.
type DailyStat struct {
	BusinessID      string
	Day             time.Time // midnight, date component only
	Scans           int
	UniqueCustomers int
}

// ScanOutcome is what an accepted scan reports back to the presentation layer.
type ScanOutcome struct {
	TotalScans       int  `json:"totalScans"`
	ScansUntilReward int  `json:"scansUntilReward"`
	RewardEarned     bool `json:"rewardEarned"`

	// RewardIssued reports that this call actually minted the reward row.
	// A crash-retry replay of an already-issued milestone keeps RewardEarned
	// true but leaves this false.
	RewardIssued bool `json:"-"`
}
