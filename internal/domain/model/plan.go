package model

import (
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain"
)

type PlanID string

const (
	PlanBasic   PlanID = "basic"
	PlanPremium PlanID = "premium"
)

type PlanStatus string

const (
	PlanStatusNone      PlanStatus = "none"
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// Plan is a purchasable subscription tier for businesses.
// MonthlyScanLimit of 0 means unlimited.
type Plan struct {
	ID               PlanID
	Name             string
	PriceCents       int64
	StripePriceID    string
	MonthlyScanLimit int
	WeeklyOfferLimit int
	CreatedAt        time.Time
}

// NewPlan validates and constructs a plan.
func NewPlan(id PlanID, name string, priceCents int64, stripePriceID string, scanLimit, offerLimit int) (*Plan, error) {
	if id == "" || name == "" || priceCents <= 0 || offerLimit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:               id,
		Name:             name,
		PriceCents:       priceCents,
		StripePriceID:    stripePriceID,
		MonthlyScanLimit: scanLimit,
		WeeklyOfferLimit: offerLimit,
		CreatedAt:        time.Now(),
	}, nil
}
