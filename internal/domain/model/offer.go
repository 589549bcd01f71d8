package model

import (
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain"
)

// Offer is a time-limited promotion a business sends to its scanners.
type Offer struct {
	ID          string // ULID, sortable by creation time
	BusinessID  string
	Title       string
	Description string
	Terms       string
	ValidFrom   time.Time
	ValidUntil  time.Time
	Views       int
	Claims      int
	SentAt      time.Time
}

// NewOffer validates and constructs an offer valid for validDays from now.
func NewOffer(id, businessID, title, description, terms string, validDays int, now time.Time) (*Offer, error) {
	if id == "" || businessID == "" || title == "" || validDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Offer{
		ID:          id,
		BusinessID:  businessID,
		Title:       title,
		Description: description,
		Terms:       terms,
		ValidFrom:   now,
		ValidUntil:  now.AddDate(0, 0, validDays),
		SentAt:      now,
	}, nil
}

// ActiveAt reports whether the offer is within its validity window.
func (o *Offer) ActiveAt(now time.Time) bool {
	return !now.Before(o.ValidFrom) && now.Before(o.ValidUntil)
}
