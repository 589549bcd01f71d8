package model

import (
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain"
)

type BusinessType string

const (
	BusinessTypeBar        BusinessType = "Bar"
	BusinessTypePizzeria   BusinessType = "Pizzeria"
	BusinessTypeRestaurant BusinessType = "Restaurant"
	BusinessTypeCafe       BusinessType = "Cafe"
	BusinessTypeOther      BusinessType = "Other"
)

type Address struct {
	Street     string
	City       string
	PostalCode string
}

// Business is a registered venue. Its id equals the owner user's id: an
// account owns at most one business.
type Business struct {
	ID      string // UUID, same as owner user id
	OwnerID string
	Name    string
	Type    BusinessType
	Email   string
	Phone   string
	Address Address

	QRType QRType
	APIKey string // bearer key for the dynamic-code endpoint

	Plan          PlanID
	PlanStatus    PlanStatus
	PlanStartedAt *time.Time

	Active        bool
	CreatedAt     time.Time
	DeactivatedAt *time.Time
}

// NewBusiness constructs a registration-pending business. Plan activation
// happens after checkout completes.
func NewBusiness(ownerID, name string, typ BusinessType, email, phone string, addr Address, apiKey string) (*Business, error) {
	if ownerID == "" || name == "" || email == "" || typ == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Business{
		ID:         ownerID,
		OwnerID:    ownerID,
		Name:       name,
		Type:       typ,
		Email:      email,
		Phone:      phone,
		Address:    addr,
		QRType:     QRTypeStatic,
		APIKey:     apiKey,
		Plan:       PlanBasic,
		PlanStatus: PlanStatusPending,
		Active:     false,
		CreatedAt:  time.Now(),
	}, nil
}

// DefaultScansRequired is used until a business configures its own threshold.
const DefaultScansRequired = 10

// SettingsCooldown is how long a business must wait between loyalty
// settings changes.
const SettingsCooldown = 30 * 24 * time.Hour

// LoyaltySettings is the per-business loyalty policy: how many scans earn one
// reward, and what the reward is.
type LoyaltySettings struct {
	BusinessID    string
	ScansRequired int
	Reward        string
	LastModified  time.Time
}

func DefaultLoyaltySettings(businessID string) *LoyaltySettings {
	return &LoyaltySettings{
		BusinessID:    businessID,
		ScansRequired: DefaultScansRequired,
	}
}

// CanModify reports whether the settings may be changed at the given time.
func (s *LoyaltySettings) CanModify(now time.Time) bool {
	if s.LastModified.IsZero() {
		return true
	}
	return !now.Before(s.LastModified.Add(SettingsCooldown))
}
