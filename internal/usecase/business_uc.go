package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// RegisterBusinessParams carries the registration form fields.
type RegisterBusinessParams struct {
	Name    string
	Type    model.BusinessType
	Email   string
	Phone   string
	Address model.Address
}

// BusinessUseCase manages business registration, setup and loyalty settings.
type BusinessUseCase interface {
	// Register creates a payment-pending business owned by the caller. An
	// account owns at most one business (ErrAlreadyExists on a second).
	Register(ctx context.Context, ownerID string, params RegisterBusinessParams) (*model.Business, error)
	Get(ctx context.Context, businessID string) (*model.Business, error)
	// CompleteSetup picks the QR type and activates the business. It requires
	// an active paid plan (ErrPlanNotActive otherwise).
	CompleteSetup(ctx context.Context, ownerID string, qrType model.QRType) (*model.Business, error)
	// LoyaltySettings returns the configured policy, falling back to defaults
	// (10 scans per reward) when the business never configured one.
	LoyaltySettings(ctx context.Context, businessID string) (*model.LoyaltySettings, error)
	// UpdateLoyaltySettings changes the policy; allowed at most once every 30
	// days (ErrSettingsLocked inside the cooldown).
	UpdateLoyaltySettings(ctx context.Context, ownerID string, scansRequired int, reward string) (*model.LoyaltySettings, error)
	Delete(ctx context.Context, ownerID string) error
}

var _ BusinessUseCase = (*businessUC)(nil)

type businessUC struct {
	businesses repository.BusinessRepository
	settings   repository.LoyaltySettingsRepository
	codes      repository.DynamicCodeRepository
	now        func() time.Time
	log        *zerolog.Logger
}

func NewBusinessUseCase(
	businesses repository.BusinessRepository,
	settings repository.LoyaltySettingsRepository,
	codes repository.DynamicCodeRepository,
	logger *zerolog.Logger,
	clock ...func() time.Time,
) BusinessUseCase {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	l := logger.With().Str("component", "BusinessUseCase").Logger()
	return &businessUC{businesses: businesses, settings: settings, codes: codes, now: now, log: &l}
}

func (uc *businessUC) Register(ctx context.Context, ownerID string, params RegisterBusinessParams) (*model.Business, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if existing, err := uc.businesses.FindByID(ctx, repository.NoTX, ownerID); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	b, err := model.NewBusiness(ownerID, params.Name, params.Type, params.Email, params.Phone, params.Address, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if err := uc.businesses.Save(ctx, repository.NoTX, b); err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", b.ID).Str("type", string(b.Type)).Msg("business registered")
	return b, nil
}

func (uc *businessUC) Get(ctx context.Context, businessID string) (*model.Business, error) {
	return uc.businesses.FindByID(ctx, repository.NoTX, businessID)
}

func (uc *businessUC) CompleteSetup(ctx context.Context, ownerID string, qrType model.QRType) (*model.Business, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if qrType != model.QRTypeStatic && qrType != model.QRTypeDynamic {
		return nil, domain.ErrInvalidArgument
	}
	b, err := uc.businesses.FindByID(ctx, repository.NoTX, ownerID)
	if err != nil {
		return nil, err
	}
	if b.PlanStatus != model.PlanStatusActive {
		return nil, domain.ErrPlanNotActive
	}
	b.QRType = qrType
	b.Active = true
	if err := uc.businesses.Save(ctx, repository.NoTX, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (uc *businessUC) LoyaltySettings(ctx context.Context, businessID string) (*model.LoyaltySettings, error) {
	s, err := uc.settings.Find(ctx, repository.NoTX, businessID)
	if errors.Is(err, domain.ErrNotFound) {
		return model.DefaultLoyaltySettings(businessID), nil
	}
	return s, err
}

func (uc *businessUC) UpdateLoyaltySettings(ctx context.Context, ownerID string, scansRequired int, reward string) (*model.LoyaltySettings, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if scansRequired < 1 || reward == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := uc.businesses.FindByID(ctx, repository.NoTX, ownerID); err != nil {
		return nil, err
	}

	now := uc.now()
	current, err := uc.settings.Find(ctx, repository.NoTX, ownerID)
	switch {
	case err == nil:
		if !current.CanModify(now) {
			return nil, domain.ErrSettingsLocked
		}
	case errors.Is(err, domain.ErrNotFound):
		// first configuration, always allowed
	default:
		return nil, err
	}

	s := &model.LoyaltySettings{
		BusinessID:    ownerID,
		ScansRequired: scansRequired,
		Reward:        reward,
		LastModified:  now,
	}
	if err := uc.settings.Save(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", ownerID).Int("scans_required", scansRequired).Msg("loyalty settings updated")
	return s, nil
}

func (uc *businessUC) Delete(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return domain.ErrNotAuthenticated
	}
	if err := uc.codes.DeactivateByBusiness(ctx, repository.NoTX, ownerID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return uc.businesses.Delete(ctx, repository.NoTX, ownerID)
}
