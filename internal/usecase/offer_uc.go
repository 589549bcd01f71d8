package usecase

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// CreateOfferParams carries the offer composer fields.
type CreateOfferParams struct {
	Title       string
	Description string
	Terms       string
	ValidDays   int
}

// OfferUseCase lets businesses publish offers and customers browse them.
type OfferUseCase interface {
	// Create publishes an offer, enforcing the plan's weekly quota
	// (basic 1/week, premium 2/week); ErrOfferQuotaReached past it.
	Create(ctx context.Context, ownerID string, params CreateOfferParams) (*model.Offer, error)
	// ListActive returns a business's offers currently inside their validity
	// window.
	ListActive(ctx context.Context, businessID string) ([]*model.Offer, error)
	// View records one customer impression.
	View(ctx context.Context, offerID string) error
	// Claim records one customer claim.
	Claim(ctx context.Context, offerID string) error
}

var _ OfferUseCase = (*offerUC)(nil)

type offerUC struct {
	offers     repository.OfferRepository
	businesses repository.BusinessRepository
	plans      repository.PlanRepository
	now        func() time.Time
	log        *zerolog.Logger
}

func NewOfferUseCase(
	offers repository.OfferRepository,
	businesses repository.BusinessRepository,
	plans repository.PlanRepository,
	logger *zerolog.Logger,
	clock ...func() time.Time,
) OfferUseCase {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	l := logger.With().Str("component", "OfferUseCase").Logger()
	return &offerUC{offers: offers, businesses: businesses, plans: plans, now: now, log: &l}
}

func (uc *offerUC) Create(ctx context.Context, ownerID string, params CreateOfferParams) (*model.Offer, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	biz, err := uc.businesses.FindByID(ctx, repository.NoTX, ownerID)
	if err != nil {
		return nil, err
	}
	if biz.PlanStatus != model.PlanStatusActive {
		return nil, domain.ErrPlanNotActive
	}

	limit := 1
	if plan, err := uc.plans.FindByID(ctx, repository.NoTX, biz.Plan); err == nil && plan.WeeklyOfferLimit > 0 {
		limit = plan.WeeklyOfferLimit
	}

	now := uc.now()
	sent, err := uc.offers.CountSince(ctx, repository.NoTX, biz.ID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	if sent >= limit {
		return nil, domain.ErrOfferQuotaReached
	}

	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	offer, err := model.NewOffer(id, biz.ID, params.Title, params.Description, params.Terms, params.ValidDays, now)
	if err != nil {
		return nil, err
	}
	if err := uc.offers.Save(ctx, repository.NoTX, offer); err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", biz.ID).Str("offer_id", offer.ID).Msg("offer published")
	return offer, nil
}

func (uc *offerUC) ListActive(ctx context.Context, businessID string) ([]*model.Offer, error) {
	return uc.offers.ListActive(ctx, repository.NoTX, businessID, uc.now())
}

func (uc *offerUC) View(ctx context.Context, offerID string) error {
	return uc.offers.IncrementViews(ctx, repository.NoTX, offerID)
}

func (uc *offerUC) Claim(ctx context.Context, offerID string) error {
	return uc.offers.IncrementClaims(ctx, repository.NoTX, offerID)
}
