package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/adapter"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// BillingRedirects are the hosted-page return URLs handed to the provider.
type BillingRedirects struct {
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

// BillingUseCase drives the business subscription lifecycle through the
// payment provider's hosted checkout and billing portal.
type BillingUseCase interface {
	// Checkout starts a hosted checkout for a plan and returns the redirect URL.
	Checkout(ctx context.Context, userID string, planID model.PlanID) (string, error)
	// Portal returns a hosted billing-portal URL for an existing subscriber.
	Portal(ctx context.Context, userID string) (string, error)
	// Cancel ends the caller's subscription at the provider; the state change
	// lands through the provider's webhook.
	Cancel(ctx context.Context, userID string) error
	// HandleWebhook applies a verified provider notification: a completed
	// checkout activates the plan, a deleted subscription cancels it and
	// deactivates the business.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

var _ BillingUseCase = (*billingUC)(nil)

type billingUC struct {
	users      repository.UserRepository
	businesses repository.BusinessRepository
	plans      repository.PlanRepository
	codes      repository.DynamicCodeRepository
	gateway    adapter.BillingGateway
	redirects  BillingRedirects
	now        func() time.Time
	log        *zerolog.Logger
}

func NewBillingUseCase(
	users repository.UserRepository,
	businesses repository.BusinessRepository,
	plans repository.PlanRepository,
	codes repository.DynamicCodeRepository,
	gateway adapter.BillingGateway,
	redirects BillingRedirects,
	logger *zerolog.Logger,
	clock ...func() time.Time,
) BillingUseCase {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	l := logger.With().Str("component", "BillingUseCase").Str("gateway", gateway.Name()).Logger()
	return &billingUC{
		users:      users,
		businesses: businesses,
		plans:      plans,
		codes:      codes,
		gateway:    gateway,
		redirects:  redirects,
		now:        now,
		log:        &l,
	}
}

func (uc *billingUC) Checkout(ctx context.Context, userID string, planID model.PlanID) (string, error) {
	if userID == "" {
		return "", domain.ErrNotAuthenticated
	}
	user, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return "", err
	}
	plan, err := uc.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return "", err
	}
	session, err := uc.gateway.CreateCheckoutSession(ctx, user.ID, user.Email, plan.StripePriceID, uc.redirects.SuccessURL, uc.redirects.CancelURL)
	if err != nil {
		return "", err
	}
	uc.log.Info().Str("user_id", user.ID).Str("plan", string(planID)).Str("session_id", session.ID).Msg("checkout session created")
	return session.URL, nil
}

func (uc *billingUC) Portal(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrNotAuthenticated
	}
	user, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID == "" {
		return "", domain.ErrNotFound
	}
	return uc.gateway.CreatePortalSession(ctx, user.StripeCustomerID, uc.redirects.PortalReturnURL)
}

func (uc *billingUC) Cancel(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	user, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	if user.StripeSubscriptionID == "" {
		return domain.ErrNotFound
	}
	return uc.gateway.CancelSubscription(ctx, user.StripeSubscriptionID)
}

func (uc *billingUC) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := uc.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case adapter.BillingEventCheckoutCompleted:
		return uc.activatePlan(ctx, event)
	case adapter.BillingEventSubscriptionCancelled:
		return uc.cancelPlan(ctx, event)
	default:
		return nil
	}
}

func (uc *billingUC) activatePlan(ctx context.Context, event adapter.BillingEvent) error {
	if event.UserID == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.users.UpdateBilling(ctx, repository.NoTX, event.UserID, event.CustomerID, event.SubscriptionID); err != nil {
		return err
	}

	plan := uc.planForAmount(ctx, event.AmountCents)
	now := uc.now()
	err := uc.businesses.SetPlan(ctx, repository.NoTX, event.UserID, plan, model.PlanStatusActive, &now)
	if errors.Is(err, domain.ErrNotFound) {
		// Paid before registering the business; the plan attaches when setup
		// completes.
		uc.log.Warn().Str("user_id", event.UserID).Msg("checkout completed without a registered business")
		return nil
	}
	if err != nil {
		return err
	}
	uc.log.Info().Str("user_id", event.UserID).Str("plan", string(plan)).Msg("plan activated")
	return nil
}

func (uc *billingUC) cancelPlan(ctx context.Context, event adapter.BillingEvent) error {
	user, err := uc.users.FindByStripeCustomerID(ctx, repository.NoTX, event.CustomerID)
	if err != nil {
		return err
	}
	now := uc.now()
	if err := uc.businesses.SetPlan(ctx, repository.NoTX, user.ID, "", model.PlanStatusCancelled, nil); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := uc.businesses.Deactivate(ctx, repository.NoTX, user.ID, now); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := uc.codes.DeactivateByBusiness(ctx, repository.NoTX, user.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	uc.log.Info().Str("user_id", user.ID).Msg("subscription cancelled, business deactivated")
	return nil
}

// planForAmount maps the charged amount back onto a plan, defaulting to
// premium when the amount matches no known plan.
func (uc *billingUC) planForAmount(ctx context.Context, amountCents int64) model.PlanID {
	plans, err := uc.plans.List(ctx, repository.NoTX)
	if err != nil {
		return model.PlanPremium
	}
	for _, p := range plans {
		if p.PriceCents == amountCents {
			return p.ID
		}
	}
	return model.PlanPremium
}
