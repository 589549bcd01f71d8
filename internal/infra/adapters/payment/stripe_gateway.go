package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/bekimbicaku/scan-perks/internal/config"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/adapter"
)

var _ adapter.BillingGateway = (*StripeGateway)(nil)

type StripeGateway struct {
	client        *stripe.Client
	webhookSecret string
	log           zerolog.Logger
}

func NewStripeGateway(cfg *config.StripeConfig, logger zerolog.Logger) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key not configured")
	}
	return &StripeGateway{
		client:        stripe.NewClient(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		log:           logger.With().Str("component", "stripe_gateway").Logger(),
	}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, userID, customerEmail, priceID, successURL, cancelURL string) (adapter.CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		// The webhook reads this back to know which account paid.
		ClientReferenceID: stripe.String(userID),
		CustomerEmail:     stripe.String(customerEmail),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
	}

	sess, err := g.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return adapter.CheckoutSession{}, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return adapter.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionCreateParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	sess, err := g.client.V1BillingPortalSessions.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return sess.URL, nil
}

func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_, err := g.client.V1Subscriptions.Cancel(ctx, subscriptionID, &stripe.SubscriptionCancelParams{})
	if err != nil {
		return fmt.Errorf("failed to cancel subscription %s: %w", subscriptionID, err)
	}
	return nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (adapter.BillingEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		g.log.Warn().Err(err).Msg("webhook signature verification failed")
		return adapter.BillingEvent{}, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return adapter.BillingEvent{}, fmt.Errorf("failed to unmarshal %s data: %w", event.Type, err)
		}
		ev := adapter.BillingEvent{
			Type:        adapter.BillingEventCheckoutCompleted,
			UserID:      sess.ClientReferenceID,
			AmountCents: sess.AmountTotal,
		}
		if sess.Customer != nil {
			ev.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			ev.SubscriptionID = sess.Subscription.ID
		}
		return ev, nil

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return adapter.BillingEvent{}, fmt.Errorf("failed to unmarshal %s data: %w", event.Type, err)
		}
		ev := adapter.BillingEvent{
			Type:           adapter.BillingEventSubscriptionCancelled,
			SubscriptionID: sub.ID,
		}
		if sub.Customer != nil {
			ev.CustomerID = sub.Customer.ID
		}
		return ev, nil

	default:
		g.log.Debug().Str("event_type", string(event.Type)).Msg("ignoring webhook event")
		return adapter.BillingEvent{Type: adapter.BillingEventIgnored}, nil
	}
}
