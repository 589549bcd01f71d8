package adapter

import "context"

// CheckoutSession is a provider-hosted checkout the caller redirects to.
type CheckoutSession struct {
	ID  string
	URL string
}

type BillingEventType string

const (
	// BillingEventCheckoutCompleted fires when a checkout session is paid.
	BillingEventCheckoutCompleted BillingEventType = "checkout_completed"
	// BillingEventSubscriptionCancelled fires when a recurring subscription ends.
	BillingEventSubscriptionCancelled BillingEventType = "subscription_cancelled"
	// BillingEventIgnored covers provider events this service does not act on.
	BillingEventIgnored BillingEventType = "ignored"
)

// BillingEvent is a provider-neutral webhook notification.
type BillingEvent struct {
	Type           BillingEventType
	UserID         string // client reference id set at checkout
	CustomerID     string // provider customer id
	SubscriptionID string // provider subscription id
	AmountCents    int64
}

// BillingGateway is the hex port for the subscription payment provider.
type BillingGateway interface {
	Name() string

	// CreateCheckoutSession starts a hosted subscription checkout; userID is
	// carried through as the client reference so the webhook can attribute the
	// payment.
	CreateCheckoutSession(ctx context.Context, userID, customerEmail, priceID, successURL, cancelURL string) (CheckoutSession, error)
	// CreatePortalSession returns a hosted billing-portal URL for an existing
	// customer.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	// ParseWebhook verifies the signature and maps the provider event onto a
	// neutral BillingEvent.
	ParseWebhook(payload []byte, signature string) (BillingEvent, error)
}
