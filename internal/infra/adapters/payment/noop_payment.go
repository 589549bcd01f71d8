package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/bekimbicaku/scan-perks/internal/domain/ports/adapter"
)

var _ adapter.BillingGateway = (*NoopBillingGateway)(nil)

// NoopBillingGateway is a simple in-memory gateway to use in tests and dev
// mode where no Stripe keys exist.
type NoopBillingGateway struct {
	mu        sync.Mutex
	seq       int64
	Cancelled []string
}

func NewNoopBillingGateway() *NoopBillingGateway {
	return &NoopBillingGateway{}
}

func (g *NoopBillingGateway) Name() string { return "noop" }

func (g *NoopBillingGateway) next() string {
	g.seq++
	return fmt.Sprintf("noop-%d", g.seq)
}

func (g *NoopBillingGateway) CreateCheckoutSession(ctx context.Context, userID, customerEmail, priceID, successURL, cancelURL string) (adapter.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next()
	return adapter.CheckoutSession{
		ID:  id,
		URL: "https://example.test/checkout/" + id,
	}, nil
}

func (g *NoopBillingGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return "https://example.test/portal/" + customerID, nil
}

func (g *NoopBillingGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Cancelled = append(g.Cancelled, subscriptionID)
	return nil
}

func (g *NoopBillingGateway) ParseWebhook(payload []byte, signature string) (adapter.BillingEvent, error) {
	return adapter.BillingEvent{Type: adapter.BillingEventIgnored}, nil
}
