//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/adapter"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately with NoTX unless a test installs its
// own behavior via WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- In-memory BusinessRepository ----

type memBusinessRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Business
}

var _ repository.BusinessRepository = (*memBusinessRepo)(nil)

func newMemBusinessRepo() *memBusinessRepo {
	return &memBusinessRepo{store: make(map[string]*model.Business)}
}

func (m *memBusinessRepo) Save(ctx context.Context, tx repository.Tx, b *model.Business) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.store[b.ID] = &cp
	return nil
}

func (m *memBusinessRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBusinessRepo) FindByAPIKey(ctx context.Context, tx repository.Tx, apiKey string) (*model.Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.store {
		if b.APIKey == apiKey {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memBusinessRepo) SetPlan(ctx context.Context, tx repository.Tx, id string, plan model.PlanID, status model.PlanStatus, startedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Plan = plan
	b.PlanStatus = status
	b.PlanStartedAt = startedAt
	return nil
}

func (m *memBusinessRepo) Deactivate(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Active = false
	b.DeactivatedAt = &at
	return nil
}

func (m *memBusinessRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// ---- In-memory LoyaltySettingsRepository ----

type memSettingsRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.LoyaltySettings
	findErr error
}

var _ repository.LoyaltySettingsRepository = (*memSettingsRepo)(nil)

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{store: make(map[string]*model.LoyaltySettings)}
}

func (m *memSettingsRepo) Find(ctx context.Context, tx repository.Tx, businessID string) (*model.LoyaltySettings, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[businessID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSettingsRepo) Save(ctx context.Context, tx repository.Tx, s *model.LoyaltySettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.BusinessID] = &cp
	return nil
}

// ---- In-memory ScanRecordRepository ----

func scanKey(userID, businessID string) string { return userID + "|" + businessID }

type memScanRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.ScanRecord
	upsertErr error
}

var _ repository.ScanRecordRepository = (*memScanRepo)(nil)

func newMemScanRepo() *memScanRepo {
	return &memScanRepo{store: make(map[string]*model.ScanRecord)}
}

func (m *memScanRepo) Find(ctx context.Context, tx repository.Tx, userID, businessID string) (*model.ScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.store[scanKey(userID, businessID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memScanRepo) Upsert(ctx context.Context, tx repository.Tx, rec *model.ScanRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.store[scanKey(rec.UserID, rec.BusinessID)] = &cp
	return nil
}

// ---- In-memory StatsRepository ----

type memStatsRepo struct {
	mu          sync.RWMutex
	scanStats   map[string]*model.ScanStats
	rewardStats map[string]*model.RewardStats
	daily       map[string]*model.DailyStat // businessID|day
}

var _ repository.StatsRepository = (*memStatsRepo)(nil)

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{
		scanStats:   make(map[string]*model.ScanStats),
		rewardStats: make(map[string]*model.RewardStats),
		daily:       make(map[string]*model.DailyStat),
	}
}

func dayKey(businessID string, day time.Time) string {
	return businessID + "|" + day.Format("2006-01-02")
}

func (m *memStatsRepo) IncrementScanStats(ctx context.Context, tx repository.Tx, businessID string, firstVisit bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scanStats[businessID]
	if !ok {
		s = &model.ScanStats{BusinessID: businessID}
		m.scanStats[businessID] = s
	}
	s.TotalScans++
	if firstVisit {
		s.UniqueCustomers++
	}
	s.LastScanAt = at
	return nil
}

func (m *memStatsRepo) IncrementDailyBucket(ctx context.Context, tx repository.Tx, businessID string, day time.Time, firstVisit bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(businessID, day)
	d, ok := m.daily[key]
	if !ok {
		d = &model.DailyStat{BusinessID: businessID, Day: day}
		m.daily[key] = d
	}
	d.Scans++
	if firstVisit {
		d.UniqueCustomers++
	}
	return nil
}

func (m *memStatsRepo) IncrementRewardsIssued(ctx context.Context, tx repository.Tx, businessID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rewardStats[businessID]
	if !ok {
		s = &model.RewardStats{BusinessID: businessID}
		m.rewardStats[businessID] = s
	}
	s.TotalRewardsIssued++
	s.LastRewardIssuedAt = at
	return nil
}

func (m *memStatsRepo) FindScanStats(ctx context.Context, tx repository.Tx, businessID string) (*model.ScanStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scanStats[businessID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStatsRepo) FindRewardStats(ctx context.Context, tx repository.Tx, businessID string) (*model.RewardStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.rewardStats[businessID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStatsRepo) DailySeries(ctx context.Context, tx repository.Tx, businessID string, from, to time.Time) ([]*model.DailyStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.DailyStat
	for _, d := range m.daily {
		if d.BusinessID != businessID {
			continue
		}
		if d.Day.Before(from) || d.Day.After(to) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

// ---- In-memory RewardRepository ----

func rewardKey(userID, businessID string, totalScans int) string {
	return fmt.Sprintf("%s|%s|%d", userID, businessID, totalScans)
}

type memRewardRepo struct {
	mu        sync.RWMutex
	byID      map[string]*model.Reward
	byKey     map[string]string // milestone key -> reward id
	insertErr error
}

var _ repository.RewardRepository = (*memRewardRepo)(nil)

func newMemRewardRepo() *memRewardRepo {
	return &memRewardRepo{
		byID:  make(map[string]*model.Reward),
		byKey: make(map[string]string),
	}
}

func (m *memRewardRepo) Insert(ctx context.Context, tx repository.Tx, r *model.Reward) (bool, error) {
	if m.insertErr != nil {
		return false, m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := rewardKey(r.UserID, r.BusinessID, r.TotalScans)
	if _, exists := m.byKey[key]; exists {
		return false, nil
	}
	cp := *r
	m.byID[r.ID] = &cp
	m.byKey[key] = r.ID
	return true, nil
}

func (m *memRewardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Reward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRewardRepo) ListActive(ctx context.Context, tx repository.Tx, userID string, now time.Time) ([]*model.Reward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Reward
	for _, r := range m.byID {
		if r.UserID != userID || r.Redeemed || !r.ExpiresAt.After(now) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRewardRepo) SetRedeemed(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Redeemed = true
	r.RedeemedAt = &at
	return nil
}

func (m *memRewardRepo) CountExpiredUnredeemed(ctx context.Context, tx repository.Tx, from, to time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, r := range m.byID {
		if !r.Redeemed && r.ExpiresAt.After(from) && !r.ExpiresAt.After(to) {
			cnt++
		}
	}
	return cnt, nil
}

// ---- In-memory OfferRepository ----

type memOfferRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Offer
}

var _ repository.OfferRepository = (*memOfferRepo)(nil)

func newMemOfferRepo() *memOfferRepo {
	return &memOfferRepo{store: make(map[string]*model.Offer)}
}

func (m *memOfferRepo) Save(ctx context.Context, tx repository.Tx, o *model.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *memOfferRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOfferRepo) ListActive(ctx context.Context, tx repository.Tx, businessID string, now time.Time) ([]*model.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Offer
	for _, o := range m.store {
		if o.BusinessID == businessID && o.ActiveAt(now) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOfferRepo) CountSince(ctx context.Context, tx repository.Tx, businessID string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, o := range m.store {
		if o.BusinessID == businessID && !o.SentAt.Before(since) {
			cnt++
		}
	}
	return cnt, nil
}

func (m *memOfferRepo) IncrementViews(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Views++
	return nil
}

func (m *memOfferRepo) IncrementClaims(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Claims++
	return nil
}

// ---- In-memory PlanRepository ----

type memPlanRepo struct {
	mu    sync.RWMutex
	store map[model.PlanID]*model.Plan
}

var _ repository.PlanRepository = (*memPlanRepo)(nil)

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[model.PlanID]*model.Plan)}
}

func (m *memPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id model.PlanID) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Plan
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// ---- In-memory UserRepository ----

type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) FindByStripeCustomerID(ctx context.Context, tx repository.Tx, customerID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.StripeCustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) UpdateBilling(ctx context.Context, tx repository.Tx, userID, stripeCustomerID, stripeSubscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.StripeCustomerID = stripeCustomerID
	u.StripeSubscriptionID = stripeSubscriptionID
	return nil
}

// ---- In-memory DynamicCodeRepository ----

type memCodeRepo struct {
	mu    sync.RWMutex
	store map[string]*model.DynamicCode
}

var _ repository.DynamicCodeRepository = (*memCodeRepo)(nil)

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{store: make(map[string]*model.DynamicCode)}
}

func codeKey(businessID, transactionID string) string { return businessID + "|" + transactionID }

func (m *memCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.DynamicCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := codeKey(c.BusinessID, c.TransactionID)
	if _, exists := m.store[key]; exists {
		return domain.ErrAlreadyExists
	}
	cp := *c
	m.store[key] = &cp
	return nil
}

func (m *memCodeRepo) Find(ctx context.Context, tx repository.Tx, businessID, transactionID string) (*model.DynamicCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[codeKey(businessID, transactionID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, businessID, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[codeKey(businessID, transactionID)]
	if !ok || c.Used {
		return domain.ErrCodeUsed
	}
	c.Used = true
	return nil
}

func (m *memCodeRepo) DeleteExpired(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, c := range m.store {
		if !c.ExpiresAt.After(cutoff) {
			delete(m.store, k)
			n++
		}
	}
	return n, nil
}

func (m *memCodeRepo) DeactivateByBusiness(ctx context.Context, tx repository.Tx, businessID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, c := range m.store {
		if c.BusinessID == businessID && !c.Used {
			delete(m.store, k)
		}
	}
	return nil
}

// ---- Stub QRRenderer ----

type stubRenderer struct{}

var _ adapter.QRRenderer = (*stubRenderer)(nil)

func (stubRenderer) RenderDataURL(payload string) (string, error) {
	return "data:image/png;base64,stub", nil
}

// ---- Mock BillingGateway ----

type mockGateway struct {
	mu        sync.Mutex
	Sessions  []string // user ids that started checkout
	Cancelled []string
	Event     adapter.BillingEvent
	EventErr  error
}

var _ adapter.BillingGateway = (*mockGateway)(nil)

func newMockGateway() *mockGateway { return &mockGateway{} }

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) CreateCheckoutSession(ctx context.Context, userID, customerEmail, priceID, successURL, cancelURL string) (adapter.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sessions = append(g.Sessions, userID)
	return adapter.CheckoutSession{ID: "cs_test", URL: "https://example.test/checkout/cs_test"}, nil
}

func (g *mockGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return "https://example.test/portal/" + customerID, nil
}

func (g *mockGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Cancelled = append(g.Cancelled, subscriptionID)
	return nil
}

func (g *mockGateway) ParseWebhook(payload []byte, signature string) (adapter.BillingEvent, error) {
	if g.EventErr != nil {
		return adapter.BillingEvent{}, g.EventErr
	}
	return g.Event, nil
}
