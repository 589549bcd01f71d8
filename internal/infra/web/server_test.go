//go:build !integration

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/config"
	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/infra/metrics"
	"github.com/bekimbicaku/scan-perks/internal/infra/web"
	"github.com/bekimbicaku/scan-perks/internal/usecase"
)

// ---- usecase stubs; each method delegates to a func field when set ----

type stubScanUC struct {
	recordScan func(ctx context.Context, userID, payload string) (*model.ScanOutcome, error)
}

func (s *stubScanUC) RecordScan(ctx context.Context, userID, payload string) (*model.ScanOutcome, error) {
	return s.recordScan(ctx, userID, payload)
}

type stubRewardUC struct {
	listActive func(ctx context.Context, userID string) ([]*model.Reward, error)
	redeem     func(ctx context.Context, userID, rewardID string) (*model.Reward, error)
}

func (s *stubRewardUC) ListActive(ctx context.Context, userID string) ([]*model.Reward, error) {
	return s.listActive(ctx, userID)
}

func (s *stubRewardUC) Redeem(ctx context.Context, userID, rewardID string) (*model.Reward, error) {
	return s.redeem(ctx, userID, rewardID)
}

func (s *stubRewardUC) SweepExpired(ctx context.Context, from, to time.Time) (int, error) {
	return 0, nil
}

type stubBusinessUC struct {
	get func(ctx context.Context, businessID string) (*model.Business, error)
}

func (s *stubBusinessUC) Register(ctx context.Context, ownerID string, params usecase.RegisterBusinessParams) (*model.Business, error) {
	return nil, domain.ErrInvalidArgument
}

func (s *stubBusinessUC) Get(ctx context.Context, businessID string) (*model.Business, error) {
	if s.get != nil {
		return s.get(ctx, businessID)
	}
	return nil, domain.ErrBusinessNotFound
}

func (s *stubBusinessUC) CompleteSetup(ctx context.Context, ownerID string, qrType model.QRType) (*model.Business, error) {
	return nil, domain.ErrBusinessNotFound
}

func (s *stubBusinessUC) LoyaltySettings(ctx context.Context, businessID string) (*model.LoyaltySettings, error) {
	return nil, domain.ErrBusinessNotFound
}

func (s *stubBusinessUC) UpdateLoyaltySettings(ctx context.Context, ownerID string, scansRequired int, reward string) (*model.LoyaltySettings, error) {
	return nil, domain.ErrBusinessNotFound
}

func (s *stubBusinessUC) Delete(ctx context.Context, ownerID string) error {
	return domain.ErrBusinessNotFound
}

type stubOfferUC struct{}

func (stubOfferUC) Create(ctx context.Context, ownerID string, params usecase.CreateOfferParams) (*model.Offer, error) {
	return nil, domain.ErrBusinessNotFound
}

func (stubOfferUC) ListActive(ctx context.Context, businessID string) ([]*model.Offer, error) {
	return nil, nil
}

func (stubOfferUC) View(ctx context.Context, offerID string) error  { return nil }
func (stubOfferUC) Claim(ctx context.Context, offerID string) error { return nil }

type stubQRUC struct {
	validate func(ctx context.Context, p *model.QRPayload) error
	consumed []string
}

func (s *stubQRUC) GenerateStatic(ctx context.Context, ownerID string) (*usecase.GeneratedCode, error) {
	return nil, domain.ErrBusinessNotFound
}

func (s *stubQRUC) MintDynamic(ctx context.Context, apiKey, transactionID string, amountCents int64, metadata map[string]string) (*usecase.GeneratedCode, error) {
	return nil, domain.ErrInvalidAPIKey
}

func (s *stubQRUC) ValidateDynamic(ctx context.Context, p *model.QRPayload) error {
	if s.validate != nil {
		return s.validate(ctx, p)
	}
	return nil
}

func (s *stubQRUC) Consume(ctx context.Context, businessID, transactionID string) error {
	s.consumed = append(s.consumed, transactionID)
	return nil
}

func (s *stubQRUC) PurgeExpired(ctx context.Context) (int, error) { return 0, nil }

type stubBillingUC struct {
	webhookErr error
}

func (s *stubBillingUC) Checkout(ctx context.Context, userID string, planID model.PlanID) (string, error) {
	return "https://example.test/checkout", nil
}

func (s *stubBillingUC) Portal(ctx context.Context, userID string) (string, error) {
	return "https://example.test/portal", nil
}

func (s *stubBillingUC) Cancel(ctx context.Context, userID string) error { return nil }

func (s *stubBillingUC) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return s.webhookErr
}

type stubStatsUC struct{}

func (stubStatsUC) Dashboard(ctx context.Context, businessID string) (*usecase.BusinessDashboard, error) {
	return &usecase.BusinessDashboard{}, nil
}

type stubUserUC struct {
	findOrRegister func(ctx context.Context, email, displayName string) (*model.User, error)
}

func (s *stubUserUC) FindOrRegister(ctx context.Context, email, displayName string) (*model.User, error) {
	return s.findOrRegister(ctx, email, displayName)
}

func (s *stubUserUC) Get(ctx context.Context, userID string) (*model.User, error) {
	return nil, domain.ErrNotFound
}

type stubLimiter struct {
	allow bool
	err   error
}

func (s *stubLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return s.allow, s.err
}

// ---- fixture ----

type serverFixture struct {
	scan    *stubScanUC
	qr      *stubQRUC
	billing *stubBillingUC
	user    *stubUserUC
	limiter *stubLimiter
	auth    *web.AuthManager
	router  http.Handler
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	f := &serverFixture{
		scan: &stubScanUC{recordScan: func(ctx context.Context, userID, payload string) (*model.ScanOutcome, error) {
			return &model.ScanOutcome{TotalScans: 1, ScansUntilReward: 9}, nil
		}},
		qr:      &stubQRUC{},
		billing: &stubBillingUC{},
		user: &stubUserUC{findOrRegister: func(ctx context.Context, email, displayName string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, DisplayName: displayName}, nil
		}},
		limiter: &stubLimiter{allow: true},
		auth:    web.NewAuthManager("test-secret", time.Hour),
	}
	logger := zerolog.New(io.Discard)
	reward := &stubRewardUC{
		listActive: func(ctx context.Context, userID string) ([]*model.Reward, error) { return nil, nil },
		redeem: func(ctx context.Context, userID, rewardID string) (*model.Reward, error) {
			return nil, domain.ErrNotFound
		},
	}
	srv := web.NewServer(f.scan, reward, &stubBusinessUC{}, stubOfferUC{}, f.qr, f.billing,
		stubStatsUC{}, f.user, f.auth, f.limiter,
		config.ScanConfig{RateLimit: 10, RateWindow: time.Minute}, &logger)
	f.router = srv.Router()
	return f
}

func (f *serverFixture) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := f.auth.Mint(userID, userID+"@example.test")
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

// ---- tests ----

func TestScanEndpoint(t *testing.T) {
	staticPayload := `{"businessId":"biz-1"}`

	t.Run("accepted scan returns the outcome", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
			map[string]string{"payload": staticPayload})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		var out model.ScanOutcome
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.TotalScans != 1 || out.ScansUntilReward != 9 {
			t.Errorf("outcome = %+v", out)
		}
	})

	t.Run("rewards metric counts minted rewards only", func(t *testing.T) {
		f := newServerFixture(t)
		issued := []bool{true, false} // fresh milestone, then a crash-retry replay
		f.scan.recordScan = func(ctx context.Context, userID, payload string) (*model.ScanOutcome, error) {
			out := &model.ScanOutcome{TotalScans: 10, RewardEarned: true, RewardIssued: issued[0]}
			issued = issued[1:]
			return out, nil
		}
		before := testutil.ToFloat64(metrics.RewardsIssuedCounter())

		for i := 0; i < 2; i++ {
			rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
				map[string]string{"payload": staticPayload})
			if rec.Code != http.StatusOK {
				t.Fatalf("scan %d: status = %d, body %s", i, rec.Code, rec.Body)
			}
		}

		if got := testutil.ToFloat64(metrics.RewardsIssuedCounter()) - before; got != 1 {
			t.Errorf("rewards issued delta = %v, want 1 (replay minted nothing)", got)
		}
	})

	t.Run("rejects missing token", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.request(t, http.MethodPost, "/api/v1/scan", "",
			map[string]string{"payload": staticPayload})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.request(t, http.MethodPost, "/api/v1/scan", "not-a-jwt",
			map[string]string{"payload": staticPayload})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing payload is a bad request", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
			map[string]string{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("daily limit maps to 429 with a friendly message", func(t *testing.T) {
		f := newServerFixture(t)
		f.scan.recordScan = func(ctx context.Context, userID, payload string) (*model.ScanOutcome, error) {
			return nil, domain.ErrDailyLimitExceeded
		}
		rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
			map[string]string{"payload": staticPayload})
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want 429", rec.Code)
		}
		if !bytes.Contains(rec.Body.Bytes(), []byte("come back tomorrow")) {
			t.Errorf("body = %s", rec.Body)
		}
	})

	t.Run("unknown business maps to 404", func(t *testing.T) {
		f := newServerFixture(t)
		f.scan.recordScan = func(ctx context.Context, userID, payload string) (*model.ScanOutcome, error) {
			return nil, domain.ErrBusinessNotFound
		}
		rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
			map[string]string{"payload": staticPayload})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("rate limiter rejection is 429 before any scan work", func(t *testing.T) {
		f := newServerFixture(t)
		f.limiter.allow = false
		called := false
		f.scan.recordScan = func(ctx context.Context, userID, payload string) (*model.ScanOutcome, error) {
			called = true
			return &model.ScanOutcome{}, nil
		}
		rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
			map[string]string{"payload": staticPayload})
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("status = %d, want 429", rec.Code)
		}
		if called {
			t.Error("scan recorded despite the rate limit")
		}
	})

	t.Run("limiter outage does not block scanning", func(t *testing.T) {
		f := newServerFixture(t)
		f.limiter.err = errors.New("redis down")
		rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
			map[string]string{"payload": staticPayload})
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("dynamic codes validate before and burn after the scan", func(t *testing.T) {
		f := newServerFixture(t)
		dynamic := `{"businessId":"biz-1","type":"dynamic","transactionId":"tx-7","amount":500}`
		rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
			map[string]string{"payload": dynamic})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		if len(f.qr.consumed) != 1 || f.qr.consumed[0] != "tx-7" {
			t.Errorf("consumed = %v, want [tx-7]", f.qr.consumed)
		}
	})

	t.Run("rejected dynamic code never reaches scan accounting", func(t *testing.T) {
		f := newServerFixture(t)
		f.qr.validate = func(ctx context.Context, p *model.QRPayload) error { return domain.ErrCodeUsed }
		called := false
		f.scan.recordScan = func(ctx context.Context, userID, payload string) (*model.ScanOutcome, error) {
			called = true
			return &model.ScanOutcome{}, nil
		}
		dynamic := `{"businessId":"biz-1","transactionId":"tx-7"}`
		rec := f.request(t, http.MethodPost, "/api/v1/scan", f.token(t, "user-1"),
			map[string]string{"payload": dynamic})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
		if called {
			t.Error("scan recorded for a used code")
		}
	})
}

func TestSessionEndpoint(t *testing.T) {
	f := newServerFixture(t)
	rec := f.request(t, http.MethodPost, "/api/v1/auth/session", "",
		map[string]string{"email": "ana@example.test", "displayName": "Ana"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var out struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.User == nil || out.User.ID != "user-1" {
		t.Errorf("user = %+v", out.User)
	}

	// The minted token must open the authenticated surface.
	rec = f.request(t, http.MethodGet, "/api/v1/rewards", out.Token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("minted token rejected: %d %s", rec.Code, rec.Body)
	}
}

func TestStripeWebhookEndpoint(t *testing.T) {
	t.Run("processing failure returns non-2xx so the provider retries", func(t *testing.T) {
		f := newServerFixture(t)
		f.billing.webhookErr = errors.New("bad signature")
		req := httptest.NewRequest(http.MethodPost, "/webhook/stripe", bytes.NewReader([]byte("{}")))
		req.Header.Set("Stripe-Signature", "sig")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("accepted event returns 200", func(t *testing.T) {
		f := newServerFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/webhook/stripe", bytes.NewReader([]byte("{}")))
		req.Header.Set("Stripe-Signature", "sig")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	f := newServerFixture(t)
	rec := f.request(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
