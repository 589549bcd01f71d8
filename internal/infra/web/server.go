package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/config"
	"github.com/bekimbicaku/scan-perks/internal/usecase"
)

// RateLimiter is the slice of the redis limiter the scan endpoint needs.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	scanUC     usecase.ScanUseCase
	rewardUC   usecase.RewardUseCase
	businessUC usecase.BusinessUseCase
	offerUC    usecase.OfferUseCase
	qrUC       usecase.QRUseCase
	billingUC  usecase.BillingUseCase
	statsUC    usecase.StatsUseCase
	userUC     usecase.UserUseCase

	auth      *AuthManager
	limiter   RateLimiter
	rateLimit int
	rateWin   time.Duration
	log       *zerolog.Logger
}

func NewServer(
	scanUC usecase.ScanUseCase,
	rewardUC usecase.RewardUseCase,
	businessUC usecase.BusinessUseCase,
	offerUC usecase.OfferUseCase,
	qrUC usecase.QRUseCase,
	billingUC usecase.BillingUseCase,
	statsUC usecase.StatsUseCase,
	userUC usecase.UserUseCase,
	auth *AuthManager,
	limiter RateLimiter,
	scanCfg config.ScanConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		scanUC:     scanUC,
		rewardUC:   rewardUC,
		businessUC: businessUC,
		offerUC:    offerUC,
		qrUC:       qrUC,
		billingUC:  billingUC,
		statsUC:    statsUC,
		userUC:     userUC,
		auth:       auth,
		limiter:    limiter,
		rateLimit:  scanCfg.RateLimit,
		rateWin:    scanCfg.RateWindow,
		log:        logger,
	}
}

// Router assembles the full HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(traceID)
	r.Use(recoverer(s.log))
	r.Use(requestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Stripe calls this; signature-verified, no bearer token.
	r.Post("/webhook/stripe", s.stripeWebhookHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/session", s.sessionHandler)

		// Minting dynamic codes authenticates with the business API key
		// instead of a user token (point-of-sale integrations).
		r.Post("/codes/dynamic", s.mintDynamicHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Post("/scan", s.scanHandler)

			r.Get("/rewards", s.rewardsListHandler)
			r.Post("/rewards/{id}/redeem", s.rewardRedeemHandler)

			r.Post("/business", s.businessRegisterHandler)
			r.Get("/business", s.businessGetHandler)
			r.Post("/business/setup", s.businessSetupHandler)
			r.Delete("/business", s.businessDeleteHandler)
			r.Get("/business/loyalty-settings", s.loyaltySettingsGetHandler)
			r.Put("/business/loyalty-settings", s.loyaltySettingsUpdateHandler)
			r.Get("/business/qr", s.staticCodeHandler)
			r.Get("/business/stats", s.dashboardHandler)

			r.Post("/offers", s.offerCreateHandler)
			r.Get("/offers/{businessID}", s.offersListHandler)
			r.Post("/offers/{id}/view", s.offerViewHandler)
			r.Post("/offers/{id}/claim", s.offerClaimHandler)

			r.Post("/billing/checkout", s.checkoutHandler)
			r.Post("/billing/portal", s.portalHandler)
			r.Post("/billing/cancel", s.cancelHandler)
		})
	})

	return r
}
