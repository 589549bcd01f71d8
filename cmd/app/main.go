package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/config"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/adapter"
	payAdapters "github.com/bekimbicaku/scan-perks/internal/infra/adapters/payment"
	pg "github.com/bekimbicaku/scan-perks/internal/infra/db/postgres"
	"github.com/bekimbicaku/scan-perks/internal/infra/logging"
	"github.com/bekimbicaku/scan-perks/internal/infra/metrics"
	"github.com/bekimbicaku/scan-perks/internal/infra/qr"
	red "github.com/bekimbicaku/scan-perks/internal/infra/redis"
	"github.com/bekimbicaku/scan-perks/internal/infra/sched"
	"github.com/bekimbicaku/scan-perks/internal/infra/web"
	"github.com/bekimbicaku/scan-perks/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop billing fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	txManager := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	businessRepo := pg.NewBusinessRepoCacheDecorator(pg.NewBusinessRepo(pool), redisClient, cfg.Redis.TTL)
	settingsRepo := pg.NewLoyaltySettingsRepo(pool)
	scanRepo := pg.NewScanRecordRepo(pool)
	statsRepo := pg.NewStatsRepo(pool)
	rewardRepo := pg.NewRewardRepo(pool)
	offerRepo := pg.NewOfferRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	codeRepo := pg.NewDynamicCodeRepo(pool)

	// ---- Billing gateway ----
	var gateway adapter.BillingGateway
	if cfg.Stripe.SecretKey != "" {
		gateway, err = payAdapters.NewStripeGateway(&cfg.Stripe, *logger)
		if err != nil {
			log.Fatalf("stripe gateway: %v", err)
		}
	} else if cfg.Runtime.Dev {
		logger.Warn().Msg("no stripe key configured; using noop billing gateway")
		gateway = payAdapters.NewNoopBillingGateway()
	} else {
		log.Fatalf("stripe.secret_key is required outside dev mode")
	}

	// ---- Use cases ----
	scanUC := usecase.NewScanUseCase(businessRepo, settingsRepo, scanRepo, statsRepo, rewardRepo, txManager, logger)
	rewardUC := usecase.NewRewardUseCase(rewardRepo, logger)
	businessUC := usecase.NewBusinessUseCase(businessRepo, settingsRepo, codeRepo, logger)
	offerUC := usecase.NewOfferUseCase(offerRepo, businessRepo, planRepo, logger)
	qrUC := usecase.NewQRUseCase(businessRepo, codeRepo, qr.NewRenderer(), logger)
	billingUC := usecase.NewBillingUseCase(userRepo, businessRepo, planRepo, codeRepo, gateway, usecase.BillingRedirects{
		SuccessURL:      cfg.Stripe.SuccessURL,
		CancelURL:       cfg.Stripe.CancelURL,
		PortalReturnURL: cfg.Stripe.PortalReturnURL,
	}, logger)
	statsUC := usecase.NewStatsUseCase(statsRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, logger)

	// ---- HTTP server ----
	authMgr := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := web.NewServer(scanUC, rewardUC, businessUC, offerUC, qrUC, billingUC, statsUC, userUC,
		authMgr, rateLimiter, cfg.Scan, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Background workers ----
	sweepWorker := sched.NewRewardSweepWorker(cfg.Workers.RewardSweepInterval, rewardUC, logger)
	go func() { _ = sweepWorker.Run(ctx) }()

	purgeWorker := sched.NewCodePurgeWorker(cfg.Workers.CodePurgeInterval, qrUC, logger)
	go func() { _ = purgeWorker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
