// File: cmd/app/main.go
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

	"clientcard-platform/internal/config"
	"clientcard-platform/internal/domain/ports/adapter"
	pg "clientcard-platform/internal/infra/db/postgres"
	"clientcard-platform/internal/infra/logging"
	"clientcard-platform/internal/infra/metrics"
	pay "clientcard-platform/internal/infra/payment"
	red "clientcard-platform/internal/infra/redis"
	"clientcard-platform/internal/infra/sched"
	"clientcard-platform/internal/infra/web"
	"clientcard-platform/internal/infra/worker"
	"clientcard-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	profileCache := red.NewProfileCache(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	userRepo := pg.NewUserRepoCacheInvalidator(pg.NewUserRepo(pool), profileCache)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient)
	subRepo := pg.NewSubscriptionRepo(pool)
	attemptRepo := pg.NewPaymentAttemptRepo(pool)
	tokenRepo := pg.NewTokenRepo(pool)
	referralRepo := pg.NewReferralRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = pay.NewNoopGateway()
	} else {
		gateway = pay.NewMobileMoneyGateway(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.Sandbox)
	}

	// ---- Background workers ----
	pool2 := worker.NewPool(4, logger)
	pool2.Start(ctx)
	defer pool2.Stop()
	tierSyncQueue := worker.NewTierSyncQueue(pool2, userRepo, logger)

	// ---- Use cases ----
	subUC := usecase.NewSubscriptionUseCase(subRepo, planRepo, userRepo, attemptRepo, gateway, tierSyncQueue, logger)
	tokenUC := usecase.NewTokenUseCase(tokenRepo, attemptRepo, gateway, txManager, logger)
	webhookUC := usecase.NewWebhookUseCase(attemptRepo, tokenRepo, subRepo, planRepo, userRepo, referralRepo, txManager, locker, tierSyncQueue, logger)
	affiliateUC := usecase.NewAffiliateUseCase(referralRepo)
	statsUC := usecase.NewStatsUseCase(userRepo, subRepo, tokenRepo, attemptRepo)
	userUC := usecase.NewUserUseCase(userRepo, referralRepo, profileCache, logger)

	// ---- Schedulers ----
	go sched.NewTierSyncWorker(userRepo, cfg.Scheduler.TierSyncInterval, logger).Start(ctx)
	go sched.NewExpiryWorker(subRepo, cfg.Scheduler.ExpiryInterval, logger).Start(ctx)
	go sched.NewAttemptReconciler(attemptRepo, cfg.Scheduler.ReconcileInterval, cfg.Scheduler.AttemptStaleAfter, cfg.Scheduler.ReconcileBatchSize, logger).Start(ctx)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Server.SessionSecret, !cfg.Runtime.Dev, cfg.Server.SessionTTL)
	server := web.NewServer(webhookUC, subUC, tokenUC, affiliateUC, statsUC, userUC, auth, cfg.Server.AdminAPIKey, cfg.Gateway.WebhookSecret, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(cfg.Server.RequestTimeout),
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
