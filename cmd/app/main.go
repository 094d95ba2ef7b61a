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

	"fitstudio-backend/internal/config"
	"fitstudio-backend/internal/infra/docstore"
	idinfra "fitstudio-backend/internal/infra/identity"
	"fitstudio-backend/internal/infra/logging"
	"fitstudio-backend/internal/infra/metrics"
	"fitstudio-backend/internal/infra/notify"
	red "fitstudio-backend/internal/infra/redis"
	"fitstudio-backend/internal/infra/web"
	"fitstudio-backend/internal/usecase"

	idport "fitstudio-backend/internal/domain/ports/identity"
	notifyport "fitstudio-backend/internal/domain/ports/notify"
	"fitstudio-backend/internal/domain/ports/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (in-memory identity, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := docstore.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Document store, redis cache in front when configured ----
	var st store.Store = docstore.NewPostgres(pool)
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		st = docstore.NewCacheDecorator(st, redisClient, cfg.Redis.TTL)
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set: cache and login rate limit disabled")
	}

	// ---- Identity provider ----
	var identity idport.Provider
	if cfg.Runtime.Dev || cfg.Identity.BaseURL == "" {
		logger.Warn().Msg("identity.base_url not set: using in-memory provider")
		identity = idinfra.NewNoopProvider()
	} else {
		identity, err = idinfra.NewRestProvider(cfg.Identity.BaseURL, cfg.Identity.APIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("identity")
		}
	}

	// ---- Reconcile notifier ----
	var notifier notifyport.Notifier = notify.NewNoopNotifier()
	if cfg.Telegram.Token != "" && cfg.Telegram.AdminChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.AdminChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		notifier = tg
	}

	// ---- Use cases ----
	planUC := usecase.NewPlanUseCase(st)
	clientUC := usecase.NewClientUseCase(st, identity, logger)
	subUC := usecase.NewSubscriptionUseCase(st, planUC, logger)
	financeUC := usecase.NewFinanceUseCase(st, notifier, logger)
	expenseUC := usecase.NewExpenseUseCase(st, logger)
	assessmentUC := usecase.NewAssessmentUseCase(st)

	// ---- HTTP ----
	srv := web.NewServer(web.ServerDeps{
		ClientUC:     clientUC,
		PlanUC:       planUC,
		SubUC:        subUC,
		FinanceUC:    financeUC,
		ExpenseUC:    expenseUC,
		AssessmentUC: assessmentUC,
		Identity:     identity,
		Limiter:      limiter,
		JWTSecret:    cfg.Session.JWTSecret,
		SessionTTL:   cfg.Session.TTL,
		Logger:       logger,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
