package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/veripay/veripay/internal/adapter/http"
	"github.com/veripay/veripay/internal/adapter/http/handler"
	postgresRepo "github.com/veripay/veripay/internal/adapter/repository/postgres"
	redisRepo "github.com/veripay/veripay/internal/adapter/repository/redis"
	"github.com/veripay/veripay/internal/extractor"
	"github.com/veripay/veripay/internal/forensics"
	"github.com/veripay/veripay/internal/infrastructure/config"
	"github.com/veripay/veripay/internal/infrastructure/logger"
	"github.com/veripay/veripay/internal/infrastructure/metrics"
	"github.com/veripay/veripay/internal/infrastructure/postgres"
	"github.com/veripay/veripay/internal/infrastructure/redis"
	"github.com/veripay/veripay/internal/recon"
	"github.com/veripay/veripay/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories and stores
	retrier := postgresRepo.NewRetrier(log)
	txManager := postgresRepo.NewTxManager(pool)
	captureRepo := postgresRepo.NewCaptureRepository(pool, retrier)
	reconRepo := postgresRepo.NewReconciliationRepository(pool)
	dedupStore := redisRepo.NewDedupStore(redisClient)
	runCache := redisRepo.NewReportCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Core engines
	fieldExtractor := extractor.New(cfg.ExtractorConfig(), log)
	tamperAnalyzer := forensics.New(cfg.ForensicsConfig(), log)
	reconEngine := recon.New(cfg.ReconConfig(), log)

	// Use cases
	verifyUC := usecase.NewVerificationUseCase(captureRepo, dedupStore, fieldExtractor, tamperAnalyzer, idGen, cfg.DedupeTTL)
	reconUC := usecase.NewReconciliationUseCase(captureRepo, reconRepo, txManager, reconEngine, idGen)

	// Handlers
	captureHandler := handler.NewCaptureHandler(verifyUC, m)
	reconcileHandler := handler.NewReconcileHandler(reconUC, runCache, m, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		CaptureHandler:   captureHandler,
		ReconcileHandler: reconcileHandler,
		HealthHandler:    healthHandler,
		Logger:           log,
		RateLimit:        cfg.RateLimitRPS,
		RateBurst:        cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
