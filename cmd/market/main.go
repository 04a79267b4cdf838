package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/missionmarket/mission-market-go/internal/config"
	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/handler"
	"github.com/missionmarket/mission-market-go/internal/infra/cache"
	"github.com/missionmarket/mission-market-go/internal/infra/localstore"
	"github.com/missionmarket/mission-market-go/internal/infra/observability"
	"github.com/missionmarket/mission-market-go/internal/infra/resilience"
	"github.com/missionmarket/mission-market-go/internal/infra/stripe"
	"github.com/missionmarket/mission-market-go/internal/service"
	"github.com/missionmarket/mission-market-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_path", cfg.DBPath),
		zap.Bool("stripe_configured", cfg.StripeSecretKey != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "mission-market")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Persistence ---
	kv, err := localstore.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("failed to open local store", zap.Error(err))
	}
	defer kv.Close()

	// --- Domain store ---
	st := store.New(kv, metrics, logger)
	st.Load(context.Background())

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("stripe")

	// --- Payment gateway ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gateway := stripe.NewClient(httpClient, cfg.StripeBaseURL, cfg.StripeSecretKey, cfg.AppURL, cb, resilienceCfg, logger)
	if !gateway.Configured() {
		logger.Warn("stripe: no secret key, payment routes answer in sandbox mode")
	}

	// --- Services ---
	sessionSvc := service.NewSessionService(st, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	paymentSvc := service.NewPaymentService(st, gateway, metrics, cfg.MaxConcurrency, logger)

	// --- Feed cache ---
	feed := cache.New[[]domain.Mission](cfg.CacheTTL)

	// --- Router ---
	router := handler.NewRouter(st, sessionSvc, paymentSvc, metrics, feed, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
