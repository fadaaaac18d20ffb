package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dartview/dartview-go/internal/config"
	"github.com/dartview/dartview-go/internal/directory"
	"github.com/dartview/dartview-go/internal/handler"
	"github.com/dartview/dartview-go/internal/infra/cache"
	"github.com/dartview/dartview-go/internal/infra/gemini"
	"github.com/dartview/dartview-go/internal/infra/observability"
	"github.com/dartview/dartview-go/internal/infra/opendart"
	"github.com/dartview/dartview-go/internal/infra/resilience"
	"github.com/dartview/dartview-go/internal/port"
	"github.com/dartview/dartview-go/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("gemini_model", cfg.GeminiModel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	if cfg.OpenDartAPIKey == "" {
		logger.Fatal("DART_API_KEY is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "dartview")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Corporation directory ---
	dir, err := directory.Load(cfg.ListedCorpsPath)
	if err != nil {
		// searchable but empty; run corpsync to populate the file
		logger.Warn("corporation directory unavailable",
			zap.String("path", cfg.ListedCorpsPath),
			zap.Error(err),
		)
		dir = directory.New(nil)
	}
	logger.Info("corporation directory loaded", zap.Int("companies", dir.Len()))

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("opendart")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	dartClient := opendart.NewClient(httpClient, cfg.OpenDartBaseURL, cfg.OpenDartAPIKey, cb, resilienceCfg)

	var generator port.ExplanationGenerator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxConcurrency, metrics)
		if err != nil {
			logger.Fatal("failed to create gemini client", zap.Error(err))
		}
		generator = geminiClient
	} else {
		logger.Warn("GEMINI_API_KEY not set, explanations will use the fallback text")
	}

	// --- Services ---
	explanationCache := cache.New[string](cfg.CacheTTL)

	searchSvc := service.NewSearchService(dir, metrics, logger)
	stmtSvc := service.NewStatementService(dartClient, metrics, logger)
	explainSvc := service.NewExplainService(generator, explanationCache, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(searchSvc, stmtSvc, explainSvc, dir, metrics, logger)

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
