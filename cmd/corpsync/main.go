// Command corpsync downloads the OpenDART corporation directory and writes
// the JSON files the viewer loads at startup. Run it once before first
// start and again whenever the directory should be refreshed.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/dartview/dartview-go/internal/config"
	"github.com/dartview/dartview-go/internal/directory"
	"github.com/dartview/dartview-go/internal/infra/observability"
	"github.com/dartview/dartview-go/internal/infra/opendart"
	"github.com/dartview/dartview-go/internal/infra/resilience"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.OpenDartAPIKey == "" {
		logger.Fatal("DART_API_KEY is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	cb := resilience.NewCircuitBreaker("opendart")
	client := opendart.NewClient(httpClient, cfg.OpenDartBaseURL, cfg.OpenDartAPIKey, cb, resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	})

	logger.Info("downloading corporation directory")
	archive, err := client.FetchCorpCodeArchive(ctx)
	if err != nil {
		logger.Fatal("download failed", zap.Error(err))
	}
	logger.Info("archive downloaded", zap.Int("bytes", len(archive)))

	companies, err := directory.ParseCorpCodeArchive(archive)
	if err != nil {
		logger.Fatal("archive parse failed", zap.Error(err))
	}

	listed := 0
	for _, c := range companies {
		if c.Listed() {
			listed++
		}
	}
	logger.Info("directory parsed",
		zap.Int("companies", len(companies)),
		zap.Int("listed", listed),
	)

	if err := directory.WriteFiles(ctx, companies, cfg.CorpsPath, cfg.ListedCorpsPath); err != nil {
		logger.Fatal("writing directory files failed", zap.Error(err))
	}

	logger.Info("directory files written",
		zap.String("corps", cfg.CorpsPath),
		zap.String("listed_corps", cfg.ListedCorpsPath),
	)
}
