package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/opencovid-fr/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/opencovid-fr/internal/adapter/kafka"
	"github.com/couchcryptid/opencovid-fr/internal/adapter/opendata"
	"github.com/couchcryptid/opencovid-fr/internal/adapter/sqlite"
	"github.com/couchcryptid/opencovid-fr/internal/config"
	"github.com/couchcryptid/opencovid-fr/internal/dashboard"
	"github.com/couchcryptid/opencovid-fr/internal/forecast"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
	"github.com/couchcryptid/opencovid-fr/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	table := geo.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []pipeline.LoaderOption{pipeline.WithClock(clock)}

	// Optional on-disk payload store (enabled via CACHE_DB_PATH).
	var store *sqlite.Store
	if cfg.CacheDBPath != "" {
		store, err = sqlite.Open(ctx, cfg.CacheDBPath, clock, logger)
		if err != nil {
			logger.Error("failed to open payload store", "path", cfg.CacheDBPath, "error", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithPayloadStore(store, cfg.CacheMaxAge))
		logger.Info("payload store enabled", "path", cfg.CacheDBPath)
		logStoredPayloads(ctx, store, logger)
	} else {
		logger.Info("payload store disabled")
	}

	fetcher := opendata.NewFetcher(cfg.FetchTimeout, metrics, logger)
	loader := pipeline.NewLoader(fetcher, table, pipeline.Sources{
		National:            cfg.NationalURL,
		DepartmentTests:     cfg.DepartmentTestsURL,
		NationalIncidence:   cfg.NationalIncidenceURL,
		DepartmentIncidence: cfg.DepartmentIncidenceURL,
	}, metrics, logger, opts...)
	cache := pipeline.NewCache(loader, clock, cfg.CacheMaxAge, metrics, logger)

	// Optional snapshot publishing (enabled via KAFKA_ENABLED / KAFKA_BROKERS).
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, table, metrics, logger)
		cache.OnLoad(writer.PublishSnapshot)
		logger.Info("kafka snapshots enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka snapshots disabled")
	}

	forecaster := forecast.New(forecast.SARIMA, cfg.ForecastCacheSize, metrics, logger)
	svc := dashboard.NewService(cache, forecaster, table, cfg.ForecastHorizon, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cache, svc, cache, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the dataset so /readyz turns green without waiting for a request.
	if cfg.Preload {
		go func() {
			if _, err := cache.Load(ctx); err != nil {
				logger.Error("preload failed", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("payload store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func logStoredPayloads(ctx context.Context, store *sqlite.Store, logger *slog.Logger) {
	for _, source := range []string{
		pipeline.SourceNational,
		pipeline.SourceDepartmentTests,
		pipeline.SourceNationalIncidence,
		pipeline.SourceDepartmentIncidence,
	} {
		history, err := store.History(ctx, source, 1)
		if err != nil {
			logger.Warn("payload history unavailable", "source", source, "error", err)
			continue
		}
		if len(history) == 0 {
			logger.Info("no stored payload", "source", source)
			continue
		}
		logger.Info("stored payload found", "source", source, "fetched_at", history[0].FetchedAt, "hash", history[0].Hash)
	}
}
