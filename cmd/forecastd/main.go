package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/climate-forecast-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-forecast-engine/internal/adapter/kafka"
	"github.com/couchcryptid/climate-forecast-engine/internal/adapter/mapbox"
	"github.com/couchcryptid/climate-forecast-engine/internal/adapter/power"
	"github.com/couchcryptid/climate-forecast-engine/internal/config"
	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
	"github.com/couchcryptid/climate-forecast-engine/internal/observability"
	"github.com/couchcryptid/climate-forecast-engine/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	archive := power.NewClient(power.Options{
		BaseURL:    cfg.PowerBaseURL,
		Timeout:    cfg.PowerTimeout,
		RateLimit:  cfg.PowerRateLimit,
		MaxRetries: cfg.PowerMaxRetries,
	}, metrics, logger)
	fetcher := pipeline.NewFetcher(archive, cfg.PowerConcurrency, logger, metrics)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("forecast publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaForecastTopic)
	}

	if cfg.RandomSeed != nil {
		logger.Warn("fixed random seed configured, forecasts are reproducible", "seed", *cfg.RandomSeed)
	}

	p := pipeline.New(fetcher, pipeline.Options{
		HistoryYears: cfg.HistoryYears,
		Rand:         pipeline.NewRandSource(cfg.RandomSeed),
		Geocoder:     geocoder,
		Publisher:    publisher,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Fail readiness first so load balancers stop routing new forecasts.
	p.Drain()

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

	logger.Info("shutdown complete")
}
