package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	httpadapter "github.com/couchcryptid/tariff-events-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tariff-events-etl/internal/adapter/kafka"
	"github.com/couchcryptid/tariff-events-etl/internal/adapter/newsapi"
	"github.com/couchcryptid/tariff-events-etl/internal/adapter/samplefile"
	"github.com/couchcryptid/tariff-events-etl/internal/config"
	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/couchcryptid/tariff-events-etl/internal/observability"
	"github.com/couchcryptid/tariff-events-etl/internal/pipeline"
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

	var ref *domain.CountryReference
	if cfg.CountryCodesPath == "" {
		ref, err = domain.Countries()
	} else {
		ref, err = domain.LoadCountryReferenceFile(cfg.CountryCodesPath)
	}
	if err != nil {
		logger.Warn("country reference degraded", "path", cfg.CountryCodesPath, "error", err)
		metrics.ReferenceFallback.Set(1)
	}
	logger.Info("country reference loaded", "codes", ref.Len(), "fallback", ref.Fallback())

	var opts []domain.NormalizerOption
	if cfg.NameMatchingEnabled {
		opts = append(opts, domain.WithNameMatching())
	}
	normalizer := domain.NewNormalizer(ref, opts...)

	// Events API client (feature-flagged via NEWSAPI_TOKEN).
	var (
		primary pipeline.BatchFetcher
		api     *newsapi.Client
	)
	if cfg.NewsAPIEnabled() {
		api = newsapi.NewClient(cfg.NewsAPIToken, cfg.NewsAPIBaseURL, cfg.NewsAPITimeout, logger, metrics)
		primary = newsapi.NewCachedClient(api, cfg.NewsAPICacheSize, cfg.NewsAPICacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("events api enabled", "base_url", cfg.NewsAPIBaseURL, "cache_ttl", cfg.NewsAPICacheTTL, "cache_size", cfg.NewsAPICacheSize)
	} else {
		logger.Info("events api disabled, serving sample data", "path", cfg.SampleDataPath)
	}

	var (
		extractor pipeline.BatchExtractor
		reader    *kafkaadapter.Reader
	)
	switch cfg.SourceMode {
	case config.SourceAPI:
		// The poller bypasses the cache: every poll must see fresh results.
		q := domain.Query{Hours: cfg.NewsAPILookbackHours}
		extractor = newsapi.NewPoller(api, q, cfg.NewsAPIPollInterval, clockwork.NewRealClock(), logger)
		logger.Info("polling events api", "interval", cfg.NewsAPIPollInterval, "lookback_hours", q.LookbackHours())
	default:
		reader = kafkaadapter.NewReader(cfg, logger)
		extractor = reader
	}

	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(normalizer, logger, metrics)

	p := pipeline.New(extractor, transformer, writer, logger, metrics, cfg.BatchSize)

	reporter := pipeline.NewReporter(primary, samplefile.NewLoader(cfg.SampleDataPath), normalizer, ref, logger, metrics)
	var ready sharedobs.ReadinessChecker = p
	if cfg.SourceMode == config.SourceAPI {
		ready = observability.AllReady(p, api)
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, reporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
