package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crop-advisory-service/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/crop-advisory-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/crop-advisory-service/internal/adapter/kafka"
	"github.com/couchcryptid/crop-advisory-service/internal/adapter/mlapi"
	"github.com/couchcryptid/crop-advisory-service/internal/adapter/postgres"
	"github.com/couchcryptid/crop-advisory-service/internal/advisory"
	"github.com/couchcryptid/crop-advisory-service/internal/config"
	"github.com/couchcryptid/crop-advisory-service/internal/dataset"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
	"github.com/couchcryptid/crop-advisory-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table := loadReference(ctx, cfg, logger)
	metrics.ReferenceRows.WithLabelValues("usable").Set(float64(table.Len() - table.Malformed()))
	metrics.ReferenceRows.WithLabelValues("malformed").Set(float64(table.Malformed()))

	recommender := buildRecommender(cfg, table, logger, metrics)
	svc := advisory.NewService(recommender, cfg.DefaultTopN, logger, metrics)

	checks := readiness{table}

	var (
		p      *pipeline.Pipeline
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p = pipeline.New(reader, pipeline.NewTransformer(svc, logger), writer, logger, metrics, cfg.BatchSize)
		checks = append(checks, p)
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, table, checks,
		httpadapter.Options{BearerToken: cfg.APIBearerToken}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start advisory pipeline.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
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
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadReference resolves the configured reference source. A load failure
// leaves the service running with an unavailable table so requests get the
// empty-advisory answer instead of a crash.
func loadReference(ctx context.Context, cfg *config.Config, logger *slog.Logger) *dataset.Table {
	var (
		table  *dataset.Table
		err    error
		source string
	)
	switch {
	case cfg.ReferenceDatabaseURL != "":
		source = "postgres"
		var store *postgres.Store
		store, err = postgres.New(ctx, cfg.ReferenceDatabaseURL)
		if err == nil {
			table, err = store.LoadReference(ctx)
			store.Close()
		}
	case cfg.ReferenceDataPath != "":
		source = cfg.ReferenceDataPath
		table, err = dataset.LoadFile(cfg.ReferenceDataPath)
	default:
		source = dataset.BundledName
		table, err = dataset.Bundled()
	}

	if err != nil {
		logger.Error("reference data unavailable", "source", source, "error", err)
		return dataset.Unavailable(err)
	}

	logger.Info("reference data loaded",
		"source", source,
		"rows", table.Len(),
		"malformed", table.Malformed(),
		"crops", len(table.Labels()),
	)
	return table
}

// buildRecommender returns the local ranker, or the remote model with a
// result cache and local fallback when the ML API is enabled.
func buildRecommender(cfg *config.Config, table *dataset.Table, logger *slog.Logger, metrics *observability.Metrics) domain.Recommender {
	local := domain.NewLocalRecommender(table)
	if !cfg.MLAPIEnabled {
		metrics.MLEnabled.Set(0)
		logger.Info("ml recommendations disabled")
		return withCache(local, cfg.RecommendationCacheSize, metrics)
	}

	metrics.MLEnabled.Set(1)
	client := mlapi.NewClient(cfg.MLAPIURL, cfg.MLAPITimeout, metrics, logger)
	logger.Info("ml recommendations enabled",
		"url", cfg.MLAPIURL,
		"timeout", cfg.MLAPITimeout,
		"cache_size", cfg.RecommendationCacheSize,
	)
	return advisory.NewFallbackRecommender(withCache(client, cfg.RecommendationCacheSize, metrics), local, logger, metrics)
}

func withCache(r domain.Recommender, size int, metrics *observability.Metrics) domain.Recommender {
	if size <= 0 {
		return r
	}
	return cache.NewCachedRecommender(r, size, metrics)
}

// readiness reports ready only when every component is.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
