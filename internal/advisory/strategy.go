package advisory

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
)

// FallbackRecommender tries a primary strategy and degrades to a fallback
// when the primary errors or ranks nothing. Fallback errors are returned
// unchanged so callers can match domain.ErrDataUnavailable.
type FallbackRecommender struct {
	primary  domain.Recommender
	fallback domain.Recommender
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewFallbackRecommender chains primary in front of fallback.
func NewFallbackRecommender(primary, fallback domain.Recommender, logger *slog.Logger, metrics *observability.Metrics) *FallbackRecommender {
	return &FallbackRecommender{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

// Name reports the primary strategy.
func (f *FallbackRecommender) Name() string { return f.primary.Name() }

func (f *FallbackRecommender) Recommend(ctx context.Context, profile domain.SoilProfile, topN int) ([]domain.RankedRecommendation, error) {
	recs, _, err := f.RecommendServed(ctx, profile, topN)
	return recs, err
}

// RecommendServed is Recommend plus the name of the strategy that answered.
func (f *FallbackRecommender) RecommendServed(ctx context.Context, profile domain.SoilProfile, topN int) ([]domain.RankedRecommendation, string, error) {
	recs, err := f.primary.Recommend(ctx, profile, topN)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, f.primary.Name(), err
		}
		f.logger.Warn("primary recommender failed, falling back",
			"primary", f.primary.Name(),
			"fallback", f.fallback.Name(),
			"error", err,
		)
		f.metrics.StrategyFallbacks.WithLabelValues("error").Inc()
	case len(recs) == 0:
		f.logger.Info("primary recommender returned nothing, falling back",
			"primary", f.primary.Name(),
			"fallback", f.fallback.Name(),
		)
		f.metrics.StrategyFallbacks.WithLabelValues("empty").Inc()
	default:
		return recs, f.primary.Name(), nil
	}

	recs, err = f.fallback.Recommend(ctx, profile, topN)
	return recs, f.fallback.Name(), err
}
