// Package advisory turns soil readings into complete crop advisories:
// validation, ranking through the configured strategy, soil adjustments
// and the text report.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
)

// Service produces advisories using a Recommender strategy.
type Service struct {
	recommender domain.Recommender
	defaultTopN int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewService creates an advisory service. A defaultTopN of zero or less
// falls back to domain.DefaultTopN.
func NewService(r domain.Recommender, defaultTopN int, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if defaultTopN <= 0 {
		defaultTopN = domain.DefaultTopN
	}
	return &Service{
		recommender: r,
		defaultTopN: defaultTopN,
		logger:      logger,
		metrics:     metrics,
	}
}

// Advise validates the request's soil reading and builds an advisory.
//
// An invalid soil profile returns an error wrapping domain.ErrInvalidSoilProfile.
// Unavailable reference data is not an error: the advisory carries no
// recommendations and the no-recommendations report.
func (s *Service) Advise(ctx context.Context, req domain.AdvisoryRequest) (domain.Advisory, error) {
	start := time.Now()
	defer func() { s.metrics.AdvisoryDuration.Observe(time.Since(start).Seconds()) }()

	profile, err := req.Soil.Profile()
	if err != nil {
		s.metrics.Advisories.WithLabelValues("invalid").Inc()
		return domain.Advisory{}, err
	}

	topN := req.TopN
	if topN <= 0 {
		topN = s.defaultTopN
	}
	req.TopN = topN

	recs, strategy, err := s.recommend(ctx, profile, topN)
	switch {
	case errors.Is(err, domain.ErrDataUnavailable):
		s.logger.Warn("reference data unavailable, returning empty advisory",
			"request_id", req.RequestID,
			"error", err,
		)
		s.metrics.Advisories.WithLabelValues("unavailable").Inc()
		recs = nil
	case err != nil:
		s.metrics.Advisories.WithLabelValues("error").Inc()
		return domain.Advisory{}, fmt.Errorf("recommend crops: %w", err)
	}

	a := domain.BuildAdvisory(req, profile, strategy, recs)

	if len(a.Recommendations) == 0 {
		if err == nil {
			s.metrics.Advisories.WithLabelValues("empty").Inc()
		}
	} else {
		s.metrics.Advisories.WithLabelValues("success").Inc()
		s.metrics.TopSuitability.Observe(float64(a.Recommendations[0].Suitability))
	}

	s.logger.Debug("advisory generated",
		"advisory_id", a.ID,
		"request_id", a.RequestID,
		"npk", a.NPK,
		"ph", profile.PH,
		"top_crop", a.TopCrop(),
		"strategy", strategy,
		"recommendations", len(a.Recommendations),
		"adjustments", len(a.Adjustments),
	)
	return a, nil
}

// servedRecommender reports which strategy actually produced a result,
// which differs from Name when a fallback kicked in.
type servedRecommender interface {
	RecommendServed(ctx context.Context, profile domain.SoilProfile, topN int) ([]domain.RankedRecommendation, string, error)
}

func (s *Service) recommend(ctx context.Context, profile domain.SoilProfile, topN int) ([]domain.RankedRecommendation, string, error) {
	if sr, ok := s.recommender.(servedRecommender); ok {
		return sr.RecommendServed(ctx, profile, topN)
	}
	recs, err := s.recommender.Recommend(ctx, profile, topN)
	return recs, s.recommender.Name(), err
}
