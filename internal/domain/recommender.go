package domain

import (
	"context"
	"fmt"
)

// Recommender produces a ranked crop shortlist for a soil profile.
// Implementations include the local statistical scorer and remote ML services.
type Recommender interface {
	// Name identifies the strategy in logs, metrics and output headers.
	Name() string

	// Recommend returns at most topN crops ordered by suitability.
	Recommend(ctx context.Context, profile SoilProfile, topN int) ([]RankedRecommendation, error)
}

// LocalStrategy is the name reported by LocalRecommender.
const LocalStrategy = "local"

// LocalRecommender ranks crops against the reference table with Rank.
// It is always available and serves as the fallback for remote strategies.
type LocalRecommender struct {
	source ReferenceSource
}

// NewLocalRecommender creates a recommender over the given reference source.
func NewLocalRecommender(source ReferenceSource) *LocalRecommender {
	return &LocalRecommender{source: source}
}

func (r *LocalRecommender) Name() string { return LocalStrategy }

func (r *LocalRecommender) Recommend(ctx context.Context, profile SoilProfile, topN int) ([]RankedRecommendation, error) {
	observations, err := r.source.Observations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference observations: %w", err)
	}
	return Rank(profile, observations, topN), nil
}
