// Package mlapi implements domain.Recommender against a remote crop
// prediction model served over HTTP.
package mlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
)

// Strategy is the name reported by the remote recommender.
const Strategy = "ml"

// Client implements domain.Recommender using the prediction API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a prediction API client bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Name implements domain.Recommender.
func (c *Client) Name() string { return Strategy }

// Recommend posts the soil profile to the model and returns its ranking,
// clamped to 0-100, stably sorted by suitability and truncated to topN.
func (c *Client) Recommend(ctx context.Context, profile domain.SoilProfile, topN int) ([]domain.RankedRecommendation, error) {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}

	body, err := json.Marshal(predictRequest{
		Nitrogen:      profile.Nitrogen,
		Phosphorus:    profile.Phosphorus,
		Potassium:     profile.Potassium,
		PH:            profile.PH,
		OrganicCarbon: profile.OrganicCarbon,
		TopN:          topN,
	})
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	start := time.Now()
	recs, err := c.doRequest(ctx, body)
	c.metrics.MLAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.MLRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(recs) == 0 {
		c.metrics.MLRequests.WithLabelValues("empty").Inc()
		return []domain.RankedRecommendation{}, nil
	}
	c.metrics.MLRequests.WithLabelValues("success").Inc()

	c.logger.Debug("model prediction received", "count", len(recs), "top_crop", recs[0].Crop)
	return normalize(recs, topN), nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) ([]domain.RankedRecommendation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("prediction API error: status %d: %s", resp.StatusCode, msg)
	}

	var predictResp predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	recs := make([]domain.RankedRecommendation, 0, len(predictResp.Recommendations))
	for _, p := range predictResp.Recommendations {
		crop := strings.TrimSpace(p.Crop)
		if crop == "" {
			continue
		}
		recs = append(recs, domain.RankedRecommendation{
			Crop:         crop,
			Suitability:  clampSuitability(p.Suitability),
			Requirements: p.Requirements,
		})
	}
	return recs, nil
}

func normalize(recs []domain.RankedRecommendation, topN int) []domain.RankedRecommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Suitability > recs[j].Suitability
	})
	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs
}

func clampSuitability(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// Prediction API wire types.

type predictRequest struct {
	Nitrogen      float64 `json:"nitrogen"`
	Phosphorus    float64 `json:"phosphorus"`
	Potassium     float64 `json:"potassium"`
	PH            float64 `json:"ph"`
	OrganicCarbon float64 `json:"organic_carbon"`
	TopN          int     `json:"top_n"`
}

type predictResponse struct {
	Recommendations []prediction `json:"recommendations"`
}

type prediction struct {
	Crop         string              `json:"crop"`
	Suitability  float64             `json:"suitability"`
	Requirements domain.Requirements `json:"requirements"`
}
