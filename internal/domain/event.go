package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// advisoryNamespace scopes deterministic advisory IDs.
var advisoryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:crop-advisory:advisory"))

// RawEvent represents an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the advisory topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// AdvisoryRequest asks for crop recommendations for one farm reading.
// Village and farm size are carried through for the caller and do not
// influence scoring.
type AdvisoryRequest struct {
	RequestID     string    `json:"request_id,omitempty"`
	FarmerID      string    `json:"farmer_id,omitempty"`
	Village       string    `json:"village,omitempty"`
	FarmSizeAcres float64   `json:"farm_size_acres,omitempty"`
	Soil          SoilInput `json:"soil"`
	TopN          int       `json:"top_n,omitempty"`
}

// Advisory is the full answer to an AdvisoryRequest.
type Advisory struct {
	ID              string                 `json:"id"`
	RequestID       string                 `json:"request_id,omitempty"`
	FarmerID        string                 `json:"farmer_id,omitempty"`
	Village         string                 `json:"village,omitempty"`
	Soil            SoilProfile            `json:"soil"`
	NPK             string                 `json:"npk"`
	Strategy        string                 `json:"strategy"`
	Recommendations []RankedRecommendation `json:"recommendations"`
	Adjustments     []Adjustment           `json:"adjustments"`
	Report          string                 `json:"report"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// TopCrop returns the best-ranked crop label, or "" when nothing was ranked.
func (a Advisory) TopCrop() string {
	if len(a.Recommendations) == 0 {
		return ""
	}
	return a.Recommendations[0].Crop
}

// ParseAdvisoryRequest deserializes a RawEvent's value into an AdvisoryRequest.
// The message key stands in for a missing request ID.
func ParseAdvisoryRequest(raw RawEvent) (AdvisoryRequest, error) {
	var req AdvisoryRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return AdvisoryRequest{}, fmt.Errorf("parse advisory request: %w", err)
	}
	if req.RequestID == "" {
		req.RequestID = string(raw.Key)
	}
	return req, nil
}

// BuildAdvisory assembles an advisory from ranked recommendations: soil
// adjustments for the top crop, the text report, a deterministic ID and
// the generation timestamp.
func BuildAdvisory(req AdvisoryRequest, profile SoilProfile, strategy string, recs []RankedRecommendation) Advisory {
	if recs == nil {
		recs = []RankedRecommendation{}
	}

	adjustments := []Adjustment{}
	if len(recs) > 0 {
		if a := AdviseAdjustments(recs[0].Requirements, profile); a != nil {
			adjustments = a
		}
	}

	return Advisory{
		ID:              generateID(req, profile),
		RequestID:       req.RequestID,
		FarmerID:        req.FarmerID,
		Village:         req.Village,
		Soil:            profile,
		NPK:             profile.NPK(),
		Strategy:        strategy,
		Recommendations: recs,
		Adjustments:     adjustments,
		Report:          FormatReport(recs, adjustments),
		GeneratedAt:     clock.Now().UTC(),
	}
}

// generateID derives a UUIDv5 from the request identity and soil values so
// replaying the same request yields the same advisory ID.
func generateID(req AdvisoryRequest, profile SoilProfile) string {
	input := fmt.Sprintf("%s|%s|%g|%g|%g|%g|%g|%d",
		req.RequestID, req.FarmerID,
		profile.Nitrogen, profile.Phosphorus, profile.Potassium, profile.PH, profile.OrganicCarbon,
		req.TopN,
	)
	return uuid.NewSHA1(advisoryNamespace, []byte(input)).String()
}

// SerializeAdvisory marshals an advisory into an OutputEvent keyed by its ID.
func SerializeAdvisory(a Advisory) (OutputEvent, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize advisory: %w", err)
	}
	return OutputEvent{
		Key:   []byte(a.ID),
		Value: data,
		Headers: map[string]string{
			"top_crop":     a.TopCrop(),
			"strategy":     a.Strategy,
			"generated_at": a.GeneratedAt.Format(time.RFC3339),
		},
	}, nil
}
