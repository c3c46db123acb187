// Command genmock builds advisory request and response fixtures from a crop
// reference CSV. One request is generated per crop from that crop's mean soil
// profile, alternating between discrete nutrient fields and the packed NPK
// form. Responses are produced by the real advisory domain with a fixed clock
// so fixture IDs and timestamps are reproducible.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -requests-out data/mock/advisory_requests.json \
//	  -advisories-out data/mock/advisories.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/dataset"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "reference CSV (default: bundled dataset)")
	requestsOut := flag.String("requests-out", "", "output path for the advisory request fixture")
	advisoriesOut := flag.String("advisories-out", "", "output path for the expected advisory fixture")
	topN := flag.Int("top", domain.DefaultTopN, "crops per advisory")
	flag.Parse()

	if *requestsOut == "" || *advisoriesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -requests-out, -advisories-out")
	}

	// Set a fixed clock for reproducible GeneratedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.June, 14, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	table, err := loadTable(*csvPath)
	if err != nil {
		return err
	}
	obs, err := table.Observations(context.Background())
	if err != nil {
		return err
	}

	requests := buildRequests(obs, *topN)
	advisories := make([]domain.Advisory, 0, len(requests))
	for _, req := range requests {
		profile, err := req.Soil.Profile()
		if err != nil {
			return fmt.Errorf("request %s: %w", req.RequestID, err)
		}
		recs := domain.Rank(profile, obs, req.TopN)
		advisories = append(advisories, domain.BuildAdvisory(req, profile, domain.LocalStrategy, recs))
	}
	log.Printf("total: %d requests across %d crops", len(requests), len(table.Labels()))

	if err := writeJSON(*requestsOut, requests); err != nil {
		return fmt.Errorf("writing request fixture: %w", err)
	}
	log.Printf("wrote request fixture: %s", *requestsOut)

	if err := writeJSON(*advisoriesOut, advisories); err != nil {
		return fmt.Errorf("writing advisory fixture: %w", err)
	}
	log.Printf("wrote advisory fixture: %s", *advisoriesOut)

	printStats(advisories)
	return nil
}

func loadTable(path string) (*dataset.Table, error) {
	if path == "" {
		return dataset.Bundled()
	}
	return dataset.LoadFile(path)
}

// buildRequests derives one request per crop from its mean requirements,
// rounded to whole mg/kg and one decimal of pH as a field kit would report.
func buildRequests(obs []domain.ReferenceObservation, topN int) []domain.AdvisoryRequest {
	crops := domain.Rank(domain.SoilProfile{}, obs, math.MaxInt32)
	requests := make([]domain.AdvisoryRequest, 0, len(crops))
	for i, crop := range crops {
		req := crop.Requirements
		soil := domain.SoilProfile{
			Nitrogen:   math.Round(req.N),
			Phosphorus: math.Round(req.P),
			Potassium:  math.Round(req.K),
			PH:         math.Round(req.PH*10) / 10,
		}

		ph := soil.PH
		in := domain.SoilInput{PH: &ph}
		if i%2 == 0 {
			n, p, k := soil.Nitrogen, soil.Phosphorus, soil.Potassium
			in.Nitrogen, in.Phosphorus, in.Potassium = &n, &p, &k
		} else {
			in.NPK = soil.NPK()
		}

		requests = append(requests, domain.AdvisoryRequest{
			RequestID: fmt.Sprintf("mock-%s", crop.Crop),
			FarmerID:  fmt.Sprintf("farmer-%03d", i+1),
			Soil:      in,
			TopN:      topN,
		})
	}
	return requests
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(advisories []domain.Advisory) {
	topCounts := map[string]int{}
	selfMatches := 0
	withAdjustments := 0
	for _, a := range advisories {
		top := a.TopCrop()
		topCounts[top]++
		if "mock-"+top == a.RequestID {
			selfMatches++
		}
		if len(a.Adjustments) > 0 {
			withAdjustments++
		}
	}

	crops := make([]string, 0, len(topCounts))
	for c := range topCounts {
		crops = append(crops, c)
	}
	sort.Strings(crops)

	fmt.Println()
	fmt.Println("Top crop distribution:")
	for _, c := range crops {
		fmt.Printf("  %-14s %d\n", c, topCounts[c])
	}
	fmt.Printf("\nSelf matches: %d/%d\n", selfMatches, len(advisories))
	fmt.Printf("With adjustments: %d/%d\n", withAdjustments, len(advisories))
}
