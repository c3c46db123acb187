package domain

import (
	"math"
	"sort"
	"strings"
)

// DefaultTopN is the shortlist length used when the caller does not ask for one.
const DefaultTopN = 5

// RankedRecommendation is one crop in the ranked shortlist.
type RankedRecommendation struct {
	Crop         string       `json:"crop"`
	Suitability  int          `json:"suitability"` // rounded mean similarity, 0–100
	Requirements Requirements `json:"requirements"`
}

// cropAggregate accumulates one label's rows before averaging.
type cropAggregate struct {
	label        string
	similarities []float64
	sums         Requirements
}

func (a *cropAggregate) add(similarity float64, o ReferenceObservation) {
	a.similarities = append(a.similarities, similarity)
	a.sums.N += o.N
	a.sums.P += o.P
	a.sums.K += o.K
	a.sums.Temperature += o.Temperature
	a.sums.Humidity += o.Humidity
	a.sums.PH += o.PH
	a.sums.Rainfall += o.Rainfall
}

func (a *cropAggregate) meanSimilarity() float64 {
	var sum float64
	for _, s := range a.similarities {
		sum += s
	}
	return sum / float64(len(a.similarities))
}

func (a *cropAggregate) averages() Requirements {
	n := float64(len(a.similarities))
	return Requirements{
		N:           a.sums.N / n,
		P:           a.sums.P / n,
		K:           a.sums.K / n,
		Temperature: a.sums.Temperature / n,
		Humidity:    a.sums.Humidity / n,
		PH:          a.sums.PH / n,
		Rainfall:    a.sums.Rainfall / n,
	}
}

// Rank scores every observation against the soil profile, groups them by
// crop label, and returns up to topN crops ordered by mean similarity.
// A topN of zero or less means DefaultTopN. Unlabeled rows and rows with
// non-finite fields are skipped; an empty table yields an empty slice.
func Rank(soil SoilProfile, observations []ReferenceObservation, topN int) []RankedRecommendation {
	if topN <= 0 {
		topN = DefaultTopN
	}

	index := make(map[string]int)
	var groups []*cropAggregate
	for _, o := range observations {
		label := strings.TrimSpace(o.Label)
		if label == "" || !o.Finite() {
			continue
		}
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, &cropAggregate{label: label})
		}
		groups[i].add(Similarity(soil, o), o)
	}

	type scored struct {
		rec  RankedRecommendation
		mean float64
	}
	ranked := make([]scored, 0, len(groups))
	for _, g := range groups {
		mean := g.meanSimilarity()
		ranked = append(ranked, scored{
			rec: RankedRecommendation{
				Crop:         g.label,
				Suitability:  int(math.Round(mean)),
				Requirements: g.averages(),
			},
			mean: mean,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].mean > ranked[j].mean
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]RankedRecommendation, len(ranked))
	for i := range ranked {
		out[i] = ranked[i].rec
	}
	return out
}
