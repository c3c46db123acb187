package domain

import "math"

// Similarity scores how closely a soil profile matches one reference
// observation on N, P, K and pH, from 0 (no match) to 100 (exact match).
// It returns 0 when any of the compared values is NaN.
func Similarity(soil SoilProfile, ref ReferenceObservation) float64 {
	diffs := [...]float64{
		normalizedDiff(soil.Nitrogen, ref.N),
		normalizedDiff(soil.Phosphorus, ref.P),
		normalizedDiff(soil.Potassium, ref.K),
		normalizedDiff(soil.PH, ref.PH),
	}

	var sum float64
	for _, d := range diffs {
		sum += d
	}
	avgDiff := sum / float64(len(diffs))
	if math.IsNaN(avgDiff) {
		return 0
	}

	return clampScore(100 - avgDiff*100)
}

// normalizedDiff is |actual - ref| / ref. A zero reference is an exact
// match for a zero actual value and a full mismatch otherwise.
func normalizedDiff(actual, ref float64) float64 {
	if ref == 0 {
		if actual == 0 {
			return 0
		}
		return 1
	}
	return math.Abs(actual-ref) / math.Abs(ref)
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
