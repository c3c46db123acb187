package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	ref := ReferenceObservation{Label: "rice", N: 90, P: 42, K: 43, PH: 6.5, Temperature: 20.9, Humidity: 82, Rainfall: 202.9}

	t.Run("exact match scores 100", func(t *testing.T) {
		soil := SoilProfile{Nitrogen: 90, Phosphorus: 42, Potassium: 43, PH: 6.5, OrganicCarbon: 0.8}
		assert.Equal(t, 100.0, Similarity(soil, ref))
	})

	t.Run("averages four normalized differences", func(t *testing.T) {
		// N off by 10% and everything else exact: avgDiff = 0.1/4.
		soil := SoilProfile{Nitrogen: 99, Phosphorus: 42, Potassium: 43, PH: 6.5}
		assert.InDelta(t, 97.5, Similarity(soil, ref), 1e-9)
	})

	t.Run("difference is symmetric around the reference", func(t *testing.T) {
		below := SoilProfile{Nitrogen: 81, Phosphorus: 42, Potassium: 43, PH: 6.5}
		above := SoilProfile{Nitrogen: 99, Phosphorus: 42, Potassium: 43, PH: 6.5}
		assert.InDelta(t, Similarity(below, ref), Similarity(above, ref), 1e-9)
	})

	t.Run("clamped at zero for distant profiles", func(t *testing.T) {
		soil := SoilProfile{Nitrogen: 900, Phosphorus: 420, Potassium: 430, PH: 14}
		assert.Equal(t, 0.0, Similarity(soil, ref))
	})

	t.Run("climate fields do not affect the score", func(t *testing.T) {
		soil := SoilProfile{Nitrogen: 90, Phosphorus: 42, Potassium: 43, PH: 6.5}
		hot := ref
		hot.Temperature, hot.Humidity, hot.Rainfall = 45, 10, 5
		assert.Equal(t, Similarity(soil, ref), Similarity(soil, hot))
	})
}

func TestSimilarity_ZeroReference(t *testing.T) {
	ref := ReferenceObservation{Label: "pulse", N: 0, P: 60, K: 20, PH: 7}

	t.Run("zero soil against zero reference is a match", func(t *testing.T) {
		soil := SoilProfile{Nitrogen: 0, Phosphorus: 60, Potassium: 20, PH: 7}
		assert.Equal(t, 100.0, Similarity(soil, ref))
	})

	t.Run("non-zero soil against zero reference is a full mismatch", func(t *testing.T) {
		soil := SoilProfile{Nitrogen: 35, Phosphorus: 60, Potassium: 20, PH: 7}
		assert.InDelta(t, 75.0, Similarity(soil, ref), 1e-9)
	})

	t.Run("never produces NaN or Inf", func(t *testing.T) {
		allZero := ReferenceObservation{Label: "x"}
		soil := SoilProfile{Nitrogen: 10, Phosphorus: 10, Potassium: 10, PH: 6}
		s := Similarity(soil, allZero)
		assert.False(t, math.IsNaN(s))
		assert.False(t, math.IsInf(s, 0))
		assert.Equal(t, 0.0, s)
	})
}

func TestSimilarity_NaNInputScoresZero(t *testing.T) {
	ref := ReferenceObservation{Label: "rice", N: math.NaN(), P: 42, K: 43, PH: 6.5}
	soil := SoilProfile{Nitrogen: 90, Phosphorus: 42, Potassium: 43, PH: 6.5}

	assert.Equal(t, 0.0, Similarity(soil, ref))
}

func TestSimilarity_AlwaysWithinBounds(t *testing.T) {
	refs := []ReferenceObservation{
		{N: 1, P: 1, K: 1, PH: 1},
		{N: 300, P: 150, K: 200, PH: 9},
		{N: 20, P: 0, K: 10, PH: 5.5},
	}
	soils := []SoilProfile{
		{},
		{Nitrogen: 1000, Phosphorus: 1000, Potassium: 1000, PH: 14},
		{Nitrogen: 20, Phosphorus: 0, Potassium: 10, PH: 5.5},
	}
	for _, ref := range refs {
		for _, soil := range soils {
			s := Similarity(soil, ref)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 100.0)
		}
	}
}
