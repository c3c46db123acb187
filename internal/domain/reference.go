package domain

import (
	"context"
	"math"
)

// ReferenceObservation is one row of the crop reference dataset.
// Numeric fields that failed to parse hold NaN.
type ReferenceObservation struct {
	Label       string  `json:"label"`
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// Finite reports whether every numeric field holds a usable value.
func (o ReferenceObservation) Finite() bool {
	for _, v := range [...]float64{o.N, o.P, o.K, o.Temperature, o.Humidity, o.PH, o.Rainfall} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Requirements is a crop's averaged growing conditions across its observations.
type Requirements struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// Known reports whether the vector carries soil targets. Remote strategies
// may omit requirements, leaving the zero value.
func (r Requirements) Known() bool {
	return r.N != 0 || r.P != 0 || r.K != 0 || r.PH != 0
}

// ReferenceSource provides the immutable reference table.
type ReferenceSource interface {
	// Observations returns the full table. Callers must not modify it.
	// Failures wrap ErrDataUnavailable.
	Observations(ctx context.Context) ([]ReferenceObservation, error)
}
