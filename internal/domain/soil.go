package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SoilProfile is a farm's measured soil chemistry, the query point for scoring.
type SoilProfile struct {
	Nitrogen      float64 `json:"nitrogen"`
	Phosphorus    float64 `json:"phosphorus"`
	Potassium     float64 `json:"potassium"`
	PH            float64 `json:"ph"`
	OrganicCarbon float64 `json:"organic_carbon"`
}

// Validate rejects non-finite values, negative nutrients or organic carbon,
// and pH outside 0–14. The returned error wraps ErrInvalidSoilProfile.
func (s SoilProfile) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"nitrogen", s.Nitrogen},
		{"phosphorus", s.Phosphorus},
		{"potassium", s.Potassium},
		{"ph", s.PH},
		{"organic_carbon", s.OrganicCarbon},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidSoilProfile, f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %g", ErrInvalidSoilProfile, f.name, f.value)
		}
	}
	if s.PH > 14 {
		return fmt.Errorf("%w: ph must be within 0-14, got %g", ErrInvalidSoilProfile, s.PH)
	}
	return nil
}

// NPK serializes the macronutrients into the legacy packed form, e.g. "120:60:80".
func (s SoilProfile) NPK() string {
	return formatNutrient(s.Nitrogen) + ":" + formatNutrient(s.Phosphorus) + ":" + formatNutrient(s.Potassium)
}

// ParseNPK splits a legacy "N:P:K" string into its three values.
// Exactly three numeric parts are required; anything else wraps ErrInvalidSoilProfile.
func ParseNPK(packed string) (n, p, k float64, err error) {
	parts := strings.Split(strings.TrimSpace(packed), ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: npk %q must have three colon-separated parts", ErrInvalidSoilProfile, packed)
	}

	var values [3]float64
	for i, part := range parts {
		part = strings.TrimSpace(part)
		v, perr := strconv.ParseFloat(part, 64)
		if perr != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, fmt.Errorf("%w: npk part %q is not a number", ErrInvalidSoilProfile, part)
		}
		values[i] = v
	}
	return values[0], values[1], values[2], nil
}

func formatNutrient(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SoilInput is the wire form of a soil reading. Nutrients arrive either as
// discrete fields or as a legacy packed NPK string; pointers distinguish a
// missing value from a measured zero.
type SoilInput struct {
	Nitrogen      *float64 `json:"nitrogen,omitempty"`
	Phosphorus    *float64 `json:"phosphorus,omitempty"`
	Potassium     *float64 `json:"potassium,omitempty"`
	NPK           string   `json:"npk,omitempty"`
	PH            *float64 `json:"ph,omitempty"`
	OrganicCarbon *float64 `json:"organic_carbon,omitempty"`
}

// Profile converts the wire form into a validated SoilProfile.
// Discrete nutrient fields take precedence over the packed NPK string.
// Organic carbon defaults to 0 when absent; every other field is required.
func (in SoilInput) Profile() (SoilProfile, error) {
	var profile SoilProfile

	switch {
	case in.Nitrogen != nil || in.Phosphorus != nil || in.Potassium != nil:
		if in.Nitrogen == nil || in.Phosphorus == nil || in.Potassium == nil {
			return SoilProfile{}, fmt.Errorf("%w: nitrogen, phosphorus and potassium are all required", ErrInvalidSoilProfile)
		}
		profile.Nitrogen = *in.Nitrogen
		profile.Phosphorus = *in.Phosphorus
		profile.Potassium = *in.Potassium
	case in.NPK != "":
		n, p, k, err := ParseNPK(in.NPK)
		if err != nil {
			return SoilProfile{}, err
		}
		profile.Nitrogen, profile.Phosphorus, profile.Potassium = n, p, k
	default:
		return SoilProfile{}, fmt.Errorf("%w: nutrient levels are missing", ErrInvalidSoilProfile)
	}

	if in.PH == nil {
		return SoilProfile{}, fmt.Errorf("%w: ph is required", ErrInvalidSoilProfile)
	}
	profile.PH = *in.PH

	if in.OrganicCarbon != nil {
		profile.OrganicCarbon = *in.OrganicCarbon
	}

	if err := profile.Validate(); err != nil {
		return SoilProfile{}, err
	}
	return profile, nil
}
