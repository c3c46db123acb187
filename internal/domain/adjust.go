package domain

import (
	"fmt"
	"math"
)

// Materiality thresholds: the smallest gap between soil and requirement
// that produces guidance.
const (
	NitrogenThreshold   = 20.0
	PhosphorusThreshold = 10.0
	PotassiumThreshold  = 20.0
	PHThreshold         = 0.5
)

// Adjustment actions.
const (
	ActionAdd    = "add"
	ActionReduce = "reduce"
	ActionRaise  = "raise"
	ActionLower  = "lower"
)

// Adjustment is one directional soil correction for the top crop.
type Adjustment struct {
	Parameter string  `json:"parameter"` // nitrogen, phosphorus, potassium, ph
	Action    string  `json:"action"`    // add, reduce, raise, lower
	Amount    float64 `json:"amount"`    // absolute gap between soil and requirement
	Unit      string  `json:"unit,omitempty"`
	Amendment string  `json:"amendment"`
	Message   string  `json:"message"`
}

type nutrientRule struct {
	name       string
	threshold  float64
	fertilizer string
}

var (
	nitrogenRule   = nutrientRule{name: "nitrogen", threshold: NitrogenThreshold, fertilizer: "Urea or Ammonium Sulfate"}
	phosphorusRule = nutrientRule{name: "phosphorus", threshold: PhosphorusThreshold, fertilizer: "DAP or SSP"}
	potassiumRule  = nutrientRule{name: "potassium", threshold: PotassiumThreshold, fertilizer: "MOP"}
)

// AdviseAdjustments compares the soil against a crop's averaged requirements
// and returns guidance for every nutrient or pH gap beyond its threshold, in
// N, P, K, pH order. Unknown requirements produce no guidance.
func AdviseAdjustments(required Requirements, soil SoilProfile) []Adjustment {
	if !required.Known() {
		return nil
	}

	var out []Adjustment
	if a, ok := nutrientAdjustment(nitrogenRule, soil.Nitrogen, required.N); ok {
		out = append(out, a)
	}
	if a, ok := nutrientAdjustment(phosphorusRule, soil.Phosphorus, required.P); ok {
		out = append(out, a)
	}
	if a, ok := nutrientAdjustment(potassiumRule, soil.Potassium, required.K); ok {
		out = append(out, a)
	}
	if a, ok := phAdjustment(soil.PH, required.PH); ok {
		out = append(out, a)
	}
	return out
}

func nutrientAdjustment(rule nutrientRule, actual, required float64) (Adjustment, bool) {
	diff := actual - required
	if math.Abs(diff) <= rule.threshold {
		return Adjustment{}, false
	}

	amount := math.Abs(diff)
	if diff < 0 {
		return Adjustment{
			Parameter: rule.name,
			Action:    ActionAdd,
			Amount:    amount,
			Unit:      "mg/kg",
			Amendment: rule.fertilizer,
			Message:   fmt.Sprintf("Add %s: deficit of %.1f mg/kg. Apply %s.", rule.name, amount, rule.fertilizer),
		}, true
	}
	return Adjustment{
		Parameter: rule.name,
		Action:    ActionReduce,
		Amount:    amount,
		Unit:      "mg/kg",
		Amendment: rule.fertilizer,
		Message:   fmt.Sprintf("Reduce %s: surplus of %.1f mg/kg. Withhold %s this season.", rule.name, amount, rule.fertilizer),
	}, true
}

func phAdjustment(actual, required float64) (Adjustment, bool) {
	diff := actual - required
	if math.Abs(diff) <= PHThreshold {
		return Adjustment{}, false
	}

	amount := math.Abs(diff)
	if diff < 0 {
		return Adjustment{
			Parameter: "ph",
			Action:    ActionRaise,
			Amount:    amount,
			Amendment: "agricultural lime",
			Message:   fmt.Sprintf("Raise pH by %.1f: soil is too acidic. Apply agricultural lime.", amount),
		}, true
	}
	return Adjustment{
		Parameter: "ph",
		Action:    ActionLower,
		Amount:    amount,
		Amendment: "elemental sulfur or organic matter",
		Message:   fmt.Sprintf("Lower pH by %.1f: soil is too alkaline. Apply elemental sulfur or organic matter.", amount),
	}, true
}
