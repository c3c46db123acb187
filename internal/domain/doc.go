// Package domain models soil profiles, crop reference observations, and the
// suitability scoring engine that ranks crops for a farm.
//
// # Reference Data
//
// The reference table is a crop observation dataset in the layout of the
// public "crop recommendation" CSV: one row per field observation with the
// columns N, P, K, temperature, humidity, ph, rainfall, label. Many rows share
// a label. The table is loaded once at startup by package dataset (or the
// Postgres adapter) and is read-only afterwards.
//
// # Units
//
//	Nitrogen, phosphorus, potassium:  mg/kg of soil
//	pH:                               0–14, agricultural soils usually 4–10
//	Organic carbon:                   percent by weight
//	Temperature:                      °C
//	Humidity:                         relative humidity, percent
//	Rainfall:                         mm
//
// # Legacy NPK Encoding
//
// Older farm records pack the three macronutrients into one colon-delimited
// string, e.g. "120:60:80" = N 120, P 60, K 80. The packed form is accepted
// only at transport boundaries via [ParseNPK] and never flows through scoring.
//
// # Scoring
//
// Similarity between a soil profile and one observation uses four
// dimensions (N, P, K, pH). Each contributes |soil - ref| / ref; the mean of
// the four normalized differences maps to a 0–100 score:
//
//	similarity = max(0, 100 - mean(normDiff) * 100)
//
// Temperature, humidity and rainfall are averaged into each crop's
// requirement vector and shown in reports but do not affect the score.
//
// A zero reference value cannot be used as a divisor. A zero reference
// paired with a zero soil value counts as an exact match; any other soil
// value against a zero reference counts as a full mismatch (normDiff = 1).
//
// # Aggregation
//
// Observations are grouped by label in first-seen order. A crop's
// suitability is the rounded mean of its rows' similarities; its requirement
// vector is the per-field mean, computed after all rows are summed. Crops are
// sorted by mean similarity, descending; ties keep first-seen order. Rows
// with an empty label or any non-finite field are skipped.
//
// # Adjustment Thresholds
//
// Guidance is emitted for the top crop only when the gap between the soil
// and the crop's averaged requirement exceeds a materiality threshold:
//
//	Nitrogen:    20 mg/kg   (Urea / Ammonium Sulfate)
//	Phosphorus:  10 mg/kg   (DAP / SSP)
//	Potassium:   20 mg/kg   (MOP)
//	pH:          0.5        (agricultural lime to raise, sulfur / organic matter to lower)
package domain
