package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoRecommendationsMessage is the report body when nothing could be ranked.
const NoRecommendationsMessage = "No crop recommendations available for this soil profile."

// DisplayName title-cases a dataset label for reports, e.g. "kidneybeans" -> "Kidneybeans".
func DisplayName(label string) string {
	return cases.Title(language.English).String(strings.TrimSpace(label))
}

// FormatReport renders the ranked crops followed by soil adjustments for the
// top crop as plain text.
func FormatReport(recs []RankedRecommendation, adjustments []Adjustment) string {
	if len(recs) == 0 {
		return NoRecommendationsMessage
	}

	var b strings.Builder

	writeHeading(&b, "Crop Recommendations")
	for i, rec := range recs {
		r := rec.Requirements
		fmt.Fprintf(&b, "%d. %s - %d%% suitable\n", i+1, DisplayName(rec.Crop), rec.Suitability)
		fmt.Fprintf(&b, "   Ideal soil: N %.1f, P %.1f, K %.1f mg/kg, pH %.1f\n", r.N, r.P, r.K, r.PH)
		fmt.Fprintf(&b, "   Ideal climate: %.1f°C, %.1f%% humidity, %.1f mm rainfall\n", r.Temperature, r.Humidity, r.Rainfall)
	}

	b.WriteString("\n")
	top := DisplayName(recs[0].Crop)
	writeHeading(&b, "Soil Adjustments for "+top)
	if len(adjustments) == 0 {
		fmt.Fprintf(&b, "- Soil nutrients and pH are within tolerance for %s.\n", top)
	}
	for _, a := range adjustments {
		fmt.Fprintf(&b, "- %s\n", a.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeHeading(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))))
	b.WriteString("\n")
}
