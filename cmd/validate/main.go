// Command validate checks a crop reference CSV before it is deployed as
// REFERENCE_DATA_PATH. It verifies the header, row integrity, value ranges,
// per-crop coverage, and that each crop's own mean profile ranks it near the
// top.
//
// Usage:
//
//	go run ./cmd/validate -csv data/crop_reference.csv
//	go run ./cmd/validate            # checks the bundled dataset
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/crop-advisory-service/internal/dataset"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// valueRange bounds a numeric column; values outside it are errors.
type valueRange struct {
	column   string
	min, max float64
}

var ranges = []valueRange{
	{column: dataset.ColumnN, min: 0, max: 1000},
	{column: dataset.ColumnP, min: 0, max: 1000},
	{column: dataset.ColumnK, min: 0, max: 1000},
	{column: dataset.ColumnTemperature, min: -20, max: 60},
	{column: dataset.ColumnHumidity, min: 0, max: 100},
	{column: dataset.ColumnPH, min: 0, max: 14},
	{column: dataset.ColumnRainfall, min: 0, max: 5000},
}

func main() {
	csvPath := flag.String("csv", "", "reference CSV to validate (default: bundled dataset)")
	minRows := flag.Int("min-rows", 2, "minimum observations per crop before a warning")
	topN := flag.Int("top", 3, "rank within which each crop's mean profile must place it")
	flag.Parse()

	os.Exit(run(*csvPath, *minRows, *topN))
}

func run(csvPath string, minRows, topN int) int {
	fmt.Println("=== Crop Reference Validation ===")
	fmt.Println()

	name := csvPath
	if csvPath == "" {
		name = dataset.BundledName
		table, err := dataset.Bundled()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: parse bundled dataset: %v\n", err)
			return 1
		}
		return report(name, table, validateTable(table, minRows, topN))
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read %s: %v\n", csvPath, err)
		return 1
	}

	table, err := dataset.Parse(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", csvPath, err)
		return 1
	}

	rows, err := loadRows(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", csvPath, err)
		return 1
	}

	phases := append([]*phase{validateRows(rows)}, validateTable(table, minRows, topN)...)
	return report(name, table, phases)
}

func validateTable(table *dataset.Table, minRows, topN int) []*phase {
	obs, _ := table.Observations(context.Background())
	return []*phase{
		validateCoverage(table, obs, minRows),
		validateSelfRanking(table, obs, topN),
	}
}

func report(name string, table *dataset.Table, phases []*phase) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		} else if len(p.warnings) > 0 {
			status = fmt.Sprintf("\033[33mPASS (%d warnings)\033[0m", len(p.warnings))
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Dataset %s: %d rows, %d malformed, %d crops\n",
		name, table.Len(), table.Malformed(), len(table.Labels()))

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		for _, w := range p.warnings {
			fmt.Printf("  warn: %s\n", w)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by lowercased header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadRows(r io.Reader) ([]csvRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[h] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return rows, nil
}

// ── Phase 1: row integrity ──

func validateRows(rows []csvRow) *phase {
	p := &phase{name: "Phase 1: Row integrity and ranges"}
	for _, row := range rows {
		if row.fields[dataset.ColumnLabel] == "" {
			p.warnf("line %d: empty label, row ignored", row.lineNum)
			continue
		}
		for _, r := range ranges {
			raw := row.fields[r.column]
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("line %d: %s=%q is not a number", row.lineNum, r.column, raw)
				continue
			}
			if v < r.min || v > r.max {
				p.errorf("line %d: %s=%g outside [%g, %g]", row.lineNum, r.column, v, r.min, r.max)
			}
		}
	}
	return p
}

// ── Phase 2: coverage ──

func validateCoverage(table *dataset.Table, obs []domain.ReferenceObservation, minRows int) *phase {
	p := &phase{name: "Phase 2: Crop coverage"}
	if table.Len() == 0 {
		p.errorf("dataset has no observations")
		return p
	}
	if table.Malformed() == table.Len() {
		p.errorf("every observation is malformed")
	}

	counts := make(map[string]int)
	for _, o := range obs {
		if o.Finite() {
			counts[o.Label]++
		}
	}
	for _, label := range table.Labels() {
		switch n := counts[label]; {
		case n == 0:
			p.errorf("%s: no usable observations", label)
		case n < minRows:
			p.warnf("%s: only %d usable observations", label, n)
		}
		if label != strings.ToLower(label) {
			p.warnf("%s: label is not lowercase and will not merge with %s", label, strings.ToLower(label))
		}
	}
	return p
}

// ── Phase 3: self ranking ──

// validateSelfRanking queries the ranker with each crop's own mean soil
// profile. A crop that cannot reach the top N even then is unreachable in
// practice.
func validateSelfRanking(table *dataset.Table, obs []domain.ReferenceObservation, topN int) *phase {
	p := &phase{name: fmt.Sprintf("Phase 3: Self ranking (top %d)", topN)}
	all := domain.Rank(domain.SoilProfile{}, obs, len(table.Labels()))
	for _, rec := range all {
		req := rec.Requirements
		soil := domain.SoilProfile{Nitrogen: req.N, Phosphorus: req.P, Potassium: req.K, PH: req.PH}
		ranked := domain.Rank(soil, obs, topN)
		if !slices.ContainsFunc(ranked, func(r domain.RankedRecommendation) bool { return r.Crop == rec.Crop }) {
			p.warnf("%s: mean profile %s pH %.1f does not rank it in the top %d", rec.Crop, soil.NPK(), soil.PH, topN)
		}
	}
	return p
}
