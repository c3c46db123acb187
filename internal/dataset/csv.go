// Package dataset loads labeled crop reference observations from CSV.
package dataset

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
)

//go:embed crop_reference.csv
var bundledCSV string

// BundledName identifies the embedded dataset in logs.
const BundledName = "bundled:crop_reference.csv"

// Column names recognized in the header row. Lookup is case-insensitive.
const (
	ColumnN           = "n"
	ColumnP           = "p"
	ColumnK           = "k"
	ColumnTemperature = "temperature"
	ColumnHumidity    = "humidity"
	ColumnPH          = "ph"
	ColumnRainfall    = "rainfall"
	ColumnLabel       = "label"
)

// RequiredColumns lists every header the parser needs, in dataset order.
var RequiredColumns = []string{
	ColumnN, ColumnP, ColumnK, ColumnTemperature, ColumnHumidity, ColumnPH, ColumnRainfall, ColumnLabel,
}

// Table is an immutable, loaded reference dataset.
type Table struct {
	observations []domain.ReferenceObservation
	malformed    int
	err          error
}

// NewTable wraps observations that were loaded elsewhere. Rows carrying a
// non-finite value are counted as malformed.
func NewTable(observations []domain.ReferenceObservation) *Table {
	t := &Table{observations: make([]domain.ReferenceObservation, len(observations))}
	copy(t.observations, observations)
	for _, o := range t.observations {
		if !o.Finite() {
			t.malformed++
		}
	}
	return t
}

// Unavailable returns a table whose every read fails with ErrDataUnavailable.
// It keeps the service up when the reference data could not be loaded.
func Unavailable(cause error) *Table {
	if !errors.Is(cause, domain.ErrDataUnavailable) {
		cause = fmt.Errorf("%w: %w", domain.ErrDataUnavailable, cause)
	}
	return &Table{err: cause}
}

// Bundled parses the dataset embedded in the binary.
func Bundled() (*Table, error) {
	return Parse(strings.NewReader(bundledCSV))
}

// LoadFile parses the CSV at path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open reference data: %w", domain.ErrDataUnavailable, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a header row followed by observation rows. Unknown columns are
// ignored. A malformed numeric cell is stored as NaN and the row is counted
// in Malformed; aggregation later skips it.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: reference data is empty", domain.ErrDataUnavailable)
		}
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrDataUnavailable, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %w", domain.ErrDataUnavailable, err)
		}
		if isBlank(record) {
			continue
		}

		obs, ok := parseRecord(record, index)
		if !ok {
			t.malformed++
		}
		t.observations = append(t.observations, obs)
	}

	return t, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrDataUnavailable, strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRecord(record []string, index map[string]int) (domain.ReferenceObservation, bool) {
	ok := true
	num := func(col string) float64 {
		v, valid := parseCell(cell(record, index[col]))
		if !valid {
			ok = false
		}
		return v
	}

	obs := domain.ReferenceObservation{
		Label:       strings.TrimSpace(cell(record, index[ColumnLabel])),
		N:           num(ColumnN),
		P:           num(ColumnP),
		K:           num(ColumnK),
		Temperature: num(ColumnTemperature),
		Humidity:    num(ColumnHumidity),
		PH:          num(ColumnPH),
		Rainfall:    num(ColumnRainfall),
	}
	return obs, ok
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// parseCell returns NaN for empty, non-numeric or infinite input.
func parseCell(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Observations returns a copy of the loaded rows.
func (t *Table) Observations(_ context.Context) ([]domain.ReferenceObservation, error) {
	if t.err != nil {
		return nil, t.err
	}
	out := make([]domain.ReferenceObservation, len(t.observations))
	copy(out, t.observations)
	return out, nil
}

// Len returns the number of loaded rows, malformed ones included.
func (t *Table) Len() int { return len(t.observations) }

// Malformed returns how many rows had a non-numeric or missing numeric cell.
func (t *Table) Malformed() int { return t.malformed }

// Labels returns the distinct non-empty crop labels in first-seen order.
func (t *Table) Labels() []string {
	seen := make(map[string]struct{})
	labels := []string{}
	for _, o := range t.observations {
		if o.Label == "" {
			continue
		}
		if _, ok := seen[o.Label]; ok {
			continue
		}
		seen[o.Label] = struct{}{}
		labels = append(labels, o.Label)
	}
	return labels
}

// CheckReadiness reports an error until at least one usable row is loaded.
func (t *Table) CheckReadiness(_ context.Context) error {
	if t.err != nil {
		return t.err
	}
	if len(t.observations)-t.malformed <= 0 {
		return fmt.Errorf("%w: no usable reference rows", domain.ErrDataUnavailable)
	}
	return nil
}
