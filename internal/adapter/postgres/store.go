// Package postgres loads crop reference observations from a Postgres table
// as an alternative to the bundled CSV.
package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/crop-advisory-service/internal/dataset"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the reference-data pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool and verifies the connection.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect reference database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping reference database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const referenceObservationsSQL = `
    SELECT label, n, p, k, temperature, humidity, ph, rainfall
    FROM crop_reference_observations
    ORDER BY id
`

// referenceRow mirrors one table row; numeric columns are nullable.
type referenceRow struct {
	Label       *string
	N           *float64
	P           *float64
	K           *float64
	Temperature *float64
	Humidity    *float64
	PH          *float64
	Rainfall    *float64
}

// LoadReference reads every observation into a dataset.Table. NULL numeric
// cells become NaN and are counted as malformed, matching the CSV loader.
// Rows without a label are dropped.
func (s *Store) LoadReference(ctx context.Context) (*dataset.Table, error) {
	rows, err := s.pool.Query(ctx, referenceObservationsSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: query reference observations: %w", domain.ErrDataUnavailable, err)
	}
	defer rows.Close()

	observations := make([]domain.ReferenceObservation, 0)
	for rows.Next() {
		var row referenceRow
		if err := rows.Scan(
			&row.Label,
			&row.N,
			&row.P,
			&row.K,
			&row.Temperature,
			&row.Humidity,
			&row.PH,
			&row.Rainfall,
		); err != nil {
			return nil, fmt.Errorf("%w: scan reference observation: %w", domain.ErrDataUnavailable, err)
		}
		if obs, ok := row.observation(); ok {
			observations = append(observations, obs)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read reference observations: %w", domain.ErrDataUnavailable, err)
	}
	return dataset.NewTable(observations), nil
}

func (r referenceRow) observation() (domain.ReferenceObservation, bool) {
	if r.Label == nil {
		return domain.ReferenceObservation{}, false
	}
	label := strings.TrimSpace(*r.Label)
	if label == "" {
		return domain.ReferenceObservation{}, false
	}
	return domain.ReferenceObservation{
		Label:       label,
		N:           orNaN(r.N),
		P:           orNaN(r.P),
		K:           orNaN(r.K),
		Temperature: orNaN(r.Temperature),
		Humidity:    orNaN(r.Humidity),
		PH:          orNaN(r.PH),
		Rainfall:    orNaN(r.Rainfall),
	}, true
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
