package dataset

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `N,P,K,temperature,humidity,ph,rainfall,label
90,42,43,20.88,82.00,6.50,202.94,rice
85,58,41,21.77,80.32,7.04,226.66,rice
71,54,16,22.61,63.69,5.75,87.76,maize
`

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 0, table.Malformed())
	assert.Equal(t, []string{"rice", "maize"}, table.Labels())

	obs, err := table.Observations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ReferenceObservation{
		Label: "rice", N: 90, P: 42, K: 43, Temperature: 20.88, Humidity: 82.00, PH: 6.50, Rainfall: 202.94,
	}, obs[0])
}

func TestParse_HeaderLookup(t *testing.T) {
	// Reordered, mixed-case headers with an extra column and a BOM.
	data := "\ufeffLabel,Rainfall,pH,Humidity,Temperature,K,P,N,Source\n" +
		" rice ,202.9,6.5,82,20.9,43,42,90,kaggle\n"

	table, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	obs, err := table.Observations(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "rice", obs[0].Label)
	assert.Equal(t, 90.0, obs[0].N)
	assert.Equal(t, 43.0, obs[0].K)
	assert.Equal(t, 6.5, obs[0].PH)
	assert.Equal(t, 202.9, obs[0].Rainfall)
}

func TestParse_MalformedCells(t *testing.T) {
	data := `N,P,K,temperature,humidity,ph,rainfall,label
90,42,43,20.88,82.00,6.50,202.94,rice
abc,42,43,20.88,82.00,6.50,202.94,rice
85,58,,21.77,80.32,7.04,226.66,maize
85,58,41,21.77,80.32,Inf,226.66,maize
71,54,16,22.61,63.69,5.75,87.76,
`
	table, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 5, table.Len())
	assert.Equal(t, 3, table.Malformed())
	assert.Equal(t, []string{"rice", "maize"}, table.Labels())

	obs, err := table.Observations(context.Background())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(obs[1].N))
	assert.True(t, math.IsNaN(obs[2].K))
	assert.True(t, math.IsNaN(obs[3].PH))
	assert.Equal(t, "", obs[4].Label)

	// Only the clean rice row survives aggregation.
	recs := domain.Rank(domain.SoilProfile{Nitrogen: 90, Phosphorus: 42, Potassium: 43, PH: 6.5}, obs, 5)
	require.Len(t, recs, 1)
	assert.Equal(t, "rice", recs[0].Crop)
	assert.Equal(t, 100, recs[0].Suitability)
}

func TestParse_SkipsBlankLines(t *testing.T) {
	data := "N,P,K,temperature,humidity,ph,rainfall,label\n,,,,,,,\n90,42,43,20.88,82.00,6.50,202.94,rice\n"

	table, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestParse_Unavailable(t *testing.T) {
	cases := []struct {
		name string
		data string
		msg  string
	}{
		{name: "empty input", data: "", msg: "empty"},
		{name: "missing columns", data: "N,P,K,label\n1,2,3,rice\n", msg: "temperature, humidity, ph, rainfall"},
		{name: "bad quoting", data: "N,P,K,temperature,humidity,ph,rainfall,label\n1,2,3,4,5,6,7,\"rice\n", msg: "read row"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDataUnavailable)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	table, err := Parse(strings.NewReader("N,P,K,temperature,humidity,ph,rainfall,label\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Labels())

	recs, err := domain.NewLocalRecommender(table).Recommend(context.Background(),
		domain.SoilProfile{Nitrogen: 80, Phosphorus: 48, Potassium: 40, PH: 6.4}, domain.DefaultTopN)
	require.NoError(t, err)
	require.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestBundled(t *testing.T) {
	table, err := Bundled()
	require.NoError(t, err)

	assert.Equal(t, 66, table.Len())
	assert.Equal(t, 0, table.Malformed())
	labels := table.Labels()
	assert.Len(t, labels, 22)
	assert.Equal(t, "rice", labels[0])
	require.NoError(t, table.CheckReadiness(context.Background()))
}

func TestBundled_Ranking(t *testing.T) {
	table, err := Bundled()
	require.NoError(t, err)
	obs, err := table.Observations(context.Background())
	require.NoError(t, err)

	cases := []struct {
		name string
		soil domain.SoilProfile
		top  []string
	}{
		{name: "paddy soil", soil: domain.SoilProfile{Nitrogen: 80, Phosphorus: 48, Potassium: 40, PH: 6.4}, top: []string{"rice", "jute"}},
		{name: "high phosphorus and potassium", soil: domain.SoilProfile{Nitrogen: 23, Phosphorus: 132, Potassium: 200, PH: 6.0}, top: []string{"grapes", "apple"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs := domain.Rank(tc.soil, obs, domain.DefaultTopN)
			require.Len(t, recs, domain.DefaultTopN)
			assert.Equal(t, tc.top, []string{recs[0].Crop, recs[1].Crop})
		})
	}
}

func TestNewTable(t *testing.T) {
	input := []domain.ReferenceObservation{
		{Label: "rice", N: 90, P: 42, K: 43, PH: 6.5},
		{Label: "rice", N: math.NaN(), P: 42, K: 43, PH: 6.5},
	}
	table := NewTable(input)
	input[0].Label = "mutated"

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, table.Malformed())
	assert.Equal(t, []string{"rice"}, table.Labels())
}

func TestUnavailable(t *testing.T) {
	table := Unavailable(os.ErrNotExist)

	_, err := table.Observations(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, table.CheckReadiness(context.Background()), domain.ErrDataUnavailable)
	assert.Empty(t, table.Labels())
}

func TestCheckReadiness_NoUsableRows(t *testing.T) {
	table, err := Parse(strings.NewReader("N,P,K,temperature,humidity,ph,rainfall,label\nx,1,1,1,1,1,1,rice\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, table.CheckReadiness(context.Background()), domain.ErrDataUnavailable)
}
