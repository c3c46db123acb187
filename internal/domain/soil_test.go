package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestParseNPK(t *testing.T) {
	t.Run("valid packed string", func(t *testing.T) {
		n, p, k, err := ParseNPK("120:60:80")
		require.NoError(t, err)
		assert.Equal(t, 120.0, n)
		assert.Equal(t, 60.0, p)
		assert.Equal(t, 80.0, k)
	})

	t.Run("whitespace and decimals", func(t *testing.T) {
		n, p, k, err := ParseNPK(" 12.5 : 6 :0 ")
		require.NoError(t, err)
		assert.Equal(t, 12.5, n)
		assert.Equal(t, 6.0, p)
		assert.Equal(t, 0.0, k)
	})

	invalid := []string{"", "120:60", "120:60:80:10", "120::80", "abc:60:80", "NaN:1:1", "Inf:1:1"}
	for _, s := range invalid {
		t.Run("rejects "+s, func(t *testing.T) {
			_, _, _, err := ParseNPK(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSoilProfile)
		})
	}
}

func TestSoilProfile_NPK(t *testing.T) {
	s := SoilProfile{Nitrogen: 120, Phosphorus: 60.5, Potassium: 80}
	assert.Equal(t, "120:60.5:80", s.NPK())

	n, p, k, err := ParseNPK(s.NPK())
	require.NoError(t, err)
	assert.Equal(t, []float64{120, 60.5, 80}, []float64{n, p, k})
}

func TestSoilProfile_Validate(t *testing.T) {
	valid := SoilProfile{Nitrogen: 120, Phosphorus: 60, Potassium: 80, PH: 7, OrganicCarbon: 1}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*SoilProfile)
		field  string
	}{
		{name: "negative nitrogen", mutate: func(s *SoilProfile) { s.Nitrogen = -1 }, field: "nitrogen"},
		{name: "NaN phosphorus", mutate: func(s *SoilProfile) { s.Phosphorus = math.NaN() }, field: "phosphorus"},
		{name: "infinite potassium", mutate: func(s *SoilProfile) { s.Potassium = math.Inf(1) }, field: "potassium"},
		{name: "ph above 14", mutate: func(s *SoilProfile) { s.PH = 14.5 }, field: "ph"},
		{name: "negative organic carbon", mutate: func(s *SoilProfile) { s.OrganicCarbon = -0.2 }, field: "organic_carbon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSoilProfile)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestSoilInput_Profile(t *testing.T) {
	t.Run("discrete fields", func(t *testing.T) {
		in := SoilInput{Nitrogen: ptr(120), Phosphorus: ptr(60), Potassium: ptr(80), PH: ptr(7), OrganicCarbon: ptr(1)}
		profile, err := in.Profile()
		require.NoError(t, err)
		assert.Equal(t, SoilProfile{Nitrogen: 120, Phosphorus: 60, Potassium: 80, PH: 7, OrganicCarbon: 1}, profile)
	})

	t.Run("packed npk", func(t *testing.T) {
		in := SoilInput{NPK: "120:60:80", PH: ptr(7)}
		profile, err := in.Profile()
		require.NoError(t, err)
		assert.Equal(t, SoilProfile{Nitrogen: 120, Phosphorus: 60, Potassium: 80, PH: 7}, profile)
	})

	t.Run("discrete fields win over packed", func(t *testing.T) {
		in := SoilInput{Nitrogen: ptr(10), Phosphorus: ptr(20), Potassium: ptr(30), NPK: "120:60:80", PH: ptr(6)}
		profile, err := in.Profile()
		require.NoError(t, err)
		assert.Equal(t, 10.0, profile.Nitrogen)
	})

	t.Run("measured zero is accepted", func(t *testing.T) {
		in := SoilInput{Nitrogen: ptr(0), Phosphorus: ptr(0), Potassium: ptr(0), PH: ptr(0)}
		_, err := in.Profile()
		require.NoError(t, err)
	})

	invalid := []struct {
		name string
		in   SoilInput
	}{
		{name: "no nutrients", in: SoilInput{PH: ptr(7)}},
		{name: "partial nutrients", in: SoilInput{Nitrogen: ptr(120), PH: ptr(7)}},
		{name: "missing ph", in: SoilInput{NPK: "120:60:80"}},
		{name: "malformed npk", in: SoilInput{NPK: "120-60-80", PH: ptr(7)}},
		{name: "out of range ph", in: SoilInput{NPK: "120:60:80", PH: ptr(15)}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Profile()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSoilProfile)
		})
	}
}
