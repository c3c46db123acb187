package mlapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var testProfile = domain.SoilProfile{Nitrogen: 120, Phosphorus: 60, Potassium: 80, PH: 7, OrganicCarbon: 1}

func testClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Recommend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/predict", r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 120.0, req.Nitrogen)
		assert.Equal(t, 7.0, req.PH)
		assert.Equal(t, 2, req.TopN)

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"recommendations":[
			{"crop":"maize","suitability":71.6},
			{"crop":"cotton","suitability":88.2,"requirements":{"N":117.8,"P":46.2,"K":19.6,"ph":6.9}},
			{"crop":"rice","suitability":71.4}
		]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	recs, err := c.Recommend(context.Background(), testProfile, 2)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, "cotton", recs[0].Crop)
	assert.Equal(t, 88, recs[0].Suitability)
	assert.Equal(t, 117.8, recs[0].Requirements.N)
	assert.Equal(t, "maize", recs[1].Crop)
	assert.Equal(t, 72, recs[1].Suitability)
	assert.Equal(t, Strategy, c.Name())
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.MLRequests.WithLabelValues("success")), 0)
}

func TestClient_Recommend_ClampsAndStableSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"recommendations":[
			{"crop":"jute","suitability":-4},
			{"crop":"banana","suitability":140},
			{"crop":"papaya","suitability":100},
			{"crop":"  ","suitability":99}
		]}`))
	}))
	defer srv.Close()

	recs, err := testClient(srv.URL, 5*time.Second).Recommend(context.Background(), testProfile, 0)
	require.NoError(t, err)

	require.Len(t, recs, 3)
	assert.Equal(t, []string{"banana", "papaya", "jute"}, []string{recs[0].Crop, recs[1].Crop, recs[2].Crop})
	assert.Equal(t, []int{100, 100, 0}, []int{recs[0].Suitability, recs[1].Suitability, recs[2].Suitability})
}

func TestClient_Recommend_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"recommendations":[]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	recs, err := c.Recommend(context.Background(), testProfile, 5)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.MLRequests.WithLabelValues("empty")), 0)
}

func TestClient_Recommend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"model loading"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Recommend(context.Background(), testProfile, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.MLRequests.WithLabelValues("error")), 0)
}

func TestClient_Recommend_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Recommend(context.Background(), testProfile, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Recommend_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).Recommend(context.Background(), testProfile, 5)
	require.Error(t, err)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://ml.internal:8000/", time.Second, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, "http://ml.internal:8000", c.baseURL)
}
