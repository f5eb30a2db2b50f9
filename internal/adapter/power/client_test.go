package power

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-forecast-engine/internal/observability"
)

func testClient(baseURL string, maxRetries int) *Client {
	return NewClient(Options{
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var (
	windowStart = time.Date(2024, time.December, 22, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, time.December, 28, 0, 0, 0, 0, time.UTC)
)

func TestClient_FetchDaily_Success(t *testing.T) {
	fixture := loadFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "T2M_MIN,T2M_MAX,PRECTOTCORR,WS10M,RH2M,PS", q.Get("parameters"))
		assert.Equal(t, "RE", q.Get("community"))
		assert.Equal(t, "25.0000", q.Get("latitude"))
		assert.Equal(t, "30.0000", q.Get("longitude"))
		assert.Equal(t, "20241222", q.Get("start"))
		assert.Equal(t, "20241228", q.Get("end"))
		assert.Equal(t, "JSON", q.Get("format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	series, err := testClient(srv.URL, 0).FetchDaily(context.Background(), 25, 30, windowStart, windowEnd)
	require.NoError(t, err)

	assert.Len(t, series.TemperatureMax, 3)
	assert.Len(t, series.TemperatureMin, 2)
	assert.Equal(t, []float64{98.77, 98.81, 98.9}, series.Pressure)
}

func TestClient_FetchDaily_RetriesServerErrors(t *testing.T) {
	fixture := loadFixture(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	series, err := testClient(srv.URL, 2).FetchDaily(context.Background(), 25, 30, windowStart, windowEnd)
	require.NoError(t, err)
	assert.False(t, series.Empty())
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_FetchDaily_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 1).FetchDaily(context.Background(), 25, 30, windowStart, windowEnd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_FetchDaily_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"messages":["start date after end date"]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 3).FetchDaily(context.Background(), 25, 30, windowStart, windowEnd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpected)
	assert.Contains(t, err.Error(), "422")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_FetchDaily_MalformedBodyIsEmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type":"Feature","properties":{"unexpected":true}}`))
	}))
	defer srv.Close()

	series, err := testClient(srv.URL, 0).FetchDaily(context.Background(), 25, 30, windowStart, windowEnd)
	require.NoError(t, err)
	assert.True(t, series.Empty())
}

func TestClient_FetchDaily_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 0)
	for range 5 {
		_, err := c.FetchDaily(context.Background(), 25, 30, windowStart, windowEnd)
		require.Error(t, err)
	}
	require.Equal(t, int32(5), calls.Load())

	_, err := c.FetchDaily(context.Background(), 25, 30, windowStart, windowEnd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(5), calls.Load(), "open circuit must not reach the server")
}

func TestClient_FetchDaily_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL, 2).FetchDaily(ctx, 25, 30, windowStart, windowEnd)
	require.Error(t, err)
}
