package observability

import (
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-forecast-engine/internal/config"
)

func TestMetricsRegisterWithoutConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsForTesting()

	require.NoError(t, registerAll(reg, m))

	m.ForecastRequests.WithLabelValues("success").Inc()
	m.ArchiveRequests.WithLabelValues("malformed").Inc()
	m.GeocodeCache.WithLabelValues("hit").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForecastRequests.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GeocodeCache.WithLabelValues("hit")))
}

func TestMetricsNamespaced(t *testing.T) {
	m := NewMetricsForTesting()
	m.FallbackUsed.Inc()

	count, err := testutil.GatherAndCount(gathererFor(t, m), "climate_forecast_fallback_synthesized_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})

	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
	assert.Same(t, logger, slog.Default())
}

func registerAll(reg prometheus.Registerer, m *Metrics) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func gathererFor(t *testing.T, m *Metrics) prometheus.Gatherer {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, registerAll(reg, m))
	return reg
}
