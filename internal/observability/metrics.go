package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_forecast"

// Metrics holds the Prometheus collectors for the forecast engine.
type Metrics struct {
	ForecastRequests *prometheus.CounterVec // labels: outcome={success,invalid}
	ForecastDuration prometheus.Histogram
	ResponseWarnings prometheus.Counter

	// Historical archive metrics.
	ArchiveRequests    *prometheus.CounterVec // labels: outcome={success,error,empty,malformed}
	ArchiveAPIDuration prometheus.Histogram
	ArchiveRetries     prometheus.Counter
	ArchiveCircuitOpen prometheus.Gauge
	YearsFailed        prometheus.Counter
	FallbackUsed       prometheus.Counter
	DataQuality        prometheus.Histogram

	// Publishing metrics.
	ForecastsPublished prometheus.Counter
	PublishErrors      prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they need without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Forecast requests by outcome.",
		}, []string{"outcome"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end forecast duration including archive fetches.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ResponseWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_validation_warnings_total",
			Help:      "Forecasts returned despite failing response validation.",
		}),
		ArchiveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_requests_total",
			Help:      "Historical archive requests by outcome.",
		}, []string{"outcome"}),
		ArchiveAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "archive_api_duration_seconds",
			Help:      "Historical archive request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ArchiveRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_retries_total",
			Help:      "Historical archive requests retried after a 429, 5xx or transport error.",
		}),
		ArchiveCircuitOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_circuit_open",
			Help:      "1 while the archive circuit breaker is open.",
		}),
		YearsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_years_failed_total",
			Help:      "Historical years omitted from aggregation after a fetch failure.",
		}),
		FallbackUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_synthesized_total",
			Help:      "Forecasts built from synthesized rather than archived history.",
		}),
		DataQuality: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "archive_data_quality_percent",
			Help:      "Share of plausible observations per archived history.",
			Buckets:   []float64{50, 70, 80, 90, 95, 99, 100},
		}),
		ForecastsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_published_total",
			Help:      "Forecasts written to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Forecasts that could not be written to Kafka.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ForecastRequests,
		m.ForecastDuration,
		m.ResponseWarnings,
		m.ArchiveRequests,
		m.ArchiveAPIDuration,
		m.ArchiveRetries,
		m.ArchiveCircuitOpen,
		m.YearsFailed,
		m.FallbackUsed,
		m.DataQuality,
		m.ForecastsPublished,
		m.PublishErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
