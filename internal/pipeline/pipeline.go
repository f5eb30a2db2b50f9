package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
	"github.com/couchcryptid/climate-forecast-engine/internal/observability"
)

// DefaultHistoryYears is the span of archive years pooled per forecast.
const DefaultHistoryYears = 10

// Publisher ships a finished forecast downstream.
type Publisher interface {
	Publish(ctx context.Context, result domain.ForecastResult) error
}

// RandSource returns the random generator for one request.
type RandSource func() *rand.Rand

// NewRandSource returns a source that seeds every request identically when
// seed is set, and randomly otherwise.
func NewRandSource(seed *uint64) RandSource {
	if seed == nil {
		return func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	s := *seed
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(s, s))
	}
}

// Options configures the optional stages of a Pipeline.
type Options struct {
	HistoryYears int
	Rand         RandSource
	Geocoder     domain.Geocoder // nil disables reverse geocoding
	Publisher    Publisher       // nil disables publishing
}

// Pipeline turns a forecast request into a ForecastResult.
type Pipeline struct {
	fetcher      *Fetcher
	geocoder     domain.Geocoder
	publisher    Publisher
	rand         RandSource
	historyYears int
	logger       *slog.Logger
	metrics      *observability.Metrics
	ready        atomic.Bool
}

// New creates a Pipeline. It is ready to serve as soon as it is built.
func New(fetcher *Fetcher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.HistoryYears <= 0 {
		opts.HistoryYears = DefaultHistoryYears
	}
	if opts.Rand == nil {
		opts.Rand = NewRandSource(nil)
	}
	p := &Pipeline{
		fetcher:      fetcher,
		geocoder:     opts.Geocoder,
		publisher:    opts.Publisher,
		rand:         opts.Rand,
		historyYears: opts.HistoryYears,
		logger:       logger,
		metrics:      metrics,
	}
	p.ready.Store(true)
	return p
}

// CheckReadiness returns nil while the pipeline accepts requests.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline is draining")
	}
	return nil
}

// Drain marks the pipeline not ready so load balancers stop routing to it
// before the HTTP server shuts down.
func (p *Pipeline) Drain() {
	p.ready.Store(false)
}

// Forecast validates req and synthesizes its forecast. An invalid request
// returns a *domain.ValidationError before any archive call. Archive, geocoding
// and publishing failures degrade the result but never fail it.
func (p *Pipeline) Forecast(ctx context.Context, req domain.ForecastRequest) (domain.ForecastResult, error) {
	start := time.Now()
	defer func() { p.metrics.ForecastDuration.Observe(time.Since(start).Seconds()) }()

	req.Name = strings.TrimSpace(req.Name)
	if err := domain.ValidateRequest(req).Err(); err != nil {
		p.metrics.ForecastRequests.WithLabelValues("invalid").Inc()
		return domain.ForecastResult{}, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	target, _ := req.TargetDate.Time()
	loc := req.Location()
	from, to := domain.HistoryRange(domain.Today(), target.YearDay(), p.historyYears)

	rng := p.rand()
	history := p.fetcher.Fetch(ctx, rng, loc.Latitude, loc.Longitude, from, to)

	stats := domain.Aggregate(history.Series)
	stats.Fallback = history.Fallback

	result := domain.NewForecastResult(rng, req, target, stats, p.historyYears)
	result = domain.EnrichWithGeocoding(ctx, result, p.geocoder, p.logger)

	if check := domain.ValidateResponse(result); !check.Valid {
		p.metrics.ResponseWarnings.Inc()
		p.logger.Warn("forecast failed response validation",
			"forecast_id", result.ID,
			"violations", check.Errors,
		)
	}

	p.publish(ctx, result)

	p.metrics.ForecastRequests.WithLabelValues("success").Inc()
	p.logger.Info("forecast generated",
		"forecast_id", result.ID,
		"target_date", result.TargetDate.String(),
		"lat", result.Latitude,
		"lon", result.Longitude,
		"data_source", result.DataSource,
		"observations", stats.Observations,
		"confidence", result.ConfidenceLevel,
	)
	return result, nil
}

func (p *Pipeline) publish(ctx context.Context, result domain.ForecastResult) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, result); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish forecast failed", "forecast_id", result.ID, "error", err)
		return
	}
	p.metrics.ForecastsPublished.Inc()
}
