package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
	"github.com/couchcryptid/climate-forecast-engine/internal/observability"
)

// qualityWarnThreshold is the data-quality percentage below which a fetched
// history is logged at warn level.
const qualityWarnThreshold = 80.0

// Archive retrieves daily observations for a point and an inclusive date range.
type Archive interface {
	FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) (domain.DailySeries, error)
}

// History is the pooled multi-year series behind one forecast.
type History struct {
	Series   domain.DailySeries
	Fallback bool // true when Series was synthesized
	Years    int  // years that contributed archive data
	Quality  float64
}

// Fetcher pools the 7-day window around a day-of-year across several years.
type Fetcher struct {
	archive     Archive
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewFetcher creates a Fetcher issuing at most concurrency archive calls at once.
func NewFetcher(archive Archive, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		archive:     archive,
		concurrency: max(1, concurrency),
		logger:      logger,
		metrics:     metrics,
	}
}

// Fetch returns the pooled series for every year from start.Year() to
// end.Year(), each year contributing the window centred on start's
// day-of-year. A failed year is logged and omitted. When no year yields data
// the series is synthesized instead, so Fetch never fails and never returns
// an empty series. rng is only used on the fallback path.
func (f *Fetcher) Fetch(ctx context.Context, rng *rand.Rand, lat, lon float64, start, end time.Time) History {
	firstYear, lastYear := start.Year(), end.Year()
	if lastYear < firstYear {
		lastYear = firstYear
	}
	dayOfYear := start.YearDay()

	slots := make([]domain.DailySeries, lastYear-firstYear+1)

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i := range slots {
		year := firstYear + i
		g.Go(func() error {
			slots[i] = f.fetchYear(ctx, lat, lon, year, dayOfYear)
			return nil
		})
	}
	// fetchYear absorbs per-year errors into an empty slot; the group only bounds concurrency.
	_ = g.Wait()

	var history History
	for _, s := range slots {
		if s.Empty() {
			continue
		}
		history.Series.Append(s)
		history.Years++
	}

	if history.Years == 0 {
		f.logger.Warn("no archive data for any year, synthesizing history",
			"lat", lat, "lon", lon,
			"first_year", firstYear, "last_year", lastYear,
		)
		f.metrics.FallbackUsed.Inc()
		return f.synthesize(rng, lat, lon, firstYear, lastYear, dayOfYear)
	}

	history.Quality = domain.AssessQuality(history.Series)
	f.metrics.DataQuality.Observe(history.Quality)
	attrs := []any{
		"lat", lat, "lon", lon,
		"years", history.Years,
		"years_requested", len(slots),
		"quality_pct", history.Quality,
	}
	if history.Quality < qualityWarnThreshold {
		f.logger.Warn("archive data quality is low", attrs...)
	} else {
		f.logger.Info("archive data quality", attrs...)
	}
	return history
}

func (f *Fetcher) fetchYear(ctx context.Context, lat, lon float64, year, dayOfYear int) domain.DailySeries {
	from, to := domain.YearWindow(year, dayOfYear)
	series, err := f.archive.FetchDaily(ctx, lat, lon, from, to)
	if err != nil {
		f.logger.Warn("archive fetch failed, omitting year",
			"year", year, "lat", lat, "lon", lon, "error", err)
		f.metrics.YearsFailed.Inc()
		return domain.DailySeries{}
	}
	if series.Empty() {
		f.logger.Debug("archive returned no observations", "year", year, "lat", lat, "lon", lon)
	}
	return series
}

func (f *Fetcher) synthesize(rng *rand.Rand, lat, lon float64, firstYear, lastYear, dayOfYear int) History {
	history := History{Fallback: true}
	for year := firstYear; year <= lastYear; year++ {
		from, to := domain.YearWindow(year, dayOfYear)
		history.Series.Append(domain.Synthesize(rng, lat, lon, from, to))
	}
	return history
}
