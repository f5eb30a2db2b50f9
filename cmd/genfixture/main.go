// Command genfixture synthesizes climate-archive fixtures and the forecast
// the engine derives from them. Both outputs are reproducible: the seed is
// fixed and the domain clock is pinned.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -lat 39.7392 -lon -104.9903 \
//	  -start 2024-12-22 -end 2024-12-28 \
//	  -archive-out internal/adapter/power/testdata/denver_week.json \
//	  -forecast-out data/fixtures/denver_forecast.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-forecast-engine/internal/adapter/power"
	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
)

var generatedAt = time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 39.7392, "latitude in degrees")
	lon := flag.Float64("lon", -104.9903, "longitude in degrees")
	startFlag := flag.String("start", "2024-12-22", "first day (YYYY-MM-DD)")
	endFlag := flag.String("end", "2024-12-28", "last day (YYYY-MM-DD)")
	seed := flag.Uint64("seed", 42, "random seed")
	archiveOut := flag.String("archive-out", "", "output path for archive JSON fixture")
	forecastOut := flag.String("forecast-out", "", "output path for forecast JSON fixture (optional)")
	flag.Parse()

	if *archiveOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -archive-out")
	}

	start, err := parseDay(*startFlag)
	if err != nil {
		return err
	}
	end, err := parseDay(*endFlag)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("-end %s is before -start %s", *endFlag, *startFlag)
	}

	domain.SetClock(clockwork.NewFakeClockAt(generatedAt))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewPCG(*seed, *seed))
	series := domain.Synthesize(rng, *lat, *lon, start, end)

	body, err := power.EncodeDaily(series, *lat, *lon, start)
	if err != nil {
		return err
	}
	if err := writeFile(*archiveOut, append(body, '\n')); err != nil {
		return fmt.Errorf("writing archive fixture: %w", err)
	}
	log.Printf("wrote archive fixture: %s (%d days)", *archiveOut, len(series.TemperatureMax))

	// Read the fixture back through the archive parser so the forecast sees
	// exactly what the engine would.
	parsed, err := power.ParseDaily(body)
	if err != nil {
		return fmt.Errorf("re-parse archive fixture: %w", err)
	}
	stats := domain.Aggregate(parsed)
	printStats(stats)

	if *forecastOut == "" {
		return nil
	}

	target := domain.NewCalendarDate(end.AddDate(1, 0, 0))
	req := domain.ForecastRequest{
		ID:         fmt.Sprintf("fixture-%d", *seed),
		Name:       fmt.Sprintf("%.4f,%.4f", *lat, *lon),
		Latitude:   lat,
		Longitude:  lon,
		TargetDate: &target,
	}
	targetTime, _ := target.Time()
	result := domain.NewForecastResult(rng, req, targetTime, stats, 1)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFile(*forecastOut, append(data, '\n')); err != nil {
		return fmt.Errorf("writing forecast fixture: %w", err)
	}
	log.Printf("wrote forecast fixture: %s", *forecastOut)

	if v := domain.ValidateResponse(result); !v.Valid {
		log.Printf("warning: generated forecast fails response checks: %s", v)
	}
	return nil
}

func parseDay(s string) (time.Time, error) {
	d, err := domain.ParseCalendarDate(s)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := d.Time()
	if !ok {
		return time.Time{}, fmt.Errorf("%s is not a calendar date", s)
	}
	return t, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func printStats(s domain.WeatherStatistics) {
	fmt.Println("\n=== Aggregate statistics for test assertions ===")
	fmt.Printf("Observations: %d\n", s.Observations)
	fmt.Printf("Avg temp: %s (min %s, max %s)\n", fmtPtr(s.AvgTemperature), fmtPtr(s.AvgTemperatureMin), fmtPtr(s.AvgTemperatureMax))
	fmt.Printf("Precip: avg %s, max %s\n", fmtPtr(s.AvgPrecipitation), fmtPtr(s.MaxPrecipitation))
	fmt.Printf("Wind: avg %s, max %s\n", fmtPtr(s.AvgWindSpeed), fmtPtr(s.MaxWindSpeed))
	fmt.Printf("Humidity: %s  Pressure: %s\n", fmtPtr(s.AvgHumidity), fmtPtr(s.AvgPressure))
	fmt.Printf("Exceedance: heat=%.1f%% cold=%.1f%% rain=%.1f%% wind=%.1f%%\n",
		s.ExtremeHeatProbability, s.ExtremeColdProbability, s.HeavyRainProbability, s.HighWindProbability)
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
