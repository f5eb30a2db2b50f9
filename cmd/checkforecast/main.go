// Command checkforecast runs the response plausibility rules and a set of
// internal-consistency checks over saved forecast results. Each file may hold
// a single ForecastResult object or an array of them.
//
// Usage:
//
//	go run ./cmd/checkforecast data/fixtures/*.json
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type loaded struct {
	file   string
	result domain.ForecastResult
}

func (l loaded) label() string {
	if l.result.ID != "" {
		return fmt.Sprintf("%s [%s]", l.file, l.result.ID)
	}
	return l.file
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: checkforecast FILE...")
		os.Exit(1)
	}
	os.Exit(run(flag.Args()))
}

func run(paths []string) int {
	fmt.Println("=== Forecast Result Validation ===")
	fmt.Println()

	var results []loaded
	for _, path := range paths {
		items, err := loadResults(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", path, err)
			return 1
		}
		for _, r := range items {
			results = append(results, loaded{file: path, result: r})
		}
	}

	phases := []*phase{
		checkPlausibility(results),
		checkLabels(results),
		checkDerivedFields(results),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Results: %d from %d files\n", len(results), len(paths))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadResults(path string) ([]domain.ForecastResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []domain.ForecastResult
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var item domain.ForecastResult
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return []domain.ForecastResult{item}, nil
}

// ── Phase 1: Plausibility ──

func checkPlausibility(results []loaded) *phase {
	p := &phase{name: "Phase 1: Response plausibility"}
	for _, l := range results {
		v := domain.ValidateResponse(l.result)
		for _, e := range v.Errors {
			p.errorf("%s: %s", l.label(), e)
		}
	}
	return p
}

// ── Phase 2: Labels ──
// Enumerated string fields must carry one of the values the engine emits.

var (
	dataSources = []string{domain.DataSourceArchive, domain.DataSourceFallback}
	confidences = []string{domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow}
	geoSources  = []string{"", domain.GeoSourceReverse, domain.GeoSourceOriginal, domain.GeoSourceFailed}
	skies       = []string{"Clear", "Partly Cloudy", "Cloudy", "Overcast"}
)

func checkLabels(results []loaded) *phase {
	p := &phase{name: "Phase 2: Enumerated labels"}
	for _, l := range results {
		r := l.result
		if !slices.Contains(dataSources, r.DataSource) {
			p.errorf("%s: unknown dataSource %q", l.label(), r.DataSource)
		}
		if !slices.Contains(confidences, r.ConfidenceLevel) {
			p.errorf("%s: unknown confidenceLevel %q", l.label(), r.ConfidenceLevel)
		}
		if !slices.Contains(geoSources, r.GeoSource) {
			p.errorf("%s: unknown geoSource %q", l.label(), r.GeoSource)
		}
		if r.Forecast != nil && !slices.Contains(skies, r.Forecast.SkyCondition) {
			p.errorf("%s: unknown skyCondition %q", l.label(), r.Forecast.SkyCondition)
		}
		if _, ok := r.TargetDate.Time(); !ok {
			p.errorf("%s: predictionDate %s is not a calendar date", l.label(), r.TargetDate)
		}
	}
	return p
}

// ── Phase 3: Derived fields ──
// Fields computed from other fields must agree with them.

func checkDerivedFields(results []loaded) *phase {
	p := &phase{name: "Phase 3: Derived field consistency"}
	for _, l := range results {
		r := l.result
		if f := r.Forecast; f != nil {
			if want := domain.SkyCondition(f.Precipitation); f.SkyCondition != want {
				p.errorf("%s: skyCondition %q, precipitation %.1f implies %q", l.label(), f.SkyCondition, f.Precipitation, want)
			}
		}
		if pr := r.Probabilities; pr != nil {
			if want := domain.StormProbability(pr.HighWind, pr.HeavyRain); math.Abs(pr.Storm-want) > 0.25 {
				p.errorf("%s: stormProbability %.1f, wind/rain imply %.1f", l.label(), pr.Storm, want)
			}
		}
		h := r.HistoricalContext
		if h == nil {
			continue
		}
		if want := domain.SeasonalPattern(r.Latitude, r.TargetDate.Month); h.SeasonalPattern != want {
			p.errorf("%s: seasonalPattern %q, expected %q", l.label(), h.SeasonalPattern, want)
		}
		// The stored average is rounded; skip values that sit on a trend boundary.
		avg := h.HistoricalAvgTemp
		if h.ClimateTrend != "insufficient data" && math.Abs(avg-25) > 0.05 && math.Abs(avg-10) > 0.05 {
			if want := domain.ClimateTrend(&avg); h.ClimateTrend != want {
				p.errorf("%s: climateTrend %q, average %.1f implies %q", l.label(), h.ClimateTrend, avg, want)
			}
		}
	}
	return p
}
