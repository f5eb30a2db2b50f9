package domain

import (
	"math"
	"math/rand/v2"
	"time"
)

// Synthesize generates a plausible daily series for every day in [start, end]
// when the archive is unavailable. It never fails and never returns an empty
// series: an end before start yields the single day at start.
//
// Temperature is a latitude-derived base (25 - 0.6*|lat|) plus a yearly
// sinusoid of amplitude 10 °C keyed to day-of-year, peaking in the local
// summer, plus Gaussian noise. Precipitation, wind and humidity are floored at
// zero and humidity is capped at 100. Daily min <= max is not enforced here.
// Longitude is accepted for symmetry with the archive query but unused.
func Synthesize(rng *rand.Rand, lat, _ float64, start, end time.Time) DailySeries {
	start = truncateDay(start)
	end = truncateDay(end)
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	series := DailySeries{
		TemperatureMin: make([]float64, 0, days),
		TemperatureMax: make([]float64, 0, days),
		Precipitation:  make([]float64, 0, days),
		WindSpeed:      make([]float64, 0, days),
		Humidity:       make([]float64, 0, days),
		Pressure:       make([]float64, 0, days),
	}

	base := 25 - math.Abs(lat)*0.6
	for i := range days {
		day := start.AddDate(0, 0, i)
		season := seasonalOffset(day.YearDay(), lat)

		series.TemperatureMin = append(series.TemperatureMin, base+season-5+gauss(rng, 0, 3))
		series.TemperatureMax = append(series.TemperatureMax, base+season+5+gauss(rng, 0, 3))
		series.Precipitation = append(series.Precipitation, math.Max(0, gauss(rng, 2, 5)))
		series.WindSpeed = append(series.WindSpeed, math.Max(0, gauss(rng, 5, 3)))
		series.Humidity = append(series.Humidity, clamp(gauss(rng, 60, 15), 0, 100))
		series.Pressure = append(series.Pressure, gauss(rng, StandardPressure, 20))
	}
	return series
}

// seasonalOffset is a 365-day cosine of amplitude 10 that is coldest around
// the new year in the north and warmest then in the south.
func seasonalOffset(dayOfYear int, lat float64) float64 {
	wave := math.Cos(2*math.Pi*float64(dayOfYear)/365.0) * 10
	if lat < 0 {
		return wave
	}
	return -wave
}

func gauss(rng *rand.Rand, mean, stddev float64) float64 {
	return mean + rng.NormFloat64()*stddev
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysIn returns the number of days in the given year.
func daysIn(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// YearWindow returns the 7-day window centred on dayOfYear in year, clamped to
// the year's first and last day.
func YearWindow(year, dayOfYear int) (time.Time, time.Time) {
	first := max(1, dayOfYear-3)
	last := min(daysIn(year), dayOfYear+3)
	if first > last {
		first = last
	}
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return jan1.AddDate(0, 0, first-1), jan1.AddDate(0, 0, last-1)
}

// HistoryRange returns the archive range used for a target day-of-year: from
// years back to one year before today, both anchored at the same day-of-year
// (clamped to each year's length).
func HistoryRange(today time.Time, dayOfYear, years int) (time.Time, time.Time) {
	anchor := func(year int) time.Time {
		doy := min(dayOfYear, daysIn(year))
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)
	}
	return anchor(today.Year() - years), anchor(today.Year() - 1)
}
