package domain

import (
	"math"
	"math/rand/v2"
	"time"
)

// Labels attached to every result.
const (
	DataSourceArchive  = "historical-archive + statistical analysis"
	DataSourceFallback = "synthetic fallback + statistical analysis"

	ConfidenceHigh   = "High (85-90%)"
	ConfidenceMedium = "Medium (70-80%)"
	ConfidenceLow    = "Low (50-65%)"
)

// tempSwapMargin widens an inverted min/max pair after swapping.
const tempSwapMargin = 2.0

// BuildForecast perturbs the historical means into a single-day forecast.
// The returned values are rounded to one decimal and satisfy
// TemperatureMin <= TemperatureAvg <= TemperatureMax.
func BuildForecast(rng *rand.Rand, stats WeatherStatistics, target time.Time, loc Location) Forecast {
	baseline := SeasonalBaseline(target.Month(), loc.Latitude)
	histMin := valueOr(stats.AvgTemperatureMin, baseline-5)
	histMax := valueOr(stats.AvgTemperatureMax, baseline+5)

	shift := rng.NormFloat64() * 3
	tMin := histMin + shift - math.Abs(rng.NormFloat64()*1.5)
	tMax := histMax + shift + math.Abs(rng.NormFloat64()*1.5)
	if tMin >= tMax {
		tMin, tMax = tMax-tempSwapMargin, tMin+tempSwapMargin
	}
	tAvg := clamp((tMin+tMax)/2+rng.NormFloat64()*0.5, tMin, tMax)

	humidity := clamp(valueOr(stats.AvgHumidity, 60)+rng.NormFloat64()*10, 0, 100)
	precipitation := valueOr(stats.AvgPrecipitation, 0) * math.Max(0, rng.NormFloat64()*2+1)
	windSpeed := math.Max(0, valueOr(stats.AvgWindSpeed, 0)+math.Max(0, rng.NormFloat64()*2))
	direction := rng.Float64() * 360

	precipitation = round1(precipitation)
	windSpeed = round1(windSpeed)
	pressure := forecastPressure(rng, stats.AvgPressure, precipitation, windSpeed)

	return Forecast{
		TemperatureMin:     round1(tMin),
		TemperatureMax:     round1(tMax),
		TemperatureAvg:     round1(tAvg),
		Humidity:           round1(humidity),
		Precipitation:      precipitation,
		WindSpeed:          windSpeed,
		WindDirection:      math.Mod(round1(direction), 360),
		Pressure:           round1(pressure),
		SkyCondition:       SkyCondition(precipitation),
		WeatherDescription: DescribeWeather(tAvg, precipitation, windSpeed, target.Month(), loc.Latitude),
	}
}

// BuildHistoricalContext summarizes the climatology the forecast came from.
func BuildHistoricalContext(stats WeatherStatistics, years int, target time.Time, lat float64) HistoricalContext {
	return HistoricalContext{
		YearsOfData:                years,
		HistoricalAvgTemp:          round1(valueOr(stats.AvgTemperature, SeasonalBaseline(target.Month(), lat))),
		HistoricalAvgPrecipitation: round1(math.Max(0, valueOr(stats.AvgPrecipitation, 0))),
		ClimateTrend:               ClimateTrend(stats.AvgTemperature),
		SeasonalPattern:            SeasonalPattern(lat, target.Month()),
	}
}

// ClimateTrend labels the historical mean temperature.
func ClimateTrend(avgTemp *float64) string {
	switch {
	case avgTemp == nil:
		return "insufficient data"
	case *avgTemp > 25:
		return "warming"
	case *avgTemp < 10:
		return "cooling"
	default:
		return "stable"
	}
}

// ConfidenceLevel grades how complete the historical statistics are.
func ConfidenceLevel(stats WeatherStatistics) string {
	hasTempAndRain := stats.AvgTemperature != nil && stats.AvgPrecipitation != nil
	switch {
	case hasTempAndRain && stats.AvgWindSpeed != nil && stats.AvgHumidity != nil:
		return ConfidenceHigh
	case hasTempAndRain:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// NewForecastResult assembles the full result for a validated request.
// target must be the request's resolved target date.
func NewForecastResult(rng *rand.Rand, req ForecastRequest, target time.Time, stats WeatherStatistics, years int) ForecastResult {
	loc := req.Location()

	forecast := BuildForecast(rng, stats, target, loc)
	probs := roundProbabilities(CalibrateProbabilities(stats, target, loc.Latitude))
	history := BuildHistoricalContext(stats, years, target, loc.Latitude)

	source := DataSourceArchive
	if stats.Fallback {
		source = DataSourceFallback
	}

	return ForecastResult{
		ID:                req.ID,
		LocationName:      req.Name,
		Latitude:          loc.Latitude,
		Longitude:         loc.Longitude,
		Elevation:         loc.Elevation,
		Country:           req.Country,
		State:             req.State,
		City:              req.City,
		TargetDate:        NewCalendarDate(target),
		Forecast:          &forecast,
		Probabilities:     &probs,
		HistoricalContext: &history,
		GeneratedAt:       clock.Now().UTC(),
		DataSource:        source,
		ConfidenceLevel:   ConfidenceLevel(stats),
		FormattedAddress:  req.Address,
	}
}

func roundProbabilities(p Probabilities) Probabilities {
	return Probabilities{
		ExtremeHeat:        round1(p.ExtremeHeat),
		ExtremeCold:        round1(p.ExtremeCold),
		HeavyRain:          round1(p.HeavyRain),
		HighWind:           round1(p.HighWind),
		Storm:              round1(p.Storm),
		ComfortableWeather: round1(p.ComfortableWeather),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
