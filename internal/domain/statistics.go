package domain

// Exceedance thresholds applied to the historical series.
const (
	ExtremeHeatThreshold = 35.0 // °C, daily maximum temperature
	ExtremeColdThreshold = 0.0  // °C, daily minimum temperature (lower tail)
	HeavyRainThreshold   = 25.0 // mm/day
	HighWindThreshold    = 15.0 // m/s
)

// Aggregate reduces a daily series to summary statistics. Parameters with no
// observations leave their means nil; probabilities over an empty series are 0.
func Aggregate(series DailySeries) WeatherStatistics {
	stats := WeatherStatistics{
		AvgTemperatureMin: mean(series.TemperatureMin),
		AvgTemperatureMax: mean(series.TemperatureMax),
		AvgPrecipitation:  mean(series.Precipitation),
		MaxPrecipitation:  maxOf(series.Precipitation),
		AvgWindSpeed:      mean(series.WindSpeed),
		MaxWindSpeed:      maxOf(series.WindSpeed),
		AvgHumidity:       mean(series.Humidity),
		AvgPressure:       mean(series.Pressure),

		ExtremeHeatProbability: ExceedanceProbability(series.TemperatureMax, ExtremeHeatThreshold, false),
		ExtremeColdProbability: ExceedanceProbability(series.TemperatureMin, ExtremeColdThreshold, true),
		HeavyRainProbability:   ExceedanceProbability(series.Precipitation, HeavyRainThreshold, false),
		HighWindProbability:    ExceedanceProbability(series.WindSpeed, HighWindThreshold, false),

		Observations: max(len(series.TemperatureMin), len(series.TemperatureMax),
			len(series.Precipitation), len(series.WindSpeed), len(series.Humidity), len(series.Pressure)),
	}

	if stats.AvgTemperatureMin != nil && stats.AvgTemperatureMax != nil {
		avg := (*stats.AvgTemperatureMin + *stats.AvgTemperatureMax) / 2
		stats.AvgTemperature = &avg
	}
	return stats
}

// ExceedanceProbability returns the percentage of values strictly above
// threshold, or strictly below it when below is set.
func ExceedanceProbability(values []float64, threshold float64, below bool) float64 {
	if len(values) == 0 {
		return 0
	}
	var count int
	for _, v := range values {
		if (below && v < threshold) || (!below && v > threshold) {
			count++
		}
	}
	return float64(count) / float64(len(values)) * 100
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

func maxOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return &m
}

// AssessQuality returns the share, in percent, of observations that fall inside
// physically plausible bounds: paired min/max temperatures with min <= max
// inside (-60, 60), precipitation in [0, 1000) and wind in [0, 200).
// It returns 0 for a series without any checked observation.
func AssessQuality(series DailySeries) float64 {
	var total, valid int

	pairs := min(len(series.TemperatureMin), len(series.TemperatureMax))
	for i := range pairs {
		total++
		lo, hi := series.TemperatureMin[i], series.TemperatureMax[i]
		if lo <= hi && lo > -60 && lo < 60 && hi > -60 && hi < 60 {
			valid++
		}
	}
	for _, p := range series.Precipitation {
		total++
		if p >= 0 && p < 1000 {
			valid++
		}
	}
	for _, w := range series.WindSpeed {
		total++
		if w >= 0 && w < 200 {
			valid++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(valid) / float64(total) * 100
}
