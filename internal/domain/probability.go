package domain

import (
	"math"
	"time"
)

// CalibrateProbabilities rescales the raw exceedance probabilities for the
// target season and blends the comfort score.
func CalibrateProbabilities(stats WeatherStatistics, target time.Time, lat float64) Probabilities {
	season := SeasonFor(target.Month(), lat)
	return Probabilities{
		ExtremeHeat:        clampPercent(seasonalHeat(stats.ExtremeHeatProbability, season)),
		ExtremeCold:        clampPercent(seasonalCold(stats.ExtremeColdProbability, season)),
		HeavyRain:          clampPercent(stats.HeavyRainProbability + rainBoost(stats.AvgPrecipitation)),
		HighWind:           clampPercent(stats.HighWindProbability + windBoost(stats.AvgWindSpeed)),
		Storm:              StormProbability(stats.HighWindProbability, stats.HeavyRainProbability),
		ComfortableWeather: ComfortProbability(stats, season, lat),
	}
}

func seasonalHeat(p float64, season Season) float64 {
	switch season {
	case Summer:
		return math.Min(25, p*1.2)
	case Winter:
		return math.Max(0.5, p*0.2)
	default:
		return p * 0.8
	}
}

func seasonalCold(p float64, season Season) float64 {
	switch season {
	case Winter:
		return math.Min(50, p*1.8)
	case Summer:
		return math.Max(0.1, p*0.05)
	default:
		return math.Max(1, p*0.5)
	}
}

func rainBoost(avgPrecip *float64) float64 {
	switch {
	case avgPrecip == nil:
		return 0
	case *avgPrecip > 15:
		return 25
	case *avgPrecip > 5:
		return 15
	default:
		return 0
	}
}

func windBoost(avgWind *float64) float64 {
	switch {
	case avgWind == nil:
		return 0
	case *avgWind > 15:
		return 20
	case *avgWind > 10:
		return 10
	default:
		return 0
	}
}

// StormProbability is the joint chance of high wind and heavy rain, capped at 50%.
func StormProbability(highWind, heavyRain float64) float64 {
	return clampPercent(math.Min(50, (highWind/100)*(heavyRain/100)*100))
}

// ComfortProbability blends temperature (50%), wind (30%) and precipitation
// (20%) comfort scores, adds a latitude/season bonus and clamps to [5, 95].
// An unset temperature mean scores as borderline; unset wind and
// precipitation score as calm and dry.
func ComfortProbability(stats WeatherStatistics, season Season, lat float64) float64 {
	temp := valueOr(stats.AvgTemperature, math.NaN())
	wind := valueOr(stats.AvgWindSpeed, 0)
	precip := valueOr(stats.AvgPrecipitation, 0)

	score := temperatureComfort(temp)*0.5 +
		math.Max(10, 100-wind*8)*0.3 +
		math.Max(20, 100-precip*15)*0.2 +
		comfortBonus(season, lat)

	return clamp(score, 5, 95)
}

func temperatureComfort(t float64) float64 {
	switch {
	case math.IsNaN(t):
		return 20
	case t >= 18 && t <= 25:
		return 100
	case t >= 15 && t < 18:
		return 40 + (t-15)*20
	case t > 25 && t <= 28:
		return 100 - (t-25)*20
	case t >= 10 && t <= 32:
		return 20
	default:
		return 5
	}
}

func comfortBonus(season Season, lat float64) float64 {
	abs := math.Abs(lat)
	switch {
	case abs < 23.5:
		return 10
	case abs < 60:
		if season == Spring || season == Autumn {
			return 15
		}
		return 5
	default:
		return -5
	}
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return clamp(p, 0, 100)
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
