package domain

import (
	"math"
	"math/rand/v2"
)

// StandardPressure is the mean sea-level pressure in hPa.
const StandardPressure = 1013.25

// Realistic weather band for a forecast pressure, in hPa.
const (
	minWeatherPressure = 980.0
	maxWeatherPressure = 1050.0
)

// CorrectPressure repairs archive pressure values that arrive in the wrong
// unit or with a dropped digit:
//
//	[300, 1100]  hPa, unchanged
//	[30, 110]    kPa, ×10
//	[10, 30)     missing leading digit, ×10
//	> 10000      Pa, ÷100
//
// A value that is still outside [300, 1100] after scaling becomes
// StandardPressure, so CorrectPressure is idempotent on its own output.
func CorrectPressure(p float64) float64 {
	hpa := p
	switch {
	case p >= 300 && p <= 1100:
		return p
	case p >= 30 && p <= 110, p >= 10 && p < 30:
		hpa = p * 10
	case p > 10000:
		hpa = p / 100
	}
	if hpa >= 300 && hpa <= 1100 {
		return hpa
	}
	return StandardPressure
}

// TightenPressure pulls a value outside [980, 1050] hPa back into the band by
// resampling a few hPa inside the nearest edge.
func TightenPressure(rng *rand.Rand, p float64) float64 {
	switch {
	case p < minWeatherPressure:
		return math.Min(maxWeatherPressure, minWeatherPressure+math.Abs(rng.NormFloat64())*5)
	case p > maxWeatherPressure:
		return math.Max(minWeatherPressure, maxWeatherPressure-math.Abs(rng.NormFloat64())*5)
	default:
		return p
	}
}

// CouplePressure lowers pressure for wet or windy days (storm signature) and
// raises it for dry calm ones.
func CouplePressure(p, precipitation, windSpeed float64) float64 {
	var adj float64
	switch {
	case precipitation > 10:
		adj -= 15
	case precipitation > 5:
		adj -= 8
	case precipitation > 1:
		adj -= 3
	default:
		adj += 5
	}

	switch {
	case windSpeed > 12:
		adj -= 8
	case windSpeed > 7:
		adj -= 3
	}
	return p + adj
}

// forecastPressure turns a raw historical mean into the forecast pressure.
// The result always lies in [957, 1055] hPa.
func forecastPressure(rng *rand.Rand, rawMean *float64, precipitation, windSpeed float64) float64 {
	base := StandardPressure
	if rawMean != nil {
		base = CorrectPressure(*rawMean)
	}
	p := TightenPressure(rng, base+rng.NormFloat64()*8)
	p = CouplePressure(p, precipitation, windSpeed)
	return CorrectPressure(p)
}
