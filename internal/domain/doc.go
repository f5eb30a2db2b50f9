// Package domain is the statistical forecast engine. Every function here is
// pure apart from the injected *rand.Rand and the package clock.
//
// # Data Source
//
// Historical observations come from the NASA POWER daily point API
// (https://power.larc.nasa.gov/api/temporal/daily/point), community "RE".
// Parameters and units:
//
//	T2M_MIN      daily minimum air temperature at 2 m   °C
//	T2M_MAX      daily maximum air temperature at 2 m   °C
//	PRECTOTCORR  bias-corrected total precipitation     mm/day
//	WS10M        mean wind speed at 10 m                m/s
//	RH2M         relative humidity at 2 m               %
//	PS           surface pressure                       kPa (corrected to hPa)
//
// Missing days carry the sentinel -999. The adapter drops them before a
// [DailySeries] is built, so every slice here holds real observations only.
//
// # Windows
//
// A forecast pools the 7 days centred on the target day-of-year across the
// last N years ([YearWindow], [HistoryRange]). Windows are clamped to the
// year's bounds, so 1 January pools 1–4 January, not late December.
//
// # Pressure
//
// Archive pressure arrives in kPa and sometimes in Pa or with a dropped
// digit. [CorrectPressure] maps any of these onto hPa and is idempotent on
// [300, 1100]. Forecast pressure is then pulled into the weather band
// [980, 1050] and coupled to rain and wind (lower in storms, higher when calm).
//
// # Seasons
//
//	Month     Northern  Southern
//	Dec–Feb   Winter    Summer
//	Mar–May   Spring    Autumn
//	Jun–Aug   Summer    Winter
//	Sep–Nov   Autumn    Spring
//
// Climate zone by absolute latitude: <30 Subtropical, <50 Mediterranean,
// <65 Temperate, otherwise Polar.
//
// # Exceedance Thresholds
//
//	Extreme heat   T2M_MAX > 35 °C
//	Extreme cold   T2M_MIN < 0 °C
//	Heavy rain     PRECTOTCORR > 25 mm
//	High wind      WS10M > 15 m/s
//
// Raw exceedances are calibrated by season in [CalibrateProbabilities].
//
// # Randomness
//
// Forecast perturbation and the fallback synthesizer draw from a *rand.Rand
// passed per request. A fixed seed reproduces a forecast exactly.
package domain
