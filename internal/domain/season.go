package domain

import (
	"math"
	"strings"
	"time"
)

// Season is an astronomical-calendar season label.
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Autumn Season = "Autumn"
)

// ClimateZone is a latitude band used only for narrative text.
type ClimateZone string

const (
	Subtropical   ClimateZone = "Subtropical"
	Mediterranean ClimateZone = "Mediterranean"
	Temperate     ClimateZone = "Temperate"
	Polar         ClimateZone = "Polar"
)

// southernSeason rotates the northern season by two.
var southernSeason = map[Season]Season{
	Winter: Summer,
	Spring: Autumn,
	Summer: Winter,
	Autumn: Spring,
}

// SeasonFor maps a month to its season, flipping for the Southern Hemisphere
// (latitude < 0).
func SeasonFor(month time.Month, lat float64) Season {
	var s Season
	switch month {
	case time.December, time.January, time.February:
		s = Winter
	case time.March, time.April, time.May:
		s = Spring
	case time.June, time.July, time.August:
		s = Summer
	default:
		s = Autumn
	}
	if lat < 0 {
		return southernSeason[s]
	}
	return s
}

// Hemisphere returns "Northern" or "Southern".
func Hemisphere(lat float64) string {
	if lat < 0 {
		return "Southern"
	}
	return "Northern"
}

// ZoneFor classifies |lat| into a climate zone.
func ZoneFor(lat float64) ClimateZone {
	abs := math.Abs(lat)
	switch {
	case abs < 30:
		return Subtropical
	case abs < 50:
		return Mediterranean
	case abs < 65:
		return Temperate
	default:
		return Polar
	}
}

type zoneSeason struct {
	zone   ClimateZone
	season Season
}

// seasonalNarratives holds the pattern text per zone and season. Entries with
// a zero zone are the per-season default.
var seasonalNarratives = map[zoneSeason]string{
	{Subtropical, Winter}:   "mild temperatures, dry conditions, pleasant weather",
	{Mediterranean, Winter}: "mild temperatures, moderate precipitation, comfortable conditions",
	{Temperate, Winter}:     "cold temperatures, variable precipitation, possible snow",
	{"", Winter}:            "very cold, limited daylight, frozen precipitation",

	{Subtropical, Spring}: "warming temperatures, dry conditions, increasing heat",
	{"", Spring}:          "warming temperatures, increasing daylight, variable precipitation",

	{Subtropical, Summer}:   "very hot temperatures, dry conditions, intense sun",
	{Mediterranean, Summer}: "hot temperatures, dry conditions, clear skies",
	{"", Summer}:            "warm temperatures, thunderstorm activity, peak growing season",

	{Subtropical, Autumn}: "cooling temperatures, still dry, pleasant weather returns",
	{"", Autumn}:          "cooling temperatures, decreasing daylight, increased precipitation",
}

// SeasonalPattern renders e.g.
// "Northern Hemisphere Winter (Mediterranean zone) - mild temperatures, ...".
func SeasonalPattern(lat float64, month time.Month) string {
	season := SeasonFor(month, lat)
	zone := ZoneFor(lat)

	text, ok := seasonalNarratives[zoneSeason{zone, season}]
	if !ok {
		text = seasonalNarratives[zoneSeason{"", season}]
	}

	var b strings.Builder
	b.WriteString(Hemisphere(lat))
	b.WriteString(" Hemisphere ")
	b.WriteString(string(season))
	b.WriteString(" (")
	b.WriteString(string(zone))
	b.WriteString(" zone)")
	if text != "" {
		b.WriteString(" - ")
		b.WriteString(text)
	}
	return b.String()
}

// Monthly mean temperatures (°C) used as the "normal" a forecast is described
// against. Indexed by month-1; bands by |lat| < 30, < 50, else.
var monthlyBaselines = [3][12]float64{
	{17, 19.5, 23, 28, 32, 35, 37, 37, 33, 28, 22, 18},
	{7, 9, 13, 18, 23, 28, 31, 30, 26, 20, 14, 9},
	{1.5, 3.5, 8.5, 13.5, 18.5, 23.5, 26.5, 25.5, 21, 15, 9, 4},
}

// SeasonalBaseline returns the typical mean temperature for a month at the
// given latitude. Southern latitudes use the month six away.
func SeasonalBaseline(month time.Month, lat float64) float64 {
	m := int(month)
	if lat < 0 {
		m = (m+5)%12 + 1
	}
	abs := math.Abs(lat)
	band := 2
	switch {
	case abs < 30:
		band = 0
	case abs < 50:
		band = 1
	}
	return monthlyBaselines[band][m-1]
}

// DescribeWeather builds a sentence such as
// "Cold for winter with light rain, breezy conditions".
func DescribeWeather(avgTemp, precipitation, windSpeed float64, month time.Month, lat float64) string {
	baseline := SeasonalBaseline(month, lat)

	var b strings.Builder
	switch {
	case avgTemp > baseline+5:
		b.WriteString("Unusually warm")
	case avgTemp > baseline+2:
		b.WriteString("Warm")
	case avgTemp > baseline-2:
		b.WriteString("Pleasant")
	case avgTemp > baseline-5:
		b.WriteString("Cool")
	default:
		b.WriteString("Cold")
	}

	if math.Abs(avgTemp-baseline) > 5 {
		b.WriteString(" for ")
		b.WriteString(strings.ToLower(string(SeasonFor(month, lat))))
	}

	switch {
	case precipitation > 20:
		b.WriteString(" with heavy rain")
	case precipitation > 5:
		b.WriteString(" with light rain")
	case precipitation > 1:
		b.WriteString(" with possible showers")
	default:
		b.WriteString(" and dry")
	}

	b.WriteString(", ")
	b.WriteString(windDescription(windSpeed))
	return b.String()
}

func windDescription(speed float64) string {
	switch {
	case speed < 3:
		return "light winds"
	case speed < 7:
		return "moderate winds"
	case speed < 12:
		return "breezy conditions"
	case speed < 18:
		return "strong winds"
	default:
		return "very strong winds"
	}
}

// SkyCondition is a step function of forecast precipitation in mm.
func SkyCondition(precipitation float64) string {
	switch {
	case precipitation > 20:
		return "Overcast"
	case precipitation > 5:
		return "Cloudy"
	case precipitation > 1:
		return "Partly Cloudy"
	default:
		return "Clear"
	}
}
