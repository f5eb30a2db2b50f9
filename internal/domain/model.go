package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Location is a WGS-84 point with an optional elevation in meters.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation *int    `json:"elevation,omitempty"`
}

// CalendarDate is a civil date without time-of-day or zone. Components are
// kept as given so that an unresolvable date (e.g. February 30) can be
// reported by validation rather than silently normalized. Input that cannot
// be split into components at all is kept verbatim in raw and never resolves.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int

	raw string
}

// NewCalendarDate returns the calendar date of t in t's location.
func NewCalendarDate(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns midnight UTC of the date and whether the components name a real day.
func (d CalendarDate) Time() (time.Time, bool) {
	if d.raw != "" {
		return time.Time{}, false
	}
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return t, t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

// DayOfYear returns the 1-based ordinal day, or 0 when the date does not resolve.
func (d CalendarDate) DayOfYear() int {
	t, ok := d.Time()
	if !ok {
		return 0
	}
	return t.YearDay()
}

// IsZero reports whether the date carries neither components nor raw input.
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d CalendarDate) String() string {
	if d.raw != "" {
		return d.raw
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or the array form [year, month, day].
// A blank string or null leaves the zero date. Any other shape decodes
// without error into a date that never resolves, so validation can report it
// next to the request's other violations.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil || len(parts) != 3 {
			*d = CalendarDate{raw: compactJSON(data)}
			return nil
		}
		*d = CalendarDate{Year: parts[0], Month: time.Month(parts[1]), Day: parts[2]}
		return nil
	}
	if string(data) == "null" {
		*d = CalendarDate{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = CalendarDate{raw: compactJSON(data)}
		return nil
	}
	if strings.TrimSpace(s) == "" {
		*d = CalendarDate{}
		return nil
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		*d = CalendarDate{raw: s}
		return nil
	}
	*d = parsed
	return nil
}

func compactJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}

// ParseCalendarDate splits "YYYY-MM-DD" into components without range checks.
func ParseCalendarDate(s string) (CalendarDate, error) {
	fields := strings.Split(strings.TrimSpace(s), "-")
	if len(fields) != 3 {
		return CalendarDate{}, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	var nums [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return CalendarDate{}, fmt.Errorf("date %q must be YYYY-MM-DD", s)
		}
		nums[i] = n
	}
	return CalendarDate{Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}, nil
}

// DailySeries holds per-parameter daily observations. The slices are
// independent; a day missing one parameter simply does not appear in it.
type DailySeries struct {
	TemperatureMin []float64
	TemperatureMax []float64
	Precipitation  []float64
	WindSpeed      []float64
	Humidity       []float64
	Pressure       []float64
}

// Append concatenates other onto s parameter by parameter.
func (s *DailySeries) Append(other DailySeries) {
	s.TemperatureMin = append(s.TemperatureMin, other.TemperatureMin...)
	s.TemperatureMax = append(s.TemperatureMax, other.TemperatureMax...)
	s.Precipitation = append(s.Precipitation, other.Precipitation...)
	s.WindSpeed = append(s.WindSpeed, other.WindSpeed...)
	s.Humidity = append(s.Humidity, other.Humidity...)
	s.Pressure = append(s.Pressure, other.Pressure...)
}

// Empty reports whether no parameter has any observation.
func (s DailySeries) Empty() bool {
	return len(s.TemperatureMin) == 0 && len(s.TemperatureMax) == 0 &&
		len(s.Precipitation) == 0 && len(s.WindSpeed) == 0 &&
		len(s.Humidity) == 0 && len(s.Pressure) == 0
}

// WeatherStatistics summarizes a DailySeries. Nil means the parameter had no
// valid observations. Probabilities are percentages in [0,100].
type WeatherStatistics struct {
	AvgTemperature    *float64
	AvgTemperatureMin *float64
	AvgTemperatureMax *float64
	AvgPrecipitation  *float64
	MaxPrecipitation  *float64
	AvgWindSpeed      *float64
	MaxWindSpeed      *float64
	AvgHumidity       *float64
	AvgPressure       *float64

	ExtremeHeatProbability float64
	ExtremeColdProbability float64
	HeavyRainProbability   float64
	HighWindProbability    float64

	// Fallback is true when the series came from the synthesizer instead of the archive.
	Fallback     bool
	Observations int
}

// ForecastRequest is the inbound contract for a single-day forecast.
type ForecastRequest struct {
	ID         string        `json:"id,omitempty"`
	Name       string        `json:"name" validate:"required,max=255"`
	Latitude   *float64      `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64      `json:"longitude" validate:"required,gte=-180,lte=180"`
	Country    string        `json:"country,omitempty"`
	State      string        `json:"state,omitempty"`
	City       string        `json:"city,omitempty"`
	Address    string        `json:"address,omitempty"`
	Timezone   string        `json:"timezone,omitempty"`
	Elevation  *int          `json:"elevation,omitempty" validate:"omitempty,gte=-500,lte=9000"`
	TargetDate *CalendarDate `json:"targetDate" validate:"required"`
	EndDate    *CalendarDate `json:"endDate,omitempty"`
}

// UnmarshalJSON decodes the wire shape and treats a blank date as absent.
func (r *ForecastRequest) UnmarshalJSON(data []byte) error {
	type wire ForecastRequest
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.TargetDate != nil && w.TargetDate.IsZero() {
		w.TargetDate = nil
	}
	if w.EndDate != nil && w.EndDate.IsZero() {
		w.EndDate = nil
	}
	*r = ForecastRequest(w)
	return nil
}

// Location returns the request coordinates. Callers must validate first.
func (r ForecastRequest) Location() Location {
	var loc Location
	if r.Latitude != nil {
		loc.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		loc.Longitude = *r.Longitude
	}
	loc.Elevation = r.Elevation
	return loc
}

// Forecast is the synthesized single-day weather.
type Forecast struct {
	TemperatureMin     float64 `json:"temperatureMin"`
	TemperatureMax     float64 `json:"temperatureMax"`
	TemperatureAvg     float64 `json:"temperatureAvg"`
	Humidity           float64 `json:"humidity"`
	Precipitation      float64 `json:"precipitation"`
	WindSpeed          float64 `json:"windSpeed"`
	WindDirection      float64 `json:"windDirection"`
	Pressure           float64 `json:"pressure"`
	SkyCondition       string  `json:"skyCondition"`
	WeatherDescription string  `json:"weatherDescription"`
}

// Probabilities are calibrated percentages in [0,100].
type Probabilities struct {
	ExtremeHeat        float64 `json:"extremeHeatProbability"`
	ExtremeCold        float64 `json:"extremeColdProbability"`
	HeavyRain          float64 `json:"heavyRainProbability"`
	HighWind           float64 `json:"highWindProbability"`
	Storm              float64 `json:"stormProbability"`
	ComfortableWeather float64 `json:"comfortableWeatherProbability"`
}

// HistoricalContext narrates the climatology behind a forecast.
type HistoricalContext struct {
	YearsOfData                int     `json:"yearsOfData"`
	HistoricalAvgTemp          float64 `json:"historicalAvgTemp"`
	HistoricalAvgPrecipitation float64 `json:"historicalAvgPrecipitation"`
	ClimateTrend               string  `json:"climateTrend"`
	SeasonalPattern            string  `json:"seasonalPattern"`
}

// ForecastResult is the externally visible forecast artifact.
type ForecastResult struct {
	ID           string       `json:"id"`
	LocationName string       `json:"locationName"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Elevation    *int         `json:"elevation,omitempty"`
	Country      string       `json:"country,omitempty"`
	State        string       `json:"state,omitempty"`
	City         string       `json:"city,omitempty"`
	TargetDate   CalendarDate `json:"predictionDate"`

	Forecast          *Forecast          `json:"forecast"`
	Probabilities     *Probabilities     `json:"probabilities"`
	HistoricalContext *HistoricalContext `json:"historicalContext"`

	GeneratedAt     time.Time `json:"generatedAt"`
	DataSource      string    `json:"dataSource"`
	ConfidenceLevel string    `json:"confidenceLevel"`

	// Geocoding enrichment fields.
	FormattedAddress string `json:"formattedAddress,omitempty"`
	GeoSource        string `json:"geoSource,omitempty"` // "reverse", "original", "failed"
}
