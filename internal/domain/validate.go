package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxLeadYears bounds how far ahead a target date may be.
const MaxLeadYears = 2

var validate = validator.New()

// fieldMessages maps a struct field and failing tag to the reported message.
// Range tags share one message per field.
var fieldMessages = map[string]map[string]string{
	"Name": {
		"required": "Location name is required",
		"max":      "Location name cannot exceed 255 characters",
	},
	"Latitude": {
		"required": "Latitude is required",
		"gte":      "Latitude must be between -90 and 90 degrees",
		"lte":      "Latitude must be between -90 and 90 degrees",
	},
	"Longitude": {
		"required": "Longitude is required",
		"gte":      "Longitude must be between -180 and 180 degrees",
		"lte":      "Longitude must be between -180 and 180 degrees",
	},
	"Elevation": {
		"gte": "Elevation must be between -500m and 9000m",
		"lte": "Elevation must be between -500m and 9000m",
	},
	"TargetDate": {
		"required": "Target date is required",
	},
}

// ValidationResult collects every failed check; it never stops early.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func newValidationResult(errs []string) ValidationResult {
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Violations: r.Errors}
}

func (r ValidationResult) String() string {
	if r.Valid {
		return "validation passed"
	}
	return "validation failed: " + strings.Join(r.Errors, ", ")
}

// ValidationError rejects a request before any forecast work is done.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid forecast request: " + strings.Join(e.Violations, "; ")
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateRequest runs the field checks and then the calendar checks against
// the package clock's current UTC date.
func ValidateRequest(req ForecastRequest) ValidationResult {
	req.Name = strings.TrimSpace(req.Name)

	var errs []string
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return newValidationResult([]string{err.Error()})
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fieldMessage(fe))
		}
	}

	errs = append(errs, dateViolations(req.TargetDate, req.EndDate)...)
	return newValidationResult(errs)
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.StructField()][fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed %s check", fe.Field(), fe.Tag())
}

func dateViolations(target, end *CalendarDate) []string {
	if target == nil {
		return nil
	}

	var errs []string
	targetTime, ok := target.Time()
	if !ok {
		errs = append(errs, fmt.Sprintf("Target date %s is not a valid calendar date", target))
	} else {
		today := Today()
		if !targetTime.After(today) {
			errs = append(errs, "Target date must be in the future for weather prediction")
		}
		if targetTime.After(today.AddDate(MaxLeadYears, 0, 0)) {
			errs = append(errs, "Target date cannot be more than 2 years in the future")
		}
	}

	if end != nil {
		endTime, endOK := end.Time()
		switch {
		case !endOK:
			errs = append(errs, fmt.Sprintf("End date %s is not a valid calendar date", end))
		case ok && endTime.Before(targetTime):
			errs = append(errs, "End date must not be before target date")
		}
	}
	return errs
}

// ValidateResponse checks a synthesized result for physical plausibility.
// Failures are a monitoring signal; callers log them and still return the result.
func ValidateResponse(res ForecastResult) ValidationResult {
	var errs []string

	if f := res.Forecast; f != nil {
		errs = append(errs, forecastViolations(*f)...)
	} else {
		errs = append(errs, "Forecast data is missing")
	}

	if p := res.Probabilities; p != nil {
		for _, pv := range []struct {
			name  string
			value float64
		}{
			{"Extreme heat probability", p.ExtremeHeat},
			{"Extreme cold probability", p.ExtremeCold},
			{"Heavy rain probability", p.HeavyRain},
			{"High wind probability", p.HighWind},
			{"Storm probability", p.Storm},
			{"Comfortable weather probability", p.ComfortableWeather},
		} {
			if !within(pv.value, 0, 100) {
				errs = append(errs, pv.name+" must be between 0 and 100 percent")
			}
		}
	} else {
		errs = append(errs, "Probability data is missing")
	}

	if h := res.HistoricalContext; h != nil {
		if h.YearsOfData <= 0 {
			errs = append(errs, "Years of data must be positive")
		}
		if !within(h.HistoricalAvgTemp, -50, 60) {
			errs = append(errs, "Historical average temperature is outside realistic range")
		}
		if h.HistoricalAvgPrecipitation < 0 || math.IsNaN(h.HistoricalAvgPrecipitation) {
			errs = append(errs, "Historical average precipitation cannot be negative")
		}
	}

	return newValidationResult(errs)
}

func forecastViolations(f Forecast) []string {
	var errs []string

	if f.TemperatureMin > f.TemperatureMax {
		errs = append(errs, "Minimum temperature cannot be higher than maximum temperature")
	}
	if !within(f.TemperatureMin, -50, 60) {
		errs = append(errs, "Minimum temperature is outside realistic range (-50°C to 60°C)")
	}
	if !within(f.TemperatureMax, -50, 60) {
		errs = append(errs, "Maximum temperature is outside realistic range (-50°C to 60°C)")
	}
	if !within(f.TemperatureAvg, -50, 60) {
		errs = append(errs, "Average temperature is outside realistic range (-50°C to 60°C)")
	}
	if f.TemperatureAvg < f.TemperatureMin || f.TemperatureAvg > f.TemperatureMax {
		errs = append(errs, "Average temperature should be between minimum and maximum temperatures")
	}

	if f.Precipitation < 0 {
		errs = append(errs, "Precipitation cannot be negative")
	}
	if f.Precipitation > 500 {
		errs = append(errs, "Precipitation value seems unrealistic (>500mm)")
	}

	if f.WindSpeed < 0 {
		errs = append(errs, "Wind speed cannot be negative")
	}
	if f.WindSpeed > 100 {
		errs = append(errs, "Wind speed seems unrealistic (>100 m/s)")
	}
	if f.WindDirection < 0 || f.WindDirection >= 360 || math.IsNaN(f.WindDirection) {
		errs = append(errs, "Wind direction must be between 0 and 359 degrees")
	}

	if !within(f.Humidity, 0, 100) {
		errs = append(errs, "Humidity must be between 0 and 100 percent")
	}
	if !within(f.Pressure, 870, 1085) {
		errs = append(errs, "Atmospheric pressure is outside realistic range (870-1085 hPa)")
	}
	return errs
}

// within reports lo <= v <= hi; NaN is never within.
func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
