package power

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
)

// dateLayout is the archive's YYYYMMDD date format for query and keys.
const dateLayout = "20060102"

// sentinelCeiling marks missing data: the archive reports -999 for days
// without an observation.
const sentinelCeiling = -900.0

var errMissingParameters = errors.New("response has no properties.parameter block")

type dailyResponse struct {
	Header struct {
		FillValue *float64 `json:"fill_value"`
	} `json:"header"`
	Properties *struct {
		Parameter map[string]map[string]json.RawMessage `json:"parameter"`
	} `json:"properties"`
}

// ParseDaily extracts a DailySeries from a daily point response body. Dates
// are read in ascending order; sentinel, fill, null and non-numeric values are
// dropped one entry at a time.
// A body without the properties.parameter nesting is an error.
func ParseDaily(body []byte) (domain.DailySeries, error) {
	var resp dailyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.DailySeries{}, fmt.Errorf("decode archive response: %w", err)
	}
	if resp.Properties == nil || resp.Properties.Parameter == nil {
		return domain.DailySeries{}, errMissingParameters
	}

	params := resp.Properties.Parameter
	extract := func(code string) []float64 {
		byDate := params[code]
		if len(byDate) == 0 {
			return nil
		}
		values := make([]float64, 0, len(byDate))
		for _, date := range slices.Sorted(maps.Keys(byDate)) {
			v, ok := numberValue(byDate[date])
			if !ok || v <= sentinelCeiling {
				continue
			}
			if fv := resp.Header.FillValue; fv != nil && v == *fv {
				continue
			}
			values = append(values, v)
		}
		return values
	}

	return domain.DailySeries{
		TemperatureMin: extract(ParamTempMin),
		TemperatureMax: extract(ParamTempMax),
		Precipitation:  extract(ParamPrecip),
		WindSpeed:      extract(ParamWind),
		Humidity:       extract(ParamHumidity),
		Pressure:       extract(ParamPressure),
	}, nil
}

// numberValue decodes a JSON number; null, strings and other shapes are not numbers.
func numberValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}
