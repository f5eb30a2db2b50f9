package power

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
)

const fillValue = -999.0

type encodedParam struct {
	Units    string `json:"units"`
	LongName string `json:"longname"`
}

type encodedResponse struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
	Header struct {
		Title     string  `json:"title"`
		FillValue float64 `json:"fill_value"`
		Start     string  `json:"start"`
		End       string  `json:"end"`
	} `json:"header"`
	Messages   []string                `json:"messages"`
	Parameters map[string]encodedParam `json:"parameters"`
}

// EncodeDaily renders a series in the archive's daily point format, one date
// key per day from start. Parameters shorter than the longest one are padded
// with the fill value. Pressure is written in kPa as the archive reports it.
func EncodeDaily(series domain.DailySeries, lat, lon float64, start time.Time) ([]byte, error) {
	days := max(len(series.TemperatureMin), len(series.TemperatureMax), len(series.Precipitation),
		len(series.WindSpeed), len(series.Humidity), len(series.Pressure))
	if days == 0 {
		return nil, fmt.Errorf("encode archive response: empty series")
	}

	var resp encodedResponse
	resp.Type = "Feature"
	resp.Geometry.Type = "Point"
	resp.Geometry.Coordinates = []float64{lon, lat}
	resp.Header.Title = "NASA/POWER Daily Data (synthetic)"
	resp.Header.FillValue = fillValue
	resp.Header.Start = start.Format(dateLayout)
	resp.Header.End = start.AddDate(0, 0, days-1).Format(dateLayout)
	resp.Messages = []string{}

	kpa := make([]float64, len(series.Pressure))
	for i, p := range series.Pressure {
		kpa[i] = p / 10
	}

	columns := []struct {
		code   string
		values []float64
		param  encodedParam
	}{
		{ParamTempMin, series.TemperatureMin, encodedParam{"C", "Temperature at 2 Meters Minimum"}},
		{ParamTempMax, series.TemperatureMax, encodedParam{"C", "Temperature at 2 Meters Maximum"}},
		{ParamPrecip, series.Precipitation, encodedParam{"mm/day", "Precipitation Corrected"}},
		{ParamWind, series.WindSpeed, encodedParam{"m/s", "Wind Speed at 10 Meters"}},
		{ParamHumidity, series.Humidity, encodedParam{"%", "Relative Humidity at 2 Meters"}},
		{ParamPressure, kpa, encodedParam{"kPa", "Surface Pressure"}},
	}

	resp.Properties.Parameter = make(map[string]map[string]float64, len(columns))
	resp.Parameters = make(map[string]encodedParam, len(columns))
	for _, col := range columns {
		byDate := make(map[string]float64, days)
		for i := range days {
			v := fillValue
			if i < len(col.values) {
				v = math.Round(col.values[i]*100) / 100
			}
			byDate[start.AddDate(0, 0, i).Format(dateLayout)] = v
		}
		resp.Properties.Parameter[col.code] = byDate
		resp.Parameters[col.code] = col.param
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode archive response: %w", err)
	}
	return data, nil
}
