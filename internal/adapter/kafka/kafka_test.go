package kafka

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	generated := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	result := domain.ForecastResult{
		ID:           "fc-1",
		LocationName: "Denver",
		Latitude:     39.74,
		Longitude:    -104.99,
		TargetDate:   domain.CalendarDate{Year: 2025, Month: time.December, Day: 25},
		Forecast:     &domain.Forecast{TemperatureMin: -6.2, TemperatureMax: 4.1},
		GeneratedAt:  generated,
		DataSource:   domain.DataSourceArchive,
	}

	msg, err := serializeToMessage(result)
	require.NoError(t, err)

	assert.Equal(t, []byte("fc-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"predictionDate":"2025-12-25"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "target_date", msg.Headers[0].Key)
	assert.Equal(t, []byte("2025-12-25"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(generated.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.ForecastResult
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, result.TargetDate, decoded.TargetDate)
	assert.Equal(t, result.Forecast, decoded.Forecast)
}

func TestSerializeToMessage_UnencodableValue(t *testing.T) {
	result := domain.ForecastResult{
		ID:       "fc-nan",
		Forecast: &domain.Forecast{Pressure: math.NaN()},
	}

	_, err := serializeToMessage(result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serialize forecast")
}
