package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectPressure(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"hPa passes through", 1013, 1013},
		{"lower hPa bound", 300, 300},
		{"upper hPa bound", 1100, 1100},
		{"kPa scaled", 92.5, 925},
		{"kPa standard", 101.325, 1013.25},
		{"dropped digit still out of range", 25, StandardPressure},
		{"Pa scaled", 101325, 1013.25},
		{"Pa out of range after scaling", 500000, StandardPressure},
		{"between bands", 200, StandardPressure},
		{"too high", 5000, StandardPressure},
		{"tiny", 3, StandardPressure},
		{"negative", -999, StandardPressure},
		{"NaN", math.NaN(), StandardPressure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CorrectPressure(tt.in), 1e-9)
		})
	}
}

func TestCorrectPressure_Idempotent(t *testing.T) {
	for p := 300.0; p <= 1100; p += 12.5 {
		once := CorrectPressure(p)
		assert.Equal(t, once, CorrectPressure(once))
	}
	for _, raw := range []float64{92.5, 25, 101325, -5, 7000} {
		once := CorrectPressure(raw)
		assert.Equal(t, once, CorrectPressure(once), "raw=%v", raw)
	}
}

func TestTightenPressure(t *testing.T) {
	rng := seeded(3)
	for range 200 {
		assert.Equal(t, 1000.0, TightenPressure(rng, 1000))

		low := TightenPressure(rng, 900)
		assert.GreaterOrEqual(t, low, 980.0)
		assert.LessOrEqual(t, low, 1050.0)

		high := TightenPressure(rng, 1090)
		assert.GreaterOrEqual(t, high, 980.0)
		assert.LessOrEqual(t, high, 1050.0)
	}
}

func TestCouplePressure(t *testing.T) {
	tests := []struct {
		name          string
		precip, wind  float64
		wantAdjustHPa float64
	}{
		{"dry and calm", 0, 2, 5},
		{"showers", 3, 2, -3},
		{"rain", 8, 2, -8},
		{"heavy rain", 12, 2, -15},
		{"breezy and dry", 0, 9, 2},
		{"storm", 15, 14, -23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, 1000+tt.wantAdjustHPa, CouplePressure(1000, tt.precip, tt.wind), 1e-9)
		})
	}
}

func TestForecastPressure_AlwaysInValidationBand(t *testing.T) {
	rng := seeded(11)
	raws := []float64{92.5, 101.3, 1013, 25, 0, -999, 101325, 1e9}
	for _, raw := range raws {
		for range 100 {
			p := forecastPressure(rng, &raw, rng.Float64()*30, rng.Float64()*25)
			assert.GreaterOrEqual(t, p, 957.0, "raw=%v", raw)
			assert.LessOrEqual(t, p, 1055.0, "raw=%v", raw)
		}
	}

	p := forecastPressure(rng, nil, 0, 0)
	assert.GreaterOrEqual(t, p, 957.0)
	assert.LessOrEqual(t, p, 1055.0)
}
