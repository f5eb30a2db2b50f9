package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	series := DailySeries{
		TemperatureMin: []float64{10, 20, -2},
		TemperatureMax: []float64{30, 40, 20},
		Precipitation:  []float64{0, 30, 60},
		WindSpeed:      []float64{5, 20},
		Humidity:       []float64{50, 70},
		Pressure:       []float64{1000, 1020},
	}

	stats := Aggregate(series)

	require.NotNil(t, stats.AvgTemperatureMin)
	require.NotNil(t, stats.AvgTemperatureMax)
	require.NotNil(t, stats.AvgTemperature)
	assert.InDelta(t, 28.0/3, *stats.AvgTemperatureMin, 1e-9)
	assert.InDelta(t, 30.0, *stats.AvgTemperatureMax, 1e-9)
	assert.InDelta(t, (28.0/3+30)/2, *stats.AvgTemperature, 1e-9)
	assert.InDelta(t, 30.0, *stats.AvgPrecipitation, 1e-9)
	assert.InDelta(t, 60.0, *stats.MaxPrecipitation, 1e-9)
	assert.InDelta(t, 12.5, *stats.AvgWindSpeed, 1e-9)
	assert.InDelta(t, 20.0, *stats.MaxWindSpeed, 1e-9)
	assert.InDelta(t, 60.0, *stats.AvgHumidity, 1e-9)
	assert.InDelta(t, 1010.0, *stats.AvgPressure, 1e-9)

	assert.InDelta(t, 100.0/3, stats.ExtremeHeatProbability, 1e-9)
	assert.InDelta(t, 100.0/3, stats.ExtremeColdProbability, 1e-9)
	assert.InDelta(t, 200.0/3, stats.HeavyRainProbability, 1e-9)
	assert.InDelta(t, 50.0, stats.HighWindProbability, 1e-9)
	assert.Equal(t, 3, stats.Observations)
	assert.False(t, stats.Fallback)
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(DailySeries{})

	assert.Nil(t, stats.AvgTemperature)
	assert.Nil(t, stats.AvgTemperatureMin)
	assert.Nil(t, stats.AvgPrecipitation)
	assert.Nil(t, stats.MaxWindSpeed)
	assert.Nil(t, stats.AvgPressure)
	assert.Zero(t, stats.ExtremeHeatProbability)
	assert.Zero(t, stats.ExtremeColdProbability)
	assert.Zero(t, stats.HeavyRainProbability)
	assert.Zero(t, stats.HighWindProbability)
	assert.Zero(t, stats.Observations)
}

func TestAggregate_PartialSeries(t *testing.T) {
	stats := Aggregate(DailySeries{TemperatureMax: []float64{25}})

	assert.Nil(t, stats.AvgTemperature, "average needs both min and max")
	assert.Nil(t, stats.AvgTemperatureMin)
	require.NotNil(t, stats.AvgTemperatureMax)
	assert.Equal(t, 25.0, *stats.AvgTemperatureMax)
}

func TestExceedanceProbability(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		threshold float64
		below     bool
		want      float64
	}{
		{"empty", nil, 35, false, 0},
		{"none above", []float64{10, 20}, 35, false, 0},
		{"threshold is exclusive", []float64{35, 36}, 35, false, 50},
		{"all above", []float64{40, 41}, 35, false, 100},
		{"below counts lower tail", []float64{-1, 0, 1, 2}, 0, true, 25},
		{"below is exclusive", []float64{0, 0}, 0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ExceedanceProbability(tt.values, tt.threshold, tt.below), 1e-9)
		})
	}
}

func TestExceedanceProbability_MonotonicInExceedingValues(t *testing.T) {
	values := []float64{10, 20, 30, 40}
	prev := ExceedanceProbability(values, HeavyRainThreshold, false)
	for range 20 {
		values = append(values, HeavyRainThreshold+1)
		got := ExceedanceProbability(values, HeavyRainThreshold, false)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}

	cold := []float64{5, -5}
	prevCold := ExceedanceProbability(cold, ExtremeColdThreshold, true)
	for range 20 {
		cold = append(cold, ExtremeColdThreshold-1)
		got := ExceedanceProbability(cold, ExtremeColdThreshold, true)
		assert.GreaterOrEqual(t, got, prevCold)
		prevCold = got
	}
}

func TestAssessQuality(t *testing.T) {
	assert.Zero(t, AssessQuality(DailySeries{}))

	good := DailySeries{
		TemperatureMin: []float64{5, 6},
		TemperatureMax: []float64{15, 16},
		Precipitation:  []float64{0, 2},
		WindSpeed:      []float64{3, 4},
	}
	assert.InDelta(t, 100.0, AssessQuality(good), 1e-9)

	bad := good
	bad.Precipitation = []float64{-1, 2}
	assert.Less(t, AssessQuality(bad), 100.0)
}
