package domain

import (
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// ForecastDays is the length of the synthetic forecast window.
const ForecastDays = 15

// SyntheticLabel accompanies every generated forecast.
const SyntheticLabel = "Synthetic placeholder data: randomly generated, not a weather forecast."

// Range is a half-open interval [Min, Max) for uniform draws.
type Range struct {
	Min float64
	Max float64
}

// ForecastRanges bounds each weather variable of the synthetic forecast.
type ForecastRanges struct {
	TempMax        Range
	TempMin        Range
	Humidity       Range
	Precipitation  Range
	Windspeed      Range
	SolarRadiation Range
}

// DefaultForecastRanges are the demo ranges shown on the dashboard.
var DefaultForecastRanges = ForecastRanges{
	TempMax:        Range{25, 35},
	TempMin:        Range{15, 25},
	Humidity:       Range{60, 90},
	Precipitation:  Range{0, 10},
	Windspeed:      Range{5, 20},
	SolarRadiation: Range{150, 250},
}

// ForecastDay is one day of synthetic weather.
type ForecastDay struct {
	Date    time.Time
	Weather Weather
}

// Forecast is a run of synthetic days starting at Start. Synthetic is always
// true for generated forecasts.
type Forecast struct {
	Start     time.Time
	Days      []ForecastDay
	Synthetic bool
	Label     string
}

// SyntheticForecaster draws uniformly random weather for charting. It has
// no predictive value.
type SyntheticForecaster struct {
	mu     sync.Mutex
	src    rand.Source
	ranges ForecastRanges
}

// NewSyntheticForecaster creates a forecaster drawing from src.
func NewSyntheticForecaster(src rand.Source, ranges ForecastRanges) *SyntheticForecaster {
	return &SyntheticForecaster{src: src, ranges: ranges}
}

// NewSeededForecaster creates a forecaster with the default ranges and a PCG
// source seeded with seed.
func NewSeededForecaster(seed uint64) *SyntheticForecaster {
	return NewSyntheticForecaster(rand.NewPCG(seed, seed), DefaultForecastRanges)
}

// Generate returns ForecastDays synthetic days beginning at anchor's day.
func (f *SyntheticForecaster) Generate(anchor time.Time) Forecast {
	return Forecast{
		Start:     Day(anchor),
		Days:      f.Series(anchor, ForecastDays),
		Synthetic: true,
		Label:     SyntheticLabel,
	}
}

// Series draws n consecutive synthetic days beginning at anchor's day.
// Each variable is drawn as a column, in field order.
func (f *SyntheticForecaster) Series(anchor time.Time, n int) []ForecastDay {
	if n <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	start := Day(anchor)
	days := make([]ForecastDay, n)
	for i := range days {
		days[i].Date = start.AddDate(0, 0, i)
	}

	columns := []struct {
		r   Range
		set func(*Weather, float64)
	}{
		{f.ranges.TempMax, func(w *Weather, v float64) { w.TempMax = v }},
		{f.ranges.TempMin, func(w *Weather, v float64) { w.TempMin = v }},
		{f.ranges.Humidity, func(w *Weather, v float64) { w.Humidity = v }},
		{f.ranges.Precipitation, func(w *Weather, v float64) { w.Precipitation = v }},
		{f.ranges.Windspeed, func(w *Weather, v float64) { w.Windspeed = v }},
		{f.ranges.SolarRadiation, func(w *Weather, v float64) { w.SolarRadiation = v }},
	}
	for _, col := range columns {
		u := distuv.Uniform{Min: col.r.Min, Max: col.r.Max, Src: f.src}
		for i := range days {
			col.set(&days[i].Weather, u.Rand())
		}
	}
	return days
}
