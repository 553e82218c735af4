package models

import (
	"fmt"
	"time"
)

// Forecast represents the One Call response from the OpenWeatherMap API.
// Only the fields the alerting path needs are decoded.
type Forecast struct {
	Latitude       float64      `json:"lat"`
	Longitude      float64      `json:"lon"`
	Timezone       string       `json:"timezone"`
	TimezoneOffset int          `json:"timezone_offset"`
	Hourly         []HourlyItem `json:"hourly"`
}

// HourlyItem is one raw hourly entry. Pointers let us tell a missing field from a zero value.
type HourlyItem struct {
	Dt        *int64      `json:"dt"`
	Temp      *float64    `json:"temp"`
	WindSpeed *float64    `json:"wind_speed"`
	WindGust  *float64    `json:"wind_gust,omitempty"`
	Weather   []Condition `json:"weather"`
}

// Condition is a weather condition entry; the first one is the primary condition.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Readings converts the raw hourly entries into readings, oldest first as delivered.
// Any entry missing a required field makes the whole payload unusable.
func (f *Forecast) Readings() ([]HourlyReading, error) {
	if f.Hourly == nil {
		return nil, fmt.Errorf("forecast has no hourly section")
	}

	readings := make([]HourlyReading, 0, len(f.Hourly))
	for i, h := range f.Hourly {
		switch {
		case h.Dt == nil:
			return nil, fmt.Errorf("hourly[%d]: missing dt", i)
		case *h.Dt == 0:
			return nil, fmt.Errorf("hourly[%d]: dt is zero", i)
		case h.Temp == nil:
			return nil, fmt.Errorf("hourly[%d]: missing temp", i)
		case h.WindSpeed == nil:
			return nil, fmt.Errorf("hourly[%d]: missing wind_speed", i)
		case len(h.Weather) == 0:
			return nil, fmt.Errorf("hourly[%d]: missing weather condition", i)
		}

		readings = append(readings, HourlyReading{
			Timestamp:   *h.Dt,
			Temperature: *h.Temp,
			WindSpeed:   *h.WindSpeed,
			WeatherCode: h.Weather[0].ID,
		})
	}

	return readings, nil
}

// HourlyReading is one forecast data point for a single future hour.
type HourlyReading struct {
	Timestamp   int64   `json:"timestamp"` // epoch seconds
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"wind_speed"`
	WeatherCode int     `json:"weather_code"`
}

// Time returns the reading's timestamp as a time.Time.
func (r HourlyReading) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// ThresholdConfig holds the limits that turn readings into alert conditions.
type ThresholdConfig struct {
	MaxColdTemperature float64 `json:"max_cold_temperature"`
	MinWindSpeed       float64 `json:"min_wind_speed"`
	RainEnabled        bool    `json:"rain_enabled"`
}

// WeatherCodeTable maps provider condition codes to descriptions.
type WeatherCodeTable map[int]string

// Classification is the result of evaluating a single reading.
type Classification struct {
	TooCold         bool   `json:"too_cold"`
	TooWindy        bool   `json:"too_windy"`
	IsRain          bool   `json:"is_rain"`
	RainDescription string `json:"rain_description,omitempty"`
}

// Slot holds the first occurrence of one alert condition. Readings never carry a
// zero timestamp, so Timestamp is non-zero exactly when IsSet is true.
type Slot[T float64 | string] struct {
	Value     T     `json:"value"`
	Timestamp int64 `json:"timestamp"`
	IsSet     bool  `json:"is_set"`
}

// Set records value and ts unless the slot already holds an occurrence.
// It reports whether the slot was written.
func (s *Slot[T]) Set(value T, ts int64) bool {
	if s.IsSet {
		return false
	}
	s.Value = value
	s.Timestamp = ts
	s.IsSet = true
	return true
}

// AggregateAlert is the first-occurrence summary of a forecast window.
type AggregateAlert struct {
	Cold Slot[float64] `json:"cold"`
	Wind Slot[float64] `json:"wind"`
	Rain Slot[string]  `json:"rain"`
}

// Empty reports whether no condition was triggered.
func (a AggregateAlert) Empty() bool {
	return !a.Cold.IsSet && !a.Wind.IsSet && !a.Rain.IsSet
}

// Full reports whether every condition has been recorded.
func (a AggregateAlert) Full() bool {
	return a.Cold.IsSet && a.Wind.IsSet && a.Rain.IsSet
}

// Metric represents a single archived forecast value
type Metric struct {
	ID         int64     `json:"id"`
	Location   string    `json:"location"`
	Timestamp  time.Time `json:"timestamp"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
}
