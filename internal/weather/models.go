package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location identifies an apiary either by coordinates or by city/country.
// Coordinates win when both are present.
type Location struct {
	City    string   `json:"city,omitempty" yaml:"city"`
	Country string   `json:"country,omitempty" yaml:"country"`
	Lat     *float64 `json:"lat,omitempty" yaml:"lat"`
	Lon     *float64 `json:"lon,omitempty" yaml:"lon"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Key returns a canonical string key for indexing this location in stores.
// Coordinates are rounded to roughly 10 m so that repeated lookups for the
// same apiary share a cache entry.
func (l Location) Key() string {
	if l.HasCoordinates() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return l.City + ":" + l.Country
}

// Snapshot is the aggregated ambient conditions at a location.
type Snapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // observation time, always UTC
	FetchedAt   time.Time `json:"fetchedAt"`
	Temperature float64   `json:"temperatureC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`
	IsDay       *bool     `json:"isDay,omitempty"`
	ElevationM  *float64  `json:"elevationM,omitempty"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}
