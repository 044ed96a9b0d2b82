package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a Snapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	HumidityPct  float64
	WindSpeedMS  float64
	PressureHpa  float64
	PrecipMm     float64
	Condition    Condition

	// Optional fields; nil when the provider does not report them.
	IsDay      *bool
	ElevationM *float64
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ElevationProvider resolves terrain elevation in metres for coordinates.
type ElevationProvider interface {
	Elevation(ctx context.Context, lat, lon float64) (float64, error)
}

// Geocoder resolves a city/country location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc Location) (Location, error)
}

// Store is the contract the in-memory and Redis stores satisfy.
type Store interface {
	SaveSnapshot(ctx context.Context, loc Location, snapshot Snapshot) error
	GetLatest(ctx context.Context, loc Location) (Snapshot, error)
	GetRange(ctx context.Context, loc Location, from, to time.Time) ([]Snapshot, error)
}
