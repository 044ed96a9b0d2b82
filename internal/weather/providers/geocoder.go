package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/hive-thermal/internal/weather"
)

// geocoderMu guards the package-level API key of the geocoder library.
var geocoderMu sync.Mutex

// GoogleGeocoder resolves city/country locations through the Google
// Geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

// Geocode returns loc with coordinates filled in.
func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if g.apiKey == "" {
		return loc, fmt.Errorf("geocoder api key is not configured")
	}
	if err := ctx.Err(); err != nil {
		return loc, err
	}

	geocoderMu.Lock()
	geocoder.ApiKey = g.apiKey
	result, err := geocoder.Geocoding(geocoder.Address{City: loc.City, Country: loc.Country})
	geocoderMu.Unlock()
	if err != nil {
		return loc, fmt.Errorf("geocode %s: %w", loc.Key(), err)
	}

	lat, lon := result.Latitude, result.Longitude
	loc.Lat, loc.Lon = &lat, &lon
	return loc, nil
}
