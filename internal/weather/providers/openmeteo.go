package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/hive-thermal/internal/weather"
)

// OpenMeteoProvider implements weather.Provider and weather.ElevationProvider
// for Open-Meteo. It needs coordinates and no API key.
type OpenMeteoProvider struct {
	name         string
	baseURL      string
	elevationURL string
	http         *resilientClient
}

func NewOpenMeteoProvider(client *http.Client, logger *zap.Logger) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:         "openmeteo",
		baseURL:      "https://api.open-meteo.com/v1/forecast",
		elevationURL: "https://api.open-meteo.com/v1/elevation",
		http:         newResilientClient("openmeteo", client, logger),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func coords(lat, lon float64) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	return values
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if !loc.HasCoordinates() {
		return weather.ProviderReading{}, fmt.Errorf("openmeteo requires latitude and longitude")
	}

	values := coords(*loc.Lat, *loc.Lon)
	values.Set("current", "temperature_2m,relative_humidity_2m,precipitation,weather_code,wind_speed_10m,surface_pressure,is_day")
	values.Set("wind_speed_unit", "ms")
	values.Set("timezone", "GMT")

	var payload struct {
		Elevation *float64 `json:"elevation"`
		Current   struct {
			Time        string  `json:"time"`
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			Precip      float64 `json:"precipitation"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			Pressure    float64 `json:"surface_pressure"`
			IsDay       int     `json:"is_day"`
		} `json:"current"`
	}
	if err := p.http.getJSON(ctx, newGet(p.baseURL+"?"+values.Encode()), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	// Open-Meteo reports ISO8601 local time without seconds; GMT was requested.
	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		TemperatureC: payload.Current.Temperature,
		HumidityPct:  payload.Current.Humidity,
		WindSpeedMS:  payload.Current.WindSpeed,
		PressureHpa:  payload.Current.Pressure,
		PrecipMm:     payload.Current.Precip,
		Condition:    mapOpenMeteoCondition(payload.Current.WeatherCode),
		IsDay:        boolPtr(payload.Current.IsDay == 1),
		ElevationM:   payload.Elevation,
	}, nil
}

// Elevation returns the terrain elevation in metres from the Open-Meteo
// elevation API.
func (p *OpenMeteoProvider) Elevation(ctx context.Context, lat, lon float64) (float64, error) {
	var payload struct {
		Elevation []float64 `json:"elevation"`
	}
	if err := p.http.getJSON(ctx, newGet(p.elevationURL+"?"+coords(lat, lon).Encode()), &payload); err != nil {
		return 0, err
	}
	if len(payload.Elevation) == 0 {
		return 0, fmt.Errorf("openmeteo returned no elevation")
	}
	return payload.Elevation[0], nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on WMO weather codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
