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

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	http    *resilientClient
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, logger *zap.Logger) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		http:    newResilientClient("openweather", client, logger),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	if loc.HasCoordinates() {
		values.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', 4, 64))
		values.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', 4, 64))
	} else {
		q := loc.City
		if loc.Country != "" {
			q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
		}
		values.Set("q", q)
	}

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
			Pressure float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Sys struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	}
	if err := p.http.getJSON(ctx, newGet(p.baseURL+"?"+values.Encode()), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	// Rain is reported as accumulated mm; 3h totals are spread per hour.
	precip := payload.Rain.OneH
	if precip == 0 {
		precip = payload.Rain.ThreeH / 3
	}

	reading := weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		WindSpeedMS:  payload.Wind.Speed,
		PressureHpa:  payload.Main.Pressure,
		PrecipMm:     precip,
		Condition:    mapOpenWeatherCondition(payload.Weather),
	}
	if payload.Sys.Sunrise > 0 && payload.Sys.Sunset > 0 && payload.Dt > 0 {
		reading.IsDay = boolPtr(payload.Dt >= payload.Sys.Sunrise && payload.Dt < payload.Sys.Sunset)
	}
	return reading, nil
}

func mapOpenWeatherCondition(items []struct {
	Main string `json:"main"`
}) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
