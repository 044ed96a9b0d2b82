package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/hive-thermal/internal/common"
	"github.com/i474232898/hive-thermal/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	http    *resilientClient
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, logger *zap.Logger) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		http:    newResilientClient("weatherapi", client, logger),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
	if loc.HasCoordinates() {
		values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
	} else {
		q := loc.City
		if loc.Country != "" {
			q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
		}
		values.Set("q", q)
	}

	var payload struct {
		Location struct {
			LocaltimeEpoch int64 `json:"localtime_epoch"`
		} `json:"location"`
		Current struct {
			LastUpdatedEpoch int64   `json:"last_updated_epoch"`
			TempC            float64 `json:"temp_c"`
			Humidity         float64 `json:"humidity"`
			WindKph          float64 `json:"wind_kph"`
			PressureMb       float64 `json:"pressure_mb"`
			PrecipMm         float64 `json:"precip_mm"`
			IsDay            int     `json:"is_day"`
			Condition        struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := p.http.getJSON(ctx, newGet(p.baseURL+"?"+values.Encode()), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	switch {
	case payload.Current.LastUpdatedEpoch > 0:
		ts = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	case payload.Location.LocaltimeEpoch > 0:
		ts = time.Unix(payload.Location.LocaltimeEpoch, 0).UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Current.TempC,
		HumidityPct:  payload.Current.Humidity,
		WindSpeedMS:  payload.Current.WindKph / 3.6,
		PressureHpa:  payload.Current.PressureMb,
		PrecipMm:     payload.Current.PrecipMm,
		Condition:    mapWeatherAPICondition(payload.Current.Condition.Text),
		IsDay:        boolPtr(payload.Current.IsDay == 1),
	}, nil
}

func mapWeatherAPICondition(text string) weather.Condition {
	text = strings.ToLower(text)
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAny(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case common.HasAny(text, "mist", "fog"):
		return weather.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
