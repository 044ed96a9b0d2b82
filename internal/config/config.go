package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/hive-thermal/internal/thermal"
	"github.com/i474232898/hive-thermal/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	Port string `validate:"required,numeric"`

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string
	OpenMeteoEnabled  bool

	// HTTPTimeout bounds every outbound provider request.
	HTTPTimeout time.Duration `validate:"min=1s"`

	// MonitorInterval controls how often apiaries are re-solved and watched
	// locations refreshed.
	MonitorInterval time.Duration `validate:"min=1m"`

	// ConditionsMaxAge is how long a stored snapshot is served before the
	// providers are queried again.
	ConditionsMaxAge time.Duration `validate:"gte=0"`

	// Locations whose conditions are kept warm by the monitor.
	Locations []weather.Location

	// Snapshot retention, in memory or in Redis.
	StoreMaxHistory int           `validate:"gte=0"` // max snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of snapshots (0 = unlimited)

	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	MQTTBroker   string `validate:"omitempty,url"`
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	SpeciesFile  string
	ApiariesFile string

	LogLevel  string `validate:"oneof=debug info warn warning error"`
	LogFormat string `validate:"oneof=json console text"`

	// DefaultAmbientC is used when no conditions can be resolved.
	DefaultAmbientC float64 `validate:"gte=-60,lte=60"`

	Model thermal.Variant
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is applied first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GOOGLE_GEOCODING_API_KEY")
	cfg.OpenMeteoEnabled = getenvBool("OPENMETEO_ENABLED", true)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.MonitorInterval, err = getenvDuration("MONITOR_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.ConditionsMaxAge, err = getenvDuration("CONDITIONS_MAX_AGE", "15m"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	cfg.MQTTClientID = os.Getenv("MQTT_CLIENT_ID")
	cfg.MQTTUsername = os.Getenv("MQTT_USERNAME")
	cfg.MQTTPassword = os.Getenv("MQTT_PASSWORD")

	cfg.SpeciesFile = os.Getenv("SPECIES_FILE")
	cfg.ApiariesFile = os.Getenv("APIARIES_FILE")

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "json"))

	if cfg.DefaultAmbientC, err = getenvFloat("DEFAULT_AMBIENT_C", 20); err != nil {
		return nil, err
	}

	cfg.Model = thermal.Variant{
		Oxygen:    strings.ToLower(os.Getenv("OXYGEN_MODEL")),
		Solver:    strings.ToLower(os.Getenv("SOLVER")),
		LapseRate: getenvBool("APPLY_LAPSE_RATE", false),
		Clamp:     strings.ToLower(os.Getenv("CLAMP")),
	}
	if cfg.Model.OxygenFloor, err = getenvFloat("OXYGEN_FLOOR", 0); err != nil {
		return nil, err
	}

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadLocations reads the comma-separated WATCH_CITIES and WATCH_COUNTRIES
// lists, pairing them by position.
func loadLocations() ([]weather.Location, error) {
	city := strings.TrimSpace(os.Getenv("WATCH_CITIES"))
	country := strings.TrimSpace(os.Getenv("WATCH_COUNTRIES"))
	if city == "" && country == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		c, cc := strings.TrimSpace(cities[i]), strings.TrimSpace(countries[i])
		if c == "" {
			return nil, fmt.Errorf("empty city at position %d", i+1)
		}
		locs = append(locs, weather.Location{City: c, Country: cc})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
