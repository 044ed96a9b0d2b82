package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.MonitorInterval != 15*time.Minute || cfg.StoreMaxHistory != 96 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.OpenMeteoEnabled || cfg.Model.LapseRate || cfg.DefaultAmbientC != 20 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Locations) != 0 {
		t.Fatalf("expected no watched locations, got %v", cfg.Locations)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("MONITOR_INTERVAL", "30m")
	t.Setenv("WATCH_CITIES", "Merida, Quito")
	t.Setenv("WATCH_COUNTRIES", "MX,EC")
	t.Setenv("OXYGEN_MODEL", "Barometric")
	t.Setenv("OXYGEN_FLOOR", "0.6")
	t.Setenv("APPLY_LAPSE_RATE", "true")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("MQTT_BROKER", "tcp://localhost:1883")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.MonitorInterval != 30*time.Minute || cfg.LogFormat != "console" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Locations) != 2 || cfg.Locations[1].City != "Quito" || cfg.Locations[1].Country != "EC" {
		t.Fatalf("unexpected locations: %+v", cfg.Locations)
	}
	if cfg.Model.Oxygen != "barometric" || cfg.Model.OxygenFloor != 0.6 || !cfg.Model.LapseRate {
		t.Fatalf("unexpected model variant: %+v", cfg.Model)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad duration", "MONITOR_INTERVAL", "soon"},
		{"interval too short", "MONITOR_INTERVAL", "10s"},
		{"bad float", "DEFAULT_AMBIENT_C", "warm"},
		{"ambient out of range", "DEFAULT_AMBIENT_C", "90"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad solver", "SOLVER", "newton"},
		{"bad floor", "OXYGEN_FLOOR", "1.5"},
		{"bad port", "PORT", "http"},
		{"mismatched locations", "WATCH_CITIES", "Merida,Quito"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)
			if tt.key == "WATCH_CITIES" {
				t.Setenv("WATCH_COUNTRIES", "MX")
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
