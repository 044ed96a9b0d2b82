package weather

import (
	"testing"
	"time"
)

func TestRainIntensity(t *testing.T) {
	tests := []struct {
		precip float64
		cond   Condition
		want   float64
	}{
		{0, ConditionClear, 0},
		{2, ConditionRain, 0.5},
		{12, ConditionStorm, 1},
		{0, ConditionRain, 0.3},
		{0, ConditionStorm, 0.7},
		{-1, ConditionCloudy, 0},
	}
	for _, tt := range tests {
		if got := RainIntensity(tt.precip, tt.cond); got != tt.want {
			t.Errorf("RainIntensity(%v, %s) = %v, want %v", tt.precip, tt.cond, got, tt.want)
		}
	}
}

func TestSolarDaytime(t *testing.T) {
	noonUTC := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	if !SolarDaytime(noonUTC, 0) {
		t.Fatalf("noon at Greenwich should be day")
	}
	// 12:00 UTC is around 05:30 local mean time at -97°.
	if SolarDaytime(noonUTC, -97) {
		t.Fatalf("early morning in Mexico should be night")
	}
	if !SolarDaytime(noonUTC.Add(6*time.Hour), -97) {
		t.Fatalf("afternoon in Mexico should be day")
	}
	if !SolarDaytime(time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC), 150) {
		t.Fatalf("09:00 next day in eastern Australia should be day")
	}
}

func TestSnapshotEnvironment(t *testing.T) {
	lon := -89.6
	elev := 9.0
	night := false
	snap := Snapshot{
		Location:    Location{Lon: &lon},
		Timestamp:   time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
		Temperature: 31,
		PrecipMM:    1,
		ElevationM:  &elev,
	}

	env := snap.Environment()
	if env.AmbientC != 31 || env.AltitudeM != 9 || env.RainIntensity != 0.25 {
		t.Fatalf("unexpected environment: %+v", env)
	}
	if !env.Daytime {
		t.Fatalf("12:00 local mean time should be day")
	}

	snap.IsDay = &night
	if snap.Environment().Daytime {
		t.Fatalf("provider day/night flag should win")
	}
}
