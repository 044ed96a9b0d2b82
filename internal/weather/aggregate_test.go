package weather

import (
	"testing"
	"time"
)

func TestAggregateReadings(t *testing.T) {
	ts1 := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ts2 := ts1.Add(10 * time.Minute)
	elev := 1500.0
	day, night := true, false

	snap := AggregateReadings(Location{City: "Puebla", Country: "MX"}, []ProviderReading{
		{ProviderName: "a", Timestamp: ts1, TemperatureC: 20, PrecipMm: 1, Condition: ConditionRain, IsDay: &day},
		{ProviderName: "b", Timestamp: ts2, TemperatureC: 22, PrecipMm: 0, Condition: ConditionCloudy, ElevationM: &elev, IsDay: &day},
		{ProviderName: "c", Timestamp: ts1, TemperatureC: 24, PrecipMm: 2, Condition: ConditionRain, IsDay: &night},
	})

	if snap.Temperature != 22 || snap.PrecipMM != 1 {
		t.Fatalf("averages wrong: %+v", snap)
	}
	if snap.Condition != ConditionRain {
		t.Fatalf("condition = %s, want rain", snap.Condition)
	}
	if !snap.Timestamp.Equal(ts2) {
		t.Fatalf("timestamp = %v, want newest %v", snap.Timestamp, ts2)
	}
	if snap.ElevationM == nil || *snap.ElevationM != 1500 {
		t.Fatalf("elevation = %v", snap.ElevationM)
	}
	if snap.IsDay == nil || !*snap.IsDay {
		t.Fatalf("isDay majority wrong: %v", snap.IsDay)
	}
	if len(snap.Providers) != 3 {
		t.Fatalf("providers = %d", len(snap.Providers))
	}
}

func TestAggregateReadingsEmpty(t *testing.T) {
	snap := AggregateReadings(Location{City: "x"}, nil)
	if snap.Condition != ConditionUnknown || snap.Timestamp.IsZero() {
		t.Fatalf("unexpected empty snapshot: %+v", snap)
	}
	if snap.ElevationM != nil || snap.IsDay != nil {
		t.Fatalf("optional fields should be nil: %+v", snap)
	}
}
