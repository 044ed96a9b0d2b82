package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/i474232898/hive-thermal/internal/weather"
)

func TestDecodeSnapshot(t *testing.T) {
	elev := 1200.0
	in := weather.Snapshot{
		Location:    weather.Location{City: "Quito", Country: "EC"},
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Temperature: 14.5,
		Condition:   weather.ConditionRain,
		ElevationM:  &elev,
	}
	member, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out, err := decodeSnapshot(string(member))
	if err != nil {
		t.Fatalf("decodeSnapshot: %v", err)
	}
	if !out.Timestamp.Equal(in.Timestamp) || out.ElevationM == nil || *out.ElevationM != elev {
		t.Fatalf("got %+v", out)
	}

	if _, err := decodeSnapshot("not json"); err == nil {
		t.Fatal("expected error for invalid member")
	}
}

func TestScoreUsesUnixSeconds(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	if got := score(ts); got != float64(ts.Unix()) {
		t.Fatalf("score = %v, want %v", got, float64(ts.Unix()))
	}
}

func TestAgeCutoffKeepsSavedSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	maxAge := time.Hour

	recent := now.Add(-10 * time.Minute)
	if got, want := ageCutoff(now, recent, maxAge), score(now.Add(-maxAge)); got != want {
		t.Fatalf("recent cutoff = %v, want %v", got, want)
	}

	// Provider reported an observation older than the retention window.
	late := now.Add(-3 * time.Hour)
	got := ageCutoff(now, late, maxAge)
	if got > score(late) {
		t.Fatalf("cutoff %v would trim the saved snapshot scored %v", got, score(late))
	}
	if got != score(late) {
		t.Fatalf("late cutoff = %v, want %v", got, score(late))
	}
}
