package weather

import (
	"math"
	"time"

	"github.com/i474232898/hive-thermal/internal/thermal"
)

// HeavyRainMMPerHour is the precipitation rate treated as full rain intensity.
const HeavyRainMMPerHour = 4.0

// RainIntensity maps precipitation and condition onto the 0-1 scale used by
// the thermal model. Providers that report rain without an amount get a
// nominal intensity.
func RainIntensity(precipMM float64, cond Condition) float64 {
	intensity := math.Min(math.Max(precipMM/HeavyRainMMPerHour, 0), 1)
	if intensity > 0 {
		return intensity
	}
	switch cond {
	case ConditionRain:
		return 0.3
	case ConditionStorm:
		return 0.7
	default:
		return 0
	}
}

// SolarDaytime approximates daytime from local mean solar time: hours 06-18
// count as day.
func SolarDaytime(at time.Time, lon float64) bool {
	utc := at.UTC()
	hour := float64(utc.Hour()) + float64(utc.Minute())/60 + lon/15
	hour = math.Mod(hour+24, 24)
	return hour >= 6 && hour < 18
}

// Environment converts the snapshot into the thermal model's input. Provider
// day/night flags are preferred; otherwise the longitude is used, and
// without coordinates UTC hours stand in for local time.
func (s Snapshot) Environment() thermal.EnvironmentSample {
	env := thermal.EnvironmentSample{
		AmbientC:      s.Temperature,
		RainIntensity: RainIntensity(s.PrecipMM, s.Condition),
	}
	if s.ElevationM != nil {
		env.AltitudeM = *s.ElevationM
	}

	switch {
	case s.IsDay != nil:
		env.Daytime = *s.IsDay
	case s.Location.Lon != nil:
		env.Daytime = SolarDaytime(s.Timestamp, *s.Location.Lon)
	default:
		env.Daytime = SolarDaytime(s.Timestamp, 0)
	}
	return env
}
