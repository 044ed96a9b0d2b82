package weather

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// AggregateReadings combines multiple provider readings into a single Snapshot.
// Numeric fields are averaged; conditions and day/night are selected by
// majority. Optional fields are averaged over the providers that report them.
func AggregateReadings(loc Location, readings []ProviderReading) Snapshot {
	if len(readings) == 0 {
		return Snapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	n := len(readings)
	var (
		temps     = make([]float64, 0, n)
		humidity  = make([]float64, 0, n)
		wind      = make([]float64, 0, n)
		pressure  = make([]float64, 0, n)
		precip    = make([]float64, 0, n)
		elevation []float64
		dayVotes  int
		dayTotal  int
	)

	conditionCounts := make(map[Condition]int)
	providers := make([]ProviderContribution, 0, n)
	var newestTS time.Time

	for _, r := range readings {
		temps = append(temps, r.TemperatureC)
		humidity = append(humidity, r.HumidityPct)
		wind = append(wind, r.WindSpeedMS)
		pressure = append(pressure, r.PressureHpa)
		precip = append(precip, r.PrecipMm)

		if r.ElevationM != nil {
			elevation = append(elevation, *r.ElevationM)
		}
		if r.IsDay != nil {
			dayTotal++
			if *r.IsDay {
				dayVotes++
			}
		}

		conditionCounts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	// Pick majority condition; ties go to the first seen.
	bestCond := ConditionUnknown
	bestCount := 0
	for _, r := range readings {
		if count := conditionCounts[r.Condition]; count > bestCount {
			bestCount = count
			bestCond = r.Condition
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	snap := Snapshot{
		Location:    loc,
		Timestamp:   newestTS,
		Temperature: stat.Mean(temps, nil),
		Humidity:    stat.Mean(humidity, nil),
		WindSpeed:   stat.Mean(wind, nil),
		Pressure:    stat.Mean(pressure, nil),
		PrecipMM:    stat.Mean(precip, nil),
		Condition:   bestCond,
		Providers:   providers,
	}
	if len(elevation) > 0 {
		e := stat.Mean(elevation, nil)
		snap.ElevationM = &e
	}
	if dayTotal > 0 {
		isDay := dayVotes*2 >= dayTotal
		snap.IsDay = &isDay
	}
	return snap
}
