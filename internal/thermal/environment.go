package thermal

import "math"

// Supported input ranges. Values outside are clamped, not rejected.
const (
	MinAltitudeM = -500.0
	MaxAltitudeM = 9000.0

	DefaultOxygenFloor = 0.5
	ScaleHeightM       = 7400.0
	LapseRateCPerKm    = 6.5
	DefaultRainPenalty = 3.0
)

// OxygenModel maps altitude to the fraction of sea-level oxygen available to
// the colony. Implementations return values in [floor, 1] and never increase
// with |altitude|.
type OxygenModel interface {
	Factor(altitudeM float64) float64
}

// LinearOxygen loses 10% per kilometre of |altitude| down to Floor.
type LinearOxygen struct {
	Floor float64
}

func (o LinearOxygen) Factor(altitudeM float64) float64 {
	f := 1 - 0.1*math.Abs(clampAltitude(altitudeM))/1000
	return clamp(f, o.Floor, 1)
}

// BarometricOxygen follows the isothermal barometric formula.
type BarometricOxygen struct {
	Floor        float64
	ScaleHeightM float64
}

func (o BarometricOxygen) Factor(altitudeM float64) float64 {
	h := o.ScaleHeightM
	if h <= 0 {
		h = ScaleHeightM
	}
	return clamp(math.Exp(-clampAltitude(altitudeM)/h), o.Floor, 1)
}

// DayNightOffset is the additive ambient offset for one activity profile.
type DayNightOffset struct {
	DayC   float64
	NightC float64
}

// DefaultActivityOffsets are the per-profile offsets used when none are
// configured.
func DefaultActivityOffsets() map[ActivityProfile]DayNightOffset {
	return map[ActivityProfile]DayNightOffset{
		ActivityDiurnal: {DayC: 1.0, NightC: -2.0},
		ActivityMorning: {DayC: 0.5, NightC: -1.5},
		ActivityEvening: {DayC: 0.0, NightC: -1.0},
	}
}

// Adjuster turns a raw EnvironmentSample into the effective ambient
// temperature seen by the hive envelope, plus the oxygen factor.
type Adjuster struct {
	Oxygen         OxygenModel
	ApplyLapseRate bool
	Offsets        map[ActivityProfile]DayNightOffset
	RainPenaltyC   float64 // deducted at rain intensity 1
}

// NewAdjuster returns an adjuster with linear oxygen, lapse rate disabled and
// the default offsets.
func NewAdjuster() Adjuster {
	return Adjuster{
		Oxygen:       LinearOxygen{Floor: DefaultOxygenFloor},
		Offsets:      DefaultActivityOffsets(),
		RainPenaltyC: DefaultRainPenalty,
	}
}

// Adjust applies lapse rate, activity offset and rain penalty in that order.
func (a Adjuster) Adjust(env EnvironmentSample, activity ActivityProfile) (ambientC, oxygen float64) {
	alt := clampAltitude(env.AltitudeM)
	t := env.AmbientC

	if a.ApplyLapseRate {
		t -= LapseRateCPerKm * math.Max(alt, 0) / 1000
	}

	if off, ok := a.Offsets[activity]; ok {
		if env.Daytime {
			t += off.DayC
		} else {
			t += off.NightC
		}
	}

	t -= a.RainPenaltyC * clamp(env.RainIntensity, 0, 1)

	return t, a.Oxygen.Factor(alt)
}

func clampAltitude(m float64) float64 {
	return clamp(m, MinAltitudeM, MaxAltitudeM)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
