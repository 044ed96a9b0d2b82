package thermal

import (
	"fmt"
	"math"
)

const (
	kelvinOffset = 273.15

	DefaultToleranceK    = 0.01
	defaultMaxIterations = 200
)

// Bounds is the absolute range a hive temperature may take.
type Bounds struct {
	MinC float64
	MaxC float64
}

// SafetyBounds is the physically plausible range for any hive.
var SafetyBounds = Bounds{MinC: 0, MaxC: 50}

func (b Bounds) clamp(t float64) float64 { return clamp(t, b.MinC, b.MaxC) }

// Balance holds the terms of the steady-state heat balance.
type Balance struct {
	HeatW          float64
	ResistanceM2KW float64
	AreaM2         float64
	AmbientC       float64 // adjusted ambient
	IdealMaxC      float64
	MaxCoolingC    float64
}

// Loss returns conductive heat loss in watts at hive temperature tC.
func (b Balance) Loss(tC float64) float64 {
	return b.AreaM2 * math.Abs(tC-b.AmbientC) / b.ResistanceM2KW
}

func (b Balance) check() error {
	if !finite(b.HeatW, b.AreaM2, b.ResistanceM2KW, b.AmbientC) {
		return fmt.Errorf("%w: non-finite balance term", ErrNumericDegenerate)
	}
	if b.AreaM2 <= 0 {
		return fmt.Errorf("%w: surface area %.6f m²", ErrNumericDegenerate, b.AreaM2)
	}
	if b.ResistanceM2KW <= 0 {
		return fmt.Errorf("%w: thermal resistance %.6f m²·K/W", ErrNumericDegenerate, b.ResistanceM2KW)
	}
	return nil
}

// cooled handles ambient at or above the ideal maximum. The colony can only
// pull the hive down by its cooling capacity; metabolism does not help.
func (b Balance) cooled() (float64, bool) {
	if b.AmbientC < b.IdealMaxC {
		return 0, false
	}
	return b.AmbientC - math.Min(b.MaxCoolingC, b.AmbientC-b.IdealMaxC), true
}

// Solver finds the unclamped equilibrium hive temperature in Celsius.
type Solver interface {
	Equilibrium(b Balance) (float64, error)
}

// Bisection searches [ambient, ideal max] in Kelvin until the bracket is
// narrower than ToleranceK.
type Bisection struct {
	ToleranceK    float64
	MaxIterations int
}

func (s Bisection) Equilibrium(b Balance) (float64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if t, ok := b.cooled(); ok {
		return t, nil
	}

	tol := s.ToleranceK
	if tol <= 0 {
		tol = DefaultToleranceK
	}
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	lo := b.AmbientC + kelvinOffset
	hi := b.IdealMaxC + kelvinOffset
	for i := 0; hi-lo > tol && i < maxIter; i++ {
		mid := (lo + hi) / 2
		if b.Loss(mid-kelvinOffset) > b.HeatW {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo+hi)/2 - kelvinOffset, nil
}

// ClosedForm solves the linear balance directly once the direction of heat
// flow is known.
type ClosedForm struct{}

func (ClosedForm) Equilibrium(b Balance) (float64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if t, ok := b.cooled(); ok {
		return t, nil
	}
	rise := b.HeatW * b.ResistanceM2KW / b.AreaM2
	return b.AmbientC + math.Min(b.IdealMaxC-b.AmbientC, rise), nil
}
