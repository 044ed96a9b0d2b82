// Package thermal models the steady-state temperature of an enclosed bee
// nest from colony metabolism, enclosure geometry, wall insulation and the
// ambient environment.
package thermal

import (
	"fmt"
	"strings"
)

// ClampPolicy selects the band compartment temperatures are clamped to.
type ClampPolicy string

const (
	// ClampSpecies clamps compartments to the profile's ideal band.
	ClampSpecies ClampPolicy = "species"
	// ClampBasic clamps compartments to the safety bounds.
	ClampBasic ClampPolicy = "basic"
)

// Model is a composed set of physical strategies. It holds no per-solve
// state and is safe for concurrent use.
type Model struct {
	adjuster    Adjuster
	resistance  Resistance
	solver      Solver
	distributor Distributor
	bounds      Bounds
	clamp       ClampPolicy
}

// Option customises a Model.
type Option func(*Model)

// WithOxygen sets the altitude oxygen model.
func WithOxygen(o OxygenModel) Option { return func(m *Model) { m.adjuster.Oxygen = o } }

// WithLapseRate enables the altitude lapse-rate correction of ambient.
func WithLapseRate(on bool) Option { return func(m *Model) { m.adjuster.ApplyLapseRate = on } }

// WithRainPenalty sets the ambient drop in °C at full rain intensity.
func WithRainPenalty(c float64) Option { return func(m *Model) { m.adjuster.RainPenaltyC = c } }

// WithResistance replaces the envelope resistance model.
func WithResistance(r Resistance) Option { return func(m *Model) { m.resistance = r } }

// WithSolver sets the equilibrium solver.
func WithSolver(s Solver) Option { return func(m *Model) { m.solver = s } }

// WithBounds sets the safety band the hive temperature is clamped to.
func WithBounds(b Bounds) Option { return func(m *Model) { m.bounds = b } }

// WithClamp selects the band compartment temperatures are clamped to.
func WithClamp(p ClampPolicy) Option { return func(m *Model) { m.clamp = p } }

// WithActivityOffsets replaces the per-activity day/night ambient offsets.
func WithActivityOffsets(offsets map[ActivityProfile]DayNightOffset) Option {
	return func(m *Model) { m.adjuster.Offsets = offsets }
}

// WithInsulationBonus sets the compartment warming per millimetre of its own
// insulation.
func WithInsulationBonus(cPerMM float64) Option {
	return func(m *Model) { m.distributor.InsulationBonusCPerMM = cPerMM }
}

// New builds a Model. Without options it uses linear oxygen with a 0.5
// floor, no lapse-rate correction, bisection and species-aware clamping.
func New(opts ...Option) (*Model, error) {
	m := &Model{
		adjuster:    NewAdjuster(),
		resistance:  NewResistance(),
		solver:      Bisection{ToleranceK: DefaultToleranceK},
		distributor: Distributor{InsulationBonusCPerMM: DefaultInsulationBonusCPerMM},
		bounds:      SafetyBounds,
		clamp:       ClampSpecies,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) validate() error {
	if m.adjuster.Oxygen == nil {
		return fmt.Errorf("%w: oxygen model is required", ErrInvalidConfiguration)
	}
	if f := m.adjuster.Oxygen.Factor(0); f <= 0 || f > 1 {
		return fmt.Errorf("%w: oxygen factor at sea level %.3f outside (0, 1]", ErrInvalidConfiguration, f)
	}
	if m.solver == nil {
		return fmt.Errorf("%w: solver is required", ErrInvalidConfiguration)
	}
	if m.bounds.MinC >= m.bounds.MaxC {
		return fmt.Errorf("%w: bounds min %.2f must be below max %.2f", ErrInvalidConfiguration, m.bounds.MinC, m.bounds.MaxC)
	}
	if m.resistance.AirFilm < 0 {
		return fmt.Errorf("%w: air film resistance must not be negative", ErrInvalidConfiguration)
	}
	if m.adjuster.RainPenaltyC < 0 {
		return fmt.Errorf("%w: rain penalty must not be negative", ErrInvalidConfiguration)
	}
	switch m.clamp {
	case ClampSpecies, ClampBasic:
	default:
		return fmt.Errorf("%w: unknown clamp policy %q", ErrInvalidConfiguration, m.clamp)
	}
	return nil
}

// Variant names a model configuration so it can be chosen from config files
// and requests. Zero values select the defaults of New.
type Variant struct {
	Oxygen      string  `json:"oxygen,omitempty" yaml:"oxygen" validate:"omitempty,oneof=linear barometric"`
	OxygenFloor float64 `json:"oxygenFloor,omitempty" yaml:"oxygen_floor" validate:"omitempty,gt=0,lte=1"`
	Solver      string  `json:"solver,omitempty" yaml:"solver" validate:"omitempty,oneof=bisection closed-form"`
	LapseRate   bool    `json:"lapseRate,omitempty" yaml:"lapse_rate"`
	Clamp       string  `json:"clamp,omitempty" yaml:"clamp" validate:"omitempty,oneof=species basic"`
}

// FromVariant builds a Model from a named variant.
func FromVariant(v Variant) (*Model, error) {
	floor := v.OxygenFloor
	if floor == 0 {
		floor = DefaultOxygenFloor
	}
	if floor < 0 || floor > 1 {
		return nil, fmt.Errorf("%w: oxygen floor %.2f outside (0, 1]", ErrInvalidConfiguration, floor)
	}

	var opts []Option
	switch strings.ToLower(v.Oxygen) {
	case "", "linear":
		opts = append(opts, WithOxygen(LinearOxygen{Floor: floor}))
	case "barometric":
		opts = append(opts, WithOxygen(BarometricOxygen{Floor: floor, ScaleHeightM: ScaleHeightM}))
	default:
		return nil, fmt.Errorf("%w: unknown oxygen model %q", ErrInvalidConfiguration, v.Oxygen)
	}

	switch strings.ToLower(v.Solver) {
	case "", "bisection":
		opts = append(opts, WithSolver(Bisection{ToleranceK: DefaultToleranceK}))
	case "closed-form":
		opts = append(opts, WithSolver(ClosedForm{}))
	default:
		return nil, fmt.Errorf("%w: unknown solver %q", ErrInvalidConfiguration, v.Solver)
	}

	if v.Clamp != "" {
		opts = append(opts, WithClamp(ClampPolicy(strings.ToLower(v.Clamp))))
	}
	opts = append(opts, WithLapseRate(v.LapseRate))

	return New(opts...)
}

// Solve computes the steady-state temperatures of a hive.
func (m *Model) Solve(profile ColonyProfile, hive Hive, env EnvironmentSample) (SolveResult, error) {
	if err := profile.Validate(); err != nil {
		return SolveResult{}, err
	}
	if err := hive.Validate(); err != nil {
		return SolveResult{}, err
	}
	if !finite(env.AmbientC, env.AltitudeM, env.RainIntensity) {
		return SolveResult{}, fmt.Errorf("%w: environment has a non-finite value", ErrInvalidConfiguration)
	}

	geom, err := GeometryFor(hive.Shape)
	if err != nil {
		return SolveResult{}, err
	}
	area, volume, err := Envelope(geom, hive.Enclosures)
	if err != nil {
		return SolveResult{}, err
	}

	ambient, oxygen := m.adjuster.Adjust(env, profile.Activity)

	heat, err := MetabolicHeat(profile, hive.ColonyPct, oxygen)
	if err != nil {
		return SolveResult{}, err
	}

	resistance, err := m.resistance.Total(hive.WallThicknessCm, profile.WallConductivity, hive.InsulationLayersMM)
	if err != nil {
		return SolveResult{}, err
	}

	balance := Balance{
		HeatW:          heat,
		ResistanceM2KW: resistance,
		AreaM2:         area,
		AmbientC:       ambient,
		IdealMaxC:      profile.IdealMaxC,
		MaxCoolingC:    profile.MaxCoolingC,
	}
	raw, err := m.solver.Equilibrium(balance)
	if err != nil {
		return SolveResult{}, err
	}
	hiveC := m.bounds.clamp(raw)

	band := m.bounds
	if m.clamp == ClampSpecies {
		band = Bounds{MinC: profile.IdealMinC, MaxC: profile.IdealMaxC}
	}

	return SolveResult{
		ColonySize:        ColonySize(profile, hive.ColonyPct),
		MetabolicHeatW:    heat,
		AdjustedAmbientC:  ambient,
		HiveTempC:         hiveC,
		CompartmentTempsC: m.distributor.Distribute(hiveC, hive.Enclosures, band),
		SurfaceAreaM2:     area,
		VolumeM3:          volume,
		ResistanceM2KW:    resistance,
		HeatTransferW:     balance.Loss(hiveC),
		OxygenFactor:      oxygen,
		WithinIdealBand:   hiveC >= profile.IdealMinC && hiveC <= profile.IdealMaxC,
	}, nil
}
