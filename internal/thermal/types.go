package thermal

import (
	"fmt"
	"math"
)

// Shape selects the enclosure geometry.
type Shape string

const (
	ShapeHexagonal   Shape = "hexagonal"
	ShapeRectangular Shape = "rectangular"
)

// ActivityProfile governs the day/night offset applied to the ambient
// temperature.
type ActivityProfile string

const (
	ActivityDiurnal ActivityProfile = "diurnal"
	ActivityMorning ActivityProfile = "morning"
	ActivityEvening ActivityProfile = "evening"
)

// Input ranges accepted at the boundary.
const (
	MaxCoolingEffectC = 20.0
	MaxInsulationMM   = 50.0
)

// ColonyProfile describes a species or colony. It is never mutated by a solve.
type ColonyProfile struct {
	Name               string          `json:"name" yaml:"name"`
	MetabolicRateW     float64         `json:"metabolicRateW" yaml:"metabolic_rate_w"`
	NominalColonySize  int             `json:"nominalColonySize" yaml:"nominal_colony_size"`
	IdealMinC          float64         `json:"idealMinC" yaml:"ideal_min_c"`
	IdealMaxC          float64         `json:"idealMaxC" yaml:"ideal_max_c"`
	WallConductivity   float64         `json:"wallConductivity" yaml:"wall_conductivity"` // W/(m·K)
	MaxCoolingC        float64         `json:"maxCoolingC" yaml:"max_cooling_c"`
	Activity           ActivityProfile `json:"activity" yaml:"activity"`
	ActivityMultiplier float64         `json:"activityMultiplier,omitempty" yaml:"activity_multiplier"`
}

// Validate checks the profile's ranges.
func (p ColonyProfile) Validate() error {
	if !finite(p.MetabolicRateW, p.IdealMinC, p.IdealMaxC, p.WallConductivity, p.MaxCoolingC, p.ActivityMultiplier) {
		return fmt.Errorf("%w: profile %q has a non-finite value", ErrInvalidConfiguration, p.Name)
	}
	switch {
	case p.MetabolicRateW < 0:
		return fmt.Errorf("%w: metabolic rate must not be negative", ErrInvalidConfiguration)
	case p.NominalColonySize <= 0:
		return fmt.Errorf("%w: nominal colony size must be positive", ErrInvalidConfiguration)
	case p.IdealMinC >= p.IdealMaxC:
		return fmt.Errorf("%w: ideal min %.2f must be below ideal max %.2f", ErrInvalidConfiguration, p.IdealMinC, p.IdealMaxC)
	case p.WallConductivity <= 0:
		return fmt.Errorf("%w: wall conductivity must be positive", ErrInvalidConfiguration)
	case p.MaxCoolingC < 0:
		return fmt.Errorf("%w: max cooling must not be negative", ErrInvalidConfiguration)
	case p.ActivityMultiplier < 0:
		return fmt.Errorf("%w: activity multiplier must not be negative", ErrInvalidConfiguration)
	}
	switch p.Activity {
	case ActivityDiurnal, ActivityMorning, ActivityEvening:
	default:
		return fmt.Errorf("%w: unknown activity profile %q", ErrInvalidConfiguration, p.Activity)
	}
	return nil
}

func (p ColonyProfile) multiplier() float64 {
	if p.ActivityMultiplier == 0 {
		return 1
	}
	return p.ActivityMultiplier
}

// Enclosure is one physical compartment of a hive. Linear dimensions are in
// centimeters.
type Enclosure struct {
	Label          string  `json:"label,omitempty" yaml:"label"`
	WidthCm        float64 `json:"widthCm" yaml:"width_cm"`
	HeightCm       float64 `json:"heightCm" yaml:"height_cm"`
	DepthCm        float64 `json:"depthCm,omitempty" yaml:"depth_cm"` // rectangular only; 0 means square footprint
	CoolingEffectC float64 `json:"coolingEffectC" yaml:"cooling_effect_c"`
	InsulationMM   float64 `json:"insulationMm,omitempty" yaml:"insulation_mm"`
}

func (e Enclosure) validate() error {
	if !finite(e.WidthCm, e.HeightCm, e.DepthCm, e.CoolingEffectC, e.InsulationMM) {
		return fmt.Errorf("%w: enclosure %q has a non-finite value", ErrInvalidConfiguration, e.Label)
	}
	if e.WidthCm <= 0 || e.HeightCm <= 0 || e.DepthCm < 0 {
		return fmt.Errorf("%w: enclosure %q dimensions must be positive", ErrInvalidConfiguration, e.Label)
	}
	if e.CoolingEffectC < 0 || e.CoolingEffectC > MaxCoolingEffectC {
		return fmt.Errorf("%w: enclosure %q cooling effect %.2f outside [0, %.0f]", ErrInvalidConfiguration, e.Label, e.CoolingEffectC, MaxCoolingEffectC)
	}
	if e.InsulationMM < 0 || e.InsulationMM > MaxInsulationMM {
		return fmt.Errorf("%w: enclosure %q insulation %.2f outside [0, %.0f] mm", ErrInvalidConfiguration, e.Label, e.InsulationMM, MaxInsulationMM)
	}
	return nil
}

// Hive is the caller-owned configuration of one hive: its compartments in
// display order plus the colony fill and the wall build-up shared by all of
// them.
type Hive struct {
	Shape              Shape       `json:"shape" yaml:"shape"`
	ColonyPct          float64     `json:"colonyPct" yaml:"colony_pct"`
	WallThicknessCm    float64     `json:"wallThicknessCm" yaml:"wall_thickness_cm"`
	InsulationLayersMM []float64   `json:"insulationLayersMm,omitempty" yaml:"insulation_layers_mm"`
	Enclosures         []Enclosure `json:"enclosures" yaml:"enclosures"`
}

// Validate checks the hive and each of its enclosures.
func (h Hive) Validate() error {
	switch h.Shape {
	case ShapeHexagonal, ShapeRectangular:
	default:
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidConfiguration, h.Shape)
	}
	if !finite(h.ColonyPct, h.WallThicknessCm) || !finite(h.InsulationLayersMM...) {
		return fmt.Errorf("%w: hive has a non-finite value", ErrInvalidConfiguration)
	}
	if h.ColonyPct < 0 || h.ColonyPct > 100 {
		return fmt.Errorf("%w: colony percentage %.2f outside [0, 100]", ErrInvalidConfiguration, h.ColonyPct)
	}
	if h.WallThicknessCm <= 0 {
		return fmt.Errorf("%w: wall thickness must be positive", ErrInvalidConfiguration)
	}
	for _, mm := range h.InsulationLayersMM {
		if mm < 0 {
			return fmt.Errorf("%w: insulation layer thickness must not be negative", ErrInvalidConfiguration)
		}
	}
	if len(h.Enclosures) == 0 {
		return fmt.Errorf("%w: hive has no enclosures", ErrInvalidConfiguration)
	}
	for _, e := range h.Enclosures {
		if err := e.validate(); err != nil {
			return err
		}
	}
	return nil
}

// finite reports whether every value is neither NaN nor infinite.
func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// EnvironmentSample is the ambient state for one solve.
type EnvironmentSample struct {
	AmbientC      float64 `json:"ambientC"`
	AltitudeM     float64 `json:"altitudeM"`
	Daytime       bool    `json:"daytime"`
	RainIntensity float64 `json:"rainIntensity"` // 0-1
}

// SolveResult is the output of Model.Solve.
type SolveResult struct {
	ColonySize        float64   `json:"colonySize"`
	MetabolicHeatW    float64   `json:"metabolicHeatW"`
	AdjustedAmbientC  float64   `json:"adjustedAmbientC"`
	HiveTempC         float64   `json:"hiveTempC"`
	CompartmentTempsC []float64 `json:"compartmentTempsC"`
	SurfaceAreaM2     float64   `json:"surfaceAreaM2"`
	VolumeM3          float64   `json:"volumeM3"`
	ResistanceM2KW    float64   `json:"resistanceM2KW"`
	HeatTransferW     float64   `json:"heatTransferW"`
	OxygenFactor      float64   `json:"oxygenFactor"`
	WithinIdealBand   bool      `json:"withinIdealBand"`
}

// MetabolicHeatKW returns the metabolic heat in kilowatts.
func (r SolveResult) MetabolicHeatKW() float64 { return r.MetabolicHeatW / 1000 }

// HeatTransferKW returns the envelope heat transfer in kilowatts.
func (r SolveResult) HeatTransferKW() float64 { return r.HeatTransferW / 1000 }
