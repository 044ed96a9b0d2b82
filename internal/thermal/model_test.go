package thermal

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func stinglessProfile() ColonyProfile {
	return ColonyProfile{
		Name:              "test-melipona",
		MetabolicRateW:    0.002,
		NominalColonySize: 3000,
		IdealMinC:         30,
		IdealMaxC:         33,
		WallConductivity:  0.2,
		MaxCoolingC:       4,
		Activity:          ActivityDiurnal,
	}
}

func twinBoxes() Hive {
	box := Enclosure{WidthCm: 23, HeightCm: 6, DepthCm: 23}
	return Hive{
		Shape:           ShapeRectangular,
		ColonyPct:       50,
		WallThicknessCm: 1,
		Enclosures:      []Enclosure{box, box},
	}
}

func TestSolveTemperateDay(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := m.Solve(stinglessProfile(), twinBoxes(), EnvironmentSample{AmbientC: 28, AltitudeM: 0, Daytime: true})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if res.AdjustedAmbientC != 29 {
		t.Fatalf("adjusted ambient = %v, want 29", res.AdjustedAmbientC)
	}
	if res.HiveTempC <= res.AdjustedAmbientC || res.HiveTempC >= 33 {
		t.Fatalf("hive %v not strictly between %v and 33", res.HiveTempC, res.AdjustedAmbientC)
	}
	if len(res.CompartmentTempsC) != 2 || res.CompartmentTempsC[0] != res.CompartmentTempsC[1] {
		t.Fatalf("compartments = %v, want two equal values", res.CompartmentTempsC)
	}
	for _, c := range res.CompartmentTempsC {
		if c < 30 || c > 33 {
			t.Fatalf("compartment %v outside ideal band", c)
		}
	}
	if res.ColonySize != 1500 || !approx(res.MetabolicHeatW, 3, 1e-9) || res.OxygenFactor != 1 {
		t.Fatalf("unexpected colony terms: %+v", res)
	}
	if !approx(res.SurfaceAreaM2, 0.322, 1e-9) || !approx(res.ResistanceM2KW, 0.09, 1e-12) {
		t.Fatalf("unexpected envelope: area=%v R=%v", res.SurfaceAreaM2, res.ResistanceM2KW)
	}

	// Fixed point: loss at the returned temperature matches metabolic heat.
	slack := res.SurfaceAreaM2 * DefaultToleranceK / res.ResistanceM2KW
	if d := res.HeatTransferW - res.MetabolicHeatW; d > slack || d < -slack {
		t.Fatalf("heat transfer %v vs metabolic %v (slack %v)", res.HeatTransferW, res.MetabolicHeatW, slack)
	}
}

func TestSolveHotAmbient(t *testing.T) {
	m, _ := New()
	p := stinglessProfile()
	res, err := m.Solve(p, twinBoxes(), EnvironmentSample{AmbientC: 45, Daytime: true})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	floor := res.AdjustedAmbientC - p.MaxCoolingC - 1e-9
	if res.HiveTempC <= floor || res.HiveTempC > res.AdjustedAmbientC {
		t.Fatalf("hive %v outside (%v, %v]", res.HiveTempC, floor, res.AdjustedAmbientC)
	}
	if res.WithinIdealBand {
		t.Fatalf("hot hive reported within ideal band")
	}
	for _, c := range res.CompartmentTempsC {
		if c != p.IdealMaxC {
			t.Fatalf("compartment %v, want clamped to %v", c, p.IdealMaxC)
		}
	}
}

func TestSolveIsIdempotent(t *testing.T) {
	m, _ := New()
	env := EnvironmentSample{AmbientC: 12, AltitudeM: 1800, RainIntensity: 0.3}
	a, err := m.Solve(stinglessProfile(), twinBoxes(), env)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	b, _ := m.Solve(stinglessProfile(), twinBoxes(), env)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ:\n%+v\n%+v", a, b)
	}
}

func TestSolveClampsToSafetyBounds(t *testing.T) {
	m, _ := New(WithClamp(ClampBasic))
	res, err := m.Solve(stinglessProfile(), twinBoxes(), EnvironmentSample{AmbientC: -10})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.HiveTempC != SafetyBounds.MinC {
		t.Fatalf("hive = %v, want %v", res.HiveTempC, SafetyBounds.MinC)
	}
	for _, c := range res.CompartmentTempsC {
		if c < SafetyBounds.MinC || c > SafetyBounds.MaxC {
			t.Fatalf("compartment %v outside safety bounds", c)
		}
	}
}

func TestSolveRejectsInvalidConfiguration(t *testing.T) {
	m, _ := New()
	env := EnvironmentSample{AmbientC: 20, Daytime: true}

	badProfile := stinglessProfile()
	badProfile.IdealMinC = 34

	empty := twinBoxes()
	empty.Enclosures = nil

	badPct := twinBoxes()
	badPct.ColonyPct = 120

	badBox := twinBoxes()
	badBox.Enclosures = []Enclosure{{WidthCm: -1, HeightCm: 6}}

	badShape := twinBoxes()
	badShape.Shape = "octagonal"

	nanPct := twinBoxes()
	nanPct.ColonyPct = math.NaN()

	nanWidth := twinBoxes()
	nanWidth.Enclosures = []Enclosure{{WidthCm: math.NaN(), HeightCm: 6}}

	infLayer := twinBoxes()
	infLayer.InsulationLayersMM = []float64{math.Inf(1)}

	nanRate := stinglessProfile()
	nanRate.MetabolicRateW = math.NaN()

	cases := map[string]struct {
		p ColonyProfile
		h Hive
		e EnvironmentSample
	}{
		"ideal band":     {badProfile, twinBoxes(), env},
		"no boxes":       {stinglessProfile(), empty, env},
		"percentage":     {stinglessProfile(), badPct, env},
		"dimension":      {stinglessProfile(), badBox, env},
		"shape":          {stinglessProfile(), badShape, env},
		"nan percentage": {stinglessProfile(), nanPct, env},
		"nan width":      {stinglessProfile(), nanWidth, env},
		"inf wrap":       {stinglessProfile(), infLayer, env},
		"nan rate":       {nanRate, twinBoxes(), env},
		"nan ambient":    {stinglessProfile(), twinBoxes(), EnvironmentSample{AmbientC: math.NaN()}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Solve(c.p, c.h, c.e); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestFromVariant(t *testing.T) {
	env := EnvironmentSample{AmbientC: 18, AltitudeM: 2200, Daytime: true}
	var results []SolveResult
	for _, v := range []Variant{
		{},
		{Solver: "closed-form"},
		{Oxygen: "barometric", OxygenFloor: 0.6},
		{LapseRate: true, Clamp: "basic"},
	} {
		m, err := FromVariant(v)
		if err != nil {
			t.Fatalf("FromVariant(%+v): %v", v, err)
		}
		res, err := m.Solve(stinglessProfile(), twinBoxes(), env)
		if err != nil {
			t.Fatalf("Solve(%+v): %v", v, err)
		}
		results = append(results, res)
	}

	if !approx(results[0].HiveTempC, results[1].HiveTempC, DefaultToleranceK) {
		t.Fatalf("solvers disagree: %v vs %v", results[0].HiveTempC, results[1].HiveTempC)
	}
	if results[2].OxygenFactor == results[0].OxygenFactor {
		t.Fatalf("barometric variant did not change oxygen factor")
	}
	if results[3].AdjustedAmbientC >= results[0].AdjustedAmbientC {
		t.Fatalf("lapse rate variant did not cool ambient")
	}

	for _, v := range []Variant{{Oxygen: "cubic"}, {Solver: "newton"}, {Clamp: "loose"}, {OxygenFloor: 1.5}} {
		if _, err := FromVariant(v); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("FromVariant(%+v): expected ErrInvalidConfiguration, got %v", v, err)
		}
	}
}
