package thermal

import "fmt"

const (
	DefaultAirFilmResistance      = 0.04 // m²·K/W, outside surface film
	DefaultInsulationConductivity = 0.04 // W/(m·K), wool/cork class wraps
)

// Resistance aggregates series resistances into one scalar applied to the
// whole envelope.
type Resistance struct {
	AirFilm                float64
	InsulationConductivity float64
}

// NewResistance returns the default resistance model.
func NewResistance() Resistance {
	return Resistance{
		AirFilm:                DefaultAirFilmResistance,
		InsulationConductivity: DefaultInsulationConductivity,
	}
}

// Total returns the wall, wrap and air-film resistance in m²·K/W.
func (r Resistance) Total(wallThicknessCm, wallConductivity float64, layersMM []float64) (float64, error) {
	if wallConductivity <= 0 {
		return 0, fmt.Errorf("%w: wall conductivity must be positive", ErrInvalidConfiguration)
	}
	total := (wallThicknessCm / cmPerM) / wallConductivity
	if r.InsulationConductivity > 0 {
		for _, mm := range layersMM {
			total += (mm / 1000) / r.InsulationConductivity
		}
	}
	return total + r.AirFilm, nil
}
