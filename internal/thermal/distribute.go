package thermal

// DefaultInsulationBonusCPerMM is the warming credited per millimetre of a
// compartment's own insulating layer.
const DefaultInsulationBonusCPerMM = 0.05

// Distributor maps the hive temperature onto each compartment.
type Distributor struct {
	InsulationBonusCPerMM float64
}

// Distribute returns one temperature per enclosure, in input order, each
// clamped to band.
func (d Distributor) Distribute(hiveC float64, enclosures []Enclosure, band Bounds) []float64 {
	out := make([]float64, len(enclosures))
	for i, e := range enclosures {
		t := hiveC - e.CoolingEffectC + d.InsulationBonusCPerMM*e.InsulationMM
		out[i] = band.clamp(t)
	}
	return out
}
