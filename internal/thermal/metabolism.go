package thermal

import "fmt"

// ColonySize returns the absolute number of individuals for a fill
// percentage.
func ColonySize(p ColonyProfile, pct float64) float64 {
	return float64(p.NominalColonySize) * pct / 100
}

// MetabolicHeat returns the colony's heat output in watts.
func MetabolicHeat(p ColonyProfile, pct, oxygen float64) (float64, error) {
	if pct < 0 || pct > 100 {
		return 0, fmt.Errorf("%w: colony percentage %.2f outside [0, 100]", ErrInvalidConfiguration, pct)
	}
	return ColonySize(p, pct) * p.MetabolicRateW * oxygen * p.multiplier(), nil
}
