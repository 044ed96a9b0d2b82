package thermal

import "errors"

var (
	// ErrInvalidConfiguration is returned when a profile, hive or enclosure
	// fails validation. It is raised before any physics is evaluated.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNumericDegenerate is returned when the solver would divide by a zero
	// surface area or a zero thermal resistance.
	ErrNumericDegenerate = errors.New("numeric degenerate")
)
