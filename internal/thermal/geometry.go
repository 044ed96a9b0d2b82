package thermal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const cmPerM = 100.0

// Geometry computes the envelope of a single enclosure in SI units.
type Geometry interface {
	SurfaceArea(e Enclosure) (float64, error) // m²
	Volume(e Enclosure) (float64, error)      // m³
}

// Hexagonal treats WidthCm as the distance between parallel sides of a
// regular hexagonal prism.
type Hexagonal struct{}

func (Hexagonal) side(e Enclosure) (side, height float64, err error) {
	if e.WidthCm <= 0 || e.HeightCm <= 0 {
		return 0, 0, fmt.Errorf("%w: enclosure %q dimensions must be positive", ErrInvalidConfiguration, e.Label)
	}
	return (e.WidthCm / cmPerM) / math.Sqrt(3), e.HeightCm / cmPerM, nil
}

func faceArea(side float64) float64 {
	return 3 * math.Sqrt(3) / 2 * side * side
}

func (h Hexagonal) SurfaceArea(e Enclosure) (float64, error) {
	s, height, err := h.side(e)
	if err != nil {
		return 0, err
	}
	return 2*faceArea(s) + 6*s*height, nil
}

func (h Hexagonal) Volume(e Enclosure) (float64, error) {
	s, height, err := h.side(e)
	if err != nil {
		return 0, err
	}
	return faceArea(s) * height, nil
}

// Rectangular is a plain box. A zero DepthCm gives a square footprint.
type Rectangular struct{}

func (Rectangular) dims(e Enclosure) (w, d, h float64, err error) {
	depth := e.DepthCm
	if depth == 0 {
		depth = e.WidthCm
	}
	if e.WidthCm <= 0 || e.HeightCm <= 0 || depth <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: enclosure %q dimensions must be positive", ErrInvalidConfiguration, e.Label)
	}
	return e.WidthCm / cmPerM, depth / cmPerM, e.HeightCm / cmPerM, nil
}

func (r Rectangular) SurfaceArea(e Enclosure) (float64, error) {
	w, d, h, err := r.dims(e)
	if err != nil {
		return 0, err
	}
	return 2 * (w*d + w*h + d*h), nil
}

func (r Rectangular) Volume(e Enclosure) (float64, error) {
	w, d, h, err := r.dims(e)
	if err != nil {
		return 0, err
	}
	return w * d * h, nil
}

// GeometryFor returns the geometry strategy for a shape.
func GeometryFor(shape Shape) (Geometry, error) {
	switch shape {
	case ShapeHexagonal:
		return Hexagonal{}, nil
	case ShapeRectangular:
		return Rectangular{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrInvalidConfiguration, shape)
	}
}

// Envelope sums surface area and volume over all enclosures.
func Envelope(g Geometry, enclosures []Enclosure) (areaM2, volumeM3 float64, err error) {
	if len(enclosures) == 0 {
		return 0, 0, fmt.Errorf("%w: hive has no enclosures", ErrInvalidConfiguration)
	}
	areas := make([]float64, len(enclosures))
	volumes := make([]float64, len(enclosures))
	for i, e := range enclosures {
		if areas[i], err = g.SurfaceArea(e); err != nil {
			return 0, 0, err
		}
		if volumes[i], err = g.Volume(e); err != nil {
			return 0, 0, err
		}
	}
	return floats.Sum(areas), floats.Sum(volumes), nil
}
