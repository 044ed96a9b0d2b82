package thermal

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestHexagonalEnvelope(t *testing.T) {
	e := Enclosure{WidthCm: 22, HeightCm: 9}

	// A regular hexagon with flat-to-flat distance d has area (√3/2)·d².
	d := 0.22
	face := math.Sqrt(3) / 2 * d * d
	side := d / math.Sqrt(3)
	wantArea := 2*face + 6*side*0.09
	wantVolume := face * 0.09

	area, err := Hexagonal{}.SurfaceArea(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(area, wantArea, 1e-12) {
		t.Fatalf("area = %v, want %v", area, wantArea)
	}
	vol, err := Hexagonal{}.Volume(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(vol, wantVolume, 1e-12) {
		t.Fatalf("volume = %v, want %v", vol, wantVolume)
	}
}

func TestRectangularEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		e          Enclosure
		wantArea   float64
		wantVolume float64
	}{
		{"explicit depth", Enclosure{WidthCm: 22, DepthCm: 26, HeightCm: 9}, 2 * (0.22*0.26 + 0.22*0.09 + 0.26*0.09), 0.22 * 0.26 * 0.09},
		{"square footprint", Enclosure{WidthCm: 23, HeightCm: 6}, 0.161, 0.23 * 0.23 * 0.06},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, err := Rectangular{}.SurfaceArea(tt.e)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			vol, _ := Rectangular{}.Volume(tt.e)
			if !approx(area, tt.wantArea, 1e-12) || !approx(vol, tt.wantVolume, 1e-12) {
				t.Fatalf("got area=%v volume=%v, want %v %v", area, vol, tt.wantArea, tt.wantVolume)
			}
		})
	}
}

func TestEnvelopeRejectsBadInput(t *testing.T) {
	if _, _, err := Envelope(Rectangular{}, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("empty hive: expected ErrInvalidConfiguration, got %v", err)
	}
	bad := []Enclosure{{WidthCm: 22, HeightCm: 0}}
	for _, g := range []Geometry{Hexagonal{}, Rectangular{}} {
		if _, _, err := Envelope(g, bad); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%T: expected ErrInvalidConfiguration, got %v", g, err)
		}
	}
}

func TestEnvelopeSumsCompartments(t *testing.T) {
	one := Enclosure{WidthCm: 23, HeightCm: 6}
	a1, v1, err := Envelope(Rectangular{}, []Enclosure{one})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a3, v3, _ := Envelope(Rectangular{}, []Enclosure{one, one, one})
	if !approx(a3, 3*a1, 1e-12) || !approx(v3, 3*v1, 1e-12) {
		t.Fatalf("totals not additive: %v %v vs %v %v", a3, v3, a1, v1)
	}
}
