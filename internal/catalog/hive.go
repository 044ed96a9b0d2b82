package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/hive-thermal/internal/thermal"
	"github.com/i474232898/hive-thermal/internal/weather"
)

// DefaultHive is a four-box hexagonal hive with ventilation in the bottom and
// top boxes.
func DefaultHive() thermal.Hive {
	boxes := make([]thermal.Enclosure, 0, 4)
	for i, cooling := range []float64{2, 0, 0, 8} {
		boxes = append(boxes, thermal.Enclosure{
			Label:          fmt.Sprintf("box-%d", i+1),
			WidthCm:        22,
			DepthCm:        26,
			HeightCm:       9,
			CoolingEffectC: cooling,
		})
	}
	return thermal.Hive{
		Shape:           thermal.ShapeHexagonal,
		ColonyPct:       50,
		WallThicknessCm: 1.0,
		Enclosures:      boxes,
	}
}

// LoadHive reads and validates a hive layout file.
func LoadHive(path string) (thermal.Hive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return thermal.Hive{}, fmt.Errorf("read hive file: %w", err)
	}
	return ParseHive(data)
}

// ParseHive decodes a YAML hive layout.
func ParseHive(data []byte) (thermal.Hive, error) {
	var h thermal.Hive
	if err := yaml.Unmarshal(data, &h); err != nil {
		return thermal.Hive{}, fmt.Errorf("decode hive: %w", err)
	}
	if err := h.Validate(); err != nil {
		return thermal.Hive{}, err
	}
	return h, nil
}

// Apiary is a monitored hive at a fixed place.
type Apiary struct {
	Name     string           `yaml:"name"`
	Species  string           `yaml:"species"`
	Location weather.Location `yaml:"location"`
	HiveFile string           `yaml:"hive_file"`
	Hive     *thermal.Hive    `yaml:"hive"`
}

type apiaryDocument struct {
	Apiaries []Apiary `yaml:"apiaries"`
}

// LoadApiaries reads the monitor's apiary list. Each apiary must name a known
// species and either embed a hive or point at a hive file; when it does
// neither it gets DefaultHive.
func LoadApiaries(path string, species *Catalog) ([]Apiary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read apiaries file: %w", err)
	}
	var doc apiaryDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode apiaries: %w", err)
	}

	for i := range doc.Apiaries {
		a := &doc.Apiaries[i]
		if a.Name == "" {
			return nil, fmt.Errorf("apiary %d: %w: name is required", i, thermal.ErrInvalidConfiguration)
		}
		if _, err := species.Get(a.Species); err != nil {
			return nil, fmt.Errorf("apiary %s: %w", a.Name, err)
		}
		switch {
		case a.Hive != nil:
			if err := a.Hive.Validate(); err != nil {
				return nil, fmt.Errorf("apiary %s: %w", a.Name, err)
			}
		case a.HiveFile != "":
			h, err := LoadHive(a.HiveFile)
			if err != nil {
				return nil, fmt.Errorf("apiary %s: %w", a.Name, err)
			}
			a.Hive = &h
		default:
			h := DefaultHive()
			a.Hive = &h
		}
	}
	return doc.Apiaries, nil
}
