// Package catalog loads colony profiles and hive layouts from YAML.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/hive-thermal/internal/thermal"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownSpecies is returned when a profile name is not in the catalog.
var ErrUnknownSpecies = errors.New("unknown species")

type document struct {
	Species []thermal.ColonyProfile `yaml:"species"`
}

// Catalog is a validated, read-only set of colony profiles keyed by name.
type Catalog struct {
	profiles map[string]thermal.ColonyProfile
}

// Load returns the built-in profiles, overlaid with those in path when path
// is not empty. Profiles in the file replace built-ins of the same name.
func Load(path string) (*Catalog, error) {
	c := &Catalog{profiles: make(map[string]thermal.ColonyProfile)}
	if err := c.merge(defaultsYAML); err != nil {
		return nil, fmt.Errorf("built-in species: %w", err)
	}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species file: %w", err)
	}
	if err := c.merge(data); err != nil {
		return nil, fmt.Errorf("species file %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) merge(data []byte) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, p := range doc.Species {
		if p.Name == "" {
			return fmt.Errorf("%w: species without a name", thermal.ErrInvalidConfiguration)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("species %s: %w", p.Name, err)
		}
		c.profiles[p.Name] = p
	}
	return nil
}

// Get returns the named profile.
func (c *Catalog) Get(name string) (thermal.ColonyProfile, error) {
	p, ok := c.profiles[name]
	if !ok {
		return thermal.ColonyProfile{}, fmt.Errorf("%w: %s", ErrUnknownSpecies, name)
	}
	return p, nil
}

// List returns all profiles sorted by name.
func (c *Catalog) List() []thermal.ColonyProfile {
	out := make([]thermal.ColonyProfile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
