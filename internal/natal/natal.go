// Package natal holds caller-supplied natal charts: fixed longitudes for
// named chart points, used to resolve string scan targets.
package natal

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Polsky40/efemerides/internal/angle"
)

// Chart maps uppercase point names (e.g. "ASC", "MC", "SUN") to ecliptic
// longitudes in degrees.
type Chart map[string]float64

// Normalize builds a Chart from raw input, uppercasing keys and wrapping
// longitudes into [0, 360). A nil input yields an empty chart.
func Normalize(raw map[string]float64) Chart {
	c := make(Chart, len(raw))
	for name, lon := range raw {
		c[strings.ToUpper(strings.TrimSpace(name))] = angle.Wrap360(lon)
	}
	return c
}

// Lookup resolves a point name case-insensitively.
func (c Chart) Lookup(name string) (float64, bool) {
	lon, ok := c[strings.ToUpper(strings.TrimSpace(name))]
	return lon, ok
}

// Load reads a chart from a YAML file of name: degrees pairs.
func Load(path string) (Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read natal chart: %w", err)
	}
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse natal chart %s: %w", path, err)
	}
	return Normalize(raw), nil
}
