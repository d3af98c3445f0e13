package scan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Polsky40/efemerides/internal/angle"
	"github.com/Polsky40/efemerides/internal/ephemeris"
	"github.com/Polsky40/efemerides/internal/natal"
)

// TargetKind discriminates the target variants.
type TargetKind int

const (
	// FixedDegrees is a constant ecliptic longitude.
	FixedDegrees TargetKind = iota
	// NatalPoint is a named point looked up in the request's natal chart.
	NatalPoint
	// DynamicBody is a moving body whose longitude is re-evaluated at every
	// sampled instant.
	DynamicBody
)

// Target is a tagged variant: exactly one resolution mode applies.
type Target struct {
	Kind    TargetKind
	Degrees float64 // FixedDegrees
	Name    string  // NatalPoint or DynamicBody
}

// FixedTarget builds a fixed-longitude target.
func FixedTarget(deg float64) Target {
	return Target{Kind: FixedDegrees, Degrees: angle.Wrap360(deg)}
}

// NamedTarget builds a string target. Whether it resolves against the natal
// chart or as a dynamic body is decided at resolve time: chart points take
// precedence, then known body names.
func NamedTarget(name string) Target {
	return Target{Kind: NatalPoint, Name: name}
}

// ParseTarget interprets a request target value: numbers (and numeric
// strings) become fixed longitudes, everything else a named target.
func ParseTarget(v any) (Target, error) {
	switch t := v.(type) {
	case float64:
		return FixedTarget(t), nil
	case int:
		return FixedTarget(float64(t)), nil
	case string:
		if deg, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return FixedTarget(deg), nil
		}
		return NamedTarget(t), nil
	default:
		return Target{}, fmt.Errorf("target must be a number or a string, got %T", v)
	}
}

// Label returns the target text echoed in events.
func (t Target) Label() string {
	if t.Kind == FixedDegrees {
		return strconv.FormatFloat(t.Degrees, 'g', -1, 64)
	}
	return strings.ToUpper(strings.TrimSpace(t.Name))
}

// longitudeFunc returns a target's ecliptic longitude at a Julian Day.
type longitudeFunc func(jd float64) (float64, error)

// resolve turns a target into a longitude-at-instant closure, consulting
// the natal chart first and falling back to a dynamic body for names the
// chart does not contain. ok is false when the target cannot be resolved;
// the caller skips that combination rather than failing the scan.
func (t Target) resolve(provider ephemeris.Provider, chart natal.Chart) (longitudeFunc, bool) {
	switch t.Kind {
	case FixedDegrees:
		deg := t.Degrees
		return func(float64) (float64, error) { return deg, nil }, true
	default:
		if lon, ok := chart.Lookup(t.Name); ok {
			return func(float64) (float64, error) { return lon, nil }, true
		}
		if body, ok := ephemeris.BodyForName(t.Name); ok {
			return func(jd float64) (float64, error) {
				pos, err := provider.PositionAt(body, jd)
				if err != nil {
					return 0, err
				}
				return pos.Longitude, nil
			}, true
		}
		return nil, false
	}
}
