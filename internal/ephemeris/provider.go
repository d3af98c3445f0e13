// Package ephemeris computes geocentric ecliptic longitudes and their rates
// of change for the classical bodies, and converts between calendar instants
// and Julian Day numbers.
package ephemeris

// Position is a body's geocentric ecliptic state at one instant.
type Position struct {
	Longitude float64 // degrees, [0, 360)
	Speed     float64 // degrees/day; negative means apparent retrograde
}

// Provider supplies body positions at arbitrary instants.
//
// Implementations must be pure functions of (body, jd). The built-in
// Analytic provider is additionally safe for concurrent use, which the scan
// fan-out relies on; alternative providers that are not reentrant must be
// wrapped by the caller.
type Provider interface {
	// PositionAt returns the geocentric ecliptic longitude and speed of a
	// body at the given Julian Day.
	PositionAt(body Body, jd float64) (Position, error)
}
