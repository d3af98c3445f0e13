// Package scan finds the instants at which moving bodies form angular
// aspects with targets. It walks a time window with a coarse fixed step and
// either refines detected sign changes by bisection (precision strategy) or
// records samples whose folded defect lies within the orb (membership
// strategy).
package scan

import (
	"errors"

	"github.com/Polsky40/efemerides/internal/natal"
)

// Strategy selects how crossings are detected.
type Strategy string

const (
	// StrategyMembership samples the window at a fixed step and records an
	// event whenever the folded defect is within the orb. This is the
	// default contract.
	StrategyMembership Strategy = "membership"

	// StrategyPrecision brackets sign changes of the signed-defect residual
	// and refines each bracket by bisection to sub-second precision.
	StrategyPrecision Strategy = "precision"
)

// Default request parameters.
const (
	DefaultOrb        = 0.05 // degrees
	DefaultStepHours  = 1.0  // membership sampling step
	PrecisionStepDays = 0.25 // coarse step for the precision strategy
)

// Window is a half-open scan interval in Julian Days with a fractional-day
// sampling step. Start <= End and Step > 0.
type Window struct {
	Start float64
	End   float64
	Step  float64
}

// Valid reports whether the window satisfies its invariants.
func (w Window) Valid() bool {
	return w.Start <= w.End && w.Step > 0
}

// Samples returns the number of instants a fixed-step walk of the window
// visits, used for request budgeting.
func (w Window) Samples() int {
	if !w.Valid() {
		return 0
	}
	return int((w.End-w.Start)/w.Step) + 1
}

// Request describes one scan over {targets x aspects x bodies}.
type Request struct {
	Bodies   []string    // body names, required non-empty
	Targets  []Target    // required non-empty
	Aspects  []float64   // desired separations in degrees; defaults to [0]
	Orb      float64     // tolerance radius in degrees; defaults to DefaultOrb
	Window   Window
	Natal    natal.Chart // resolves NatalPoint targets; may be nil
	Strategy Strategy    // defaults to StrategyMembership
}

// Event is one exact crossing. Immutable once produced.
type Event struct {
	Body   string  `json:"planet"` // uppercase body name
	Target string  `json:"target"` // echoed target label
	Angle  float64 `json:"angle"`  // aspect angle in degrees
	Orb    float64 `json:"orb"`    // defect at the instant, degrees
	UTC    string  `json:"utc"`    // "YYYY-MM-DDTHH:MMZ", minute resolution
	Motion string  `json:"motion"` // "R" retrograde, "D" direct
	JD     float64 `json:"-"`      // full-precision instant for callers
}

// Skip records a combination that was excluded from the scan rather than
// aborting it: an unknown body name or an unresolvable string target.
type Skip struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the ordered output of one scan.
type Result struct {
	Events  []Event `json:"events"`
	Skipped []Skip  `json:"skipped,omitempty"`
}

var (
	// ErrNoBodies is returned when the request names no bodies.
	ErrNoBodies = errors.New("scan request needs at least one body")

	// ErrNoTargets is returned when the request names no targets.
	ErrNoTargets = errors.New("scan request needs at least one target")

	// ErrBadWindow is returned when the window violates its invariants.
	ErrBadWindow = errors.New("scan window must satisfy start <= end and step > 0")
)
