package scan

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Polsky40/efemerides/internal/angle"
)

// orbResidual is the residual the precision strategy uses for a linear body
// sweeping 1 degree per day from testEpoch against a fixed target.
func orbResidual(target, orb float64) residualFunc {
	return func(jd float64) (float64, error) {
		lon := angle.Wrap360(jd - testEpoch)
		return math.Abs(angle.SignedDefect(lon, target, 0)) - orb, nil
	}
}

func TestCoarseScanBrackets(t *testing.T) {
	r := orbResidual(90, 0.05)
	w := Window{Start: testEpoch, End: testEpoch + 120, Step: 1}

	brackets, err := coarseScan(r, w)
	require.NoError(t, err)
	require.Len(t, brackets, 2)

	// Orb entry between day 89 and 90, exit between 90 and 91.
	assert.InDelta(t, testEpoch+89, brackets[0].lo, 1e-9)
	assert.InDelta(t, testEpoch+90, brackets[0].hi, 1e-9)
	assert.Less(t, brackets[0].rHi, 0.0)

	assert.InDelta(t, testEpoch+90, brackets[1].lo, 1e-9)
	assert.InDelta(t, testEpoch+91, brackets[1].hi, 1e-9)
	assert.Greater(t, brackets[1].rHi, 0.0)
}

// A residual that touches zero exactly at a sample is not a sign change:
// the product test is strict.
func TestCoarseScanZeroTouchIsNotACrossing(t *testing.T) {
	r := func(jd float64) (float64, error) {
		d := jd - testEpoch - 90
		return d * d, nil // >= 0 everywhere, zero at day 90
	}

	brackets, err := coarseScan(r, Window{Start: testEpoch + 89, End: testEpoch + 91, Step: 1})
	require.NoError(t, err)
	assert.Empty(t, brackets)
}

func TestCoarseScanSingleSample(t *testing.T) {
	brackets, err := coarseScan(orbResidual(0, 0.05), Window{Start: testEpoch, End: testEpoch, Step: 1})
	require.NoError(t, err)
	assert.Empty(t, brackets)
}

func TestCoarseScanPropagatesError(t *testing.T) {
	sentinel := errors.New("ephemeris unavailable")
	r := func(float64) (float64, error) { return 0, sentinel }

	_, err := coarseScan(r, Window{Start: testEpoch, End: testEpoch + 2, Step: 1})
	assert.ErrorIs(t, err, sentinel)
}

// Bisection narrows a one-day bracket to within step/2^30 of the true root.
func TestBisectErrorBound(t *testing.T) {
	r := orbResidual(90, 0.05)

	tests := []struct {
		name string
		b    bracket
		root float64
	}{
		{"entry", bracket{lo: testEpoch + 89, hi: testEpoch + 90, rHi: -0.05}, testEpoch + 89.95},
		{"exit", bracket{lo: testEpoch + 90, hi: testEpoch + 91, rHi: 0.95}, testEpoch + 90.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jd, err := bisect(r, tt.b)
			require.NoError(t, err)
			bound := 1.0/float64(int64(1)<<bisectIterations) + 1e-9
			assert.InDelta(t, tt.root, jd, bound)
		})
	}
}

func TestBisectPropagatesError(t *testing.T) {
	sentinel := errors.New("ephemeris unavailable")
	r := func(float64) (float64, error) { return 0, sentinel }

	_, err := bisect(r, bracket{lo: testEpoch, hi: testEpoch + 1, rHi: 1})
	assert.ErrorIs(t, err, sentinel)
}
