package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Polsky40/efemerides/internal/ephemeris"
	"github.com/Polsky40/efemerides/internal/natal"
)

func TestParseTarget(t *testing.T) {
	tgt, err := ParseTarget(123.5)
	require.NoError(t, err)
	assert.Equal(t, FixedDegrees, tgt.Kind)
	assert.InDelta(t, 123.5, tgt.Degrees, 1e-12)

	tgt, err = ParseTarget(400)
	require.NoError(t, err)
	assert.Equal(t, FixedDegrees, tgt.Kind)
	assert.InDelta(t, 40, tgt.Degrees, 1e-12) // wrapped

	tgt, err = ParseTarget(" 90 ")
	require.NoError(t, err)
	assert.Equal(t, FixedDegrees, tgt.Kind)
	assert.InDelta(t, 90, tgt.Degrees, 1e-12)

	tgt, err = ParseTarget("asc")
	require.NoError(t, err)
	assert.Equal(t, NatalPoint, tgt.Kind)
	assert.Equal(t, "ASC", tgt.Label())

	_, err = ParseTarget([]string{"nope"})
	assert.Error(t, err)
}

func TestTargetLabel(t *testing.T) {
	assert.Equal(t, "90", FixedTarget(90).Label())
	assert.Equal(t, "123.5", FixedTarget(123.5).Label())
	assert.Equal(t, "VENUS", NamedTarget(" venus ").Label())
}

func TestTargetResolvePrecedence(t *testing.T) {
	provider := &linearProvider{motions: map[ephemeris.Body]linearMotion{
		ephemeris.Venus: {offset: 90, rate: 0},
	}}
	chart := natal.Normalize(map[string]float64{"venus": 10})

	// Chart point shadows the body.
	at, ok := NamedTarget("venus").resolve(provider, chart)
	require.True(t, ok)
	lon, err := at(testEpoch)
	require.NoError(t, err)
	assert.InDelta(t, 10, lon, 1e-12)

	// Without the chart entry the name resolves as a dynamic body.
	at, ok = NamedTarget("venus").resolve(provider, nil)
	require.True(t, ok)
	lon, err = at(testEpoch)
	require.NoError(t, err)
	assert.InDelta(t, 90, lon, 1e-12)

	// Neither chart point nor body.
	_, ok = NamedTarget("asc").resolve(provider, nil)
	assert.False(t, ok)

	// Fixed targets ignore both.
	at, ok = FixedTarget(45).resolve(nil, nil)
	require.True(t, ok)
	lon, err = at(testEpoch)
	require.NoError(t, err)
	assert.InDelta(t, 45, lon, 1e-12)
}

func TestWindowSamples(t *testing.T) {
	assert.Equal(t, 121, Window{Start: 0, End: 120, Step: 1}.Samples())
	assert.Equal(t, 1, Window{Start: 5, End: 5, Step: 1}.Samples())
	assert.Equal(t, 0, Window{Start: 1, End: 0, Step: 1}.Samples())
}
