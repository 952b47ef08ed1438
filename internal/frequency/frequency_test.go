package frequency_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/frequency"
	"github.com/san-kum/sdofsim/internal/grid"
	"github.com/san-kum/sdofsim/internal/physics"
)

func referenceSystem(t *testing.T) physics.System {
	t.Helper()
	sys, err := physics.FromDampingRatio(1, 1000, 0.05)
	require.NoError(t, err)
	return sys
}

func TestFRF_StaticCompliance(t *testing.T) {
	for _, zeta := range []float64{0, 0.05, 1, 3} {
		sys, err := physics.FromDampingRatio(2.5, 4000, zeta)
		require.NoError(t, err)

		res, err := frequency.FRF(sys, []float64{0, 1, 2}, frequency.Hz)
		require.NoError(t, err)

		assert.InDelta(t, 1/sys.Stiffness, res.Magnitude[0].Y, 1e-15, "zeta=%g", zeta)
		assert.InDelta(t, 0.0, res.MagnitudeDB[0].Y, 1e-12, "zeta=%g", zeta)
		assert.Equal(t, 0.0, res.Phase[0].Y)
		assert.False(t, math.Signbit(res.Phase[0].Y), "phase at zero frequency should not be -0")
	}
}

func TestFRF_PhaseRange(t *testing.T) {
	sys := referenceSystem(t)
	freqs, err := grid.Spec{Start: 0.1, Stop: 100, Count: 400, Spacing: grid.Logarithmic}.Build()
	require.NoError(t, err)

	res, err := frequency.FRF(sys, freqs, frequency.Hz)
	require.NoError(t, err)

	prev := 1.0
	for _, p := range res.Phase {
		require.GreaterOrEqual(t, p.Y, -180.0)
		require.LessOrEqual(t, p.Y, 0.0)
		require.LessOrEqual(t, p.Y, prev, "displacement phase should lag monotonically")
		prev = p.Y
	}

	m := sys.Modal()
	at, err := frequency.FRF(sys, []float64{m.OmegaN}, frequency.RadPerSec)
	require.NoError(t, err)
	assert.InDelta(t, -90, at.Phase[0].Y, 1e-9)
	assert.InDelta(t, 1/(2*m.Zeta*sys.Stiffness), at.Magnitude[0].Y, 1e-12)
}

func TestFRF_UndampedAboveResonance(t *testing.T) {
	sys, err := physics.NewSystem(1, 100, 0)
	require.NoError(t, err)

	res, err := frequency.FRF(sys, []float64{1, 20}, frequency.RadPerSec)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Phase[0].Y)
	assert.InDelta(t, -180.0, res.Phase[1].Y, 1e-9)
}

func TestFRF_UndampedResonanceSingular(t *testing.T) {
	sys, err := physics.NewSystem(1, 100, 0)
	require.NoError(t, err)

	_, err = frequency.FRF(sys, []float64{5, 10, 15}, frequency.RadPerSec)
	require.ErrorIs(t, err, dynamo.ErrResonanceSingularity)
}

func TestFRF_OutputTypes(t *testing.T) {
	sys := referenceSystem(t)
	w := 20.0

	disp, err := frequency.FRFOf(sys, []float64{w}, frequency.RadPerSec, frequency.Displacement)
	require.NoError(t, err)
	vel, err := frequency.FRFOf(sys, []float64{w}, frequency.RadPerSec, frequency.Velocity)
	require.NoError(t, err)
	acc, err := frequency.FRFOf(sys, []float64{w}, frequency.RadPerSec, frequency.Acceleration)
	require.NoError(t, err)

	assert.InDelta(t, w*disp.Magnitude[0].Y, vel.Magnitude[0].Y, 1e-15)
	assert.InDelta(t, w*w*disp.Magnitude[0].Y, acc.Magnitude[0].Y, 1e-15)
	assert.InDelta(t, disp.Phase[0].Y+90, vel.Phase[0].Y, 1e-9)
}

func TestDynamicStiffness(t *testing.T) {
	sys := referenceSystem(t)
	m := sys.Modal()

	ds, err := frequency.DynamicStiffness(sys, []float64{0, m.OmegaN}, frequency.RadPerSec)
	require.NoError(t, err)
	assert.InDelta(t, sys.Stiffness, ds[0].Y, 1e-12)
	assert.InDelta(t, sys.Damping*m.OmegaN, ds[1].Y, 1e-9)

	res, err := frequency.FRF(sys, []float64{7}, frequency.Hz)
	require.NoError(t, err)
	ds, err = frequency.DynamicStiffness(sys, []float64{7}, frequency.Hz)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ds[0].Y*res.Magnitude[0].Y, 1e-12)
}

func TestTransmissibility_Properties(t *testing.T) {
	for _, zeta := range []float64{0, 0.01, 0.05, 0.2, 0.7, 1, 2.5} {
		tr0, err := frequency.TransmissibilityRatio(zeta, 0)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, tr0, 1e-12, "r=0, zeta=%g", zeta)

		trX, err := frequency.TransmissibilityRatio(zeta, frequency.CrossoverRatio())
		require.NoError(t, err)
		assert.InDelta(t, 1.0, trX, 1e-9, "r=sqrt2, zeta=%g", zeta)
	}
}

func TestTransmissibility_FiniteAtResonance(t *testing.T) {
	tr, err := frequency.TransmissibilityRatio(0.05, 1)
	require.NoError(t, err)
	assert.False(t, math.IsInf(tr, 0) || math.IsNaN(tr))
	assert.InDelta(t, math.Sqrt(101), tr, 1e-9)

	_, err = frequency.TransmissibilityRatio(0, 1)
	require.ErrorIs(t, err, dynamo.ErrResonanceSingularity)
}

func TestTransmissibility_ReferenceSystem(t *testing.T) {
	sys := referenceSystem(t)
	m := sys.Modal()

	tr, err := frequency.Transmissibility(sys, []float64{0, m.FnHz, math.Sqrt2 * m.FnHz}, frequency.Hz)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tr[0].Y, 1e-12)
	assert.InDelta(t, 10.05, tr[1].Y, 1e-3)
	assert.InDelta(t, 1.0, tr[2].Y, 1e-9)
}

func TestTransmissibilityFamily(t *testing.T) {
	ratios, err := grid.Spec{Start: 0, Stop: 3, Count: 31}.Build()
	require.NoError(t, err)

	curves, err := frequency.TransmissibilityFamily([]float64{0.05, 0.1, 0.5}, ratios)
	require.NoError(t, err)
	require.Len(t, curves, 3)

	// Above the crossover more damping transmits more.
	last := len(ratios) - 1
	assert.Less(t, curves[0][last].Y, curves[2][last].Y)
	// Near resonance less damping transmits more.
	assert.Greater(t, curves[0][10].Y, curves[2][10].Y)
}

func TestFRFNormalized(t *testing.T) {
	mag, phase, err := frequency.FRFNormalized(0.1, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mag[0].Y, 1e-12)
	assert.InDelta(t, 5.0, mag[1].Y, 1e-12)
	assert.InDelta(t, -90.0, phase[1].Y, 1e-9)
}

func TestResonanceHelpers(t *testing.T) {
	assert.InDelta(t, 1/(2*0.05*math.Sqrt(1-0.0025)), frequency.ResonanceAmplitude(0.05), 1e-12)
	assert.Equal(t, 1.0, frequency.ResonanceAmplitude(0.8))
	assert.True(t, math.IsInf(frequency.ResonanceAmplitude(0), 1))

	r := frequency.PeakTransmissibilityRatio(0.05)
	assert.Less(t, r, 1.0)
	peak := frequency.PeakTransmissibility(0.05)
	for _, dr := range []float64{-1e-3, 1e-3} {
		near, err := frequency.TransmissibilityRatio(0.05, r+dr)
		require.NoError(t, err)
		assert.LessOrEqual(t, near, peak)
	}
	assert.Equal(t, 1.0, frequency.PeakTransmissibilityRatio(0))
}

func TestFRF_InvalidInput(t *testing.T) {
	sys := referenceSystem(t)

	_, err := frequency.FRF(sys, []float64{2, 1}, frequency.Hz)
	require.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	_, err = frequency.FRF(physics.System{Mass: 0, Stiffness: 1}, []float64{1}, frequency.Hz)
	require.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	_, err = frequency.Transmissibility(sys, []float64{-1, 1}, frequency.Hz)
	require.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}
