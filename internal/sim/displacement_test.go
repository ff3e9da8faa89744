package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudresh69/SIH2025/internal/noise"
)

func newTestDisplacement(seed int64) *DisplacementSim {
	return NewDisplacementSim(noise.New(seed), nil, &DebugCounters{})
}

func TestDisplacementTrigger_InvalidParams(t *testing.T) {
	d := newTestDisplacement(1)

	require.ErrorIs(t, d.Trigger(DisplacementParams{TotalDisplacementMM: 1, DurationTicks: 0}), ErrInvalidDuration)
	require.ErrorIs(t, d.Trigger(DisplacementParams{TotalDisplacementMM: -0.5, DurationTicks: 100}), ErrInvalidEventParams)
	assert.False(t, d.EventActive())
}

func TestDisplacementOffsets_MonotoneNonDecreasing(t *testing.T) {
	d := newTestDisplacement(2)

	require.NoError(t, d.Trigger(DisplacementParams{TotalDisplacementMM: 3, DurationTicks: 400}))

	prevCrack, prevTilt, prevExt := d.Offsets()
	for i := 0; i < 600; i++ {
		d.AdvanceAndRead()
		crack, tilt, ext := d.Offsets()
		require.GreaterOrEqual(t, crack, prevCrack)
		require.GreaterOrEqual(t, tilt, prevTilt)
		require.GreaterOrEqual(t, ext, prevExt)
		prevCrack, prevTilt, prevExt = crack, tilt, ext
	}
}

func TestDisplacementEvent_TotalMovementMatchesRequest(t *testing.T) {
	d := newTestDisplacement(3)

	crack0, tilt0, ext0 := d.Offsets()

	const totalMM = 5.0
	require.NoError(t, d.Trigger(DisplacementParams{TotalDisplacementMM: totalMM, DurationTicks: 1000}))
	for i := 0; i < 1000; i++ {
		d.AdvanceAndRead()
	}
	require.False(t, d.EventActive())

	crack, tilt, ext := d.Offsets()
	// tanh saturates just short of 1, so allow a fraction of a percent.
	assert.InDelta(t, totalMM*crackSensitivity, crack-crack0, totalMM*0.01)
	assert.InDelta(t, totalMM*tiltSensitivity, tilt-tilt0, totalMM*0.01)
	assert.InDelta(t, totalMM*extSensitivity, ext-ext0, totalMM*0.01)
}

func TestDisplacementEvent_SCurveAcceleratesMidway(t *testing.T) {
	d := newTestDisplacement(4)

	require.NoError(t, d.Trigger(DisplacementParams{TotalDisplacementMM: 10, DurationTicks: 1000}))

	movementOver := func(ticks int) float64 {
		_, _, before := d.Offsets()
		for i := 0; i < ticks; i++ {
			d.AdvanceAndRead()
		}
		_, _, after := d.Offsets()
		return after - before
	}

	early := movementOver(100)
	movementOver(300) // advance to the steep middle section
	mid := movementOver(100)
	assert.Greater(t, mid, early*3, "creep should accelerate toward the middle of the event")
}

func TestDisplacementEvent_OffsetsPersistAfterEnd(t *testing.T) {
	d := newTestDisplacement(5)

	require.NoError(t, d.Trigger(DisplacementParams{TotalDisplacementMM: 2, DurationTicks: 200}))
	for i := 0; i < 200; i++ {
		d.AdvanceAndRead()
	}
	require.False(t, d.EventActive())

	crack, tilt, ext := d.Offsets()
	for i := 0; i < 1000; i++ {
		_, label := d.AdvanceAndRead()
		assert.Equal(t, 0, label)
	}
	crack2, tilt2, ext2 := d.Offsets()
	assert.Equal(t, crack, crack2, "permanent offsets must not relax")
	assert.Equal(t, tilt, tilt2)
	assert.Equal(t, ext, ext2)
}

func TestDisplacementReadings_FlooredAtZero(t *testing.T) {
	d := newTestDisplacement(6)

	// Initial offsets are small; drift plus noise could otherwise dip below
	// zero. Readings stay non-negative regardless.
	for i := 0; i < 5000; i++ {
		r, _ := d.AdvanceAndRead()
		require.GreaterOrEqual(t, r.CrackSensor, 0.0)
		require.GreaterOrEqual(t, r.Inclinometer, 0.0)
		require.GreaterOrEqual(t, r.Extensometer, 0.0)
	}
}

func TestDisplacementClear_Idempotent(t *testing.T) {
	d := newTestDisplacement(7)

	require.NoError(t, d.Trigger(DisplacementParams{TotalDisplacementMM: 1, DurationTicks: 100}))
	d.Clear()
	assert.False(t, d.EventActive())
	d.Clear()
	assert.False(t, d.EventActive())
}
