package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudresh69/SIH2025/internal/noise"
)

func newTestSeismic(seed int64) (*SeismicSim, *DebugCounters) {
	counters := &DebugCounters{}
	return NewSeismicSim(noise.New(seed), nil, counters), counters
}

func TestSeismicTrigger_InvalidParams(t *testing.T) {
	s, _ := newTestSeismic(1)

	err := s.Trigger(SeismicParams{Magnitude: 2.0, DurationTicks: 0})
	require.ErrorIs(t, err, ErrInvalidDuration)

	err = s.Trigger(SeismicParams{Magnitude: 2.0, DurationTicks: -10})
	require.ErrorIs(t, err, ErrInvalidDuration)

	err = s.Trigger(SeismicParams{Magnitude: -1.0, DurationTicks: 100})
	require.ErrorIs(t, err, ErrInvalidEventParams)

	// Rejections mutate nothing.
	assert.False(t, s.EventActive())
}

func TestSeismicEvent_CountdownAndClear(t *testing.T) {
	s, _ := newTestSeismic(2)

	const dur = 50
	require.NoError(t, s.Trigger(SeismicParams{Magnitude: 2.0, DurationTicks: dur}))
	require.True(t, s.EventActive())

	for i := 1; i < dur; i++ {
		s.AdvanceAndRead()
		assert.True(t, s.EventActive(), "tick %d", i)
	}
	s.AdvanceAndRead()
	assert.False(t, s.EventActive(), "event should clear when remaining ticks reach 0")
}

func TestSeismicEvent_WaveformDominatesBaseline(t *testing.T) {
	s, _ := newTestSeismic(3)

	require.NoError(t, s.Trigger(SeismicParams{Magnitude: 3.5, DurationTicks: 200}))

	var peak float64
	for i := 0; i < 200; i++ {
		r, _ := s.AdvanceAndRead()
		peak = math.Max(peak, math.Abs(r.Geophone))
	}
	// Baseline noise stays well under 0.5; the S-wave packet does not.
	assert.Greater(t, peak, 1.0)
}

func TestSeismicPrecursor_OverlapsAndDecays(t *testing.T) {
	s, _ := newTestSeismic(4)

	require.NoError(t, s.Trigger(SeismicParams{Magnitude: 3.0, DurationTicks: 400, Precursor: true}))
	require.NotNil(t, s.precursor)

	// Precursor duration is sampled from [2s, 10s] at 20 Hz.
	assert.GreaterOrEqual(t, s.precursor.remainingTicks, 2*seismicFS)
	assert.LessOrEqual(t, s.precursor.remainingTicks, precursorMaxSec*seismicFS)
	assert.InDelta(t, 3.0*precursorMagFrac, s.precursor.startMag, 1e-12)

	preTicks := s.precursor.remainingTicks
	for i := 0; i < preTicks; i++ {
		_, label := s.AdvanceAndRead()
		assert.Equal(t, 1, label)
	}
	assert.Nil(t, s.precursor, "precursor should expire independently")
	assert.True(t, s.EventActive(), "main event outlives the precursor")
}

func TestSeismicTrigger_ReplacesActiveEvent(t *testing.T) {
	s, _ := newTestSeismic(5)

	require.NoError(t, s.Trigger(SeismicParams{Magnitude: 1.0, DurationTicks: 1000}))
	require.NoError(t, s.Trigger(SeismicParams{Magnitude: 2.0, DurationTicks: 10}))

	// The replacement's shorter countdown governs.
	for i := 0; i < 10; i++ {
		s.AdvanceAndRead()
	}
	assert.False(t, s.EventActive())
}

func TestSeismicClear_Idempotent(t *testing.T) {
	s, _ := newTestSeismic(6)

	require.NoError(t, s.Trigger(SeismicParams{Magnitude: 2.0, DurationTicks: 100, Precursor: true}))
	s.Clear()
	assert.False(t, s.EventActive())
	s.Clear()
	assert.False(t, s.EventActive())
}

func TestSeismicBaseline_WithinBounds(t *testing.T) {
	s, _ := newTestSeismic(7)

	for i := 0; i < 2000; i++ {
		r, label := s.AdvanceAndRead()
		assert.Equal(t, 0, label)
		assert.LessOrEqual(t, math.Abs(r.Accelerometer), 1.0)
		assert.LessOrEqual(t, math.Abs(r.Geophone), 1.0)
		assert.LessOrEqual(t, math.Abs(r.Seismometer), 1.0)
	}
}

func TestSeismicReadings_ClampedAndRounded(t *testing.T) {
	s, _ := newTestSeismic(8)

	require.NoError(t, s.Trigger(SeismicParams{Magnitude: 3.5, DurationTicks: 100}))
	for i := 0; i < 100; i++ {
		r, _ := s.AdvanceAndRead()
		assert.GreaterOrEqual(t, r.Accelerometer, -10.0)
		assert.LessOrEqual(t, r.Accelerometer, 10.0)
		assert.GreaterOrEqual(t, r.Geophone, -20.0)
		assert.LessOrEqual(t, r.Geophone, 20.0)
		assert.GreaterOrEqual(t, r.Seismometer, -5.0)
		assert.LessOrEqual(t, r.Seismometer, 5.0)
	}
}

func TestGradient(t *testing.T) {
	// Derivative of a linear ramp is constant.
	seq := []float64{0, 1, 2, 3, 4}
	grad := gradient(seq, 0.5)
	for _, g := range grad {
		assert.InDelta(t, 2.0, g, 1e-12)
	}

	assert.Equal(t, []float64{0}, gradient([]float64{1}, 1))
}

func TestSeismicAutonomous_StartsEvents(t *testing.T) {
	counters := &DebugCounters{}
	// One event per tick on average, no cooldown: fires almost immediately.
	sched := NewScheduler(ScheduleConfig{
		RatePerTick:      1.0,
		MinMagnitude:     1.0,
		MaxMagnitude:     2.0,
		MinDurationTicks: 20,
		MaxDurationTicks: 40,
	}, 42)
	s := NewSeismicSim(noise.New(42), sched, counters)

	active := false
	for i := 0; i < 50 && !active; i++ {
		s.AdvanceAndRead()
		active = s.EventActive()
	}
	assert.True(t, active)
	assert.NotZero(t, counters.AutonomousStarts)
}

func TestSeismicErrors_AreWrapped(t *testing.T) {
	s, _ := newTestSeismic(9)

	err := s.Trigger(SeismicParams{DurationTicks: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDuration))
	assert.Contains(t, err.Error(), "seismic trigger")
}
