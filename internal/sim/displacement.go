package sim

import (
	"fmt"
	"math"

	"github.com/rudresh69/SIH2025/internal/noise"
)

// Displacement configuration. Ground movement is slow; the nominal rate is
// 2 Hz and autonomous events are rare, on a monthly scale.
const (
	dispFS = 2

	dispEventRatePerMonth = 0.5
	dispCooldownDays      = 20
	dispEventMinSec       = 60 * 60          // 1 hour
	dispEventMaxSec       = 60 * 60 * 24 * 2 // 2 days
	dispMagMin            = 0.5
	dispMagMax            = 5.0

	// Channel sensitivities to a unit of movement.
	crackSensitivity = 0.8
	tiltSensitivity  = 0.2
	extSensitivity   = 1.0
)

// DisplacementParams configures a ground-movement event.
type DisplacementParams struct {
	// TotalDisplacementMM is the total movement the event will cause across
	// its duration. Must be non-negative.
	TotalDisplacementMM float64

	// DurationTicks is the movement duration. Must be positive.
	DurationTicks int
}

// DisplacementReading holds the three displacement channel values for one tick.
type DisplacementReading struct {
	CrackSensor  float64
	Inclinometer float64
	Extensometer float64
}

type displacementEvent struct {
	totalTicks     int
	remainingTicks int
	totalMM        float64
	appliedMM      float64
}

// DisplacementSim simulates a crack sensor, inclinometer and extensometer.
// Events cause permanent deformation: each tick adds only the incremental
// movement since the previous tick to per-channel offsets that never
// decrease, so cracks and tilts do not self-correct when an event ends.
type DisplacementSim struct {
	tick     uint64
	rng      *noise.Generator
	sched    *Scheduler
	counters *DebugCounters

	event *displacementEvent

	crackOffsetMM float64
	tiltOffsetDeg float64
	extOffsetMM   float64
}

// NewDisplacementSim creates a displacement simulator with small non-zero
// initial offsets. A nil scheduler disables autonomous events.
func NewDisplacementSim(rng *noise.Generator, sched *Scheduler, counters *DebugCounters) *DisplacementSim {
	return &DisplacementSim{
		rng:           rng,
		sched:         sched,
		counters:      counters,
		crackOffsetMM: 0.1,
		tiltOffsetDeg: 0.05,
		extOffsetMM:   0.2,
	}
}

// Trigger starts a movement event, replacing any active one. Movement already
// applied by a replaced event stays in the permanent offsets.
func (d *DisplacementSim) Trigger(p DisplacementParams) error {
	if p.DurationTicks <= 0 {
		return fmt.Errorf("displacement trigger: %w", ErrInvalidDuration)
	}
	if p.TotalDisplacementMM < 0 {
		return fmt.Errorf("displacement trigger: displacement %.2f: %w",
			p.TotalDisplacementMM, ErrInvalidEventParams)
	}
	d.event = &displacementEvent{
		totalTicks:     p.DurationTicks,
		remainingTicks: p.DurationTicks,
		totalMM:        p.TotalDisplacementMM,
	}
	return nil
}

// Clear removes any active event. Permanent offsets are untouched. Idempotent.
func (d *DisplacementSim) Clear() {
	d.event = nil
}

// EventActive reports whether movement is in progress. The offsets left
// behind by past events are permanent and do not assert the label by
// themselves.
func (d *DisplacementSim) EventActive() bool {
	return d.event != nil
}

// Offsets returns the current permanent offsets (crack mm, tilt deg,
// extensometer mm).
func (d *DisplacementSim) Offsets() (crack, tilt, ext float64) {
	return d.crackOffsetMM, d.tiltOffsetDeg, d.extOffsetMM
}

// AdvanceAndRead advances one tick and returns the channel readings and the
// domain label.
func (d *DisplacementSim) AdvanceAndRead() (DisplacementReading, int) {
	d.tick++

	if d.event == nil {
		if params, ok := d.sched.MaybeStart(d.tick); ok {
			d.counters.noteAutonomousStart()
			_ = d.Trigger(DisplacementParams{
				TotalDisplacementMM: params.Magnitude,
				DurationTicks:       params.DurationTicks,
			})
		}
	}

	if ev := d.event; ev != nil {
		ev.remainingTicks--

		// S-curve creep: slow start, acceleration, slow end. Only this
		// tick's increment lands in the permanent offsets.
		progress := float64(ev.totalTicks-ev.remainingTicks) / float64(ev.totalTicks)
		targetMM := ev.totalMM * 0.5 * (math.Tanh(6*progress-3) + 1)
		stepMM := targetMM - ev.appliedMM
		ev.appliedMM = targetMM

		d.crackOffsetMM += stepMM * crackSensitivity
		d.tiltOffsetDeg += stepMM * tiltSensitivity
		d.extOffsetMM += stepMM * extSensitivity

		if ev.remainingTicks <= 0 {
			if ev.remainingTicks < 0 {
				d.counters.noteClamp()
			}
			d.event = nil
			d.sched.NoteEventEnd(d.tick)
		}
	}

	// Thermal baseline drift: seasonal and day/night expansion cycles.
	t := float64(d.tick)
	seasonal := 0.02 * math.Sin(2*math.Pi*t/(3600*24*365*dispFS))
	diurnal := 0.03 * math.Sin(2*math.Pi*t/(3600*24*dispFS))
	drift := seasonal + diurnal

	crack := d.crackOffsetMM + drift*0.5 + d.rng.Gaussian(0, 0.005)
	tilt := d.tiltOffsetDeg + drift*0.2 + d.rng.Gaussian(0, 0.002)
	ext := d.extOffsetMM + drift*1.0 + d.rng.Gaussian(0, 0.005)

	label := 0
	if d.EventActive() {
		label = 1
	}

	return DisplacementReading{
		CrackSensor:  roundTo(math.Max(0, crack), 4),
		Inclinometer: roundTo(math.Max(0, tilt), 4),
		Extensometer: roundTo(math.Max(0, ext), 4),
	}, label
}

// defaultDisplacementSchedule is the autonomous movement process for the
// displacement domain.
func defaultDisplacementSchedule() ScheduleConfig {
	return ScheduleConfig{
		RatePerTick:      dispEventRatePerMonth / (30 * 24 * 3600) / dispFS,
		CooldownTicks:    dispCooldownDays * 24 * 3600 * dispFS,
		MinMagnitude:     dispMagMin,
		MaxMagnitude:     dispMagMax,
		MinDurationTicks: dispEventMinSec * dispFS,
		MaxDurationTicks: dispEventMaxSec * dispFS,
	}
}
