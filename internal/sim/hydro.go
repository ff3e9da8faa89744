package sim

import (
	"fmt"
	"math"

	"github.com/rudresh69/SIH2025/internal/noise"
)

// Hydrological configuration, tick-relative at the nominal 10 Hz rate.
const (
	hydroFS = 10

	hydroEventRatePerDay = 0.5
	hydroCooldownHours   = 12
	hydroEventMinSec     = 60 * 10
	hydroEventMaxSec     = 60 * 120
	hydroIntensityMin    = 5.0
	hydroIntensityMax    = 25.0

	// Saturation dynamics: Δsat = intensity/satGain × (1 − sat/satCeiling)
	// per tick while raining, with exponential drainage every tick.
	satGain       = 1000.0
	satCeiling    = 110.0
	drainageRate  = 0.999
	riskThreshold = 15.0
)

// HydroParams configures a hydrological (rainfall infiltration) event.
type HydroParams struct {
	// Intensity scales how quickly the soil saturates. Must be non-negative.
	Intensity float64

	// DurationTicks is the rainfall length. Must be positive.
	DurationTicks int
}

// HydroReading holds the two hydrological channel values for one tick.
type HydroReading struct {
	MoistureSensor float64
	Piezometer     float64
}

type hydroEvent struct {
	remainingTicks int
	intensity      float64
}

// HydroSim simulates a shallow soil moisture sensor and a deeper piezometer
// responding to a shared soil saturation state. Saturation is a continuous
// accumulator: it builds while an event is active, drains exponentially every
// tick, and can keep the domain label asserted after the nominal event ends.
type HydroSim struct {
	tick     uint64
	rng      *noise.Generator
	sched    *Scheduler
	counters *DebugCounters

	event      *hydroEvent
	saturation float64
}

// NewHydroSim creates a hydrological simulator. A nil scheduler disables
// autonomous rainfall events.
func NewHydroSim(rng *noise.Generator, sched *Scheduler, counters *DebugCounters) *HydroSim {
	return &HydroSim{rng: rng, sched: sched, counters: counters}
}

// Trigger starts a rainfall event, replacing any active one. Accumulated
// saturation is preserved.
func (h *HydroSim) Trigger(p HydroParams) error {
	if p.DurationTicks <= 0 {
		return fmt.Errorf("hydro trigger: %w", ErrInvalidDuration)
	}
	if p.Intensity < 0 {
		return fmt.Errorf("hydro trigger: intensity %.2f: %w", p.Intensity, ErrInvalidEventParams)
	}
	h.event = &hydroEvent{remainingTicks: p.DurationTicks, intensity: p.Intensity}
	return nil
}

// Clear removes any active event. Saturation keeps draining naturally.
// Idempotent.
func (h *HydroSim) Clear() {
	h.event = nil
}

// Saturation returns the current soil saturation accumulator value.
func (h *HydroSim) Saturation() float64 {
	return h.saturation
}

// EventActive reports whether an event is live or residual saturation still
// exceeds the risk threshold.
func (h *HydroSim) EventActive() bool {
	return h.event != nil || h.saturation > riskThreshold
}

// AdvanceAndRead advances one tick and returns the channel readings and the
// domain label.
func (h *HydroSim) AdvanceAndRead() (HydroReading, int) {
	h.tick++

	if h.event == nil {
		if params, ok := h.sched.MaybeStart(h.tick); ok {
			h.counters.noteAutonomousStart()
			_ = h.Trigger(HydroParams{Intensity: params.Magnitude, DurationTicks: params.DurationTicks})
		}
	}

	if ev := h.event; ev != nil {
		ev.remainingTicks--

		// Infiltration slows as the soil approaches its ceiling.
		increase := (ev.intensity / satGain) * (1 - h.saturation/satCeiling)
		h.saturation += math.Max(0, increase)

		if ev.remainingTicks <= 0 {
			if ev.remainingTicks < 0 {
				h.counters.noteClamp()
			}
			h.event = nil
			h.sched.NoteEventEnd(h.tick)
		}
	}

	// Drainage applies every tick, event or not.
	h.saturation *= drainageRate
	if h.saturation < 0 {
		h.saturation = 0
	}

	t := float64(h.tick)
	seasonal := 5 * math.Sin(2*math.Pi*t/(3600*24*30*hydroFS))
	diurnal := 2 * math.Sin(2*math.Pi*t/(3600*24*hydroFS))
	base := h.rng.Pink(1, 1.0)[0] * 0.5

	moistureBaseline := 25 + seasonal - diurnal + base
	piezoBaseline := 5 + seasonal*0.4 + base*0.3

	// Moisture responds linearly; pore pressure builds superlinearly,
	// modeling the deeper sensor's delayed response.
	moisture := moistureBaseline + h.saturation*0.7
	piezo := piezoBaseline + math.Pow(h.saturation, 1.5)/20

	label := 0
	if h.EventActive() {
		label = 1
	}

	return HydroReading{
		MoistureSensor: roundTo(clamp(moisture, 0, 100), 4),
		Piezometer:     roundTo(clamp(piezo, 0, 500), 4),
	}, label
}

// defaultHydroSchedule is the autonomous rainfall process for the
// hydrological domain.
func defaultHydroSchedule() ScheduleConfig {
	return ScheduleConfig{
		RatePerTick:      hydroEventRatePerDay / (24 * 3600) / hydroFS,
		CooldownTicks:    hydroCooldownHours * 3600 * hydroFS,
		MinMagnitude:     hydroIntensityMin,
		MaxMagnitude:     hydroIntensityMax,
		MinDurationTicks: hydroEventMinSec * hydroFS,
		MaxDurationTicks: hydroEventMaxSec * hydroFS,
	}
}
