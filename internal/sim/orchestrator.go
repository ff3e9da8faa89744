package sim

import (
	"fmt"
	"math"
)

// phaseFractions is the canonical proportional split of a hazard's total
// duration across the four phases, so behavior scales with any requested
// duration: Normal 10%, Warning 25%, Danger 30%, MainEvent 35%.
var phaseFractions = [4]float64{0.10, 0.25, 0.30, 0.35}

// phaseParams holds the per-domain trigger parameters for one (hazard, phase)
// cell. A zero value means the domain is not engaged in that phase.
type phaseParams struct {
	seismicMag     float64
	precursor      bool
	hydroIntensity float64
	displacementMM float64
	rainMMHr       float64
}

// hazardPlans maps each hazard kind to its phase-scaled trigger table.
// Severity strictly increases through the phases. Rockfalls never engage the
// hydrological domain; rainfall never engages the seismic domain.
var hazardPlans = map[HazardKind][4]phaseParams{
	HazardRockfall: {
		{seismicMag: 0.5, precursor: true, displacementMM: 0.2},
		{seismicMag: 1.0, precursor: true, displacementMM: 0.5},
		{seismicMag: 2.0, displacementMM: 1.5},
		{seismicMag: 3.0, displacementMM: 3.0},
	},
	HazardRainfall: {
		{hydroIntensity: 5.0, displacementMM: 0.05, rainMMHr: 5},
		{hydroIntensity: 10.0, displacementMM: 0.1, rainMMHr: 12},
		{hydroIntensity: 18.0, displacementMM: 0.3, rainMMHr: 25},
		{hydroIntensity: 25.0, displacementMM: 0.5, rainMMHr: 40},
	},
	HazardLandslide: {
		{seismicMag: 0.8, precursor: true, hydroIntensity: 5.0, displacementMM: 0.5, rainMMHr: 4},
		{seismicMag: 1.5, precursor: true, hydroIntensity: 8.0, displacementMM: 2.0, rainMMHr: 8},
		{seismicMag: 2.5, hydroIntensity: 12.0, displacementMM: 5.0, rainMMHr: 12},
		{seismicMag: 3.5, hydroIntensity: 15.0, displacementMM: 10.0, rainMMHr: 15},
	},
}

// Orchestrator coordinates a hazard scenario across the domain simulators.
// It owns a phase state machine that walks Normal, Warning, Danger and
// MainEvent over a requested total duration and re-triggers the engaged
// domains with escalating parameters at every phase transition.
type Orchestrator struct {
	seismic      *SeismicSim
	hydro        *HydroSim
	displacement *DisplacementSim
	env          *EnvironmentalSim
	counters     *DebugCounters

	kind           HazardKind
	phase          Phase
	phaseIdx       int
	ticksRemaining int
	totalTicks     int
	// thresholds[i] is the ticksRemaining value at which phaseOrder[i]
	// begins, for i >= 1.
	thresholds [4]int
	// lengths[i] is phaseOrder[i]'s duration in ticks.
	lengths [4]int
}

// NewOrchestrator wires an orchestrator to the four domain simulators.
func NewOrchestrator(seismic *SeismicSim, hydro *HydroSim, displacement *DisplacementSim, env *EnvironmentalSim, counters *DebugCounters) *Orchestrator {
	return &Orchestrator{
		seismic:      seismic,
		hydro:        hydro,
		displacement: displacement,
		env:          env,
		counters:     counters,
		phase:        PhaseIdle,
	}
}

// Active reports whether a hazard scenario is in progress.
func (o *Orchestrator) Active() bool {
	return o.phase != PhaseIdle
}

// Phase returns the current hazard phase, PhaseIdle outside a scenario.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Kind returns the active hazard kind, empty outside a scenario.
func (o *Orchestrator) Kind() HazardKind {
	return o.kind
}

// TriggerHazard starts a coordinated hazard over the given total duration in
// ticks. Phase boundaries are fixed fractions of the total; the Normal phase
// begins immediately. Triggering while a hazard is active restarts the state
// machine; domain events are replaced, not queued.
func (o *Orchestrator) TriggerHazard(kind HazardKind, totalTicks int) error {
	if !kind.Valid() {
		return fmt.Errorf("trigger hazard %q: %w", kind, ErrInvalidHazardKind)
	}
	if totalTicks <= 0 {
		return fmt.Errorf("trigger hazard %s: %w", kind, ErrInvalidDuration)
	}

	// Proportional phase lengths; each phase gets at least one tick and the
	// final phase absorbs rounding remainder.
	used := 0
	for i := 0; i < 3; i++ {
		l := int(math.Round(float64(totalTicks) * phaseFractions[i]))
		if l < 1 {
			l = 1
		}
		o.lengths[i] = l
		used += l
	}
	last := totalTicks - used
	if last < 1 {
		last = 1
	}
	o.lengths[3] = last

	total := o.lengths[0] + o.lengths[1] + o.lengths[2] + o.lengths[3]
	o.kind = kind
	o.totalTicks = total
	o.ticksRemaining = total
	o.phaseIdx = 0
	o.phase = phaseOrder[0]
	o.thresholds[0] = total
	for i := 1; i < 4; i++ {
		o.thresholds[i] = o.thresholds[i-1] - o.lengths[i-1]
	}

	o.applyPhase()
	return nil
}

// UpdatePhase advances the hazard state machine by one tick. It must run
// before any domain read in the same tick so a phase transition and its
// sensor effects land in the same frame. Domain-level events started by
// earlier phases are left to expire naturally when the hazard ends.
func (o *Orchestrator) UpdatePhase() {
	if o.phase == PhaseIdle {
		return
	}

	o.ticksRemaining--
	if o.ticksRemaining <= 0 {
		if o.ticksRemaining < 0 {
			o.counters.noteClamp()
		}
		o.reset()
		return
	}

	for o.phaseIdx < len(phaseOrder)-1 && o.ticksRemaining <= o.thresholds[o.phaseIdx+1] {
		o.phaseIdx++
		o.phase = phaseOrder[o.phaseIdx]
		o.applyPhase()
	}
}

func (o *Orchestrator) reset() {
	o.kind = ""
	o.phase = PhaseIdle
	o.phaseIdx = 0
	o.ticksRemaining = 0
	o.totalTicks = 0
}

// applyPhase triggers the engaged domains with the current phase's scaled
// parameters. Events run one tick past the phase's length: domains clear an
// expired event before reading, so an event sized exactly to the phase would
// die on the phase's last tick, a tick before the transition replaces it with
// the escalated set. The final phase's overhang expires after the hazard has
// gone idle.
func (o *Orchestrator) applyPhase() {
	plan := hazardPlans[o.kind][o.phaseIdx]
	ticks := o.lengths[o.phaseIdx] + 1

	// Plan parameters are static and positive, so these triggers cannot fail
	// validation; a failure here would indicate a corrupted plan table.
	if plan.seismicMag > 0 {
		if err := o.seismic.Trigger(SeismicParams{
			Magnitude:     plan.seismicMag,
			DurationTicks: ticks,
			Precursor:     plan.precursor,
		}); err != nil {
			o.counters.noteClamp()
		}
	}
	if plan.hydroIntensity > 0 {
		if err := o.hydro.Trigger(HydroParams{
			Intensity:     plan.hydroIntensity,
			DurationTicks: ticks,
		}); err != nil {
			o.counters.noteClamp()
		}
	}
	if plan.displacementMM > 0 {
		if err := o.displacement.Trigger(DisplacementParams{
			TotalDisplacementMM: plan.displacementMM,
			DurationTicks:       ticks,
		}); err != nil {
			o.counters.noteClamp()
		}
	}
	if plan.rainMMHr > 0 {
		if err := o.env.TriggerRain(EnvParams{
			IntensityMMHr: plan.rainMMHr,
			DurationTicks: ticks,
		}); err != nil {
			o.counters.noteClamp()
		}
	}
}
