package sim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ScheduleConfig bounds a domain's autonomous hazard process. All times are
// in ticks; a zero RatePerTick disables scheduling entirely.
type ScheduleConfig struct {
	// RatePerTick is the Poisson arrival rate: the expected number of events
	// per tick. Inter-arrival gaps are sampled from Exponential(RatePerTick).
	RatePerTick float64

	// CooldownTicks is the minimum gap between the end of one event and the
	// start of the next.
	CooldownTicks uint64

	// Magnitude bounds, sampled uniformly. The meaning is domain specific
	// (seismic magnitude, rainfall intensity, total displacement in mm).
	MinMagnitude, MaxMagnitude float64

	// Duration bounds in ticks, sampled uniformly.
	MinDurationTicks, MaxDurationTicks int
}

// EventParams carries the sampled parameters for one autonomous event.
type EventParams struct {
	Magnitude     float64
	DurationTicks int
}

// Scheduler drives a single domain's Poisson event process. It samples the
// next arrival tick lazily, and once an arrival comes due it holds it until
// the cooldown clears; the arrival is never rescheduled early.
type Scheduler struct {
	cfg ScheduleConfig
	exp distuv.Exponential
	src rand.Source

	nextArrival  *uint64
	lastEventEnd *uint64
}

// NewScheduler creates a deterministic scheduler from the given seed.
func NewScheduler(cfg ScheduleConfig, seed int64) *Scheduler {
	src := rand.NewPCG(uint64(seed), 0)
	return &Scheduler{
		cfg: cfg,
		exp: distuv.Exponential{Rate: cfg.RatePerTick, Src: src},
		src: src,
	}
}

// MaybeStart reports whether a new autonomous event should begin at the given
// tick, and if so returns its sampled parameters and clears the schedule.
// Callers must only consult the scheduler while no event is active.
func (s *Scheduler) MaybeStart(now uint64) (EventParams, bool) {
	if s == nil || s.cfg.RatePerTick <= 0 {
		return EventParams{}, false
	}

	if s.nextArrival == nil {
		gap := uint64(math.Max(1, math.Round(s.exp.Rand())))
		next := now + gap
		s.nextArrival = &next
	}

	if now < *s.nextArrival {
		return EventParams{}, false
	}

	if s.lastEventEnd != nil && now-*s.lastEventEnd < s.cfg.CooldownTicks {
		// Still cooling down. The held arrival is re-checked next tick.
		return EventParams{}, false
	}

	s.nextArrival = nil
	return s.sampleParams(), true
}

// NoteEventEnd records the tick at which the domain's event finished, which
// anchors the cooldown for the next arrival.
func (s *Scheduler) NoteEventEnd(now uint64) {
	if s == nil {
		return
	}
	end := now
	s.lastEventEnd = &end
}

func (s *Scheduler) sampleParams() EventParams {
	mag := distuv.Uniform{Min: s.cfg.MinMagnitude, Max: s.cfg.MaxMagnitude, Src: s.src}.Rand()
	dur := distuv.Uniform{
		Min: float64(s.cfg.MinDurationTicks),
		Max: float64(s.cfg.MaxDurationTicks),
		Src: s.src,
	}.Rand()

	ticks := int(math.Round(dur))
	if ticks < 1 {
		ticks = 1
	}
	return EventParams{Magnitude: mag, DurationTicks: ticks}
}
