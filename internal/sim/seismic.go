package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/window"

	"github.com/rudresh69/SIH2025/internal/noise"
)

// Seismic configuration. The nominal 20 Hz rate drives waveform synthesis
// frequencies and seconds-to-ticks conversion for autonomous events.
const (
	seismicFS = 20

	seismicEventRatePerMin = 0.8
	seismicCooldownSec     = 45
	seismicEventMinSec     = 5.0
	seismicEventMaxSec     = 12.0
	seismicMagMin          = 0.8
	seismicMagMax          = 3.5

	precursorProb    = 0.25
	precursorMaxSec  = 10
	culturalNoiseP   = 0.02
	precursorMagFrac = 0.15
)

// SeismicParams configures a seismic event trigger.
type SeismicParams struct {
	// Magnitude is the peak magnitude of the event. Must be non-negative.
	Magnitude float64

	// DurationTicks is the total event length. Must be positive.
	DurationTicks int

	// Precursor requests a low-amplitude advance signal preceding the main
	// arrivals. Its duration is sampled at trigger time.
	Precursor bool
}

// SeismicReading holds the three seismic channel values for one tick.
type SeismicReading struct {
	Accelerometer float64
	Geophone      float64
	Seismometer   float64
}

// seismicEvent replays a waveform precomputed at trigger time.
type seismicEvent struct {
	remainingTicks int
	cursor         int
	velocity       []float64
	acceleration   []float64
}

// seismicPrecursor is a decaying sinusoidal ramp that may precede and overlap
// the main event.
type seismicPrecursor struct {
	remainingTicks int
	startMag       float64
}

// SeismicSim simulates a geophone, accelerometer and seismometer sharing one
// ground-motion source.
type SeismicSim struct {
	tick     uint64
	rng      *noise.Generator
	sched    *Scheduler
	counters *DebugCounters

	event     *seismicEvent
	precursor *seismicPrecursor
}

// NewSeismicSim creates a seismic simulator. A nil scheduler disables
// autonomous events.
func NewSeismicSim(rng *noise.Generator, sched *Scheduler, counters *DebugCounters) *SeismicSim {
	return &SeismicSim{rng: rng, sched: sched, counters: counters}
}

// Trigger starts a seismic event, replacing any active one. The full velocity
// and acceleration waveforms are precomputed here and replayed tick by tick.
func (s *SeismicSim) Trigger(p SeismicParams) error {
	if p.DurationTicks <= 0 {
		return fmt.Errorf("seismic trigger: %w", ErrInvalidDuration)
	}
	if p.Magnitude < 0 {
		return fmt.Errorf("seismic trigger: magnitude %.2f: %w", p.Magnitude, ErrInvalidEventParams)
	}

	velocity, acceleration := s.generateWaveform(p.DurationTicks, p.Magnitude)
	s.event = &seismicEvent{
		remainingTicks: p.DurationTicks,
		velocity:       velocity,
		acceleration:   acceleration,
	}

	if p.Precursor {
		durSec := float64(p.DurationTicks) / seismicFS
		preSec := s.rng.Uniform(2.0, math.Min(precursorMaxSec, durSec/2))
		preTicks := int(preSec * seismicFS)
		if preTicks < 1 {
			preTicks = 1
		}
		s.precursor = &seismicPrecursor{
			remainingTicks: preTicks,
			startMag:       p.Magnitude * precursorMagFrac,
		}
	} else {
		s.precursor = nil
	}
	return nil
}

// Clear removes any active event and precursor. Idempotent.
func (s *SeismicSim) Clear() {
	s.event = nil
	s.precursor = nil
}

// EventActive reports whether a main event or precursor is live.
func (s *SeismicSim) EventActive() bool {
	return s.event != nil || s.precursor != nil
}

// AdvanceAndRead advances one tick and returns the channel readings and the
// domain label.
func (s *SeismicSim) AdvanceAndRead() (SeismicReading, int) {
	s.tick++

	if s.event == nil {
		if params, ok := s.sched.MaybeStart(s.tick); ok {
			s.counters.noteAutonomousStart()
			// Autonomous trigger params are sampled within valid bounds.
			_ = s.Trigger(SeismicParams{
				Magnitude:     params.Magnitude,
				DurationTicks: params.DurationTicks,
				Precursor:     s.rng.Float64() < precursorProb,
			})
		}
	}

	if s.precursor != nil {
		s.precursor.remainingTicks--
		if s.precursor.remainingTicks <= 0 {
			if s.precursor.remainingTicks < 0 {
				s.counters.noteClamp()
			}
			s.precursor = nil
		}
	}

	if s.event != nil {
		s.event.remainingTicks--
		s.event.cursor++
		if s.event.remainingTicks <= 0 {
			if s.event.remainingTicks < 0 {
				s.counters.noteClamp()
			}
			s.event = nil
			s.sched.NoteEventEnd(s.tick)
		}
	}

	// Background microseisms: shared pink component plus per-channel jitter.
	base := s.rng.Pink(1, 1.2)[0] * 0.02
	acc := base + s.rng.Gaussian(0, 0.015)
	geo := base*1.2 + s.rng.Gaussian(0, 0.025)
	seis := base*0.8 + s.rng.Gaussian(0, 0.01)

	// Cultural noise: occasional sharp spikes from traffic or machinery.
	if s.rng.Float64() < culturalNoiseP {
		spike := (s.rng.Float64() - 0.5) * 0.25
		acc += spike
		geo += spike * 0.8
	}

	if pre := s.precursor; pre != nil {
		t := float64(s.tick)
		amp := pre.startMag * float64(pre.remainingTicks) / float64(precursorMaxSec*seismicFS)
		geo += amp * 0.8 * math.Sin(2*math.Pi*1.0*t/seismicFS)
		acc += amp * math.Sin(2*math.Pi*1.5*t/seismicFS)
		seis += amp * 0.4 * math.Sin(2*math.Pi*0.8*t/seismicFS)
	}

	if ev := s.event; ev != nil {
		if ev.cursor < len(ev.velocity) {
			geo += ev.velocity[ev.cursor]
			seis += ev.velocity[ev.cursor] * 0.5 // seismometer gain differs
			acc += ev.acceleration[ev.cursor]
		} else {
			s.counters.noteClamp()
			s.event = nil
			s.sched.NoteEventEnd(s.tick)
		}
	}

	label := 0
	if s.EventActive() {
		label = 1
	}

	return SeismicReading{
		Accelerometer: roundTo(clamp(acc, -10, 10), 5),
		Geophone:      roundTo(clamp(geo, -20, 20), 5),
		Seismometer:   roundTo(clamp(seis, -5, 5), 5),
	}, label
}

// generateWaveform builds the event's ground-velocity waveform from a P-wave
// and an S-wave packet, each shaped by a tapered Tukey envelope, combined
// under an exponential coda decay. The acceleration channel is the numerical
// derivative of the velocity channel.
func (s *SeismicSim) generateWaveform(n int, magnitude float64) (velocity, acceleration []float64) {
	pFreq := s.rng.Uniform(seismicFS*0.2, seismicFS*0.3)
	sFreq := s.rng.Uniform(seismicFS*0.05, seismicFS*0.15)
	sArrival := int(float64(n) * s.rng.Uniform(0.1, 0.2))
	pPhase := s.rng.Uniform(0, 2*math.Pi)
	sPhase := s.rng.Uniform(0, 2*math.Pi)

	velocity = make([]float64, n)

	// P-wave packet: higher frequency, weaker amplitude, early taper.
	pLen := min(n, int(float64(sArrival)*1.8))
	if pLen > 0 {
		env := tukeyEnvelope(pLen, 0.8, magnitude*0.6)
		for i := 0; i < pLen; i++ {
			t := float64(i) / seismicFS
			velocity[i] += math.Sin(2*math.Pi*pFreq*t+pPhase) * env[i]
		}
	}

	// S-wave packet: lower frequency, full amplitude, arrives late.
	if sLen := n - sArrival; sLen > 0 {
		env := tukeyEnvelope(sLen, 0.6, magnitude)
		for i := 0; i < sLen; i++ {
			t := float64(sArrival+i) / seismicFS
			velocity[sArrival+i] += math.Sin(2*math.Pi*sFreq*t+sPhase) * env[i]
		}
	}

	// Coda: exponential decay across the whole event.
	codaTau := float64(n) / seismicFS / 2.5
	for i := range velocity {
		t := float64(i) / seismicFS
		velocity[i] *= math.Exp(-t / codaTau)
	}

	return velocity, gradient(velocity, 1.0/seismicFS)
}

// tukeyEnvelope returns a tapered-cosine window of the given length scaled by
// amplitude.
func tukeyEnvelope(n int, alpha, amplitude float64) []float64 {
	env := make([]float64, n)
	for i := range env {
		env[i] = amplitude
	}
	return window.Tukey{Alpha: alpha}.Transform(env)
}

// gradient computes the central-difference derivative of seq with spacing dt,
// using one-sided differences at the boundaries.
func gradient(seq []float64, dt float64) []float64 {
	n := len(seq)
	grad := make([]float64, n)
	if n < 2 {
		return grad
	}
	grad[0] = (seq[1] - seq[0]) / dt
	grad[n-1] = (seq[n-1] - seq[n-2]) / dt
	for i := 1; i < n-1; i++ {
		grad[i] = (seq[i+1] - seq[i-1]) / (2 * dt)
	}
	return grad
}

// defaultSeismicSchedule is the autonomous hazard process for the seismic
// domain, expressed tick-relative at the nominal 20 Hz rate.
func defaultSeismicSchedule() ScheduleConfig {
	return ScheduleConfig{
		RatePerTick:      seismicEventRatePerMin / 60 / seismicFS,
		CooldownTicks:    seismicCooldownSec * seismicFS,
		MinMagnitude:     seismicMagMin,
		MaxMagnitude:     seismicMagMax,
		MinDurationTicks: int(seismicEventMinSec * seismicFS),
		MaxDurationTicks: int(seismicEventMaxSec * seismicFS),
	}
}
