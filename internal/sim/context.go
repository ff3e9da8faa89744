package sim

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rudresh69/SIH2025/internal/noise"
)

// DefaultSampleRate is the aggregator tick rate in Hz. One Advance call is
// one tick; hazard durations in seconds are converted with this rate.
const DefaultSampleRate = 10

// Sub-seed salts so every simulator and scheduler draws from an independent
// deterministic stream derived from the context seed.
const (
	seedSaltSeismic      = 1
	seedSaltHydro        = 2
	seedSaltDisplacement = 3
	seedSaltEnv          = 4
	seedSaltSchedOffset  = 16
)

// DebugCounters records internal bookkeeping that tests and metrics observe:
// defensive invariant clamps and autonomous event starts. Counters are plain
// integers; the simulation is single-threaded.
type DebugCounters struct {
	InvariantClamps  uint64
	AutonomousStarts uint64
}

func (c *DebugCounters) noteClamp() {
	if c != nil {
		c.InvariantClamps++
	}
}

func (c *DebugCounters) noteAutonomousStart() {
	if c != nil {
		c.AutonomousStarts++
	}
}

// Context owns one complete simulation: the four domain simulators, their
// schedulers and the hazard orchestrator. Contexts are independent values;
// two contexts built from the same seed and fed the same call sequence
// produce identical frame sequences.
//
// A Context is not safe for concurrent use. Concurrent hosts must funnel all
// Advance and TriggerHazard calls through a single owner.
type Context struct {
	clock      clockwork.Clock
	epoch      time.Time
	interval   time.Duration
	sampleRate int

	tick     uint64
	counters DebugCounters

	seismic      *SeismicSim
	hydro        *HydroSim
	displacement *DisplacementSim
	env          *EnvironmentalSim
	orchestrator *Orchestrator
}

// Option customizes a Context at construction time.
type Option func(*options)

type options struct {
	clock      clockwork.Clock
	sampleRate int
	autonomous bool
}

// WithClock sets the time source used to stamp frames. Tests pass a fake
// clock for deterministic timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithSampleRate overrides the aggregator tick rate in Hz.
func WithSampleRate(hz int) Option {
	return func(o *options) {
		if hz > 0 {
			o.sampleRate = hz
		}
	}
}

// WithAutonomousEvents enables or disables all spontaneous event processes:
// the per-domain Poisson schedulers and the ambient rain sub-events. Disable
// it for fixtures that must stay quiet unless explicitly triggered.
func WithAutonomousEvents(enabled bool) Option {
	return func(o *options) { o.autonomous = enabled }
}

// NewContext builds a simulation context from a seed. Defaults: real clock,
// 10 Hz tick rate, autonomous events enabled.
func NewContext(seed int64, opts ...Option) *Context {
	o := options{
		clock:      clockwork.NewRealClock(),
		sampleRate: DefaultSampleRate,
		autonomous: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		clock:      o.clock,
		sampleRate: o.sampleRate,
		interval:   time.Second / time.Duration(o.sampleRate),
	}
	c.epoch = o.clock.Now().UTC()

	var seismicSched, hydroSched, dispSched *Scheduler
	if o.autonomous {
		seismicSched = NewScheduler(defaultSeismicSchedule(), seed+seedSaltSchedOffset+seedSaltSeismic)
		hydroSched = NewScheduler(defaultHydroSchedule(), seed+seedSaltSchedOffset+seedSaltHydro)
		dispSched = NewScheduler(defaultDisplacementSchedule(), seed+seedSaltSchedOffset+seedSaltDisplacement)
	}

	c.seismic = NewSeismicSim(noise.New(seed+seedSaltSeismic), seismicSched, &c.counters)
	c.hydro = NewHydroSim(noise.New(seed+seedSaltHydro), hydroSched, &c.counters)
	c.displacement = NewDisplacementSim(noise.New(seed+seedSaltDisplacement), dispSched, &c.counters)
	c.env = NewEnvironmentalSim(noise.New(seed+seedSaltEnv), o.autonomous, &c.counters)
	c.orchestrator = NewOrchestrator(c.seismic, c.hydro, c.displacement, c.env, &c.counters)

	return c
}

// TriggerHazard starts a coordinated hazard over the given duration. It is
// the only externally invoked mutation besides Advance. Invalid kinds and
// non-positive durations are rejected with no state mutated.
func (c *Context) TriggerHazard(kind HazardKind, duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("trigger hazard %s: %w", kind, ErrInvalidDuration)
	}
	ticks := int(duration.Seconds() * float64(c.sampleRate))
	if ticks < 1 {
		ticks = 1
	}
	return c.orchestrator.TriggerHazard(kind, ticks)
}

// Advance runs exactly one simulation tick: the orchestrator updates its
// phase (possibly re-triggering domains), every domain advances and reads,
// and the merged readings become one immutable Frame.
func (c *Context) Advance() Frame {
	c.orchestrator.UpdatePhase()

	seismic, seismicLabel := c.seismic.AdvanceAndRead()
	hydro, hydroLabel := c.hydro.AdvanceAndRead()
	disp, dispLabel := c.displacement.AdvanceAndRead()
	env, _ := c.env.AdvanceAndRead()

	label := 0
	if seismicLabel == 1 || hydroLabel == 1 || dispLabel == 1 {
		label = 1
	}

	ts := c.epoch.Add(time.Duration(c.tick) * c.interval)
	c.tick++

	return Frame{
		Timestamp:          ts,
		Accelerometer:      seismic.Accelerometer,
		Geophone:           seismic.Geophone,
		Seismometer:        seismic.Seismometer,
		MoistureSensor:     hydro.MoistureSensor,
		Piezometer:         hydro.Piezometer,
		CrackSensor:        disp.CrackSensor,
		Inclinometer:       disp.Inclinometer,
		Extensometer:       disp.Extensometer,
		RainSensorMMHr:     env.RainSensorMMHr,
		TemperatureCelsius: env.TemperatureCelsius,
		HumidityPercent:    env.HumidityPercent,
		Label:              label,
		Phase:              c.orchestrator.Phase(),
		HazardKind:         c.orchestrator.Kind(),
	}
}

// Tick returns the number of Advance calls made so far.
func (c *Context) Tick() uint64 {
	return c.tick
}

// Phase returns the orchestrator's current phase.
func (c *Context) Phase() Phase {
	return c.orchestrator.Phase()
}

// Counters returns a snapshot of the context's debug counters.
func (c *Context) Counters() DebugCounters {
	return c.counters
}

// Seismic exposes the seismic simulator, primarily for tests.
func (c *Context) Seismic() *SeismicSim { return c.seismic }

// Hydro exposes the hydrological simulator, primarily for tests.
func (c *Context) Hydro() *HydroSim { return c.hydro }

// Displacement exposes the displacement simulator, primarily for tests.
func (c *Context) Displacement() *DisplacementSim { return c.displacement }

// Environmental exposes the environmental simulator, primarily for tests.
func (c *Context) Environmental() *EnvironmentalSim { return c.env }
