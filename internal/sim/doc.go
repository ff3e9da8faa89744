// Package sim implements the synthetic multi-sensor simulation core for the
// rockfall monitoring system.
//
// # Structure
//
// A [Context] owns four domain simulators, one per geophysical domain:
//
//	Seismic       accelerometer, geophone, seismometer      20 Hz nominal
//	Hydrological  moisture_sensor, piezometer               10 Hz nominal
//	Displacement  crack_sensor, inclinometer, extensometer   2 Hz nominal
//	Environmental rain_sensor_mmhr, temperature, humidity    2 Hz nominal
//
// Each call to [Context.Advance] steps every domain exactly once and merges
// the readings into a single [Frame]. The nominal per-domain sampling rate is
// used for signal synthesis (waveform frequencies, cycle periods) and for
// converting configured durations in seconds into tick counts; it does not
// introduce any wall-clock dependency.
//
// # Events
//
// Every domain produces a baseline of seasonal and diurnal cycles plus noise,
// and can carry one active event at a time. Seismic events precompute a full
// P-wave/S-wave/coda waveform at trigger time and replay it through a cursor;
// the other domains compute their event contribution analytically per tick.
// Domains that support autonomous hazards consult a [Scheduler], which samples
// exponentially distributed inter-arrival gaps and enforces a cooldown after
// each event. All scheduling is tick-relative, so identically seeded contexts
// replay identically regardless of host timing.
//
// Coordinated hazards (rockfall, rainfall, landslide) are driven by the
// [Orchestrator], a phase state machine that walks Normal, Warning, Danger,
// MainEvent and re-triggers the engaged domains with phase-scaled parameters
// at every transition. Phase updates run before any domain read within a
// tick, so a transition and its sensor effects always appear in the same
// frame.
//
// # Labels
//
// Each domain reports a binary label per tick. The frame's master label is
// the OR of the seismic, hydrological and displacement labels; environmental
// readings are contextual only and never contribute.
//
// # Concurrency
//
// A Context is single-threaded by design: every tick mutates shared state.
// Hosts that run a simulation inside a concurrent process must serialize
// Advance and TriggerHazard calls, typically by giving one goroutine
// ownership of the Context (see internal/broadcast).
package sim
