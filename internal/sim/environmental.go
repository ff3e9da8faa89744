package sim

import (
	"fmt"
	"math"

	"github.com/rudresh69/SIH2025/internal/noise"
)

// Environmental configuration. The domain is contextual only: its readings
// never contribute to the master label.
const (
	envFS = 2

	rainEventProbPerTick = 0.0001
	rainMinSec           = 3600     // 1 hour
	rainMaxSec           = 3600 * 8 // 8 hours
	rainMinIntensity     = 5.0      // mm/hr
	rainMaxIntensity     = 50.0

	baseTemperature = 15.0
	baseHumidity    = 60.0
)

// EnvParams configures a rain sub-event on the environmental domain.
type EnvParams struct {
	// IntensityMMHr is the constant rainfall rate for the event's duration.
	// Must be non-negative.
	IntensityMMHr float64

	// DurationTicks is the rain duration. Must be positive.
	DurationTicks int
}

// EnvReading holds the three environmental channel values for one tick.
type EnvReading struct {
	RainSensorMMHr     float64
	TemperatureCelsius float64
	HumidityPercent    float64
}

type rainEvent struct {
	remainingTicks int
	intensity      float64
}

// EnvironmentalSim simulates a rain gauge, thermometer and hygrometer.
// Temperature follows seasonal and diurnal cycles; humidity runs inversely
// to the diurnal temperature swing and rises while it rains. Rain arrives as
// an independent sub-event with constant intensity.
type EnvironmentalSim struct {
	tick     uint64
	rng      *noise.Generator
	counters *DebugCounters

	// autonomousRain enables the spontaneous rain process. The orchestrator
	// can still trigger rain explicitly when it is off.
	autonomousRain bool

	rain *rainEvent
}

// NewEnvironmentalSim creates an environmental simulator.
func NewEnvironmentalSim(rng *noise.Generator, autonomousRain bool, counters *DebugCounters) *EnvironmentalSim {
	return &EnvironmentalSim{rng: rng, autonomousRain: autonomousRain, counters: counters}
}

// TriggerRain starts a rain sub-event, replacing any active one.
func (e *EnvironmentalSim) TriggerRain(p EnvParams) error {
	if p.DurationTicks <= 0 {
		return fmt.Errorf("environmental trigger: %w", ErrInvalidDuration)
	}
	if p.IntensityMMHr < 0 {
		return fmt.Errorf("environmental trigger: intensity %.2f: %w",
			p.IntensityMMHr, ErrInvalidEventParams)
	}
	e.rain = &rainEvent{remainingTicks: p.DurationTicks, intensity: p.IntensityMMHr}
	return nil
}

// Clear removes any active rain sub-event. Idempotent.
func (e *EnvironmentalSim) Clear() {
	e.rain = nil
}

// Raining reports whether a rain sub-event is active.
func (e *EnvironmentalSim) Raining() bool {
	return e.rain != nil
}

// AdvanceAndRead advances one tick and returns the channel readings. The
// environmental domain has no label; it always reports 0.
func (e *EnvironmentalSim) AdvanceAndRead() (EnvReading, int) {
	e.tick++

	if e.rain != nil {
		e.rain.remainingTicks--
		if e.rain.remainingTicks <= 0 {
			if e.rain.remainingTicks < 0 {
				e.counters.noteClamp()
			}
			e.rain = nil
		}
	} else if e.autonomousRain && e.rng.Float64() < rainEventProbPerTick {
		durSec := e.rng.Uniform(rainMinSec, rainMaxSec)
		e.rain = &rainEvent{
			remainingTicks: int(durSec * envFS),
			intensity:      e.rng.Uniform(rainMinIntensity, rainMaxIntensity),
		}
	}

	rain := 0.0
	if e.rain != nil {
		rain = e.rain.intensity + e.rng.Uniform(-1, 1)
	}
	rain += e.rng.Uniform(0, 0.2) // background drizzle and gauge noise

	t := float64(e.tick)
	seasonal := 8 * math.Sin(2*math.Pi*t/(3600*24*365*envFS))
	diurnal := 5 * math.Sin(2*math.Pi*t/(3600*24*envFS))
	temperature := baseTemperature + seasonal + diurnal + e.rng.Gaussian(0, 0.2)

	humidity := baseHumidity - diurnal*4 + e.rng.Gaussian(0, 2)
	if e.rain != nil {
		humidity += 20
	}

	return EnvReading{
		RainSensorMMHr:     roundTo(math.Max(0, rain), 2),
		TemperatureCelsius: roundTo(temperature, 2),
		HumidityPercent:    roundTo(clamp(humidity, 0, 100), 2),
	}, 0
}
