package sim

import (
	"math"
	"strconv"
	"time"
)

// HazardKind identifies a coordinated multi-domain hazard scenario.
type HazardKind string

// Recognized hazard kinds.
const (
	HazardRockfall  HazardKind = "rockfall"
	HazardRainfall  HazardKind = "rainfall"
	HazardLandslide HazardKind = "landslide"
)

// Valid reports whether k is a recognized hazard kind.
func (k HazardKind) Valid() bool {
	switch k {
	case HazardRockfall, HazardRainfall, HazardLandslide:
		return true
	}
	return false
}

// Phase is an ordered stage of a coordinated hazard. Phases only advance
// forward: Normal, Warning, Danger, MainEvent, then back to Idle.
type Phase string

// Hazard phases in their fixed order.
const (
	PhaseIdle      Phase = "idle"
	PhaseNormal    Phase = "normal"
	PhaseWarning   Phase = "warning"
	PhaseDanger    Phase = "danger"
	PhaseMainEvent Phase = "main_event"
)

// phaseOrder is the fixed progression walked by the orchestrator.
var phaseOrder = [4]Phase{PhaseNormal, PhaseWarning, PhaseDanger, PhaseMainEvent}

// Frame is one complete, timestamped reading across all four domains.
// Frames are produced fresh every tick and never mutated after return.
type Frame struct {
	Timestamp time.Time `json:"timestamp"`

	// Seismic channels.
	Accelerometer float64 `json:"accelerometer"`
	Geophone      float64 `json:"geophone"`
	Seismometer   float64 `json:"seismometer"`

	// Hydrological channels.
	MoistureSensor float64 `json:"moisture_sensor"`
	Piezometer     float64 `json:"piezometer"`

	// Displacement channels.
	CrackSensor  float64 `json:"crack_sensor"`
	Inclinometer float64 `json:"inclinometer"`
	Extensometer float64 `json:"extensometer"`

	// Environmental channels (contextual; never drive the label).
	RainSensorMMHr     float64 `json:"rain_sensor_mmhr"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	HumidityPercent    float64 `json:"humidity_percent"`

	// Label is 1 while any of the seismic, hydrological or displacement
	// domains reports an active event (precursors included), else 0.
	Label int `json:"label"`

	// Phase and HazardKind describe the orchestrated hazard, if any.
	// Phase is "idle" and HazardKind empty outside a coordinated hazard.
	Phase      Phase      `json:"phase"`
	HazardKind HazardKind `json:"hazard_kind"`
}

// Header returns the CSV column names in canonical order. Dataset consumers
// rely on this exact set and ordering.
func Header() []string {
	return []string{
		"timestamp",
		"accelerometer", "geophone", "seismometer",
		"moisture_sensor", "piezometer",
		"crack_sensor", "inclinometer", "extensometer",
		"rain_sensor_mmhr", "temperature_celsius", "humidity_percent",
		"label", "phase", "hazard_kind",
	}
}

// Record renders the frame as one CSV row matching Header.
func (f Frame) Record() []string {
	return []string{
		f.Timestamp.UTC().Format(time.RFC3339Nano),
		formatChannel(f.Accelerometer),
		formatChannel(f.Geophone),
		formatChannel(f.Seismometer),
		formatChannel(f.MoistureSensor),
		formatChannel(f.Piezometer),
		formatChannel(f.CrackSensor),
		formatChannel(f.Inclinometer),
		formatChannel(f.Extensometer),
		formatChannel(f.RainSensorMMHr),
		formatChannel(f.TemperatureCelsius),
		formatChannel(f.HumidityPercent),
		strconv.Itoa(f.Label),
		string(f.Phase),
		string(f.HazardKind),
	}
}

func formatChannel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// clamp bounds v to [lo, hi]. Exceeding a physical channel bound is expected
// behavior during large events, not an error.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
