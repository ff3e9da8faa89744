package sim

import "errors"

// Trigger validation errors. All are rejected synchronously at the call site
// with no state mutated; a rejected trigger leaves the simulation running.
var (
	// ErrInvalidHazardKind is returned when a hazard kind is not one of
	// rockfall, rainfall or landslide.
	ErrInvalidHazardKind = errors.New("invalid hazard kind")

	// ErrInvalidDuration is returned when a trigger duration is not positive.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrInvalidEventParams is returned when event parameters are out of
	// range, e.g. a negative magnitude or intensity.
	ErrInvalidEventParams = errors.New("invalid event parameters")
)
