package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation setup and execution.
var (
	// ErrNotRegistered indicates a configured type name has no registered factory.
	ErrNotRegistered = errors.New("dynamo: type not registered")

	// ErrMissingKey indicates a required configuration key is absent.
	ErrMissingKey = errors.New("dynamo: missing configuration key")

	// ErrInvalidConfig indicates a configuration value has the wrong type or range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration value")

	// ErrUnboundResource indicates a required resource was never bound during inspection.
	ErrUnboundResource = errors.New("dynamo: required resource was not bound")

	// ErrStaleHandle indicates a resource handle was used after its simulation finalized.
	ErrStaleHandle = errors.New("dynamo: resource handle used after finalize")

	// ErrInvalidPhase indicates a lifecycle operation was called out of order.
	ErrInvalidPhase = errors.New("dynamo: operation not allowed in current phase")

	// ErrToolNotFound indicates no compute tool answers to the requested name.
	ErrToolNotFound = errors.New("dynamo: compute tool not found")

	// ErrNoGrid indicates a component needs a grid but the simulation has none.
	ErrNoGrid = errors.New("dynamo: simulation has no grid")
)

// StepError wraps a component failure with the clock position it happened at.
type StepError struct {
	Step      int
	Time      float64
	Component string
	Wrapped   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4e) %s: %v", e.Step, e.Time, e.Component, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
