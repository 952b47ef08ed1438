package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for response computations.
var (
	// ErrInvalidParameter indicates non-physical input: mass or stiffness <= 0,
	// negative damping, a malformed grid or a non-finite value.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrResonanceSingularity indicates undamped excitation exactly at the
	// natural frequency, where the closed form has no finite value.
	ErrResonanceSingularity = errors.New("dynamo: undamped excitation at natural frequency")

	// ErrDegenerateStep indicates a non-positive effective mass in the
	// integrator update. Unreachable for physical m, c, k and dt > 0.
	ErrDegenerateStep = errors.New("dynamo: degenerate integrator step")

	// ErrContextCanceled indicates the computation was interrupted.
	ErrContextCanceled = errors.New("dynamo: computation canceled by context")
)

// Invalid wraps ErrInvalidParameter with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// StepError wraps an error with integration context.
type StepError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
