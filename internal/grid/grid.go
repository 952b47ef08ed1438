// Package grid builds and validates the sample grids every engine component
// consumes. Grids are plain, strictly increasing []float64 owned by the
// caller.
package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// MaxPoints bounds grid size for a single analysis.
const MaxPoints = 100000

type Spacing int

const (
	Linear Spacing = iota
	Logarithmic
)

func (s Spacing) String() string {
	if s == Logarithmic {
		return "log"
	}
	return "linear"
}

// Spec describes a frequency grid: Count points from Start to Stop inclusive.
type Spec struct {
	Start   float64
	Stop    float64
	Count   int
	Spacing Spacing
}

func (s Spec) Validate() error {
	if !finite(s.Start) || !finite(s.Stop) {
		return dynamo.Invalid("grid bounds must be finite")
	}
	if s.Start < 0 {
		return dynamo.Invalid("grid start must be non-negative (got %v)", s.Start)
	}
	if s.Spacing == Logarithmic && s.Start <= 0 {
		return dynamo.Invalid("log grid start must be positive (got %v)", s.Start)
	}
	if s.Stop <= s.Start {
		return dynamo.Invalid("grid stop (%v) must be greater than start (%v)", s.Stop, s.Start)
	}
	if s.Count < 2 {
		return dynamo.Invalid("grid needs at least 2 points (got %d)", s.Count)
	}
	if s.Count > MaxPoints {
		return dynamo.Invalid("grid exceeds %d points (got %d)", MaxPoints, s.Count)
	}
	return nil
}

// Build returns the grid values.
func (s Spec) Build() ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	dst := make([]float64, s.Count)
	if s.Spacing == Logarithmic {
		floats.LogSpan(dst, s.Start, s.Stop)
	} else {
		floats.Span(dst, s.Start, s.Stop)
	}
	return dst, nil
}

// Uniform returns the time grid 0, dt, 2dt, ... covering duration.
func Uniform(dt, duration float64) ([]float64, error) {
	if !finite(dt) || dt <= 0 {
		return nil, dynamo.Invalid("time step must be positive (got %v)", dt)
	}
	if !finite(duration) || duration <= 0 {
		return nil, dynamo.Invalid("duration must be positive (got %v)", duration)
	}
	steps := int(math.Round(duration / dt))
	if steps < 1 {
		return nil, dynamo.Invalid("duration %v shorter than one step %v", duration, dt)
	}
	if steps+1 > MaxPoints*10 {
		return nil, dynamo.Invalid("time grid exceeds %d points", MaxPoints*10)
	}
	out := make([]float64, steps+1)
	for i := range out {
		out[i] = float64(i) * dt
	}
	return out, nil
}

// Validate checks that xs is non-empty, finite and strictly increasing.
func Validate(xs []float64) error {
	if len(xs) == 0 {
		return dynamo.Invalid("empty grid")
	}
	for i, x := range xs {
		if !finite(x) {
			return dynamo.Invalid("grid value %d is not finite", i)
		}
		if i > 0 && x <= xs[i-1] {
			return dynamo.Invalid("grid not strictly increasing at index %d", i)
		}
	}
	return nil
}

// UniformStep returns the step of a uniformly spaced grid, within a relative
// tolerance of 1e-6.
func UniformStep(xs []float64) (float64, error) {
	if err := Validate(xs); err != nil {
		return 0, err
	}
	if len(xs) < 2 {
		return 0, dynamo.Invalid("need at least 2 samples to infer a step")
	}
	dt := (xs[len(xs)-1] - xs[0]) / float64(len(xs)-1)
	for i := 1; i < len(xs); i++ {
		if math.Abs((xs[i]-xs[i-1])-dt) > 1e-6*dt {
			return 0, dynamo.Invalid("grid not uniform at index %d", i)
		}
	}
	return dt, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
