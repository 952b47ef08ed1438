package dynamo

import (
	"fmt"
	"math"
)

// State is the integrator state at one step.
type State struct {
	X float64 // displacement, m
	V float64 // velocity, m/s
	A float64 // acceleration, m/s^2
}

func (s State) IsValid() bool {
	for _, v := range [...]float64{s.X, s.V, s.A} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) String() string {
	return fmt.Sprintf("x=%.6g v=%.6g a=%.6g", s.X, s.V, s.A)
}

// Point is one sample of a response curve.
type Point struct {
	X float64
	Y float64
}

// Curve is an ordered sequence of samples over a time or frequency grid.
type Curve []Point

// NewCurve pairs xs with ys. Both slices must have the same length.
func NewCurve(xs, ys []float64) (Curve, error) {
	if len(xs) != len(ys) {
		return nil, Invalid("curve length mismatch: %d x values, %d y values", len(xs), len(ys))
	}
	c := make(Curve, len(xs))
	for i := range xs {
		c[i] = Point{X: xs[i], Y: ys[i]}
	}
	return c, nil
}

// CurveOf evaluates fn at every grid value.
func CurveOf(xs []float64, fn func(x float64) float64) Curve {
	c := make(Curve, len(xs))
	for i, x := range xs {
		c[i] = Point{X: x, Y: fn(x)}
	}
	return c
}

func (c Curve) Xs() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.X
	}
	return out
}

func (c Curve) Ys() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Y
	}
	return out
}

// Scale returns a copy with every y multiplied by factor.
func (c Curve) Scale(factor float64) Curve {
	out := make(Curve, len(c))
	for i, p := range c {
		out[i] = Point{X: p.X, Y: p.Y * factor}
	}
	return out
}

// Map returns a copy with fn applied to every y.
func (c Curve) Map(fn func(y float64) float64) Curve {
	out := make(Curve, len(c))
	for i, p := range c {
		out[i] = Point{X: p.X, Y: fn(p.Y)}
	}
	return out
}

// Forcing is a scalar excitation: force in N, or base acceleration in m/s^2.
type Forcing interface {
	At(t float64) float64
}

// ForcingFunc adapts a plain function to Forcing.
type ForcingFunc func(t float64) float64

func (f ForcingFunc) At(t float64) float64 { return f(t) }

// Oscillator exposes the coefficients of m·ẍ + c·ẋ + k·x = F.
type Oscillator interface {
	Coefficients() (m, c, k float64)
}

// Integrator advances an oscillator by one step of size dt starting at t.
type Integrator interface {
	Step(osc Oscillator, s State, f Forcing, t, dt float64) (State, error)
}

// Metric accumulates a scalar over the steps of one run.
type Metric interface {
	Name() string
	Observe(s State, force, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s State, force, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
	// StabilityThreshold is the dt·ωn ratio above which a run logs a warning.
	StabilityThreshold float64
	ValidateState      bool
}

func DefaultConfig() Config {
	return Config{
		Dt:                 1e-3,
		Duration:           1.0,
		StabilityThreshold: 0.1,
		ValidateState:      true,
	}
}

// Steps returns the number of uniform steps covering Duration.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

type Result struct {
	Times      []float64
	States     []State
	Forces     []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Displacement returns x(t) in metres.
func (r *Result) Displacement() Curve {
	return r.component(func(s State) float64 { return s.X })
}

// Velocity returns v(t) from the integrator recurrence.
func (r *Result) Velocity() Curve {
	return r.component(func(s State) float64 { return s.V })
}

// Acceleration returns a(t) from the integrator recurrence.
func (r *Result) Acceleration() Curve {
	return r.component(func(s State) float64 { return s.A })
}

func (r *Result) component(pick func(State) float64) Curve {
	c := make(Curve, len(r.States))
	for i, s := range r.States {
		c[i] = Point{X: r.Times[i], Y: pick(s)}
	}
	return c
}
