package integrators

import (
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// Average-acceleration parameters. Not configurable.
const (
	Gamma = 0.5
	Beta  = 0.25
)

// Newmark is the Newmark-beta average-acceleration stepper. The state must
// carry a consistent acceleration; the simulator seeds it from the
// equation of motion at t = 0.
type Newmark struct{}

func NewNewmark() *Newmark {
	return &Newmark{}
}

func (n *Newmark) Step(osc dynamo.Oscillator, s dynamo.State, f dynamo.Forcing, t, dt float64) (dynamo.State, error) {
	if err := checkStep(dt); err != nil {
		return s, err
	}
	m, c, k := osc.Coefficients()

	denom := m + Gamma*dt*c + Beta*dt*dt*k
	if !(denom > 0) {
		return s, dynamo.ErrDegenerateStep
	}

	// Predictors from the known state, then solve for a(t+dt).
	xp := s.X + dt*s.V + dt*dt*(0.5-Beta)*s.A
	vp := s.V + dt*(1-Gamma)*s.A
	a := (f.At(t+dt) - k*xp - c*vp) / denom

	return dynamo.State{
		X: xp + Beta*dt*dt*a,
		V: vp + Gamma*dt*a,
		A: a,
	}, nil
}

func checkStep(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return dynamo.Invalid("time step must be positive (got %v)", dt)
	}
	return nil
}

// acceleration solves the equation of motion for ẍ.
func acceleration(m, c, k, x, v, f float64) float64 {
	return (f - c*v - k*x) / m
}

// InitialAcceleration is a0 = (F(0) - c·v0 - k·x0)/m.
func InitialAcceleration(osc dynamo.Oscillator, x0, v0, f0 float64) (float64, error) {
	m, c, k := osc.Coefficients()
	if !(m > 0) {
		return 0, dynamo.ErrDegenerateStep
	}
	return acceleration(m, c, k, x0, v0, f0), nil
}
