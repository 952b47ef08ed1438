package integrators

import "github.com/san-kum/sdofsim/internal/dynamo"

// RK4 integrates the first-order form x' = v, v' = (F - c·v - k·x)/m with
// the classical fourth-order Runge-Kutta scheme. It serves as a
// cross-check for Newmark; A in the returned state is evaluated from the
// equation of motion at t+dt.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(osc dynamo.Oscillator, s dynamo.State, f dynamo.Forcing, t, dt float64) (dynamo.State, error) {
	if err := checkStep(dt); err != nil {
		return s, err
	}
	m, c, k := osc.Coefficients()
	if !(m > 0) {
		return s, dynamo.ErrDegenerateStep
	}

	half := 0.5 * dt
	fMid := f.At(t + half)
	fEnd := f.At(t + dt)

	k1x, k1v := s.V, acceleration(m, c, k, s.X, s.V, f.At(t))

	x2, v2 := s.X+half*k1x, s.V+half*k1v
	k2x, k2v := v2, acceleration(m, c, k, x2, v2, fMid)

	x3, v3 := s.X+half*k2x, s.V+half*k2v
	k3x, k3v := v3, acceleration(m, c, k, x3, v3, fMid)

	x4, v4 := s.X+dt*k3x, s.V+dt*k3v
	k4x, k4v := v4, acceleration(m, c, k, x4, v4, fEnd)

	dt6 := dt / 6.0
	x := s.X + dt6*(k1x+2*k2x+2*k3x+k4x)
	v := s.V + dt6*(k1v+2*k2v+2*k3v+k4v)

	return dynamo.State{X: x, V: v, A: acceleration(m, c, k, x, v, fEnd)}, nil
}
