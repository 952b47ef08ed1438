package integrators

import "github.com/san-kum/sdofsim/internal/dynamo"

// Verlet is velocity Verlet with the damping force evaluated at the
// half-step velocity. It is explicit and conditionally stable (dt·ωn < 2
// when undamped).
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (vv *Verlet) Step(osc dynamo.Oscillator, s dynamo.State, f dynamo.Forcing, t, dt float64) (dynamo.State, error) {
	if err := checkStep(dt); err != nil {
		return s, err
	}
	m, c, k := osc.Coefficients()
	if !(m > 0) {
		return s, dynamo.ErrDegenerateStep
	}

	halfDt := 0.5 * dt
	vHalf := s.V + s.A*halfDt
	x := s.X + vHalf*dt
	a := acceleration(m, c, k, x, vHalf, f.At(t+dt))

	return dynamo.State{X: x, V: vHalf + a*halfDt, A: a}, nil
}
