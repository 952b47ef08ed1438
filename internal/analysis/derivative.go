package analysis

import (
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/grid"
)

// CentralDifference recovers velocity and acceleration from displacement
// sampled at a uniform step dt. Interior points use central differences.
// At the endpoints velocity uses the second-order one-sided formula and
// acceleration repeats the three-point stencil of the adjacent sample, so
// both outputs have the length of x.
func CentralDifference(x []float64, dt float64) (v, a []float64, err error) {
	n := len(x)
	if n < 3 {
		return nil, nil, dynamo.Invalid("central difference needs at least 3 samples (got %d)", n)
	}
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return nil, nil, dynamo.Invalid("sample step must be positive (got %v)", dt)
	}

	v = make([]float64, n)
	a = make([]float64, n)
	twoDt := 2 * dt
	dt2 := dt * dt

	for i := 1; i < n-1; i++ {
		v[i] = (x[i+1] - x[i-1]) / twoDt
		a[i] = (x[i+1] - 2*x[i] + x[i-1]) / dt2
	}

	v[0] = (-3*x[0] + 4*x[1] - x[2]) / twoDt
	v[n-1] = (3*x[n-1] - 4*x[n-2] + x[n-3]) / twoDt
	a[0] = a[1]
	a[n-1] = a[n-2]
	return v, a, nil
}

// CentralDifferenceCurve applies CentralDifference to a curve on a uniform
// time grid.
func CentralDifferenceCurve(x dynamo.Curve) (v, a dynamo.Curve, err error) {
	times := x.Xs()
	dt, err := grid.UniformStep(times)
	if err != nil {
		return nil, nil, err
	}
	vs, as, err := CentralDifference(x.Ys(), dt)
	if err != nil {
		return nil, nil, err
	}
	v, _ = dynamo.NewCurve(times, vs)
	a, _ = dynamo.NewCurve(times, as)
	return v, a, nil
}
