// Package response holds the closed-form time responses of an SDOF system.
//
// Each excitation has one formula per damping regime. The regime is read
// once from [physics.Modal] and selects a kernel t -> x(t); the kernel is
// then mapped over the caller's time grid. Samples at t < 0 are zero.
package response

import (
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/grid"
	"github.com/san-kum/sdofsim/internal/physics"
)

// resonanceTolerance bounds |ω-ωn|/ωn treated as exact undamped resonance.
const resonanceTolerance = 1e-9

type kernel func(t float64) float64

// Impulse returns the displacement after an impulse of the given magnitude
// (N·s) applied at t = 0.
func Impulse(sys physics.System, times []float64, impulse float64) (dynamo.Curve, error) {
	if err := check(sys, times); err != nil {
		return nil, err
	}
	return sample(times, impulseKernel(sys, impulse)), nil
}

func impulseKernel(sys physics.System, impulse float64) kernel {
	m := sys.Modal()
	wn, zeta := m.OmegaN, m.Zeta

	switch m.Regime {
	case physics.Underdamped:
		wd := m.OmegaD
		amp := impulse / (sys.Mass * wd)
		return func(t float64) float64 {
			return amp * math.Exp(-zeta*wn*t) * math.Sin(wd*t)
		}
	case physics.CriticallyDamped:
		amp := impulse / sys.Mass
		return func(t float64) float64 {
			return amp * t * math.Exp(-wn*t)
		}
	default:
		ws := wn * math.Sqrt(zeta*zeta-1)
		amp := impulse / (sys.Mass * ws)
		return func(t float64) float64 {
			return amp * expSinh(-zeta*wn, ws, t)
		}
	}
}

// Step returns the displacement under a force f0 switched on at t = 0. It
// settles to the static deflection f0/k in every regime.
func Step(sys physics.System, times []float64, f0 float64) (dynamo.Curve, error) {
	if err := check(sys, times); err != nil {
		return nil, err
	}
	return sample(times, stepKernel(sys, f0)), nil
}

func stepKernel(sys physics.System, f0 float64) kernel {
	m := sys.Modal()
	wn, zeta := m.OmegaN, m.Zeta
	xs := sys.StaticDeflection(f0)

	switch m.Regime {
	case physics.Underdamped:
		wd := m.OmegaD
		ratio := zeta / math.Sqrt(1-zeta*zeta)
		return func(t float64) float64 {
			return xs * (1 - math.Exp(-zeta*wn*t)*(math.Cos(wd*t)+ratio*math.Sin(wd*t)))
		}
	case physics.CriticallyDamped:
		return func(t float64) float64 {
			return xs * (1 - (1+wn*t)*math.Exp(-wn*t))
		}
	default:
		root := math.Sqrt(zeta*zeta - 1)
		s1 := -wn * (zeta - root)
		s2 := -wn * (zeta + root)
		return func(t float64) float64 {
			return xs * (1 + (s1*math.Exp(s2*t)-s2*math.Exp(s1*t))/(s2-s1))
		}
	}
}

// Free returns the unforced response from x(0) = x0, v(0) = v0.
func Free(sys physics.System, times []float64, x0, v0 float64) (dynamo.Curve, error) {
	if err := check(sys, times); err != nil {
		return nil, err
	}
	return sample(times, freeKernel(sys, x0, v0)), nil
}

func freeKernel(sys physics.System, x0, v0 float64) kernel {
	m := sys.Modal()
	wn, zeta := m.OmegaN, m.Zeta

	switch m.Regime {
	case physics.Underdamped:
		wd := m.OmegaD
		a := x0
		b := (v0 + zeta*wn*x0) / wd
		return func(t float64) float64 {
			return math.Exp(-zeta*wn*t) * (a*math.Cos(wd*t) + b*math.Sin(wd*t))
		}
	case physics.CriticallyDamped:
		a := x0
		b := v0 + wn*x0
		return func(t float64) float64 {
			return (a + b*t) * math.Exp(-wn*t)
		}
	default:
		root := math.Sqrt(zeta*zeta - 1)
		s1 := wn * (-zeta + root)
		s2 := wn * (-zeta - root)
		a := (v0 - s2*x0) / (s1 - s2)
		b := (s1*x0 - v0) / (s1 - s2)
		return func(t float64) float64 {
			return a*math.Exp(s1*t) + b*math.Exp(s2*t)
		}
	}
}

// HarmonicResponse splits the response to F0·sin(ωt) from rest.
type HarmonicResponse struct {
	SteadyState dynamo.Curve
	Transient   dynamo.Curve
	Total       dynamo.Curve
	// Amplitude and Phase describe x_ss(t) = Amplitude·sin(ωt - Phase).
	Amplitude float64
	Phase     float64 // rad, in [0, π]
}

// Harmonic returns the response to F0·sin(ωt), ω in rad/s, starting from
// rest. The transient is the free response that cancels the steady state's
// initial displacement and velocity. Undamped forcing at ωn has no bounded
// solution and returns dynamo.ErrResonanceSingularity.
func Harmonic(sys physics.System, times []float64, f0, omega float64) (*HarmonicResponse, error) {
	if err := check(sys, times); err != nil {
		return nil, err
	}
	if omega < 0 || math.IsNaN(omega) || math.IsInf(omega, 0) {
		return nil, dynamo.Invalid("excitation frequency must be non-negative (got %v)", omega)
	}

	m := sys.Modal()
	if sys.Damping == 0 && math.Abs(omega-m.OmegaN) <= resonanceTolerance*m.OmegaN {
		return nil, dynamo.ErrResonanceSingularity
	}

	re := sys.Stiffness - sys.Mass*omega*omega
	im := sys.Damping * omega
	amp := f0 / math.Hypot(re, im)
	phi := math.Atan2(im, re)

	steady := func(t float64) float64 { return amp * math.Sin(omega*t-phi) }
	// x_ss(0) = -X·sin φ and v_ss(0) = X·ω·cos φ; the transient starts at
	// their negatives so that x(0) = v(0) = 0.
	transient := freeKernel(sys, amp*math.Sin(phi), -amp*omega*math.Cos(phi))

	res := &HarmonicResponse{
		SteadyState: sample(times, steady),
		Transient:   sample(times, transient),
		Amplitude:   amp,
		Phase:       phi,
	}
	res.Total = make(dynamo.Curve, len(times))
	for i := range times {
		res.Total[i] = dynamo.Point{X: times[i], Y: res.SteadyState[i].Y + res.Transient[i].Y}
	}
	return res, nil
}

// DecayEnvelope is x0·exp(-ζωn·t), the bound of the underdamped free response.
func DecayEnvelope(sys physics.System, times []float64, x0 float64) (dynamo.Curve, error) {
	if err := check(sys, times); err != nil {
		return nil, err
	}
	m := sys.Modal()
	return sample(times, func(t float64) float64 {
		return x0 * math.Exp(-m.Zeta*m.OmegaN*t)
	}), nil
}

// LogDecrement is δ = 2πζ/√(1-ζ²), defined only for 0 < ζ < 1.
func LogDecrement(sys physics.System) (float64, error) {
	if err := sys.Validate(); err != nil {
		return 0, err
	}
	zeta := sys.Modal().Zeta
	if zeta <= 0 || zeta >= 1 {
		return 0, dynamo.Invalid("logarithmic decrement needs 0 < zeta < 1 (got %v)", zeta)
	}
	return 2 * math.Pi * zeta / math.Sqrt(1-zeta*zeta), nil
}

// expSinh evaluates exp(a·t)·sinh(b·t) without overflowing for large t.
func expSinh(a, b, t float64) float64 {
	return 0.5 * (math.Exp((a+b)*t) - math.Exp((a-b)*t))
}

func sample(times []float64, k kernel) dynamo.Curve {
	return dynamo.CurveOf(times, func(t float64) float64 {
		if t < 0 {
			return 0
		}
		return k(t)
	})
}

func check(sys physics.System, times []float64) error {
	if err := sys.Validate(); err != nil {
		return err
	}
	return grid.Validate(times)
}
