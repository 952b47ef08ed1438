package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// RegimeTolerance is the |ζ-1| band routed to the critically damped forms.
const RegimeTolerance = 1e-9

type Regime int

const (
	Underdamped Regime = iota
	CriticallyDamped
	Overdamped
)

func (r Regime) String() string {
	switch r {
	case Underdamped:
		return "underdamped"
	case CriticallyDamped:
		return "critically damped"
	case Overdamped:
		return "overdamped"
	default:
		return "unknown"
	}
}

// System is a single-degree-of-freedom mass-spring-damper. Damping is the
// canonical representation; the ratio is derived.
type System struct {
	Mass      float64 // kg
	Stiffness float64 // N/m
	Damping   float64 // N·s/m
}

// NewSystem validates m > 0, k > 0, c >= 0.
func NewSystem(mass, stiffness, damping float64) (System, error) {
	if err := positive("mass", mass); err != nil {
		return System{}, err
	}
	if err := positive("stiffness", stiffness); err != nil {
		return System{}, err
	}
	if err := nonNegative("damping", damping); err != nil {
		return System{}, err
	}
	return System{Mass: mass, Stiffness: stiffness, Damping: damping}, nil
}

// FromDampingRatio builds a system with c = 2ζ√(km).
func FromDampingRatio(mass, stiffness, zeta float64) (System, error) {
	if err := positive("mass", mass); err != nil {
		return System{}, err
	}
	if err := positive("stiffness", stiffness); err != nil {
		return System{}, err
	}
	if err := nonNegative("damping ratio", zeta); err != nil {
		return System{}, err
	}
	return System{
		Mass:      mass,
		Stiffness: stiffness,
		Damping:   zeta * criticalDamping(mass, stiffness),
	}, nil
}

// FromQ builds a system from the quality factor Q = 1/(2ζ).
func FromQ(mass, stiffness, q float64) (System, error) {
	if err := positive("Q", q); err != nil {
		return System{}, err
	}
	return FromDampingRatio(mass, stiffness, 1/(2*q))
}

// FromNaturalFrequency builds a unit-mass oscillator tuned to fnHz. This is
// the virtual oscillator of the shock response spectrum.
func FromNaturalFrequency(fnHz, zeta float64) (System, error) {
	if err := positive("natural frequency", fnHz); err != nil {
		return System{}, err
	}
	wn := dynamo.HzToRad(fnHz)
	return FromDampingRatio(1, wn*wn, zeta)
}

// Coefficients implements dynamo.Oscillator.
func (s System) Coefficients() (m, c, k float64) {
	return s.Mass, s.Damping, s.Stiffness
}

func (s System) Validate() error {
	_, err := NewSystem(s.Mass, s.Stiffness, s.Damping)
	return err
}

// Derive returns (x', v') of the state-space form for an applied force f.
func (s System) Derive(x, v, f float64) (dx, dv float64) {
	return v, (f - s.Damping*v - s.Stiffness*x) / s.Mass
}

// Energy is kinetic plus strain energy in J.
func (s System) Energy(x, v float64) float64 {
	return 0.5*s.Mass*v*v + 0.5*s.Stiffness*x*x
}

func (s System) GetParams() map[string]float64 {
	m := s.Modal()
	return map[string]float64{
		"mass":          s.Mass,
		"stiffness":     s.Stiffness,
		"damping":       s.Damping,
		"damping_ratio": m.Zeta,
		"fn_hz":         m.FnHz,
	}
}

// Modal holds the parameters derived from a System.
type Modal struct {
	OmegaN          float64 // rad/s
	FnHz            float64
	Zeta            float64
	CriticalDamping float64 // N·s/m
	// OmegaD and FdHz are zero unless Regime is Underdamped.
	OmegaD float64
	FdHz   float64
	Regime Regime
}

func (s System) Modal() Modal {
	wn := math.Sqrt(s.Stiffness / s.Mass)
	cc := criticalDamping(s.Mass, s.Stiffness)
	zeta := s.Damping / cc

	m := Modal{
		OmegaN:          wn,
		FnHz:            dynamo.RadToHz(wn),
		Zeta:            zeta,
		CriticalDamping: cc,
		Regime:          ClassifyRegime(zeta),
	}
	if m.Regime == Underdamped {
		m.OmegaD = wn * math.Sqrt(1-zeta*zeta)
		m.FdHz = dynamo.RadToHz(m.OmegaD)
	}
	return m
}

// ClassifyRegime applies RegimeTolerance around ζ = 1.
func ClassifyRegime(zeta float64) Regime {
	switch {
	case math.Abs(zeta-1) < RegimeTolerance:
		return CriticallyDamped
	case zeta < 1:
		return Underdamped
	default:
		return Overdamped
	}
}

// Q is the quality factor 1/(2ζ); +Inf when undamped.
func (m Modal) Q() float64 {
	if m.Zeta == 0 {
		return math.Inf(1)
	}
	return 1 / (2 * m.Zeta)
}

// HalfPowerBandwidth is Δω ≈ 2ζωn in rad/s.
func (m Modal) HalfPowerBandwidth() float64 {
	return 2 * m.Zeta * m.OmegaN
}

// StaticDeflection is F/k.
func (s System) StaticDeflection(force float64) float64 {
	return force / s.Stiffness
}

func (s System) String() string {
	m := s.Modal()
	return fmt.Sprintf(
		"mass=%.4g kg stiffness=%.4g N/m damping=%.4g N·s/m wn=%.4g rad/s (%.4g Hz) zeta=%.4g wd=%.4g rad/s (%s)",
		s.Mass, s.Stiffness, s.Damping, m.OmegaN, m.FnHz, m.Zeta, m.OmegaD, m.Regime,
	)
}

func criticalDamping(mass, stiffness float64) float64 {
	return 2 * math.Sqrt(stiffness*mass)
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return dynamo.Invalid("%s must be positive (got %v)", name, v)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return dynamo.Invalid("%s must be non-negative (got %v)", name, v)
	}
	return nil
}
