// Package frequency evaluates the steady-state frequency-domain quantities
// of an SDOF system: receptance FRF, dynamic stiffness and transmissibility.
//
// Grids are in Hz or rad/s as the caller chooses; returned curves keep the
// caller's grid values on the x axis.
package frequency

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/grid"
	"github.com/san-kum/sdofsim/internal/physics"
)

// resonanceTolerance bounds |1 - r²| treated as exact resonance when undamped.
const resonanceTolerance = 1e-9

type Unit int

const (
	Hz Unit = iota
	RadPerSec
)

func (u Unit) String() string {
	if u == RadPerSec {
		return "rad/s"
	}
	return "Hz"
}

// ToRad converts a grid value in u to rad/s.
func (u Unit) ToRad(f float64) float64 {
	if u == RadPerSec {
		return f
	}
	return dynamo.HzToRad(f)
}

// OutputType selects displacement, velocity or acceleration per unit force.
type OutputType int

const (
	Displacement OutputType = iota
	Velocity
	Acceleration
)

func (o OutputType) String() string {
	switch o {
	case Velocity:
		return "velocity"
	case Acceleration:
		return "acceleration"
	default:
		return "displacement"
	}
}

type FRFResult struct {
	Output OutputType
	// Magnitude is |H| in m/N, (m/s)/N or (m/s²)/N.
	Magnitude dynamo.Curve
	// MagnitudeDB is 20·log10(|H|·k), referenced to static compliance.
	MagnitudeDB dynamo.Curve
	// Phase in degrees. Displacement phase lies in [-180, 0].
	Phase dynamo.Curve
}

// FRF evaluates the displacement receptance H(ω) = 1/((k - mω²) + jcω).
func FRF(sys physics.System, freqs []float64, unit Unit) (*FRFResult, error) {
	return FRFOf(sys, freqs, unit, Displacement)
}

// FRFOf evaluates the FRF for the given output type.
func FRFOf(sys physics.System, freqs []float64, unit Unit, output OutputType) (*FRFResult, error) {
	if err := check(sys, freqs); err != nil {
		return nil, err
	}

	res := &FRFResult{
		Output:      output,
		Magnitude:   make(dynamo.Curve, len(freqs)),
		MagnitudeDB: make(dynamo.Curve, len(freqs)),
		Phase:       make(dynamo.Curve, len(freqs)),
	}

	for i, f := range freqs {
		w := unit.ToRad(f)
		h, err := Receptance(sys, w)
		if err != nil {
			return nil, err
		}

		switch output {
		case Velocity:
			h *= complex(0, w)
		case Acceleration:
			h *= complex(-w*w, 0)
		}

		mag := cmplx.Abs(h)
		res.Magnitude[i] = dynamo.Point{X: f, Y: mag}
		res.MagnitudeDB[i] = dynamo.Point{X: f, Y: dynamo.ToDB(mag * sys.Stiffness)}
		res.Phase[i] = dynamo.Point{X: f, Y: phaseDegrees(h, output)}
	}
	return res, nil
}

// Receptance returns the complex displacement FRF at w rad/s.
func Receptance(sys physics.System, w float64) (complex128, error) {
	re := sys.Stiffness - sys.Mass*w*w
	im := sys.Damping * w
	if im == 0 && math.Abs(re) <= resonanceTolerance*sys.Stiffness {
		return 0, dynamo.ErrResonanceSingularity
	}
	return 1 / complex(re, im), nil
}

func phaseDegrees(h complex128, output OutputType) float64 {
	deg := cmplx.Phase(h) * dynamo.DegreesPerRadian
	if output == Displacement {
		// atan2(-cω, k-mω²) with c, ω >= 0 sits in [-180, 0]; fold the +180
		// produced by a signed zero imaginary part and clear -0.
		if deg > 0 {
			deg -= 360
		}
		if deg == 0 {
			deg = 0
		}
		return deg
	}
	if deg <= -180 {
		deg += 360
	}
	return deg
}

// DynamicStiffness returns |k - mω² + jcω| in N/m over the grid.
func DynamicStiffness(sys physics.System, freqs []float64, unit Unit) (dynamo.Curve, error) {
	if err := check(sys, freqs); err != nil {
		return nil, err
	}
	return dynamo.CurveOf(freqs, func(f float64) float64 {
		w := unit.ToRad(f)
		return math.Hypot(sys.Stiffness-sys.Mass*w*w, sys.Damping*w)
	}), nil
}

// Transmissibility evaluates the force/displacement transmissibility over
// the grid using the system's damping ratio.
func Transmissibility(sys physics.System, freqs []float64, unit Unit) (dynamo.Curve, error) {
	if err := check(sys, freqs); err != nil {
		return nil, err
	}
	m := sys.Modal()
	out := make(dynamo.Curve, len(freqs))
	for i, f := range freqs {
		tr, err := TransmissibilityRatio(m.Zeta, unit.ToRad(f)/m.OmegaN)
		if err != nil {
			return nil, err
		}
		out[i] = dynamo.Point{X: f, Y: tr}
	}
	return out, nil
}

// TransmissibilityRatio is √[(1+(2ζr)²)/((1-r²)²+(2ζr)²)].
func TransmissibilityRatio(zeta, r float64) (float64, error) {
	if zeta < 0 || math.IsNaN(zeta) || r < 0 || math.IsNaN(r) {
		return 0, dynamo.Invalid("transmissibility needs zeta >= 0 and r >= 0 (got %v, %v)", zeta, r)
	}
	oneMinus := 1 - r*r
	twoZetaR := 2 * zeta * r
	if twoZetaR == 0 && math.Abs(oneMinus) <= resonanceTolerance {
		return 0, dynamo.ErrResonanceSingularity
	}
	num := 1 + twoZetaR*twoZetaR
	den := oneMinus*oneMinus + twoZetaR*twoZetaR
	return math.Sqrt(num / den), nil
}

// TransmissibilityFamily evaluates one curve per damping ratio over the
// frequency-ratio grid.
func TransmissibilityFamily(zetas, ratios []float64) ([]dynamo.Curve, error) {
	if err := grid.Validate(ratios); err != nil {
		return nil, err
	}
	out := make([]dynamo.Curve, len(zetas))
	for i, zeta := range zetas {
		c := make(dynamo.Curve, len(ratios))
		for j, r := range ratios {
			tr, err := TransmissibilityRatio(zeta, r)
			if err != nil {
				return nil, err
			}
			c[j] = dynamo.Point{X: r, Y: tr}
		}
		out[i] = c
	}
	return out, nil
}

// FRFNormalized returns |H| and phase for H(r) = 1/((1-r²) + j2ζr).
func FRFNormalized(zeta float64, ratios []float64) (mag, phase dynamo.Curve, err error) {
	if err := grid.Validate(ratios); err != nil {
		return nil, nil, err
	}
	if zeta < 0 || math.IsNaN(zeta) {
		return nil, nil, dynamo.Invalid("damping ratio must be non-negative (got %v)", zeta)
	}
	mag = make(dynamo.Curve, len(ratios))
	phase = make(dynamo.Curve, len(ratios))
	for i, r := range ratios {
		re, im := 1-r*r, 2*zeta*r
		if im == 0 && math.Abs(re) <= resonanceTolerance {
			return nil, nil, dynamo.ErrResonanceSingularity
		}
		h := 1 / complex(re, im)
		mag[i] = dynamo.Point{X: r, Y: cmplx.Abs(h)}
		phase[i] = dynamo.Point{X: r, Y: phaseDegrees(h, Displacement)}
	}
	return mag, phase, nil
}

// ResonanceAmplitude is the peak dynamic magnification 1/(2ζ√(1-ζ²)), or 1
// when ζ >= 1/√2 and the FRF has no peak.
func ResonanceAmplitude(zeta float64) float64 {
	if zeta <= 0 {
		return math.Inf(1)
	}
	if zeta >= 1/math.Sqrt2 {
		return 1
	}
	return 1 / (2 * zeta * math.Sqrt(1-zeta*zeta))
}

// CrossoverRatio is the frequency ratio where every transmissibility curve
// equals 1.
func CrossoverRatio() float64 {
	return math.Sqrt2
}

// PeakTransmissibilityRatio is where d(TR)/dr = 0:
// r² = (√(1+8ζ²) - 1)/(4ζ²). Undamped systems peak at r = 1.
func PeakTransmissibilityRatio(zeta float64) float64 {
	if zeta <= 0 {
		return 1
	}
	return math.Sqrt((math.Sqrt(1+8*zeta*zeta) - 1) / (4 * zeta * zeta))
}

// PeakTransmissibility is TR at PeakTransmissibilityRatio; +Inf undamped.
func PeakTransmissibility(zeta float64) float64 {
	if zeta <= 0 {
		return math.Inf(1)
	}
	tr, err := TransmissibilityRatio(zeta, PeakTransmissibilityRatio(zeta))
	if err != nil {
		return math.Inf(1)
	}
	return tr
}

func check(sys physics.System, freqs []float64) error {
	if err := sys.Validate(); err != nil {
		return err
	}
	if err := grid.Validate(freqs); err != nil {
		return err
	}
	if freqs[0] < 0 {
		return dynamo.Invalid("frequencies must be non-negative (got %v)", freqs[0])
	}
	return nil
}
