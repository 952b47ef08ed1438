// Package waveform synthesizes forcing and base-acceleration histories:
// classical shock pulses, ramps, swept sines and recorded series.
//
// Every waveform implements dynamo.Forcing and is a pure function of time.
package waveform

import (
	"math"
	"strings"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

type PulseShape int

const (
	HalfSine PulseShape = iota
	VersedSine
	Triangular
	Rectangular
	Trapezoidal
	InitialPeakSawtooth
	TerminalPeakSawtooth
)

var shapeNames = map[PulseShape]string{
	HalfSine:             "half-sine",
	VersedSine:           "versed-sine",
	Triangular:           "triangular",
	Rectangular:          "rectangular",
	Trapezoidal:          "trapezoidal",
	InitialPeakSawtooth:  "initial-peak-sawtooth",
	TerminalPeakSawtooth: "terminal-peak-sawtooth",
}

func (s PulseShape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Shapes lists every pulse shape in declaration order.
func Shapes() []PulseShape {
	return []PulseShape{HalfSine, VersedSine, Triangular, Rectangular, Trapezoidal, InitialPeakSawtooth, TerminalPeakSawtooth}
}

// ParseShape accepts the names printed by String, case-insensitive, with
// '_' or ' ' in place of '-'. "haversine" is an alias for versed-sine.
func ParseShape(name string) (PulseShape, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	if norm == "haversine" {
		return VersedSine, nil
	}
	for _, s := range Shapes() {
		if shapeNames[s] == norm {
			return s, nil
		}
	}
	return 0, dynamo.Invalid("unknown pulse shape %q", name)
}

// Default trapezoid edges: a quarter of the duration each.
const (
	DefaultRiseFraction = 0.25
	DefaultFallFraction = 0.25
)

// PulseSpec describes a single shock pulse of peak Amplitude over
// [0, Duration]. RiseFraction and FallFraction apply to Trapezoidal only;
// zero selects the defaults.
type PulseSpec struct {
	Shape        PulseShape
	Amplitude    float64
	Duration     float64 // s
	RiseFraction float64
	FallFraction float64
}

func (p PulseSpec) Validate() error {
	if _, ok := shapeNames[p.Shape]; !ok {
		return dynamo.Invalid("unknown pulse shape %d", int(p.Shape))
	}
	if math.IsNaN(p.Amplitude) || math.IsInf(p.Amplitude, 0) {
		return dynamo.Invalid("pulse amplitude must be finite")
	}
	if math.IsNaN(p.Duration) || math.IsInf(p.Duration, 0) || p.Duration <= 0 {
		return dynamo.Invalid("pulse duration must be positive (got %v)", p.Duration)
	}
	if p.Shape == Trapezoidal {
		rise, fall := p.edges()
		if rise <= 0 || fall <= 0 || rise+fall > 1 {
			return dynamo.Invalid("trapezoid rise (%v) and fall (%v) fractions must be positive and sum to at most 1", rise, fall)
		}
	}
	return nil
}

func (p PulseSpec) edges() (rise, fall float64) {
	rise, fall = p.RiseFraction, p.FallFraction
	if rise == 0 {
		rise = DefaultRiseFraction
	}
	if fall == 0 {
		fall = DefaultFallFraction
	}
	return rise, fall
}

// At evaluates the pulse. It is zero outside [0, Duration].
func (p PulseSpec) At(t float64) float64 {
	tau := p.Duration
	if t < 0 || t > tau || tau <= 0 {
		return 0
	}
	u := t / tau
	a := p.Amplitude

	switch p.Shape {
	case HalfSine:
		return a * math.Sin(math.Pi*u)
	case VersedSine:
		return a * (1 - math.Cos(2*math.Pi*u)) / 2
	case Triangular:
		if u <= 0.5 {
			return a * 2 * u
		}
		return a * 2 * (1 - u)
	case Rectangular:
		return a
	case Trapezoidal:
		rise, fall := p.edges()
		switch {
		case u < rise:
			return a * u / rise
		case u > 1-fall:
			return a * (1 - u) / fall
		default:
			return a
		}
	case InitialPeakSawtooth:
		return a * (1 - u)
	case TerminalPeakSawtooth:
		return a * u
	default:
		return 0
	}
}

// CharacteristicFrequency is 1/(2τ) in Hz, where the SRS of a single pulse
// typically peaks.
func (p PulseSpec) CharacteristicFrequency() float64 {
	return 1 / (2 * p.Duration)
}

// InG returns a copy with Amplitude converted from g to m/s^2.
func (p PulseSpec) InG() PulseSpec {
	p.Amplitude = dynamo.GToMS2(p.Amplitude)
	return p
}
