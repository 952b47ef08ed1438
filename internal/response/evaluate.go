package response

import (
	"fmt"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/physics"
)

type ExcitationKind int

const (
	ImpulseExcitation ExcitationKind = iota
	StepExcitation
	HarmonicExcitation
	FreeVibration
)

func (k ExcitationKind) String() string {
	switch k {
	case ImpulseExcitation:
		return "impulse"
	case StepExcitation:
		return "step"
	case HarmonicExcitation:
		return "harmonic"
	case FreeVibration:
		return "free"
	default:
		return "unknown"
	}
}

// ParseExcitation maps a CLI name to an ExcitationKind.
func ParseExcitation(name string) (ExcitationKind, error) {
	for _, k := range []ExcitationKind{ImpulseExcitation, StepExcitation, HarmonicExcitation, FreeVibration} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, dynamo.Invalid("unknown excitation %q", name)
}

// Excitation selects one closed form. Amplitude is the impulse (N·s), the
// step force (N) or the harmonic force amplitude (N) depending on Kind.
type Excitation struct {
	Kind      ExcitationKind
	Amplitude float64
	Omega     float64 // rad/s, harmonic only
	X0        float64 // m, free vibration only
	V0        float64 // m/s, free vibration only
}

// Evaluate returns the displacement for the excitation. Harmonic excitation
// returns the total (steady state plus transient) response.
func Evaluate(sys physics.System, times []float64, ex Excitation) (dynamo.Curve, error) {
	switch ex.Kind {
	case ImpulseExcitation:
		return Impulse(sys, times, ex.Amplitude)
	case StepExcitation:
		return Step(sys, times, ex.Amplitude)
	case HarmonicExcitation:
		res, err := Harmonic(sys, times, ex.Amplitude, ex.Omega)
		if err != nil {
			return nil, err
		}
		return res.Total, nil
	case FreeVibration:
		return Free(sys, times, ex.X0, ex.V0)
	default:
		return nil, fmt.Errorf("evaluate %v: %w", ex.Kind, dynamo.ErrInvalidParameter)
	}
}
