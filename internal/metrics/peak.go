package metrics

import (
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// Peak tracks max |q| of one state component over the run.
type Peak struct {
	name  string
	pick  func(dynamo.State) float64
	scale float64
	peak  float64
	at    float64
}

// NewPeakDisplacement reports the peak displacement in mm.
func NewPeakDisplacement() *Peak {
	return &Peak{
		name:  "peak_displacement_mm",
		pick:  func(s dynamo.State) float64 { return s.X },
		scale: dynamo.MillimetersPerMeter,
	}
}

func NewPeakVelocity() *Peak {
	return &Peak{
		name:  "peak_velocity",
		pick:  func(s dynamo.State) float64 { return s.V },
		scale: 1,
	}
}

// NewPeakAcceleration reports the peak relative acceleration in m/s^2.
func NewPeakAcceleration() *Peak {
	return &Peak{
		name:  "peak_acceleration",
		pick:  func(s dynamo.State) float64 { return s.A },
		scale: 1,
	}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(s dynamo.State, force, t float64) {
	if v := math.Abs(p.pick(s)) * p.scale; v > p.peak {
		p.peak = v
		p.at = t
	}
}

func (p *Peak) Value() float64 { return p.peak }

// Time is when the peak occurred.
func (p *Peak) Time() float64 { return p.at }

func (p *Peak) Reset() {
	p.peak = 0
	p.at = 0
}

// TransmittedForce tracks the peak force through the spring and damper,
// |k·x + c·v|, into the support.
type TransmittedForce struct {
	name string
	osc  dynamo.Oscillator
	peak float64
}

func NewTransmittedForce(osc dynamo.Oscillator) *TransmittedForce {
	return &TransmittedForce{name: "peak_transmitted_force", osc: osc}
}

func (f *TransmittedForce) Name() string { return f.name }

func (f *TransmittedForce) Observe(s dynamo.State, force, t float64) {
	_, c, k := f.osc.Coefficients()
	f.peak = math.Max(f.peak, math.Abs(k*s.X+c*s.V))
}

func (f *TransmittedForce) Value() float64 { return f.peak }

func (f *TransmittedForce) Reset() { f.peak = 0 }
