package waveform

import (
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// Ramp rises linearly from 0 to Target over RampTime and holds Target
// afterwards. A zero RampTime is a step.
type Ramp struct {
	Target   float64
	RampTime float64 // s
}

func (r Ramp) Validate() error {
	if math.IsNaN(r.RampTime) || math.IsInf(r.RampTime, 0) || r.RampTime < 0 {
		return dynamo.Invalid("ramp time must be non-negative (got %v)", r.RampTime)
	}
	return nil
}

func (r Ramp) At(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t >= r.RampTime:
		return r.Target
	default:
		return r.Target * t / r.RampTime
	}
}

// Chirp is a swept sine whose frequency varies linearly from StartHz to
// EndHz over Duration:
//
//	φ(t) = 2π·(f0·t + (f1-f0)·t²/(2T))
//
// It is zero outside [0, Duration].
type Chirp struct {
	Amplitude float64
	StartHz   float64
	EndHz     float64
	Duration  float64 // s
}

func (c Chirp) Validate() error {
	if c.StartHz < 0 || c.EndHz < 0 {
		return dynamo.Invalid("chirp frequencies must be non-negative (got %v, %v)", c.StartHz, c.EndHz)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return dynamo.Invalid("chirp duration must be positive (got %v)", c.Duration)
	}
	return nil
}

func (c Chirp) At(t float64) float64 {
	if t < 0 || t > c.Duration {
		return 0
	}
	return c.Amplitude * math.Sin(c.Phase(t))
}

// Phase is the instantaneous phase in rad.
func (c Chirp) Phase(t float64) float64 {
	return dynamo.TwoPi * (c.StartHz*t + (c.EndHz-c.StartHz)*t*t/(2*c.Duration))
}

// InstantaneousFrequency is f(t) = f0 + (f1-f0)·t/T in Hz.
func (c Chirp) InstantaneousFrequency(t float64) float64 {
	return c.StartHz + (c.EndHz-c.StartHz)*t/c.Duration
}

// Harmonic is Amplitude·sin(2π·f·t) for t >= 0.
type Harmonic struct {
	Amplitude   float64
	FrequencyHz float64
}

func (h Harmonic) At(t float64) float64 {
	if t < 0 {
		return 0
	}
	return h.Amplitude * math.Sin(dynamo.TwoPi*h.FrequencyHz*t)
}

// Constant is a force switched on at t = 0.
type Constant float64

func (c Constant) At(t float64) float64 {
	if t < 0 {
		return 0
	}
	return float64(c)
}

// Sampled replays a uniformly sampled series with linear interpolation.
// It is zero before the first sample and after the last.
type Sampled struct {
	Dt     float64
	Values []float64
}

func (s Sampled) At(t float64) float64 {
	n := len(s.Values)
	if n == 0 || t < 0 || s.Dt <= 0 {
		return 0
	}
	pos := t / s.Dt
	i := int(math.Floor(pos))
	if i >= n-1 {
		// Tolerate rounding on the final sample time.
		if pos-float64(n-1) <= 1e-9 {
			return s.Values[n-1]
		}
		return 0
	}
	frac := pos - float64(i)
	return s.Values[i] + frac*(s.Values[i+1]-s.Values[i])
}

// Duration is the time of the last sample.
func (s Sampled) Duration() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return float64(len(s.Values)-1) * s.Dt
}

// Sample evaluates f on the time grid.
func Sample(f dynamo.Forcing, times []float64) dynamo.Curve {
	return dynamo.CurveOf(times, f.At)
}

// Series samples f at 0, dt, 2dt, ... up to total inclusive.
func Series(f dynamo.Forcing, dt, total float64) (Sampled, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return Sampled{}, dynamo.Invalid("sample step must be positive (got %v)", dt)
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return Sampled{}, dynamo.Invalid("series duration must be positive (got %v)", total)
	}
	n := int(math.Round(total/dt)) + 1
	values := make([]float64, n)
	for i := range values {
		values[i] = f.At(float64(i) * dt)
	}
	return Sampled{Dt: dt, Values: values}, nil
}
