package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// Spectrum returns the one-sided amplitude spectrum of a real series
// sampled at dt: bin k sits at k/(N·dt) Hz and a pure sine of amplitude A
// on a bin centre reads A.
func Spectrum(values []float64, dt float64) (dynamo.Curve, error) {
	n := len(values)
	if n < 2 {
		return nil, dynamo.Invalid("spectrum needs at least 2 samples (got %d)", n)
	}
	if !(dt > 0) {
		return nil, dynamo.Invalid("sample step must be positive (got %v)", dt)
	}

	coeffs := fft.FFTReal(values)
	bins := n/2 + 1
	df := 1 / (float64(n) * dt)
	out := make(dynamo.Curve, bins)
	for k := 0; k < bins; k++ {
		amp := cmplx.Abs(coeffs[k]) / float64(n)
		if k != 0 && !(n%2 == 0 && k == n/2) {
			amp *= 2
		}
		out[k] = dynamo.Point{X: float64(k) * df, Y: amp}
	}
	return out, nil
}

// DominantFrequency is the non-DC bin with the largest amplitude, in Hz.
func DominantFrequency(values []float64, dt float64) (float64, error) {
	spec, err := Spectrum(values, dt)
	if err != nil {
		return 0, err
	}
	best, freq := -1.0, 0.0
	for _, p := range spec[1:] {
		if p.Y > best {
			best, freq = p.Y, p.X
		}
	}
	return freq, nil
}
