package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// Peak returns max |y| and the x where it occurs. An empty curve yields 0, 0.
func Peak(c dynamo.Curve) (value, at float64) {
	for _, p := range c {
		if v := math.Abs(p.Y); v > value {
			value, at = v, p.X
		}
	}
	return value, at
}

// ExceedsLimit reports whether max |y| is above limit, along with the peak.
// Units are the caller's; the CLI passes displacement in mm.
func ExceedsLimit(c dynamo.Curve, limit float64) (bool, float64) {
	peak, _ := Peak(c)
	return peak > limit, peak
}

type Stats struct {
	Mean   float64
	StdDev float64
	RMS    float64
	Min    float64
	Max    float64
	// Peak is max |y|.
	Peak  float64
	Count int
}

// Summarize computes descriptive statistics of values.
func Summarize(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, dynamo.Invalid("no samples to summarize")
	}
	s := Stats{
		Mean:  stat.Mean(values, nil),
		RMS:   math.Sqrt(floats.Dot(values, values) / float64(len(values))),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		Count: len(values),
	}
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	s.Peak = math.Max(math.Abs(s.Min), math.Abs(s.Max))
	return s, nil
}

// LogDecrementEstimate is damping identified from a free-decay record.
type LogDecrementEstimate struct {
	Delta float64
	Zeta  float64
	// Peaks is the number of positive local maxima used.
	Peaks int
}

// EstimateLogDecrement fits δ = ln(x₀/x_N)/N over the positive local
// maxima of a decaying series and converts it to ζ = δ/√(4π² + δ²).
func EstimateLogDecrement(values []float64) (LogDecrementEstimate, error) {
	var peaks []float64
	for i := 1; i < len(values)-1; i++ {
		if values[i] > 0 && values[i] > values[i-1] && values[i] >= values[i+1] {
			peaks = append(peaks, values[i])
		}
	}
	if len(peaks) < 2 {
		return LogDecrementEstimate{}, dynamo.Invalid("need at least 2 positive peaks (found %d)", len(peaks))
	}

	n := float64(len(peaks) - 1)
	delta := math.Log(peaks[0]/peaks[len(peaks)-1]) / n
	return LogDecrementEstimate{
		Delta: delta,
		Zeta:  delta / math.Sqrt(4*math.Pi*math.Pi+delta*delta),
		Peaks: len(peaks),
	}, nil
}

// UpCrossings returns the linearly interpolated times at which the curve
// crosses level going upward.
func UpCrossings(c dynamo.Curve, level float64) []float64 {
	var out []float64
	for i := 1; i < len(c); i++ {
		prev, curr := c[i-1], c[i]
		if prev.Y < level && curr.Y >= level {
			frac := (level - prev.Y) / (curr.Y - prev.Y)
			out = append(out, prev.X+frac*(curr.X-prev.X))
		}
	}
	return out
}

// MeasuredFrequency estimates the oscillation frequency in Hz from the mean
// spacing of upward zero crossings.
func MeasuredFrequency(c dynamo.Curve) (float64, error) {
	cross := UpCrossings(c, 0)
	if len(cross) < 2 {
		return 0, dynamo.Invalid("need at least 2 zero crossings (found %d)", len(cross))
	}
	period := (cross[len(cross)-1] - cross[0]) / float64(len(cross)-1)
	return 1 / period, nil
}
