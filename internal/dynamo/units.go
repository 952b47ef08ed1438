package dynamo

import "math"

// Unit conversion constants. Inputs are SI unless noted; outputs follow the
// display units below.
const (
	// StandardGravity converts g to m/s^2.
	StandardGravity = 9.80665

	// TwoPi converts Hz to rad/s.
	TwoPi = 2 * math.Pi

	// MillimetersPerMeter converts displacement output to mm.
	MillimetersPerMeter = 1000.0

	// DegreesPerRadian converts phase output to degrees.
	DegreesPerRadian = 180.0 / math.Pi
)

// HzToRad converts a frequency in Hz to rad/s.
func HzToRad(hz float64) float64 { return hz * TwoPi }

// RadToHz converts a frequency in rad/s to Hz.
func RadToHz(rad float64) float64 { return rad / TwoPi }

// GToMS2 converts an acceleration in g to m/s^2.
func GToMS2(g float64) float64 { return g * StandardGravity }

// MS2ToG converts an acceleration in m/s^2 to g.
func MS2ToG(a float64) float64 { return a / StandardGravity }

// ToDB returns 20·log10(v). Non-positive input yields -Inf.
func ToDB(v float64) float64 { return 20 * math.Log10(v) }
