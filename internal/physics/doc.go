// Package physics models the single-degree-of-freedom mass-spring-damper
// and derives its modal parameters.
//
// A [System] is built from (m, k, c), (m, k, ζ), (m, k, Q) or, for the
// shock response spectrum bank, from a natural frequency with unit mass:
//
//	sys, err := physics.FromDampingRatio(1, 1000, 0.05)
//	m := sys.Modal() // ωn = 31.623 rad/s, fn = 5.033 Hz, ωd = 31.584 rad/s
//
// [Modal.Regime] classifies the system with a small tolerance around ζ = 1
// so that near-critical systems use the critically damped closed forms.
package physics
