// Package analysis post-processes response histories.
//
//   - [CentralDifference]: velocity and acceleration from a displacement series
//   - [Peak], [ExceedsLimit]: peak extraction and the displacement-limit check
//   - [Summarize]: mean, RMS, standard deviation and peak of a series
//   - [Spectrum], [DominantFrequency]: one-sided amplitude spectrum via FFT
//   - [EstimateLogDecrement]: damping identified from successive peaks
//   - [UpCrossings], [MeasuredFrequency]: period from level crossings
//   - [PhasePortrait]: displacement-velocity trajectory and its ASCII plot
//
// # Example
//
//	v, a, err := analysis.CentralDifference(xs, dt)
//	over, peak := analysis.ExceedsLimit(curve, 5)
package analysis
