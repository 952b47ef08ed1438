// Package dynamo provides the shared primitives of the SDOF response engine.
//
// The package defines the value types and interfaces every engine component
// speaks:
//
//   - [State]: displacement, velocity and acceleration at one time step
//   - [Curve]: ordered (x, y) samples handed to plotting and export
//   - [Forcing]: a scalar excitation evaluated at time t
//   - [Oscillator]: anything exposing mass, damping and stiffness
//   - [Integrator]: a fixed-step time stepper for an [Oscillator]
//
// It also holds the sentinel errors of the engine, the process-wide unit
// constants and [ParallelFor], the worker fan-out used by the SRS sweep.
//
// # Example
//
//	sys, _ := physics.FromDampingRatio(1, 1000, 0.05)
//	s := sim.New(sys, integrators.NewNewmark())
//	result, _ := s.Run(ctx, 0, 0, waveform.Constant(10), cfg)
//	curve := result.Displacement()
//
// # Thread Safety
//
// All types here are values or read-only once built. An [Integrator] may keep
// scratch buffers, so use one instance per goroutine.
package dynamo
