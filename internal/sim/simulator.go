// Package sim drives a stepper over a uniform time grid and records the
// full displacement, velocity and acceleration histories.
package sim

import (
	"context"
	"math"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/integrators"
	"github.com/san-kum/sdofsim/internal/logging"
)

type Simulator struct {
	osc        dynamo.Oscillator
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	logger     logging.Logger
}

// New returns a simulator for osc. A nil integrator selects Newmark.
func New(osc dynamo.Oscillator, integrator dynamo.Integrator) *Simulator {
	if integrator == nil {
		integrator = integrators.NewNewmark()
	}
	return &Simulator{
		osc:        osc,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// SetLogger overrides the global logger for this simulator.
func (s *Simulator) SetLogger(l logging.Logger) { s.logger = l }

// Run integrates from x(0) = x0, v(0) = v0 under forcing f. On cancellation
// the partial result is returned together with an error matching
// dynamo.ErrContextCanceled.
func (s *Simulator) Run(ctx context.Context, x0, v0 float64, f dynamo.Forcing, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validate(x0, v0, cfg); err != nil {
		return nil, err
	}
	log := logging.OrGlobal(s.logger)
	s.checkStability(log, cfg)

	steps := cfg.Steps()
	dt := cfg.Dt
	result := &dynamo.Result{
		Times:   make([]float64, 0, steps+1),
		States:  make([]dynamo.State, 0, steps+1),
		Forces:  make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	f0 := f.At(0)
	a0, err := integrators.InitialAcceleration(s.osc, x0, v0, f0)
	if err != nil {
		return nil, &dynamo.StepError{Step: 0, Time: 0, Wrapped: err}
	}
	state := dynamo.State{X: x0, V: v0, A: a0}
	s.record(result, state, f0, 0)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, dynamo.Canceled(ctx.Err())
		default:
		}

		t := float64(i) * dt
		next, err := s.integrator.Step(s.osc, state, f, t, dt)
		if err != nil {
			s.finish(result)
			return result, &dynamo.StepError{Step: i, Time: t, State: state, Wrapped: err}
		}
		if cfg.ValidateState && !next.IsValid() {
			s.finish(result)
			return result, &dynamo.StepError{
				Step: i, Time: t, State: state,
				Wrapped: dynamo.Invalid("non-finite state %v", next),
			}
		}

		state = next
		tNext := float64(i+1) * dt
		s.record(result, state, f.At(tNext), tNext)
		result.StepsTaken++
	}

	s.finish(result)
	log.Debug("integration complete", logging.Fields{"steps": result.StepsTaken, "dt": dt})
	return result, nil
}

// RunWithCallback streams states to callback without recording them.
// Returning false from callback stops the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, x0, v0 float64, f dynamo.Forcing, cfg dynamo.Config, callback func(dynamo.State, float64, float64) bool) error {
	if err := s.validate(x0, v0, cfg); err != nil {
		return err
	}
	s.checkStability(logging.OrGlobal(s.logger), cfg)

	a0, err := integrators.InitialAcceleration(s.osc, x0, v0, f.At(0))
	if err != nil {
		return err
	}
	state := dynamo.State{X: x0, V: v0, A: a0}
	steps := cfg.Steps()

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return dynamo.Canceled(ctx.Err())
		default:
		}

		t := float64(i) * cfg.Dt
		if !callback(state, f.At(t), t) || i == steps {
			return nil
		}

		state, err = s.integrator.Step(s.osc, state, f, t, cfg.Dt)
		if err != nil {
			return &dynamo.StepError{Step: i, Time: t, State: state, Wrapped: err}
		}
		if cfg.ValidateState && !state.IsValid() {
			return &dynamo.StepError{Step: i, Time: t, State: state, Wrapped: dynamo.Invalid("non-finite state")}
		}
	}
	return nil
}

func (s *Simulator) record(r *dynamo.Result, state dynamo.State, force, t float64) {
	r.Times = append(r.Times, t)
	r.States = append(r.States, state)
	r.Forces = append(r.Forces, force)
	for _, m := range s.metrics {
		m.Observe(state, force, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(state, force, t)
	}
}

func (s *Simulator) finish(r *dynamo.Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validate(x0, v0 float64, cfg dynamo.Config) error {
	if s.osc == nil {
		return dynamo.Invalid("simulator has no oscillator")
	}
	if math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) || cfg.Dt <= 0 {
		return dynamo.Invalid("dt must be positive, got %v", cfg.Dt)
	}
	if math.IsNaN(cfg.Duration) || math.IsInf(cfg.Duration, 0) || cfg.Duration <= 0 {
		return dynamo.Invalid("duration must be positive, got %v", cfg.Duration)
	}
	if cfg.Steps() < 1 {
		return dynamo.Invalid("duration %v shorter than one step %v", cfg.Duration, cfg.Dt)
	}
	if math.IsNaN(x0) || math.IsInf(x0, 0) || math.IsNaN(v0) || math.IsInf(v0, 0) {
		return dynamo.Invalid("initial conditions must be finite")
	}
	return nil
}

// checkStability warns when dt·ωn exceeds the configured ratio. Newmark
// stays stable beyond it but loses accuracy.
func (s *Simulator) checkStability(log logging.Logger, cfg dynamo.Config) {
	if cfg.StabilityThreshold <= 0 {
		return
	}
	m, _, k := s.osc.Coefficients()
	if m <= 0 || k <= 0 {
		return
	}
	ratio := cfg.Dt * math.Sqrt(k/m)
	if ratio > cfg.StabilityThreshold {
		log.Warn("time step coarse relative to natural period", logging.Fields{
			"dt":        cfg.Dt,
			"dt_wn":     ratio,
			"threshold": cfg.StabilityThreshold,
		})
	}
}

// BaseForcing converts a base acceleration into the equivalent force on
// the mass in relative coordinates, F = -m·a_base.
func BaseForcing(mass float64, accel dynamo.Forcing) dynamo.Forcing {
	return dynamo.ForcingFunc(func(t float64) float64 {
		return -mass * accel.At(t)
	})
}
