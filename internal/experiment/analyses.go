package experiment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/integrate"

	"github.com/san-kum/sdofsim/internal/analysis"
	"github.com/san-kum/sdofsim/internal/config"
	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/export"
	"github.com/san-kum/sdofsim/internal/frequency"
	"github.com/san-kum/sdofsim/internal/integrators"
	"github.com/san-kum/sdofsim/internal/logging"
	"github.com/san-kum/sdofsim/internal/metrics"
	"github.com/san-kum/sdofsim/internal/physics"
	"github.com/san-kum/sdofsim/internal/response"
	"github.com/san-kum/sdofsim/internal/sim"
	"github.com/san-kum/sdofsim/internal/srs"
	"github.com/san-kum/sdofsim/internal/waveform"
)

// summary drops non-finite values, which JSON cannot carry.
type summary map[string]float64

func (s summary) put(key string, v float64) {
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		s[key] = v
	}
}

func modalSummary(sys physics.System) summary {
	m := sys.Modal()
	s := summary{}
	s.put("fn_hz", m.FnHz)
	s.put("zeta", m.Zeta)
	if m.Zeta > 0 {
		s.put("q", m.Q())
	}
	return s
}

func runFRF(_ context.Context, cfg *config.Config, sys physics.System, _ Options) (*Outcome, error) {
	freqs, unit, err := cfg.FrequencyGrid()
	if err != nil {
		return nil, err
	}
	var res [3]*frequency.FRFResult
	for i, out := range []frequency.OutputType{frequency.Displacement, frequency.Velocity, frequency.Acceleration} {
		if res[i], err = frequency.FRFOf(sys, freqs, unit, out); err != nil {
			return nil, err
		}
	}

	t, err := export.CurveTable("frequency response",
		export.Column{Name: "frequency", Unit: unit.String(), Values: freqs},
		[]string{"magnitude", "magnitude_db", "phase", "velocity", "acceleration"},
		[]string{"m/N", "dB", "deg", "m/s/N", "m/s^2/N"},
		res[0].Magnitude, res[0].MagnitudeDB, res[0].Phase, res[1].Magnitude, res[2].Magnitude)
	if err != nil {
		return nil, err
	}

	s := modalSummary(sys)
	peak, at := analysis.Peak(res[0].Magnitude)
	s.put("peak_magnitude", peak)
	s.put("peak_frequency", at)
	s.put("static_compliance", 1/sys.Stiffness)
	s.put("resonance_amplification", frequency.ResonanceAmplitude(sys.Modal().Zeta))

	return &Outcome{
		Table:   t,
		Params:  map[string]string{"unit": unit.String(), "spacing": cfg.Frequency.Spacing},
		Summary: s,
	}, nil
}

func runTransmissibility(_ context.Context, cfg *config.Config, sys physics.System, _ Options) (*Outcome, error) {
	freqs, unit, err := cfg.FrequencyGrid()
	if err != nil {
		return nil, err
	}
	tr, err := frequency.Transmissibility(sys, freqs, unit)
	if err != nil {
		return nil, err
	}

	t, err := export.CurveTable("transmissibility",
		export.Column{Name: "frequency", Unit: unit.String(), Values: freqs},
		[]string{"transmissibility", "transmissibility_db", "isolation"},
		[]string{"", "dB", "%"},
		tr, tr.Map(dynamo.ToDB), tr.Map(func(v float64) float64 { return (1 - v) * 100 }))
	if err != nil {
		return nil, err
	}

	m := sys.Modal()
	s := modalSummary(sys)
	s.put("peak_tr", frequency.PeakTransmissibility(m.Zeta))
	s.put("peak_tr_hz", m.FnHz*frequency.PeakTransmissibilityRatio(m.Zeta))
	s.put("crossover_hz", m.FnHz*frequency.CrossoverRatio())
	if f := cfg.Excitation.FrequencyHz; f > 0 {
		if v, err := frequency.TransmissibilityRatio(m.Zeta, f/m.FnHz); err == nil {
			s.put("tr_at_excitation", v)
		}
	}

	return &Outcome{
		Table:   t,
		Params:  map[string]string{"unit": unit.String(), "spacing": cfg.Frequency.Spacing},
		Summary: s,
	}, nil
}

// runTime evaluates the closed form and differentiates it numerically.
func runTime(_ context.Context, cfg *config.Config, sys physics.System, _ Options) (*Outcome, error) {
	ex, err := cfg.ClosedForm()
	if err != nil {
		return nil, err
	}
	times, err := cfg.TimeGrid()
	if err != nil {
		return nil, err
	}

	var x, steady, transient dynamo.Curve
	s := modalSummary(sys)
	if ex.Kind == response.HarmonicExcitation {
		h, err := response.Harmonic(sys, times, ex.Amplitude, ex.Omega)
		if err != nil {
			return nil, err
		}
		x, steady, transient = h.Total, h.SteadyState, h.Transient
		s.put("amplitude_mm", h.Amplitude*dynamo.MillimetersPerMeter)
		s.put("phase_deg", h.Phase*dynamo.DegreesPerRadian)
	} else if x, err = response.Evaluate(sys, times, ex); err != nil {
		return nil, err
	}

	v, a, err := analysis.CentralDifference(x.Ys(), cfg.Time.Dt)
	if err != nil {
		return nil, err
	}

	t := export.NewTable(ex.Kind.String()+" response", export.Column{Name: "time", Unit: "s", Values: times})
	cols := []export.Column{
		{Name: "displacement", Unit: "mm", Values: x.Scale(dynamo.MillimetersPerMeter).Ys()},
		{Name: "velocity", Unit: "m/s", Values: v},
		{Name: "acceleration", Unit: "m/s^2", Values: a},
	}
	if steady != nil {
		cols = append(cols,
			export.Column{Name: "steady_state", Unit: "mm", Values: steady.Scale(dynamo.MillimetersPerMeter).Ys()},
			export.Column{Name: "transient", Unit: "mm", Values: transient.Scale(dynamo.MillimetersPerMeter).Ys()},
		)
	}
	for _, c := range cols {
		if err := t.Add(c); err != nil {
			return nil, err
		}
	}

	peak, at := analysis.Peak(x)
	s.put("peak_mm", peak*dynamo.MillimetersPerMeter)
	s.put("peak_time_s", at)
	s.put("final_mm", x[len(x)-1].Y*dynamo.MillimetersPerMeter)
	if delta, err := response.LogDecrement(sys); err == nil {
		s.put("log_decrement", delta)
	}
	limitSummary(s, cfg.LimitMM, peak*dynamo.MillimetersPerMeter)

	return &Outcome{
		Table:   t,
		Params:  map[string]string{"excitation": ex.Kind.String()},
		Summary: s,
	}, nil
}

func limitSummary(s summary, limitMM, peakMM float64) {
	if limitMM <= 0 {
		return
	}
	s.put("limit_mm", limitMM)
	if peakMM > limitMM {
		s.put("limit_exceeded", 1)
	} else {
		s.put("limit_exceeded", 0)
	}
}

func simulate(ctx context.Context, cfg *config.Config, sys physics.System, name string, log logging.Logger) (*dynamo.Result, error) {
	integ, err := integrators.ByName(name)
	if err != nil {
		return nil, err
	}
	f, x0, v0, err := cfg.Forcing(sys)
	if err != nil {
		return nil, err
	}

	s := sim.New(sys, integ)
	s.SetLogger(log)
	s.AddMetric(metrics.NewPeakDisplacement())
	s.AddMetric(metrics.NewPeakVelocity())
	s.AddMetric(metrics.NewPeakAcceleration())
	s.AddMetric(metrics.NewTransmittedForce(sys))
	s.AddMetric(metrics.NewEnergy(sys))
	if cfg.LimitMM > 0 {
		s.AddMetric(metrics.NewLimitCompliance(cfg.LimitMM))
	}
	return s.Run(ctx, x0, v0, f, cfg.SimConfig())
}

func runIntegrate(ctx context.Context, cfg *config.Config, sys physics.System, opts Options) (*Outcome, error) {
	log := logging.OrGlobal(opts.Logger)
	name := strings.ToLower(cfg.Time.Integrator)
	res, err := simulate(ctx, cfg, sys, name, log)
	if err != nil {
		return nil, err
	}

	t := export.NewTable(name+" integration", export.Column{Name: "time", Unit: "s", Values: res.Times})
	for _, c := range []export.Column{
		{Name: "displacement", Unit: "mm", Values: res.Displacement().Scale(dynamo.MillimetersPerMeter).Ys()},
		{Name: "velocity", Unit: "m/s", Values: res.Velocity().Ys()},
		{Name: "acceleration", Unit: "m/s^2", Values: res.Acceleration().Ys()},
		{Name: "force", Unit: "N", Values: res.Forces},
	} {
		if err := t.Add(c); err != nil {
			return nil, err
		}
	}

	s := modalSummary(sys)
	for k, v := range res.Metrics {
		s.put(k, v)
	}
	s.put("steps", float64(res.StepsTaken))
	s.put("dt_wn", cfg.Time.Dt*sys.Modal().OmegaN)
	limitSummary(s, cfg.LimitMM, res.Metrics["peak_displacement_mm"])

	return &Outcome{
		Table:   t,
		Params:  map[string]string{"integrator": name, "excitation": cfg.Excitation.Kind},
		Summary: s,
		Result:  res,
	}, nil
}

// runCompare integrates with each scheme and measures the departure from
// the closed form on the same time grid.
func runCompare(ctx context.Context, cfg *config.Config, sys physics.System, opts Options) (*Outcome, error) {
	ex, err := cfg.ClosedForm()
	if err != nil {
		return nil, fmt.Errorf("comparison needs a closed-form excitation: %w", err)
	}
	names := opts.Integrators
	if len(names) == 0 {
		names = integrators.Names()
	}

	times, err := cfg.TimeGrid()
	if err != nil {
		return nil, err
	}
	exact, err := response.Evaluate(sys, times, ex)
	if err != nil {
		return nil, err
	}

	t := export.NewTable("integrator comparison", export.Column{Name: "time", Unit: "s", Values: times})
	if err := t.Add(export.Column{Name: "analytical", Unit: "mm", Values: exact.Scale(dynamo.MillimetersPerMeter).Ys()}); err != nil {
		return nil, err
	}

	s := modalSummary(sys)
	s.put("dt_wn", cfg.Time.Dt*sys.Modal().OmegaN)
	scale, _ := analysis.Peak(exact)
	for _, name := range names {
		res, err := simulate(ctx, cfg, sys, name, logging.OrGlobal(opts.Logger))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		x := res.Displacement()
		if len(x) != len(exact) {
			return nil, fmt.Errorf("%s produced %d samples, expected %d", name, len(x), len(exact))
		}
		maxErr := 0.0
		for i := range x {
			maxErr = math.Max(maxErr, math.Abs(x[i].Y-exact[i].Y))
		}
		if err := t.Add(export.Column{Name: name, Unit: "mm", Values: x.Scale(dynamo.MillimetersPerMeter).Ys()}); err != nil {
			return nil, err
		}
		s.put("max_error_mm_"+name, maxErr*dynamo.MillimetersPerMeter)
		if scale > 0 {
			s.put("relative_error_"+name, maxErr/scale)
		}
	}

	return &Outcome{
		Table:   t,
		Params:  map[string]string{"excitation": ex.Kind.String(), "integrators": strings.Join(names, ",")},
		Summary: s,
	}, nil
}

// runSRS builds the spectrum of the configured pulse, reported in g.
func runSRS(ctx context.Context, cfg *config.Config, sys physics.System, opts Options) (*Outcome, error) {
	spec, err := cfg.PulseSpec()
	if err != nil {
		return nil, err
	}
	freqs, err := cfg.SRSGrid()
	if err != nil {
		return nil, err
	}
	o := cfg.SRSOptions()
	o.Logger = opts.Logger
	res, err := srs.FromPulse(ctx, spec, freqs, o)
	if err != nil {
		return nil, err
	}

	inG := 1 / dynamo.StandardGravity
	t, err := export.CurveTable("shock response spectrum",
		export.Column{Name: "frequency", Unit: "Hz", Values: res.Frequencies},
		[]string{"primary", "residual", "maximax", "primary_pos", "primary_neg", "residual_pos", "residual_neg"},
		[]string{"g", "g", "g", "g", "g", "g", "g"},
		res.Primary.Scale(inG), res.Residual.Scale(inG), res.MaxiMax.Scale(inG),
		res.PrimaryPos.Scale(inG), res.PrimaryNeg.Scale(inG), res.ResidualPos.Scale(inG), res.ResidualNeg.Scale(inG))
	if err != nil {
		return nil, err
	}

	peak, at := res.Peak()
	s := summary{}
	s.put("peak_g", peak*inG)
	s.put("peak_frequency_hz", at)
	s.put("amplification", peak/spec.Amplitude)
	s.put("zeta", res.Zeta)
	s.put("pulse_end_s", res.PulseEnd)
	s.put("tail_s", res.Tail)
	s.put("dt", res.Dt)
	s.put("characteristic_hz", spec.CharacteristicFrequency())

	return &Outcome{
		Table: t,
		Params: map[string]string{
			"pulse":       spec.Shape.String(),
			"amplitude_g": fmt.Sprintf("%g", cfg.Pulse.AmplitudeG),
			"duration_s":  fmt.Sprintf("%g", spec.Duration),
		},
		Summary:  s,
		Spectrum: res,
	}, nil
}

// runPulse samples the configured pulse on the step the SRS would use and
// reports its velocity change.
func runPulse(_ context.Context, cfg *config.Config, _ physics.System, _ Options) (*Outcome, error) {
	spec, err := cfg.PulseSpec()
	if err != nil {
		return nil, err
	}
	dt := spec.Duration / 200
	if freqs, err := cfg.SRSGrid(); err == nil {
		dt = srs.PulseStep(spec, freqs[len(freqs)-1])
	}
	series, err := waveform.Series(spec, dt, spec.Duration)
	if err != nil {
		return nil, err
	}
	times := make([]float64, len(series.Values))
	for i := range times {
		times[i] = float64(i) * dt
	}
	accelG := make([]float64, len(series.Values))
	for i, a := range series.Values {
		accelG[i] = a / dynamo.StandardGravity
	}

	t := export.NewTable(spec.Shape.String()+" pulse", export.Column{Name: "time", Unit: "s", Values: times})
	if err := t.Add(export.Column{Name: "acceleration", Unit: "g", Values: accelG}); err != nil {
		return nil, err
	}

	s := summary{}
	s.put("peak_g", cfg.Pulse.AmplitudeG)
	s.put("duration_s", spec.Duration)
	s.put("delta_v", integrate.Trapezoidal(times, series.Values))
	s.put("characteristic_hz", spec.CharacteristicFrequency())
	s.put("dt", dt)

	return &Outcome{
		Table:   t,
		Params:  map[string]string{"pulse": spec.Shape.String()},
		Summary: s,
	}, nil
}
