// Package srs computes the shock response spectrum of a base-acceleration
// record.
//
// Each natural frequency of the grid gets its own unit-mass oscillator
// with the shared damping ratio. The oscillator is driven by F = -a_base
// and its pseudo-acceleration ωn²·x is reduced to primary (during the
// pulse) and residual (after it) extremes. Frequencies are independent and
// may be swept in parallel.
package srs

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/grid"
	"github.com/san-kum/sdofsim/internal/integrators"
	"github.com/san-kum/sdofsim/internal/logging"
	"github.com/san-kum/sdofsim/internal/physics"
	"github.com/san-kum/sdofsim/internal/sim"
	"github.com/san-kum/sdofsim/internal/waveform"
)

const (
	// PulseEndFraction is the share of the input peak below which trailing
	// samples are treated as the end of the pulse.
	PulseEndFraction = 0.01

	// DefaultTailPeriods is the residual window, in periods of the lowest
	// natural frequency, used when Options.Tail is zero.
	DefaultTailPeriods = 3.0

	// DefaultZeta corresponds to Q = 10.
	DefaultZeta = 0.05

	// ProgressInterval throttles the sweep progress log.
	ProgressInterval = time.Second
)

// Input is a uniformly sampled base acceleration. The output spectrum is
// in the same unit as Accel.
type Input struct {
	Dt    float64
	Accel []float64
	// PulseDuration marks the end of the primary window. Zero detects it as
	// the last sample above PulseEndFraction of the peak.
	PulseDuration float64
}

type Options struct {
	// Zeta is the damping ratio of every oscillator. Q, when positive,
	// takes precedence as ζ = 1/(2Q).
	Zeta float64
	Q    float64
	// Workers bounds the parallel sweep. 1 runs serially; <= 0 uses
	// GOMAXPROCS.
	Workers int
	// Tail is the free-decay time integrated after the input ends, in s.
	Tail   float64
	Logger logging.Logger
}

// DefaultOptions is ζ = 0.05 with an automatic tail.
func DefaultOptions() Options {
	return Options{Zeta: DefaultZeta}
}

func (o Options) zeta() (float64, error) {
	if math.IsNaN(o.Q) || o.Q < 0 {
		return 0, dynamo.Invalid("quality factor must be non-negative (got %v)", o.Q)
	}
	if o.Q > 0 {
		return 1 / (2 * o.Q), nil
	}
	return o.Zeta, nil
}

// Result holds one value per natural frequency. Primary, Residual and
// MaxiMax are absolute peaks; the signed curves hold the positive and
// negative extremes as magnitudes.
type Result struct {
	Frequencies []float64
	Primary     dynamo.Curve
	Residual    dynamo.Curve
	MaxiMax     dynamo.Curve

	PrimaryPos  dynamo.Curve
	PrimaryNeg  dynamo.Curve
	ResidualPos dynamo.Curve
	ResidualNeg dynamo.Curve

	Zeta     float64
	PulseEnd float64 // s
	Tail     float64 // s
	Dt       float64 // s
}

type extremes struct {
	primaryPos, primaryNeg   float64
	residualPos, residualNeg float64
}

// Compute sweeps the oscillator bank over freqs (Hz). The context is
// checked between frequency points and between integration steps; on
// cancellation the error matches dynamo.ErrContextCanceled.
func Compute(ctx context.Context, in Input, freqs []float64, opts Options) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := validateFrequencies(freqs); err != nil {
		return nil, err
	}
	zeta, err := opts.zeta()
	if err != nil {
		return nil, err
	}
	if math.IsNaN(zeta) || math.IsInf(zeta, 0) || zeta < 0 {
		return nil, dynamo.Invalid("damping ratio must be non-negative (got %v)", zeta)
	}
	if math.IsNaN(opts.Tail) || opts.Tail < 0 {
		return nil, dynamo.Invalid("tail must be non-negative (got %v)", opts.Tail)
	}

	log := logging.OrGlobal(opts.Logger).WithFields(logging.Fields{"component": "srs"})

	pulseEnd := in.PulseDuration
	if pulseEnd == 0 {
		pulseEnd = DetectPulseEnd(in.Accel, in.Dt)
	}

	tail := opts.Tail
	if tail == 0 {
		tail = DefaultTailPeriods / freqs[0]
		log.Warn("no residual tail given, using default", logging.Fields{
			"tail_s":  tail,
			"periods": DefaultTailPeriods,
			"fn_min":  freqs[0],
		})
	}

	recordEnd := float64(len(in.Accel)-1) * in.Dt
	cfg := dynamo.Config{
		Dt:            in.Dt,
		Duration:      math.Max(recordEnd, pulseEnd) + tail,
		ValidateState: true,
	}

	if ratio := in.Dt * dynamo.HzToRad(freqs[len(freqs)-1]); ratio > 0.1 {
		log.Warn("time step coarse for the highest natural frequency", logging.Fields{
			"dt":    in.Dt,
			"dt_wn": ratio,
		})
	}

	base := sim.BaseForcing(1, waveform.Sampled{Dt: in.Dt, Values: in.Accel})
	out := make([]extremes, len(freqs))

	progress := rate.Sometimes{Interval: ProgressInterval}
	var done atomic.Int64

	err = dynamo.ParallelFor(ctx, len(freqs), opts.Workers, func(ctx context.Context, i int) error {
		ext, err := respond(ctx, freqs[i], zeta, base, pulseEnd, cfg)
		if err != nil {
			return fmt.Errorf("srs at %.4g Hz: %w", freqs[i], err)
		}
		out[i] = ext
		n := done.Add(1)
		progress.Do(func() {
			log.Debug("sweep progress", logging.Fields{"done": n, "points": len(freqs)})
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("sweep complete", logging.Fields{"points": len(freqs), "zeta": zeta, "pulse_end": pulseEnd})
	return assemble(freqs, out, zeta, pulseEnd, tail, in.Dt), nil
}

func respond(ctx context.Context, fn, zeta float64, base dynamo.Forcing, pulseEnd float64, cfg dynamo.Config) (extremes, error) {
	osc, err := physics.FromNaturalFrequency(fn, zeta)
	if err != nil {
		return extremes{}, err
	}
	wn2 := osc.Stiffness

	runner := sim.New(osc, integrators.NewNewmark())
	runner.SetLogger(logging.NoOpLogger{})

	// Samples within half a step of the pulse end belong to the primary window.
	edge := pulseEnd + 0.5*cfg.Dt
	var ext extremes
	err = runner.RunWithCallback(ctx, 0, 0, base, cfg, func(s dynamo.State, _ float64, t float64) bool {
		pseudo := wn2 * s.X
		if t <= edge {
			ext.primaryPos = math.Max(ext.primaryPos, pseudo)
			ext.primaryNeg = math.Max(ext.primaryNeg, -pseudo)
		} else {
			ext.residualPos = math.Max(ext.residualPos, pseudo)
			ext.residualNeg = math.Max(ext.residualNeg, -pseudo)
		}
		return true
	})
	return ext, err
}

func assemble(freqs []float64, ext []extremes, zeta, pulseEnd, tail, dt float64) *Result {
	n := len(freqs)
	r := &Result{
		Frequencies: append([]float64(nil), freqs...),
		Primary:     make(dynamo.Curve, n),
		Residual:    make(dynamo.Curve, n),
		MaxiMax:     make(dynamo.Curve, n),
		PrimaryPos:  make(dynamo.Curve, n),
		PrimaryNeg:  make(dynamo.Curve, n),
		ResidualPos: make(dynamo.Curve, n),
		ResidualNeg: make(dynamo.Curve, n),
		Zeta:        zeta,
		PulseEnd:    pulseEnd,
		Tail:        tail,
		Dt:          dt,
	}
	for i, f := range freqs {
		e := ext[i]
		primary := math.Max(e.primaryPos, e.primaryNeg)
		residual := math.Max(e.residualPos, e.residualNeg)

		r.Primary[i] = dynamo.Point{X: f, Y: primary}
		r.Residual[i] = dynamo.Point{X: f, Y: residual}
		r.MaxiMax[i] = dynamo.Point{X: f, Y: math.Max(primary, residual)}
		r.PrimaryPos[i] = dynamo.Point{X: f, Y: e.primaryPos}
		r.PrimaryNeg[i] = dynamo.Point{X: f, Y: e.primaryNeg}
		r.ResidualPos[i] = dynamo.Point{X: f, Y: e.residualPos}
		r.ResidualNeg[i] = dynamo.Point{X: f, Y: e.residualNeg}
	}
	return r
}

// Peak returns the largest MaxiMax value and its frequency.
func (r *Result) Peak() (value, freq float64) {
	for _, p := range r.MaxiMax {
		if p.Y > value {
			value, freq = p.Y, p.X
		}
	}
	return value, freq
}

// DetectPulseEnd is the time of the last sample whose magnitude exceeds
// PulseEndFraction of the peak. An all-zero record ends at its last sample.
func DetectPulseEnd(accel []float64, dt float64) float64 {
	peak := 0.0
	for _, a := range accel {
		peak = math.Max(peak, math.Abs(a))
	}
	if peak == 0 {
		return float64(len(accel)-1) * dt
	}
	threshold := PulseEndFraction * peak
	for i := len(accel) - 1; i >= 0; i-- {
		if math.Abs(accel[i]) > threshold {
			return float64(i) * dt
		}
	}
	return 0
}

// FromPulse synthesizes the pulse and computes its spectrum. The sample
// step is 1/(20·fmax), refined to resolve the pulse with at least 50
// samples.
func FromPulse(ctx context.Context, spec waveform.PulseSpec, freqs []float64, opts Options) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := validateFrequencies(freqs); err != nil {
		return nil, err
	}
	dt := PulseStep(spec, freqs[len(freqs)-1])
	series, err := waveform.Series(spec, dt, spec.Duration)
	if err != nil {
		return nil, err
	}
	return Compute(ctx, Input{Dt: dt, Accel: series.Values, PulseDuration: spec.Duration}, freqs, opts)
}

// PulseStep is min(1/(20·fmax), duration/50).
func PulseStep(spec waveform.PulseSpec, fmax float64) float64 {
	return math.Min(1/(20*fmax), spec.Duration/50)
}

func (in Input) validate() error {
	if math.IsNaN(in.Dt) || math.IsInf(in.Dt, 0) || in.Dt <= 0 {
		return dynamo.Invalid("sample step must be positive (got %v)", in.Dt)
	}
	if len(in.Accel) < 2 {
		return dynamo.Invalid("base acceleration needs at least 2 samples (got %d)", len(in.Accel))
	}
	for i, a := range in.Accel {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return dynamo.Invalid("base acceleration sample %d is not finite", i)
		}
	}
	if math.IsNaN(in.PulseDuration) || in.PulseDuration < 0 {
		return dynamo.Invalid("pulse duration must be non-negative (got %v)", in.PulseDuration)
	}
	return nil
}

func validateFrequencies(freqs []float64) error {
	if err := grid.Validate(freqs); err != nil {
		return err
	}
	if freqs[0] <= 0 {
		return dynamo.Invalid("natural frequencies must be positive (got %v)", freqs[0])
	}
	return nil
}
