// Package config loads analysis settings from YAML and turns them into
// validated engine inputs.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/frequency"
	"github.com/san-kum/sdofsim/internal/grid"
	"github.com/san-kum/sdofsim/internal/physics"
	"github.com/san-kum/sdofsim/internal/response"
	"github.com/san-kum/sdofsim/internal/sim"
	"github.com/san-kum/sdofsim/internal/srs"
	"github.com/san-kum/sdofsim/internal/waveform"
)

const (
	DefaultMass         = 1.0
	DefaultStiffness    = 1000.0
	DefaultDampingRatio = 0.05
	DefaultDt           = 1e-3
	DefaultDuration     = 2.0
	DefaultLimitMM      = 0.0
)

type Config struct {
	System     SystemConfig     `yaml:"system"`
	Frequency  FrequencyConfig  `yaml:"frequency"`
	Time       TimeConfig       `yaml:"time"`
	Excitation ExcitationConfig `yaml:"excitation"`
	Pulse      PulseConfig      `yaml:"pulse"`
	SRS        SRSConfig        `yaml:"srs"`
	// LimitMM is the allowable peak displacement; zero disables the check.
	LimitMM  float64 `yaml:"limit_mm"`
	LogLevel string  `yaml:"log_level"`
}

// SystemConfig carries exactly one damping representation.
type SystemConfig struct {
	Mass         float64  `yaml:"mass"`
	Stiffness    float64  `yaml:"stiffness"`
	Damping      *float64 `yaml:"damping,omitempty"`
	DampingRatio *float64 `yaml:"damping_ratio,omitempty"`
	Q            *float64 `yaml:"q,omitempty"`
}

type FrequencyConfig struct {
	Start   float64 `yaml:"start"`
	Stop    float64 `yaml:"stop"`
	Count   int     `yaml:"count"`
	Spacing string  `yaml:"spacing"` // linear | log
	Unit    string  `yaml:"unit"`    // hz | rad/s
}

type TimeConfig struct {
	Dt                 float64 `yaml:"dt"`
	Duration           float64 `yaml:"duration"`
	Integrator         string  `yaml:"integrator"`
	StabilityThreshold float64 `yaml:"stability_threshold"`
}

// ExcitationConfig selects the forcing. Kind is one of impulse, step,
// harmonic, free (closed form or integrated) or ramp, chirp, pulse
// (integrated only; pulse drives the base).
type ExcitationConfig struct {
	Kind        string  `yaml:"kind"`
	Amplitude   float64 `yaml:"amplitude"`    // N, or N·s for impulse
	FrequencyHz float64 `yaml:"frequency_hz"` // harmonic
	X0          float64 `yaml:"x0"`           // m
	V0          float64 `yaml:"v0"`           // m/s
	RampTime    float64 `yaml:"ramp_time"`    // s
	StartHz     float64 `yaml:"start_hz"`     // chirp
	EndHz       float64 `yaml:"end_hz"`       // chirp
}

type PulseConfig struct {
	Shape        string  `yaml:"shape"`
	AmplitudeG   float64 `yaml:"amplitude_g"`
	Duration     float64 `yaml:"duration"`
	RiseFraction float64 `yaml:"rise_fraction,omitempty"`
	FallFraction float64 `yaml:"fall_fraction,omitempty"`
}

type SRSConfig struct {
	Start   float64 `yaml:"start"`
	Stop    float64 `yaml:"stop"`
	Count   int     `yaml:"count"`
	Zeta    float64 `yaml:"zeta"`
	Q       float64 `yaml:"q,omitempty"`
	Workers int     `yaml:"workers"`
	Tail    float64 `yaml:"tail"`
}

func ptr(v float64) *float64 { return &v }

func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			Mass:         DefaultMass,
			Stiffness:    DefaultStiffness,
			DampingRatio: ptr(DefaultDampingRatio),
		},
		Frequency: FrequencyConfig{Start: 0.1, Stop: 100, Count: 500, Spacing: "log", Unit: "hz"},
		Time: TimeConfig{
			Dt:                 DefaultDt,
			Duration:           DefaultDuration,
			Integrator:         "newmark",
			StabilityThreshold: dynamo.DefaultConfig().StabilityThreshold,
		},
		Excitation: ExcitationConfig{Kind: "step", Amplitude: 10, FrequencyHz: 5, X0: 0.01, RampTime: 0.1, StartHz: 1, EndHz: 20},
		Pulse:      PulseConfig{Shape: "half-sine", AmplitudeG: 50, Duration: 0.011},
		SRS:        SRSConfig{Start: 10, Stop: 2000, Count: 100, Zeta: srs.DefaultZeta},
		LimitMM:    DefaultLimitMM,
		LogLevel:   "info",
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := cfg.Apply(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Apply overlays YAML onto the configuration. A damping value in the
// overlay replaces the current representation rather than conflicting
// with it.
func (c *Config) Apply(data []byte) error {
	var raw struct {
		System SystemConfig `yaml:"system"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.System.dampingCount() > 0 {
		c.System.Damping, c.System.DampingRatio, c.System.Q = nil, nil, nil
	}
	return yaml.Unmarshal(data, c)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section the engine consumes.
func (c *Config) Validate() error {
	if _, err := c.BuildSystem(); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	if _, _, err := c.FrequencyGrid(); err != nil {
		return fmt.Errorf("frequency: %w", err)
	}
	if _, err := c.TimeGrid(); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if _, err := c.PulseSpec(); err != nil {
		return fmt.Errorf("pulse: %w", err)
	}
	if _, err := c.SRSGrid(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}
	if c.LimitMM < 0 {
		return dynamo.Invalid("limit_mm must be non-negative (got %v)", c.LimitMM)
	}
	return nil
}

func (s SystemConfig) dampingCount() int {
	n := 0
	for _, p := range []*float64{s.Damping, s.DampingRatio, s.Q} {
		if p != nil {
			n++
		}
	}
	return n
}

// BuildSystem constructs the validated physics.System.
func (c *Config) BuildSystem() (physics.System, error) {
	s := c.System
	switch {
	case s.dampingCount() > 1:
		return physics.System{}, dynamo.Invalid("give only one of damping, damping_ratio and q")
	case s.DampingRatio != nil:
		return physics.FromDampingRatio(s.Mass, s.Stiffness, *s.DampingRatio)
	case s.Q != nil:
		return physics.FromQ(s.Mass, s.Stiffness, *s.Q)
	case s.Damping != nil:
		return physics.NewSystem(s.Mass, s.Stiffness, *s.Damping)
	default:
		return physics.NewSystem(s.Mass, s.Stiffness, 0)
	}
}

// SetDamping replaces the damping representation with an absolute value.
func (c *Config) SetDamping(v float64) {
	c.System.Damping, c.System.DampingRatio, c.System.Q = ptr(v), nil, nil
}

// SetDampingRatio replaces the damping representation with ζ.
func (c *Config) SetDampingRatio(v float64) {
	c.System.Damping, c.System.DampingRatio, c.System.Q = nil, ptr(v), nil
}

// SetQ replaces the damping representation with the quality factor.
func (c *Config) SetQ(v float64) {
	c.System.Damping, c.System.DampingRatio, c.System.Q = nil, nil, ptr(v)
}

func parseSpacing(s string) (grid.Spacing, error) {
	switch strings.ToLower(s) {
	case "", "lin", "linear":
		return grid.Linear, nil
	case "log", "logarithmic":
		return grid.Logarithmic, nil
	}
	return 0, dynamo.Invalid("unknown spacing %q", s)
}

func parseUnit(s string) (frequency.Unit, error) {
	switch strings.ToLower(s) {
	case "", "hz":
		return frequency.Hz, nil
	case "rad/s", "rad", "rads":
		return frequency.RadPerSec, nil
	}
	return 0, dynamo.Invalid("unknown frequency unit %q", s)
}

// FrequencyGrid builds the FRF/transmissibility grid and its unit.
func (c *Config) FrequencyGrid() ([]float64, frequency.Unit, error) {
	spacing, err := parseSpacing(c.Frequency.Spacing)
	if err != nil {
		return nil, 0, err
	}
	unit, err := parseUnit(c.Frequency.Unit)
	if err != nil {
		return nil, 0, err
	}
	freqs, err := grid.Spec{
		Start:   c.Frequency.Start,
		Stop:    c.Frequency.Stop,
		Count:   c.Frequency.Count,
		Spacing: spacing,
	}.Build()
	return freqs, unit, err
}

func (c *Config) TimeGrid() ([]float64, error) {
	return grid.Uniform(c.Time.Dt, c.Time.Duration)
}

// Set assigns one numeric parameter by name. Damping names replace the
// current damping representation; "fn" retunes the stiffness to the given
// natural frequency in Hz at the current mass.
func (c *Config) Set(name string, v float64) error {
	switch strings.ToLower(name) {
	case "mass", "m":
		c.System.Mass = v
	case "stiffness", "k":
		c.System.Stiffness = v
	case "damping", "c":
		c.SetDamping(v)
	case "zeta", "damping_ratio":
		c.SetDampingRatio(v)
	case "q":
		c.SetQ(v)
	case "fn", "fn_hz":
		w := dynamo.HzToRad(v)
		c.System.Stiffness = c.System.Mass * w * w
	case "dt":
		c.Time.Dt = v
	case "duration":
		c.Time.Duration = v
	case "amplitude":
		c.Excitation.Amplitude = v
	case "frequency_hz":
		c.Excitation.FrequencyHz = v
	case "pulse.amplitude_g", "amplitude_g":
		c.Pulse.AmplitudeG = v
	case "pulse.duration", "pulse_duration":
		c.Pulse.Duration = v
	case "limit_mm":
		c.LimitMM = v
	default:
		return dynamo.Invalid("unknown parameter %q", name)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	copyPtr := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		return ptr(*p)
	}
	out.System.Damping = copyPtr(c.System.Damping)
	out.System.DampingRatio = copyPtr(c.System.DampingRatio)
	out.System.Q = copyPtr(c.System.Q)
	return &out
}

// SimConfig is the integrator run configuration.
func (c *Config) SimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = c.Time.Dt
	cfg.Duration = c.Time.Duration
	cfg.StabilityThreshold = c.Time.StabilityThreshold
	return cfg
}

// PulseSpec returns the pulse with its amplitude converted to m/s^2.
func (c *Config) PulseSpec() (waveform.PulseSpec, error) {
	shape, err := waveform.ParseShape(c.Pulse.Shape)
	if err != nil {
		return waveform.PulseSpec{}, err
	}
	spec := waveform.PulseSpec{
		Shape:        shape,
		Amplitude:    c.Pulse.AmplitudeG,
		Duration:     c.Pulse.Duration,
		RiseFraction: c.Pulse.RiseFraction,
		FallFraction: c.Pulse.FallFraction,
	}.InG()
	return spec, spec.Validate()
}

// SRSGrid is the logarithmic natural-frequency grid of the oscillator bank.
func (c *Config) SRSGrid() ([]float64, error) {
	if c.SRS.Start <= 0 {
		return nil, dynamo.Invalid("srs start must be positive (got %v)", c.SRS.Start)
	}
	return grid.Spec{Start: c.SRS.Start, Stop: c.SRS.Stop, Count: c.SRS.Count, Spacing: grid.Logarithmic}.Build()
}

func (c *Config) SRSOptions() srs.Options {
	return srs.Options{Zeta: c.SRS.Zeta, Q: c.SRS.Q, Workers: c.SRS.Workers, Tail: c.SRS.Tail}
}

// ClosedForm maps the analytical kinds to a response.Excitation.
func (c *Config) ClosedForm() (response.Excitation, error) {
	kind, err := response.ParseExcitation(strings.ToLower(strings.TrimSpace(c.Excitation.Kind)))
	if err != nil {
		return response.Excitation{}, err
	}
	return response.Excitation{
		Kind:      kind,
		Amplitude: c.Excitation.Amplitude,
		Omega:     dynamo.HzToRad(c.Excitation.FrequencyHz),
		X0:        c.Excitation.X0,
		V0:        c.Excitation.V0,
	}, nil
}

// Forcing returns the force history for an integrated run together with
// the initial conditions. Impulse is applied as an initial velocity I/m.
func (c *Config) Forcing(sys physics.System) (f dynamo.Forcing, x0, v0 float64, err error) {
	e := c.Excitation
	switch strings.ToLower(strings.TrimSpace(e.Kind)) {
	case "step":
		return waveform.Constant(e.Amplitude), 0, 0, nil
	case "impulse":
		return waveform.Constant(0), 0, e.Amplitude / sys.Mass, nil
	case "free":
		return waveform.Constant(0), e.X0, e.V0, nil
	case "harmonic":
		return waveform.Harmonic{Amplitude: e.Amplitude, FrequencyHz: e.FrequencyHz}, 0, 0, nil
	case "ramp":
		r := waveform.Ramp{Target: e.Amplitude, RampTime: e.RampTime}
		if err := r.Validate(); err != nil {
			return nil, 0, 0, err
		}
		return r, 0, 0, nil
	case "chirp":
		ch := waveform.Chirp{Amplitude: e.Amplitude, StartHz: e.StartHz, EndHz: e.EndHz, Duration: c.Time.Duration}
		if err := ch.Validate(); err != nil {
			return nil, 0, 0, err
		}
		return ch, 0, 0, nil
	case "pulse":
		spec, err := c.PulseSpec()
		if err != nil {
			return nil, 0, 0, err
		}
		return sim.BaseForcing(sys.Mass, spec), 0, 0, nil
	}
	return nil, 0, 0, dynamo.Invalid("unknown excitation %q", e.Kind)
}
