package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/frequency"
	"github.com/san-kum/sdofsim/internal/physics"
	"github.com/san-kum/sdofsim/internal/response"
	"github.com/san-kum/sdofsim/internal/waveform"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	sys, err := cfg.BuildSystem()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sys.Modal().Zeta-DefaultDampingRatio) > 1e-12 {
		t.Errorf("expected zeta %v, got %v", DefaultDampingRatio, sys.Modal().Zeta)
	}
	if cfg.Time.Integrator != "newmark" {
		t.Errorf("expected newmark integrator, got %s", cfg.Time.Integrator)
	}
}

func TestLoad_OverridesDamping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("system:\n  mass: 2\n  stiffness: 800\n  damping: 4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	sys, err := cfg.BuildSystem()
	if err != nil {
		t.Fatalf("damping from file should replace the default ratio: %v", err)
	}
	if sys.Mass != 2 || sys.Stiffness != 800 || sys.Damping != 4 {
		t.Errorf("unexpected system %v", sys)
	}
	if cfg.Time.Dt != DefaultDt {
		t.Errorf("unset sections should keep defaults, dt=%v", cfg.Time.Dt)
	}
}

func TestLoad_KeepsDefaultDampingWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("limit_mm: 2.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.System.DampingRatio == nil || *cfg.System.DampingRatio != DefaultDampingRatio {
		t.Error("expected the default damping ratio")
	}
	if cfg.LimitMM != 2.5 {
		t.Errorf("expected limit 2.5, got %v", cfg.LimitMM)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("system: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop.yaml")
	want := GetPreset("drop-test")
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.SRS != want.SRS || got.Pulse != want.Pulse || got.Excitation != want.Excitation {
		t.Errorf("preset changed on disk:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestBuildSystem_ConflictingDamping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System.Damping = ptr(3)

	_, err := cfg.BuildSystem()
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestBuildSystem_Representations(t *testing.T) {
	cfg := DefaultConfig()

	cfg.SetQ(10)
	sys, err := cfg.BuildSystem()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sys.Modal().Zeta-0.05) > 1e-12 {
		t.Errorf("Q=10 should give zeta 0.05, got %v", sys.Modal().Zeta)
	}

	cfg.SetDamping(0)
	sys, err = cfg.BuildSystem()
	if err != nil {
		t.Fatal(err)
	}
	if sys.Damping != 0 || sys.Modal().Regime != physics.Underdamped {
		t.Errorf("expected an undamped oscillator, got %v", sys)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero mass", func(c *Config) { c.System.Mass = 0 }},
		{"bad spacing", func(c *Config) { c.Frequency.Spacing = "cubic" }},
		{"bad unit", func(c *Config) { c.Frequency.Unit = "rpm" }},
		{"one point", func(c *Config) { c.Frequency.Count = 1 }},
		{"zero dt", func(c *Config) { c.Time.Dt = 0 }},
		{"bad shape", func(c *Config) { c.Pulse.Shape = "triangle-ish" }},
		{"zero pulse", func(c *Config) { c.Pulse.Duration = 0 }},
		{"srs start", func(c *Config) { c.SRS.Start = 0 }},
		{"limit", func(c *Config) { c.LimitMM = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFrequencyGrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = FrequencyConfig{Start: 1, Stop: 100, Count: 3, Spacing: "log", Unit: "rad/s"}

	freqs, unit, err := cfg.FrequencyGrid()
	if err != nil {
		t.Fatal(err)
	}
	if unit != frequency.RadPerSec {
		t.Errorf("expected rad/s, got %v", unit)
	}
	if len(freqs) != 3 || math.Abs(freqs[1]-10) > 1e-9 {
		t.Errorf("unexpected grid %v", freqs)
	}
}

func TestPulseSpec_ConvertsG(t *testing.T) {
	cfg := DefaultConfig()
	spec, err := cfg.PulseSpec()
	if err != nil {
		t.Fatal(err)
	}
	if spec.Shape != waveform.HalfSine {
		t.Errorf("expected half-sine, got %v", spec.Shape)
	}
	if math.Abs(spec.Amplitude-50*dynamo.StandardGravity) > 1e-9 {
		t.Errorf("expected 50 g in m/s^2, got %v", spec.Amplitude)
	}
}

func TestClosedForm(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Excitation.Kind = "harmonic"
	cfg.Excitation.FrequencyHz = 2

	ex, err := cfg.ClosedForm()
	if err != nil {
		t.Fatal(err)
	}
	if ex.Kind != response.HarmonicExcitation {
		t.Errorf("expected harmonic, got %v", ex.Kind)
	}
	if math.Abs(ex.Omega-4*math.Pi) > 1e-12 {
		t.Errorf("expected 4π rad/s, got %v", ex.Omega)
	}

	cfg.Excitation.Kind = "chirp"
	if _, err := cfg.ClosedForm(); err == nil {
		t.Error("chirp has no closed form")
	}
}

func TestForcing(t *testing.T) {
	cfg := DefaultConfig()
	sys, err := cfg.BuildSystem()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		kind   string
		at     float64
		want   float64
		x0, v0 float64
	}{
		{"step", 0.5, 10, 0, 0},
		{"ramp", 0.05, 5, 0, 0},
		{"impulse", 0.5, 0, 0, 10},
		{"free", 0.5, 0, 0.01, 0},
		{"pulse", 0.0055, -50 * dynamo.StandardGravity, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg.Excitation.Kind = tt.kind
			f, x0, v0, err := cfg.Forcing(sys)
			if err != nil {
				t.Fatal(err)
			}
			if got := f.At(tt.at); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("F(%v) = %v, want %v", tt.at, got, tt.want)
			}
			if x0 != tt.x0 || v0 != tt.v0 {
				t.Errorf("initial state (%v, %v), want (%v, %v)", x0, v0, tt.x0, tt.v0)
			}
		})
	}

	cfg.Excitation.Kind = "square"
	if _, _, _, err := cfg.Forcing(sys); err == nil {
		t.Error("expected error for unknown excitation")
	}

	cfg.Excitation.Kind = "ramp"
	cfg.Excitation.RampTime = -0.1
	if _, _, _, err := cfg.Forcing(sys); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for negative ramp time, got %v", err)
	}
}

func TestExcitationKindCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	sys, err := cfg.BuildSystem()
	if err != nil {
		t.Fatal(err)
	}
	for _, kind := range []string{"Step", "HARMONIC", " impulse "} {
		cfg.Excitation.Kind = kind
		if _, err := cfg.ClosedForm(); err != nil {
			t.Errorf("ClosedForm(%q): %v", kind, err)
		}
		if _, _, _, err := cfg.Forcing(sys); err != nil {
			t.Errorf("Forcing(%q): %v", kind, err)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("isolator")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.System.Mass != 50 {
		t.Errorf("expected mass 50, got %v", cfg.System.Mass)
	}
	cfg.System.Mass = 1
	if GetPreset("isolator").System.Mass != 50 {
		t.Error("presets should be returned as copies")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(presets) {
		t.Fatalf("expected %d presets, got %d", len(presets), len(names))
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if Describe(name) == "" {
			t.Errorf("preset %s has no description", name)
		}
	}
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Apply([]byte("system:\n  q: 25\ntime:\n  dt: 0.0005\n")); err != nil {
		t.Fatal(err)
	}
	if cfg.System.DampingRatio != nil || cfg.System.Q == nil || *cfg.System.Q != 25 {
		t.Errorf("expected Q to replace the damping ratio, got %+v", cfg.System)
	}
	if cfg.Time.Dt != 0.0005 || cfg.Time.Duration != DefaultDuration {
		t.Errorf("unexpected time section %+v", cfg.Time)
	}
	if err := cfg.Apply([]byte("time: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System.Mass = 2

	if err := cfg.Set("fn", 10); err != nil {
		t.Fatal(err)
	}
	sys, err := cfg.BuildSystem()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sys.Modal().FnHz-10) > 1e-9 {
		t.Errorf("expected fn 10 Hz, got %v", sys.Modal().FnHz)
	}

	if err := cfg.Set("damping", 5); err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.BuildSystem(); err != nil {
		t.Errorf("damping should replace zeta: %v", err)
	}

	if err := cfg.Set("pulse.duration", 0.006); err != nil || cfg.Pulse.Duration != 0.006 {
		t.Errorf("pulse duration not set: %v", err)
	}
	if err := cfg.Set("seed", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Clone()
	*cp.System.DampingRatio = 0.3
	cp.Time.Dt = 1

	if *cfg.System.DampingRatio != DefaultDampingRatio || cfg.Time.Dt != DefaultDt {
		t.Error("clone shares state with the original")
	}
}
