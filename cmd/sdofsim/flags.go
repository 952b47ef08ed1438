package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/sdofsim/internal/config"
)

// paramFlag maps a float flag onto a config.Config.Set parameter.
type paramFlag struct {
	flag, param, usage string
}

var paramFlags = []paramFlag{
	{"mass", "mass", "mass [kg]"},
	{"stiffness", "stiffness", "stiffness [N/m]"},
	{"damping", "damping", "damping coefficient [N·s/m]"},
	{"zeta", "zeta", "damping ratio"},
	{"q", "q", "quality factor"},
	{"fn", "fn", "natural frequency [Hz], retunes stiffness"},
	{"dt", "dt", "time step [s]"},
	{"time", "duration", "duration [s]"},
	{"amplitude", "amplitude", "force [N] or impulse [N·s]"},
	{"freq", "frequency_hz", "harmonic excitation frequency [Hz]"},
	{"pulse-g", "pulse.amplitude_g", "pulse peak [g]"},
	{"pulse-duration", "pulse.duration", "pulse duration [s]"},
	{"limit", "limit_mm", "displacement limit [mm], 0 disables"},
}

// addAnalysisFlags registers the configuration overrides on cmd. Their
// defaults are placeholders; only flags given on the command line are
// applied.
func addAnalysisFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	for _, p := range paramFlags {
		f.Float64(p.flag, 0, p.usage)
	}
	f.String("excitation", "", "impulse, step, harmonic, free, ramp, chirp or pulse")
	f.String("integrator", "", "newmark, rk4 or verlet")
	f.String("shape", "", "pulse shape")
	f.Float64("x0", 0, "initial displacement [m]")
	f.Float64("v0", 0, "initial velocity [m/s]")
	f.Float64("f-start", 0, "first frequency")
	f.Float64("f-stop", 0, "last frequency")
	f.Int("points", 0, "number of frequency points")
	f.String("spacing", "", "linear or log")
	f.String("unit", "", "hz or rad/s")
	f.Float64("srs-start", 0, "first SRS frequency [Hz]")
	f.Float64("srs-stop", 0, "last SRS frequency [Hz]")
	f.Int("srs-points", 0, "number of SRS frequencies")
	f.Float64("srs-q", 0, "SRS quality factor, overrides the SRS damping ratio")
	f.Int("workers", 0, "SRS worker goroutines, 0 for all cores")
	f.BoolVar(&saveRun, "save", false, "save the run to the data directory")
	f.BoolVar(&noPlot, "no-plot", false, "print the summary only")
}

// resolveConfig builds the configuration for cmd: preset, then --config,
// then the flags that were set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := baseConfig()
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func applyFlags(cfg *config.Config, f *pflag.FlagSet) error {
	for _, p := range paramFlags {
		if !f.Changed(p.flag) {
			continue
		}
		v, err := f.GetFloat64(p.flag)
		if err != nil {
			return err
		}
		if err := cfg.Set(p.param, v); err != nil {
			return err
		}
	}

	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *float64) {
		if f.Changed(name) {
			*dst, _ = f.GetFloat64(name)
		}
	}
	count := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}

	str("excitation", &cfg.Excitation.Kind)
	str("integrator", &cfg.Time.Integrator)
	str("shape", &cfg.Pulse.Shape)
	num("x0", &cfg.Excitation.X0)
	num("v0", &cfg.Excitation.V0)
	num("f-start", &cfg.Frequency.Start)
	num("f-stop", &cfg.Frequency.Stop)
	count("points", &cfg.Frequency.Count)
	str("spacing", &cfg.Frequency.Spacing)
	str("unit", &cfg.Frequency.Unit)
	num("srs-start", &cfg.SRS.Start)
	num("srs-stop", &cfg.SRS.Stop)
	count("srs-points", &cfg.SRS.Count)
	num("srs-q", &cfg.SRS.Q)
	count("workers", &cfg.SRS.Workers)
	return nil
}
