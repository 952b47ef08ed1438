package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/sdofsim/internal/config"
)

func parsed(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addAnalysisFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestApplyFlags_OnlyChanged(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd := parsed(t, "--zeta", "0.2", "--points", "10", "--excitation", "harmonic", "--freq", "7")
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		t.Fatal(err)
	}

	sys, err := cfg.BuildSystem()
	if err != nil {
		t.Fatal(err)
	}
	if z := sys.Modal().Zeta; math.Abs(z-0.2) > 1e-12 {
		t.Errorf("expected zeta 0.2, got %v", z)
	}
	if cfg.Frequency.Count != 10 || cfg.Excitation.Kind != "harmonic" || cfg.Excitation.FrequencyHz != 7 {
		t.Errorf("flags not applied: %+v %+v", cfg.Frequency, cfg.Excitation)
	}
	if cfg.System.Mass != config.DefaultMass || cfg.Time.Dt != config.DefaultDt {
		t.Error("unset flags must not override the configuration")
	}
}

func TestResolveConfig_PresetFileFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yaml")
	if err := os.WriteFile(path, []byte("system:\n  mass: 60\nlimit_mm: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	preset, configFile = "isolator", path
	t.Cleanup(func() { preset, configFile = "", "" })

	cfg, err := resolveConfig(parsed(t, "--limit", "3"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.System.Mass != 60 {
		t.Errorf("file should override preset mass, got %v", cfg.System.Mass)
	}
	if cfg.System.Stiffness != 2e5 {
		t.Errorf("preset stiffness lost, got %v", cfg.System.Stiffness)
	}
	if cfg.LimitMM != 3 {
		t.Errorf("flag should override file limit, got %v", cfg.LimitMM)
	}
}

func TestResolveConfig_UnknownPreset(t *testing.T) {
	preset = "nope"
	t.Cleanup(func() { preset = "" })
	if _, err := resolveConfig(parsed(t)); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestParseTolerances(t *testing.T) {
	tol, err := parseTolerances([]string{"stiffness=0.1", " mass =0.05"})
	if err != nil {
		t.Fatal(err)
	}
	if tol["stiffness"] != 0.1 || tol["mass"] != 0.05 {
		t.Errorf("unexpected tolerances %v", tol)
	}
	for _, bad := range []string{"stiffness", "mass=abc"} {
		if _, err := parseTolerances([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestAnalysisCommands(t *testing.T) {
	cmds := analysisCommands()
	if len(cmds) != len(registry.ListKinds()) {
		t.Fatalf("expected one command per analysis, got %d", len(cmds))
	}
	for _, c := range cmds {
		if c.Flags().Lookup("zeta") == nil || c.Flags().Lookup("save") == nil {
			t.Errorf("%s is missing analysis flags", c.Name())
		}
	}
}
