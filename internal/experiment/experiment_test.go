package experiment

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/san-kum/sdofsim/internal/config"
	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/frequency"
	"github.com/san-kum/sdofsim/internal/logging"
)

var quiet = Options{Logger: logging.NoOpLogger{}}

func run(t *testing.T, kind Kind, cfg *config.Config) *Outcome {
	t.Helper()
	out, err := NewRegistry().Run(context.Background(), kind, cfg, quiet)
	if err != nil {
		t.Fatalf("%s failed: %v", kind, err)
	}
	return out
}

func TestListKinds(t *testing.T) {
	kinds := NewRegistry().ListKinds()
	if len(kinds) != 7 {
		t.Fatalf("expected 7 analyses, got %v", kinds)
	}
	if !sort.StringsAreSorted(kinds) {
		t.Errorf("expected sorted names, got %v", kinds)
	}
}

func TestRun_Unknown(t *testing.T) {
	if _, err := NewRegistry().Run(context.Background(), "psd", config.DefaultConfig(), quiet); err == nil {
		t.Error("expected error for unknown analysis")
	}
}

func TestRun_InvalidSystem(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.System.Mass = -1
	_, err := NewRegistry().Run(context.Background(), FRF, cfg, quiet)
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestFRF(t *testing.T) {
	out := run(t, FRF, config.DefaultConfig())

	if n := len(out.Table.Columns); n != 6 {
		t.Errorf("expected 6 columns, got %d", n)
	}
	if n := out.Table.Rows(); n != 500 {
		t.Errorf("expected 500 rows, got %d", n)
	}
	fn := out.Summary["fn_hz"]
	if rel := math.Abs(out.Summary["peak_frequency"]-fn) / fn; rel > 0.02 {
		t.Errorf("peak at %v Hz, expected near fn %v", out.Summary["peak_frequency"], fn)
	}
	if q := out.Summary["q"]; math.Abs(q-10) > 1e-9 {
		t.Errorf("expected Q 10, got %v", q)
	}
}

func TestTransmissibility(t *testing.T) {
	out := run(t, Transmissibility, config.DefaultConfig())

	fn := out.Summary["fn_hz"]
	if got := out.Summary["crossover_hz"]; math.Abs(got-fn*math.Sqrt2) > 1e-9 {
		t.Errorf("expected crossover at fn·√2, got %v", got)
	}
	if got, want := out.Summary["peak_tr"], frequency.PeakTransmissibility(0.05); math.Abs(got-want) > 1e-9 {
		t.Errorf("peak TR = %v, want %v", got, want)
	}
	if _, ok := out.Summary["tr_at_excitation"]; !ok {
		t.Error("expected TR at the excitation frequency")
	}
}

func TestTime_Step(t *testing.T) {
	out := run(t, Time, config.DefaultConfig())

	if n := len(out.Table.Columns); n != 4 {
		t.Errorf("expected 4 columns, got %d", n)
	}
	// 10 N on 1000 N/m with 5% damping overshoots to xs·(1 + exp(-ζπ/√(1-ζ²))).
	want := 10 * (1 + math.Exp(-0.05*math.Pi/math.Sqrt(1-0.0025)))
	if got := out.Summary["peak_mm"]; math.Abs(got-want) > 0.01 {
		t.Errorf("peak %v mm, want %v", got, want)
	}
	if _, ok := out.Summary["limit_exceeded"]; ok {
		t.Error("no limit configured, expected no verdict")
	}
}

func TestTime_Harmonic(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Excitation.Kind = "harmonic"
	cfg.LimitMM = 50

	out := run(t, Time, cfg)
	if n := len(out.Table.Columns); n != 6 {
		t.Errorf("expected 6 columns, got %d", n)
	}
	if phase := out.Summary["phase_deg"]; phase < 0 || phase > 180 {
		t.Errorf("phase %v outside [0, 180]", phase)
	}
	if out.Summary["limit_exceeded"] != 1 {
		t.Errorf("steady amplitude %v mm should exceed 50 mm", out.Summary["amplitude_mm"])
	}
}

func TestTime_NoClosedForm(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Excitation.Kind = "chirp"
	if _, err := NewRegistry().Run(context.Background(), Time, cfg, quiet); err == nil {
		t.Error("expected error for chirp")
	}
}

func TestIntegrate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LimitMM = 15

	out := run(t, Integrate, cfg)
	if out.Result == nil {
		t.Fatal("expected the integrated history")
	}
	if n := len(out.Table.Columns); n != 5 {
		t.Errorf("expected 5 columns, got %d", n)
	}
	if steps := out.Summary["steps"]; steps != 2000 {
		t.Errorf("expected 2000 steps, got %v", steps)
	}
	want := 10 * (1 + math.Exp(-0.05*math.Pi/math.Sqrt(1-0.0025)))
	if got := out.Summary["peak_displacement_mm"]; math.Abs(got-want) > 0.05 {
		t.Errorf("peak %v mm, want %v", got, want)
	}
	if out.Summary["limit_exceeded"] != 1 {
		t.Error("expected the 15 mm limit to be exceeded")
	}
	if c := out.Summary["limit_compliance"]; c >= 1 || c <= 0 {
		t.Errorf("expected partial compliance, got %v", c)
	}
}

func TestIntegrate_Chirp(t *testing.T) {
	cfg := config.GetPreset("sweep")
	out := run(t, Integrate, cfg)
	if out.Summary["peak_displacement_mm"] <= 0 {
		t.Error("expected a response to the sweep")
	}
}

func TestIntegrate_UnknownIntegrator(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Time.Integrator = "leapfrog"
	if _, err := NewRegistry().Run(context.Background(), Integrate, cfg, quiet); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestCompare(t *testing.T) {
	out := run(t, Compare, config.DefaultConfig())

	if n := len(out.Table.Columns); n != 5 {
		t.Fatalf("expected time, analytical and 3 integrators, got %d columns", n)
	}
	for _, name := range []string{"newmark", "rk4", "verlet"} {
		rel, ok := out.Summary["relative_error_"+name]
		if !ok {
			t.Errorf("missing error for %s", name)
			continue
		}
		if rel > 1e-2 {
			t.Errorf("%s relative error %v too large", name, rel)
		}
	}
}

func TestCompare_Subset(t *testing.T) {
	opts := quiet
	opts.Integrators = []string{"newmark"}
	out, err := NewRegistry().Run(context.Background(), Compare, config.DefaultConfig(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(out.Table.Columns); n != 3 {
		t.Errorf("expected 3 columns, got %d", n)
	}
}

func TestSRS(t *testing.T) {
	out := run(t, SRS, config.GetPreset("drop-test"))

	if n := len(out.Table.Columns); n != 8 {
		t.Errorf("expected 8 columns, got %d", n)
	}
	if out.Spectrum == nil {
		t.Fatal("expected the full spectrum")
	}
	if amp := out.Summary["amplification"]; amp < 1.3 || amp > 2 {
		t.Errorf("half-sine amplification %v outside [1.3, 2]", amp)
	}
	if got := out.Summary["peak_g"]; math.Abs(got-50*out.Summary["amplification"]) > 1e-9 {
		t.Errorf("peak %v g inconsistent with amplification", got)
	}
}

func TestSRS_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRegistry().Run(ctx, SRS, config.GetPreset("drop-test"), quiet)
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestPulse(t *testing.T) {
	out := run(t, Pulse, config.DefaultConfig())

	// A half-sine of peak A and width τ changes velocity by 2Aτ/π.
	want := 2 * 50 * dynamo.StandardGravity * 0.011 / math.Pi
	if got := out.Summary["delta_v"]; math.Abs(got-want)/want > 1e-3 {
		t.Errorf("delta v = %v, want %v", got, want)
	}
	if got := out.Summary["characteristic_hz"]; math.Abs(got-1/(2*0.011)) > 1e-9 {
		t.Errorf("characteristic frequency %v", got)
	}
}

func TestOutcomeMetadata(t *testing.T) {
	out := run(t, FRF, config.DefaultConfig())
	meta := out.Metadata()
	if meta.Analysis != "frf" {
		t.Errorf("expected frf, got %s", meta.Analysis)
	}
	if meta.System == nil || meta.System.Mass != 1 {
		t.Errorf("system not carried: %+v", meta.System)
	}
}

func TestAnalyzeColumn(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Excitation.Kind = "free"
	out := run(t, Time, cfg)

	rep, err := AnalyzeColumn(out.Table, "displacement")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rep.Stats.Peak-10) > 1e-9 {
		t.Errorf("expected peak 10 mm, got %v", rep.Stats.Peak)
	}
	fd := out.Summary["fn_hz"] * math.Sqrt(1-0.0025)
	if math.Abs(rep.MeasuredHz-fd)/fd > 0.01 {
		t.Errorf("measured %v Hz, expected %v", rep.MeasuredHz, fd)
	}
	if rep.Decay == nil || math.Abs(rep.Decay.Zeta-0.05) > 0.005 {
		t.Errorf("expected zeta near 0.05, got %+v", rep.Decay)
	}
	if rep.DominantHz <= 0 {
		t.Error("expected a dominant frequency")
	}

	if _, err := AnalyzeColumn(out.Table, "missing"); err == nil {
		t.Error("expected error for missing column")
	}
}

func TestAnalyzeColumn_FrequencyAxis(t *testing.T) {
	out := run(t, FRF, config.DefaultConfig())
	rep, err := AnalyzeColumn(out.Table, "magnitude")
	if err != nil {
		t.Fatal(err)
	}
	if rep.MeasuredHz != 0 || rep.Decay != nil {
		t.Error("frequency-domain columns get statistics only")
	}
}
