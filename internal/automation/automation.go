// Package automation runs batches of analyses: scripted scenarios, one
// parameter sweeps and Monte Carlo tolerance studies.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sdofsim/internal/analysis"
	"github.com/san-kum/sdofsim/internal/config"
	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/experiment"
	"github.com/san-kum/sdofsim/internal/logging"
	"github.com/san-kum/sdofsim/internal/optim"
	"github.com/san-kum/sdofsim/internal/storage"
)

// Scenario defines a scripted sequence of analyses
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one analysis. The configuration starts from Preset (or
// the defaults), then Config is loaded over it, then Overrides, which use
// the same layout as a configuration file.
type ScenarioStep struct {
	Name      string         `yaml:"name"`
	Analysis  string         `yaml:"analysis"`
	Preset    string         `yaml:"preset"`
	Config    string         `yaml:"config"`
	Overrides map[string]any `yaml:"overrides"`
	Save      bool           `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// BuildConfig resolves the configuration of a step.
func (s ScenarioStep) BuildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Config != "" {
		data, err := os.ReadFile(s.Config)
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", s.Config, err)
		}
	}
	if len(s.Overrides) > 0 {
		data, err := yaml.Marshal(s.Overrides)
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(data); err != nil {
			return nil, fmt.Errorf("overrides: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

// StepResult is the outcome of one scenario step. RunID is set when the
// step was saved.
type StepResult struct {
	Name    string
	Outcome *experiment.Outcome
	RunID   string
}

// RunScenario executes all steps in order. Steps marked Save are written
// to store, which may be nil when nothing is saved. Results of completed
// steps are returned with the first error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, log logging.Logger) ([]StepResult, error) {
	log = logging.OrGlobal(log)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", step.Analysis, i+1)
		}
		log.Info("scenario step", logging.Fields{"step": i + 1, "of": len(scenario.Steps), "name": name, "analysis": step.Analysis})

		cfg, err := step.BuildConfig()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		out, err := registry.Run(ctx, experiment.Kind(step.Analysis), cfg, experiment.Options{Logger: log})
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepResult{Name: name, Outcome: out}
		if step.Save {
			if store == nil {
				return results, fmt.Errorf("step %d: no store to save into", i+1)
			}
			meta := out.Metadata()
			if meta.Params == nil {
				meta.Params = map[string]string{}
			}
			meta.Params["scenario"] = scenario.Name
			meta.Params["step"] = name
			if res.RunID, err = store.Save(meta, out.Table); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// ParameterSweep varies one parameter (see config.Config.Set) and records
// one summary value of the analysis at each setting.
type ParameterSweep struct {
	Analysis  string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Log       bool
	Objective string
	Workers   int
}

// SweepResult holds one point of a parameter sweep
type SweepResult struct {
	ParamValue float64
	Objective  float64
	Summary    map[string]float64
}

// RunSweep executes a parameter sweep over a copy of base.
func RunSweep(ctx context.Context, base *config.Config, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	values, err := optim.Range(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps, sweep.Log)
	if err != nil {
		return nil, err
	}
	g := optim.NewGridSearch([]string{sweep.ParamName}, [][]float64{values})
	g.Workers = sweep.Workers

	summaries := make([]map[string]float64, len(values))
	index := make(map[float64]int, len(values))
	for i, v := range values {
		index[v] = i
	}

	evals, _, err := g.Search(ctx, func(ctx context.Context, p map[string]float64) (float64, error) {
		v := p[sweep.ParamName]
		out, err := evaluate(ctx, base, sweep.Analysis, p, registry)
		if err != nil {
			return 0, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		summaries[index[v]] = out.Summary
		return objectiveValue(out, sweep.Objective)
	})
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(evals))
	for i, e := range evals {
		results[i] = SweepResult{
			ParamValue: e.Params[sweep.ParamName],
			Objective:  e.Value,
			Summary:    summaries[i],
		}
	}
	return results, nil
}

// setOrder ranks parameters so that each is applied after the ones it is
// derived from: "fn" sets stiffness from the current mass, and the damping
// ratio and Q are converted using mass and stiffness.
func setOrder(name string) int {
	switch strings.ToLower(name) {
	case "mass", "m":
		return 0
	case "stiffness", "k", "fn", "fn_hz":
		return 1
	case "damping", "c", "zeta", "damping_ratio", "q":
		return 2
	}
	return 3
}

// orderedNames returns the keys of params in application order.
func orderedNames(params map[string]float64) []string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := setOrder(names[i]), setOrder(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

func evaluate(ctx context.Context, base *config.Config, kind string, params map[string]float64, registry *experiment.Registry) (*experiment.Outcome, error) {
	cfg := base.Clone()
	for _, k := range orderedNames(params) {
		if err := cfg.Set(k, params[k]); err != nil {
			return nil, err
		}
	}
	return registry.Run(ctx, experiment.Kind(kind), cfg, experiment.Options{Logger: logging.NoOpLogger{}})
}

func objectiveValue(out *experiment.Outcome, key string) (float64, error) {
	v, ok := out.Summary[key]
	if !ok {
		keys := make([]string, 0, len(out.Summary))
		for k := range out.Summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return 0, dynamo.Invalid("%s has no summary value %q (have %v)", out.Kind, key, keys)
	}
	return v, nil
}

// MonteCarloConfig perturbs parameters uniformly within a relative
// tolerance, e.g. {"stiffness": 0.1} for ±10 %.
type MonteCarloConfig struct {
	Analysis   string
	Tolerances map[string]float64
	NumTrials  int
	Objective  string
	Seed       int64
	Workers    int
}

// MonteCarloResult holds one trial
type MonteCarloResult struct {
	TrialID   int
	Params    map[string]float64
	Objective float64
}

// RunMonteCarlo executes NumTrials perturbed analyses. Trial parameters
// are drawn serially from the seed, so results are reproducible for a
// fixed seed whatever the worker count.
func RunMonteCarlo(ctx context.Context, base *config.Config, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, dynamo.Invalid("need at least one trial (got %d)", cfg.NumTrials)
	}
	nominal, err := nominalValues(base, cfg.Tolerances)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	names := make([]string, 0, len(nominal))
	for k := range nominal {
		names = append(names, k)
	}
	sort.Strings(names)

	results := make([]MonteCarloResult, cfg.NumTrials)
	for trial := range results {
		params := make(map[string]float64, len(names))
		for _, k := range names {
			tol := cfg.Tolerances[k]
			params[k] = nominal[k] * (1 + (rng.Float64()-0.5)*2*tol)
		}
		results[trial] = MonteCarloResult{TrialID: trial, Params: params}
	}

	err = dynamo.ParallelFor(ctx, len(results), cfg.Workers, func(ctx context.Context, i int) error {
		out, err := evaluate(ctx, base, cfg.Analysis, results[i].Params, registry)
		if err != nil {
			return fmt.Errorf("trial %d: %w", i, err)
		}
		results[i].Objective, err = objectiveValue(out, cfg.Objective)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// nominalValues reads the current value of each toleranced parameter.
// Parameters that set the same quantity cannot be perturbed together.
func nominalValues(base *config.Config, tolerances map[string]float64) (map[string]float64, error) {
	if len(tolerances) == 0 {
		return nil, dynamo.Invalid("no parameters to perturb")
	}
	_, hasK := tolerances["stiffness"]
	_, hasFn := tolerances["fn"]
	if hasK && hasFn {
		return nil, dynamo.Invalid("stiffness and fn both set the stiffness; perturb one of them")
	}
	var damping []string
	for _, k := range []string{"damping", "zeta", "q"} {
		if _, ok := tolerances[k]; ok {
			damping = append(damping, k)
		}
	}
	if len(damping) > 1 {
		return nil, dynamo.Invalid("%s all set the damping; perturb one of them", strings.Join(damping, ", "))
	}
	sys, err := base.BuildSystem()
	if err != nil {
		return nil, err
	}
	m := sys.Modal()
	out := make(map[string]float64, len(tolerances))
	for k, tol := range tolerances {
		if tol < 0 || tol >= 1 {
			return nil, dynamo.Invalid("tolerance of %q must be in [0, 1) (got %v)", k, tol)
		}
		switch k {
		case "mass":
			out[k] = sys.Mass
		case "stiffness":
			out[k] = sys.Stiffness
		case "damping":
			out[k] = sys.Damping
		case "zeta":
			out[k] = m.Zeta
		case "q":
			if m.Zeta == 0 {
				return nil, dynamo.Invalid("an undamped system has no finite Q to perturb")
			}
			out[k] = m.Q()
		case "fn":
			out[k] = m.FnHz
		case "amplitude":
			out[k] = base.Excitation.Amplitude
		case "pulse.amplitude_g":
			out[k] = base.Pulse.AmplitudeG
		case "pulse.duration":
			out[k] = base.Pulse.Duration
		default:
			return nil, dynamo.Invalid("parameter %q cannot be perturbed", k)
		}
	}
	return out, nil
}

// MonteCarloStats summarises trial objectives.
type MonteCarloStats struct {
	analysis.Stats
	P05, P50, P95 float64
}

// Summarize reports statistics and the 5th, 50th and 95th percentiles of
// the trial objectives.
func Summarize(results []MonteCarloResult) (MonteCarloStats, error) {
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.Objective
	}
	s, err := analysis.Summarize(values)
	if err != nil {
		return MonteCarloStats{}, err
	}
	sort.Float64s(values)
	return MonteCarloStats{
		Stats: s,
		P05:   stat.Quantile(0.05, stat.Empirical, values, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, values, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, values, nil),
	}, nil
}
