package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/sdofsim/internal/automation"
	"github.com/san-kum/sdofsim/internal/storage"
	"github.com/san-kum/sdofsim/internal/viz"
)

func batchCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of analyses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			fmt.Println(viz.Heading(scenario.Name))
			if scenario.Description != "" {
				fmt.Println(viz.Muted(scenario.Description))
			}

			if dryRun {
				for i, step := range scenario.Steps {
					if _, err := step.BuildConfig(); err != nil {
						return fmt.Errorf("step %d: %w", i+1, err)
					}
					fmt.Printf("%d. %s %s\n", i+1, step.Analysis, step.Name)
				}
				return nil
			}

			var st *storage.Store
			for _, step := range scenario.Steps {
				if step.Save {
					if st, err = openStore(); err != nil {
						return err
					}
					break
				}
			}

			results, err := automation.RunScenario(cmd.Context(), scenario, registry, st, logger)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tANALYSIS\tROWS\tRUN ID")
			for _, r := range results {
				id := r.RunID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Name, r.Outcome.Kind, r.Outcome.Table.Rows(), id)
			}
			if ferr := w.Flush(); ferr != nil && err == nil {
				err = ferr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the steps without running them")
	return cmd
}

func sweepCmd() *cobra.Command {
	sweep := automation.ParameterSweep{}
	cmd := &cobra.Command{
		Use:   "sweep [analysis] [param] [min] [max]",
		Short: "vary one parameter and tabulate a summary value",
		Long: "Runs the analysis at evenly spaced values of the parameter (mass, stiffness, damping,\n" +
			"zeta, q, fn, amplitude, frequency_hz, pulse.amplitude_g, pulse.duration, ...)\n" +
			"and reports the chosen summary value at each.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			sweep.Analysis, sweep.ParamName = args[0], args[1]
			if _, err := fmt.Sscan(args[2], &sweep.ParamMin); err != nil {
				return fmt.Errorf("min: %w", err)
			}
			if _, err := fmt.Sscan(args[3], &sweep.ParamMax); err != nil {
				return fmt.Errorf("max: %w", err)
			}

			results, err := automation.RunSweep(cmd.Context(), base, &sweep, registry)
			if err != nil {
				return err
			}

			values := make([]float64, len(results))
			best := 0
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(sweep.ParamName), strings.ToUpper(sweep.Objective))
			for i, r := range results {
				values[i] = r.Objective
				if r.Objective < results[best].Objective {
					best = i
				}
				fmt.Fprintf(w, "%.6g\t%.6g\n", r.ParamValue, r.Objective)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println(viz.Sparkline(values, min(len(values), 60)))
			fmt.Println(viz.Muted(fmt.Sprintf("minimum %.6g at %s = %.6g", results[best].Objective, sweep.ParamName, results[best].ParamValue)))
			return nil
		},
	}
	addAnalysisFlags(cmd)
	cmd.Flags().IntVar(&sweep.NumSteps, "steps", 11, "number of parameter values")
	cmd.Flags().BoolVar(&sweep.Log, "log", false, "logarithmic spacing")
	cmd.Flags().StringVar(&sweep.Objective, "objective", "peak_mm", "summary value to report")
	cmd.Flags().IntVar(&sweep.Workers, "parallel", 0, "concurrent runs, 0 for all cores")
	return cmd
}

func monteCarloCmd() *cobra.Command {
	mc := automation.MonteCarloConfig{}
	var tolerances []string
	cmd := &cobra.Command{
		Use:   "montecarlo [analysis]",
		Short: "perturb parameters within tolerances and summarise a result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			mc.Analysis = args[0]
			if mc.Tolerances, err = parseTolerances(tolerances); err != nil {
				return err
			}

			results, err := automation.RunMonteCarlo(cmd.Context(), base, &mc, registry)
			if err != nil {
				return err
			}
			stats, err := automation.Summarize(results)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(mc.Tolerances))
			for k, v := range mc.Tolerances {
				names = append(names, fmt.Sprintf("%s ±%g%%", k, v*100))
			}
			sort.Strings(names)
			fmt.Println(viz.Heading(fmt.Sprintf("%s: %d trials, %s", mc.Analysis, len(results), strings.Join(names, ", "))))

			values := make([]float64, len(results))
			for i, r := range results {
				values[i] = r.Objective
			}
			fmt.Println(viz.Sparkline(values, min(len(values), 60)))
			fmt.Println(viz.Summary(mc.Objective, []viz.KV{
				viz.KVf("mean", "%.6g", stats.Mean),
				viz.KVf("std dev", "%.6g", stats.StdDev),
				viz.KVf("min", "%.6g", stats.Min),
				viz.KVf("max", "%.6g", stats.Max),
				viz.KVf("p05", "%.6g", stats.P05),
				viz.KVf("p50", "%.6g", stats.P50),
				viz.KVf("p95", "%.6g", stats.P95),
			}))
			return nil
		},
	}
	addAnalysisFlags(cmd)
	cmd.Flags().StringSliceVar(&tolerances, "tol", []string{"stiffness=0.1"}, "relative tolerances, name=fraction")
	cmd.Flags().IntVar(&mc.NumTrials, "trials", 100, "number of trials")
	cmd.Flags().StringVar(&mc.Objective, "objective", "peak_mm", "summary value to collect")
	cmd.Flags().Int64Var(&mc.Seed, "seed", 0, "random seed, 0 for time based")
	cmd.Flags().IntVar(&mc.Workers, "parallel", 0, "concurrent runs, 0 for all cores")
	return cmd
}

func parseTolerances(specs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(specs))
	for _, s := range specs {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("tolerance %q: want name=fraction", s)
		}
		var tol float64
		if _, err := fmt.Sscan(value, &tol); err != nil {
			return nil, fmt.Errorf("tolerance %q: %w", s, err)
		}
		out[strings.TrimSpace(name)] = tol
	}
	return out, nil
}
