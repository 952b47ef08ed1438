package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/sdofsim/internal/config"
	"github.com/san-kum/sdofsim/internal/experiment"
	"github.com/san-kum/sdofsim/internal/export"
	"github.com/san-kum/sdofsim/internal/physics"
	"github.com/san-kum/sdofsim/internal/viz"
)

// plotSpec lists the columns drawn for an analysis, in order.
var plotSpec = map[experiment.Kind][]string{
	experiment.FRF:              {"magnitude_db"},
	experiment.Transmissibility: {"transmissibility_db"},
	experiment.Time:             {"displacement"},
	experiment.Integrate:        {"displacement"},
	experiment.SRS:              {"maximax", "primary", "residual"},
	experiment.Pulse:            {"acceleration"},
}

var analysisHelp = map[experiment.Kind]string{
	experiment.FRF:              "receptance, mobility and accelerance over the frequency grid",
	experiment.Transmissibility: "force/base transmissibility and isolation efficiency",
	experiment.Time:             "closed-form time response (impulse, step, harmonic, free)",
	experiment.Integrate:        "Newmark-beta (or other) integration under any forcing",
	experiment.Compare:          "integrators against the closed-form response",
	experiment.SRS:              "shock response spectrum of the configured pulse",
	experiment.Pulse:            "shock pulse waveform and velocity change",
}

var compareIntegrators []string

func analysisCommands() []*cobra.Command {
	var cmds []*cobra.Command
	for _, name := range registry.ListKinds() {
		kind := experiment.Kind(name)
		cmd := &cobra.Command{
			Use:   name,
			Short: analysisHelp[kind],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runAnalysis(cmd, kind)
			},
		}
		addAnalysisFlags(cmd)
		if kind == experiment.Compare {
			cmd.Flags().StringSliceVar(&compareIntegrators, "with", nil, "integrators to compare (default all)")
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func runAnalysis(cmd *cobra.Command, kind experiment.Kind) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := registry.Run(cmd.Context(), kind, cfg, experiment.Options{
		Logger:      logger,
		Integrators: compareIntegrators,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printSystem(out.System)
	if !noPlot {
		printPlot(out.Table, plotColumns(out))
	}
	printSummary(string(kind)+" summary", out.Summary)
	printVerdict(out.Summary)
	fmt.Println(viz.Muted(fmt.Sprintf("%d rows in %v", out.Table.Rows(), elapsed.Round(time.Microsecond))))

	if saveRun {
		st, err := openStore()
		if err != nil {
			return err
		}
		id, err := st.Save(out.Metadata(), out.Table)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}
	return nil
}

func plotColumns(out *experiment.Outcome) []string {
	if cols, ok := plotSpec[out.Kind]; ok {
		return cols
	}
	return valueColumns(out.Table)
}

func valueColumns(t *export.Table) []string {
	var names []string
	for _, c := range t.Columns[1:] {
		names = append(names, c.Name)
	}
	return names
}

func printSystem(sys physics.System) {
	m := sys.Modal()
	rows := []viz.KV{
		viz.KVf("mass", "%g kg", sys.Mass),
		viz.KVf("stiffness", "%g N/m", sys.Stiffness),
		viz.KVf("damping", "%.6g N·s/m", sys.Damping),
		viz.KVf("fn", "%.4f Hz", m.FnHz),
		viz.KVf("zeta", "%.4f (%s)", m.Zeta, m.Regime),
	}
	if m.FdHz > 0 {
		rows = append(rows, viz.KVf("fd", "%.4f Hz", m.FdHz))
	}
	fmt.Println(viz.Summary("system", rows))
}

// printPlot draws the named columns of t. Names missing from t are
// skipped.
func printPlot(t *export.Table, names []string) {
	var series [][]float64
	var captions []string
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok || len(c.Values) < 2 {
			continue
		}
		series = append(series, finite(c.Values))
		captions = append(captions, c.Header())
	}
	if len(series) == 0 {
		return
	}

	x := t.Columns[0]
	caption := fmt.Sprintf("%s vs %s [%.4g .. %.4g]", strings.Join(captions, ", "), x.Header(), x.Values[0], x.Values[len(x.Values)-1])
	opts := []asciigraph.Option{
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	}
	if len(series) > 1 {
		opts = append(opts, asciigraph.SeriesColors(asciigraph.Green, asciigraph.Blue, asciigraph.Orange, asciigraph.Red))
	}
	fmt.Println(asciigraph.PlotMany(series, opts...))
	fmt.Println()
}

// finite replaces NaN and infinite samples so they do not break the plot.
func finite(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[i] = v
	}
	return out
}

func printSummary(heading string, summary map[string]float64) {
	if len(summary) == 0 {
		return
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]viz.KV, len(keys))
	for i, k := range keys {
		rows[i] = viz.KVf(k, "%.6g", summary[k])
	}
	fmt.Println(viz.Summary(heading, rows))
}

func printVerdict(summary map[string]float64) {
	exceeded, ok := summary["limit_exceeded"]
	if !ok {
		return
	}
	peak := summary["peak_mm"]
	if p, ok := summary["peak_displacement_mm"]; ok {
		peak = p
	}
	fmt.Println(viz.Verdict(exceeded == 0, fmt.Sprintf("peak %.4g mm against limit %.4g mm", peak, summary["limit_mm"])))
}

func modalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modal",
		Short: "modal parameters of the configured system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			sys, err := cfg.BuildSystem()
			if err != nil {
				return err
			}
			m := sys.Modal()
			printSystem(sys)

			rows := []viz.KV{
				viz.KVf("omega_n", "%.6g rad/s", m.OmegaN),
				viz.KVf("critical damping", "%.6g N·s/m", m.CriticalDamping),
				viz.KVf("Q", "%.6g", m.Q()),
				viz.KVf("half-power bandwidth", "%.6g rad/s", m.HalfPowerBandwidth()),
				viz.KVf("static deflection (1 N)", "%.6g mm", sys.StaticDeflection(1)*1e3),
			}
			if m.OmegaD > 0 {
				rows = append(rows, viz.KVf("omega_d", "%.6g rad/s", m.OmegaD))
			}
			fmt.Println(viz.Summary("modal parameters", rows))
			if m.Zeta == 0 {
				fmt.Println(viz.Warning("undamped: the response at resonance is unbounded"))
			}
			return nil
		},
	}
	addAnalysisFlags(cmd)
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list the named presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Describe(name))
			}
			return w.Flush()
		},
	}
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write the resolved configuration as a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	addAnalysisFlags(cmd)
	return cmd
}
