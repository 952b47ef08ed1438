package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/sdofsim/internal/analysis"
	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/experiment"
	"github.com/san-kum/sdofsim/internal/export"
	"github.com/san-kum/sdofsim/internal/storage"
	"github.com/san-kum/sdofsim/internal/viz"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tANALYSIS\tTIME\tFN [HZ]\tZETA\tROWS")
			for _, run := range runs {
				fn, zeta := "-", "-"
				if run.System != nil {
					fn = fmt.Sprintf("%.4g", run.System.FnHz)
					zeta = fmt.Sprintf("%.4g", run.System.Zeta)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
					run.ID,
					run.Analysis,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					fn,
					zeta,
					run.Rows,
				)
			}
			return w.Flush()
		},
	}
}

func loadRun(runID string) (*storage.RunMetadata, *export.Table, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	curves, err := st.LoadCurves(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, curves, nil
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "print the metadata of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := storage.New(dataDir).Load(args[0])
			if err != nil {
				return err
			}
			rows := make([]viz.KV, 0)
			for _, n := range meta.Notes() {
				rows = append(rows, viz.KV{Label: n.Key, Value: n.Value})
			}
			fmt.Println(viz.Summary(meta.ID, rows))
			return nil
		},
	}
}

func plotCmd() *cobra.Command {
	var columns []string
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the curves of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, curves, err := loadRun(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("analysis: %s\n", meta.Analysis)
			fmt.Printf("samples: %d\n\n", curves.Rows())

			if len(columns) > 0 {
				printPlot(curves, columns)
				return nil
			}
			for _, name := range valueColumns(curves) {
				printPlot(curves, []string{name})
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to draw together (default each on its own)")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var column string
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "statistics, frequency and damping of a stored curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, curves, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if column == "" {
				if len(curves.Columns) < 2 {
					return fmt.Errorf("run %s has no value columns", meta.ID)
				}
				column = curves.Columns[1].Name
			}
			rep, err := experiment.AnalyzeColumn(curves, column)
			if err != nil {
				return err
			}

			fmt.Println(viz.Heading(fmt.Sprintf("%s / %s", meta.ID, column)))
			c, _ := curves.Column(column)
			fmt.Println(viz.Sparkline(c.Values, 60))
			rows := []viz.KV{
				viz.KVf("samples", "%d", rep.Stats.Count),
				viz.KVf("mean", "%.6g", rep.Stats.Mean),
				viz.KVf("std dev", "%.6g", rep.Stats.StdDev),
				viz.KVf("rms", "%.6g", rep.Stats.RMS),
				viz.KVf("min", "%.6g", rep.Stats.Min),
				viz.KVf("max", "%.6g", rep.Stats.Max),
				viz.KVf("peak |y|", "%.6g", rep.Stats.Peak),
			}
			if rep.DominantHz > 0 {
				rows = append(rows, viz.KVf("dominant frequency", "%.4f Hz", rep.DominantHz))
			}
			if rep.MeasuredHz > 0 {
				rows = append(rows, viz.KVf("zero-crossing frequency", "%.4f Hz", rep.MeasuredHz))
			}
			if rep.Decay != nil {
				rows = append(rows,
					viz.KVf("log decrement", "%.5f", rep.Decay.Delta),
					viz.KVf("damping ratio", "%.5f (%d peaks)", rep.Decay.Zeta, rep.Decay.Peaks),
				)
			}
			fmt.Println(viz.Summary(c.Header(), rows))
			if meta.System != nil && rep.Decay != nil {
				fmt.Println(viz.Muted(fmt.Sprintf("configured zeta %.5f", meta.System.Zeta)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "column to analyse (default the first value column)")
	return cmd
}

func phaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phase [run_id]",
		Short: "displacement-velocity phase portrait of a time-domain run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, curves, err := loadRun(args[0])
			if err != nil {
				return err
			}
			x, okX := curves.Column("displacement")
			v, okV := curves.Column("velocity")
			if !okX || !okV {
				return fmt.Errorf("run %s (%s) has no displacement and velocity columns", meta.ID, meta.Analysis)
			}

			res := &dynamo.Result{Times: curves.Columns[0].Values, States: make([]dynamo.State, len(x.Values))}
			for i := range x.Values {
				res.States[i] = dynamo.State{X: x.Values[i] / dynamo.MillimetersPerMeter, V: v.Values[i]}
			}
			portrait := analysis.PhasePortrait(res)

			fmt.Println(viz.Heading("phase portrait: " + meta.ID))
			fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
			fmt.Println(viz.Muted(fmt.Sprintf("x: %s   y: %s", portrait.XLabel, portrait.YLabel)))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var format, outPath string
	var logX bool
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as csv, json, xlsx, svg or pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, curves, err := loadRun(args[0])
			if err != nil {
				return err
			}
			format = strings.ToLower(format)
			if outPath == "" {
				outPath = filepath.Join(".", meta.ID+"."+format)
			}

			switch format {
			case "xlsx":
				err = export.WriteXLSX(outPath, export.Sheet{Name: meta.Analysis, Table: curves, Notes: meta.Notes()})
			case "csv", "json", "svg", "pdf":
				err = writeFile(outPath, func(f *os.File) error {
					return writeRun(f, format, meta, curves, logX)
				})
			default:
				return fmt.Errorf("unknown format %q (csv, json, xlsx, svg, pdf)", format)
			}
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv, json, xlsx, svg or pdf")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.<format>)")
	cmd.Flags().BoolVar(&logX, "log-x", false, "logarithmic abscissa (svg)")
	return cmd
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRun(f *os.File, format string, meta *storage.RunMetadata, curves *export.Table, logX bool) error {
	switch format {
	case "csv":
		return export.WriteCSV(f, curves, meta.Notes())
	case "json":
		return export.WriteJSON(f, meta, curves)
	case "svg":
		return export.WriteSVG(f, curves, export.SVGOptions{LogX: logX})
	default:
		var params []export.Note
		for _, n := range meta.Notes() {
			if _, isSummary := meta.Summary[n.Key]; !isSummary {
				params = append(params, n)
			}
		}
		return export.WritePDF(f, export.Report{
			Title:   fmt.Sprintf("SDOF %s analysis", meta.Analysis),
			Notes:   params,
			Summary: summaryNotes(meta.Summary),
			Table:   curves,
			MaxRows: 60,
		})
	}
}

func summaryNotes(summary map[string]float64) []export.Note {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	notes := make([]export.Note, len(keys))
	for i, k := range keys {
		notes[i] = export.Notef(k, "%.6g", summary[k])
	}
	return notes
}

func exportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the curves of a run to stdout as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, curves, err := loadRun(args[0])
			if err != nil {
				return err
			}
			return export.WriteCSV(os.Stdout, curves, meta.Notes())
		},
	}
}

func exportJSONCmd() *cobra.Command {
	var metadataOnly bool
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run to stdout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if metadataOnly {
				meta, err := storage.New(dataDir).Load(args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(meta)
			}
			meta, curves, err := loadRun(args[0])
			if err != nil {
				return err
			}
			return export.WriteJSON(os.Stdout, meta, curves)
		},
	}
	cmd.Flags().BoolVar(&metadataOnly, "metadata", false, "metadata only")
	return cmd
}
