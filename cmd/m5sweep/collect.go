package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/m5sweep/report"
	"github.com/sarchlab/m5sweep/runstore"
	"github.com/sarchlab/m5sweep/sweep"
)

type highlightApp struct {
	app     string
	display string
}

var highlightApps = []highlightApp{
	{"dijkstra", "Dijkstra"},
	{"blowfish_total", "Blowfish (enc+dec)"},
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect sweep results into CSV, LaTeX, XLSX, SQLite and plots.",
	Long: `collect reads <base>/L1_<size>/<run>/{stats.txt,simout} for every ` +
		`L1 size and run of the sweep, writes one CSV row per application ` +
		`and size, plots every headline metric against the L1 size and ` +
		`writes a LaTeX table of the best configuration per application.`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	f := collectCmd.Flags()
	f.String("base", "m5out/q5/A15", "Base output directory (contains L1_*/<run>/stats.txt)")
	f.String("fig-base", "tex/figs/q5", "Directory to write figures")
	f.String("out-csv", "analysis/q5_a15_results.csv", "CSV output path")
	f.String("out-table-tex", "tex/tables/q5_a15_summary.tex", "LaTeX table output path")
	f.String("out-xlsx", "", "XLSX workbook output path (skipped when empty)")
	f.String("out-json", "", "JSON summary output path (skipped when empty)")
	f.String("db", "", "SQLite run store path without extension, appended to when it exists (skipped when empty)")
	f.String("cpu", "a15", "CPU name used in figure names and titles")
	f.StringSlice("sizes", sweep.DefaultPlan().Labels, "L1 sizes of the sweep")
	f.Bool("no-plots", false, "Do not write figures")
}

type collectOptions struct {
	base    string
	figBase string
	outCSV  string
	outTeX  string
	outXLSX string
	outJSON string
	db      string
	cpu     string
	sizes   []string
	noPlots bool
}

func collectOptionsFrom(cmd *cobra.Command) collectOptions {
	f := cmd.Flags()
	o := collectOptions{
		base:    stringFlag(cmd, "base", envBase),
		figBase: stringFlag(cmd, "fig-base", envFigBase),
		outCSV:  stringFlag(cmd, "out-csv", envOutCSV),
		outTeX:  stringFlag(cmd, "out-table-tex", envOutTeX),
		outXLSX: stringFlag(cmd, "out-xlsx", ""),
		outJSON: stringFlag(cmd, "out-json", ""),
		db:      stringFlag(cmd, "db", ""),
		cpu:     stringFlag(cmd, "cpu", ""),
	}
	o.sizes, _ = f.GetStringSlice("sizes")
	o.noPlots, _ = f.GetBool("no-plots")
	return o
}

func runCollect(cmd *cobra.Command, _ []string) error {
	return collect(collectOptionsFrom(cmd), cmd.OutOrStdout())
}

func collect(o collectOptions, out io.Writer) error {
	plan := sweep.DefaultPlan()
	plan.Labels = o.sizes

	c, err := sweep.Collect(plan, o.base)
	if err != nil {
		return err
	}
	for _, path := range c.Missing() {
		slog.Warn("Missing or empty stats", "path", path)
	}

	rows := c.Rows()
	slog.Debug("Collected results", "base", o.base, "rows", len(rows))

	if err := report.WriteCSVFile(o.outCSV, rows); err != nil {
		return err
	}

	highlights, err := bestHighlights(c)
	if err != nil {
		return err
	}

	if !o.noPlots {
		paths, err := report.PlotSweep(c, o.figBase, o.cpu,
			report.DefaultFigureApps(), report.DefaultFigureMetrics())
		if err != nil {
			return err
		}
		slog.Debug("Wrote figures", "count", len(paths))
	}

	if err := report.WriteLaTeXFile(o.outTeX, highlights); err != nil {
		return err
	}

	if o.outXLSX != "" {
		if err := report.WriteXLSX(o.outXLSX, rows, highlights); err != nil {
			return err
		}
	}

	if o.outJSON != "" {
		meta := report.Metadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Base:      o.base,
			CPU:       o.cpu,
			Missing:   c.Missing(),
		}
		if err := report.WriteJSONFile(o.outJSON, meta, rows, highlights); err != nil {
			return err
		}
	}

	var dbPath string
	if o.db != "" {
		dbPath, err = recordRuns(o.db, o.base, o.cpu, rows)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Wrote CSV: %s\n", o.outCSV)
	if !o.noPlots {
		fmt.Fprintf(out, "Wrote figures under: %s\n", o.figBase)
	}
	fmt.Fprintf(out, "Wrote LaTeX table: %s\n", o.outTeX)
	if o.outXLSX != "" {
		fmt.Fprintf(out, "Wrote XLSX workbook: %s\n", o.outXLSX)
	}
	if o.outJSON != "" {
		fmt.Fprintf(out, "Wrote JSON summary: %s\n", o.outJSON)
	}
	if dbPath != "" {
		fmt.Fprintf(out, "Wrote run store: %s\n", dbPath)
	}

	return nil
}

// bestHighlights picks the best configuration of each headline app. Having
// no data at all for one of them is fatal.
func bestHighlights(c *sweep.Collection) ([]report.Highlight, error) {
	highlights := make([]report.Highlight, 0, len(highlightApps))
	for _, h := range highlightApps {
		e, err := c.Best(h.app)
		if err != nil {
			return nil, err
		}
		if !e.Complete {
			slog.Warn("No complete run, using incomplete runs",
				"app", h.app, "l1", e.Label, "cause", e.ExitCause)
		}
		highlights = append(highlights, report.Highlight{Display: h.display, Entry: e})
	}
	return highlights, nil
}

func recordRuns(path, base, cpu string, rows []sweep.Row) (string, error) {
	rec, err := runstore.Open(path)
	if err != nil {
		return "", err
	}

	id, err := runstore.RecordCollection(rec, base, cpu, rows)
	if err != nil {
		_ = rec.Close()
		return "", err
	}
	slog.Debug("Recorded collection", "id", id)

	if err := rec.Close(); err != nil {
		return "", err
	}

	return path + runstore.Extension, nil
}
