package report

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sarchlab/m5sweep/metrics"
	"github.com/sarchlab/m5sweep/sweep"
)

// Figure size, matching a half-column LaTeX figure.
const (
	figureWidth  = 6 * vg.Inch
	figureHeight = 3.6 * vg.Inch
)

// Segments splits a series at NaN values into contiguous runs of points,
// so missing configurations show up as gaps in the line.
func Segments(x []float64, y []float64) []plotter.XYs {
	var segments []plotter.XYs
	var current plotter.XYs

	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) ||
			math.IsInf(y[i], 0) {
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
			continue
		}
		current = append(current, plotter.XY{X: x[i], Y: y[i]})
	}

	if len(current) > 0 {
		segments = append(segments, current)
	}

	return segments
}

// PlotSeries draws y against x as a line with point markers and saves it
// to path. The image format follows the file extension.
func PlotSeries(x, y []float64, title, xLabel, yLabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	for _, seg := range Segments(x, y) {
		line, points, err := plotter.NewLinePoints(seg)
		if err != nil {
			return fmt.Errorf("failed to plot %s: %w", title, err)
		}
		p.Add(line, points)
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := p.Save(figureWidth, figureHeight, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}

	return nil
}

// FigureApp is an application that gets one plot per metric.
type FigureApp struct {
	// App is the application name in the collection.
	App string
	// Display is the name shown in titles, e.g. "Dijkstra".
	Display string
	// Stem is the application part of file names, e.g. "blowfish".
	Stem string
	// Qualifier is appended to metric names in titles, e.g. " (enc+dec)".
	Qualifier string
}

// FigureMetric is a metric plotted for every FigureApp.
type FigureMetric struct {
	Metric metrics.Metric
	Stem   string
	Title  string
	YLabel string
	// Qualify appends the application qualifier to the y label.
	Qualify bool
}

// DefaultFigureApps are the two headline applications of the A15 sweep.
func DefaultFigureApps() []FigureApp {
	return []FigureApp{
		{App: "dijkstra", Display: "Dijkstra", Stem: "dijkstra"},
		{
			App:       "blowfish_total",
			Display:   "Blowfish",
			Stem:      "blowfish",
			Qualifier: " (enc+dec)",
		},
	}
}

// DefaultFigureMetrics are the six metrics plotted per application.
func DefaultFigureMetrics() []FigureMetric {
	return []FigureMetric{
		{metrics.MetricNumCycles, "cycles", "Cycles", "Cycles (numCycles)", true},
		{metrics.MetricIPC, "ipc", "IPC", "IPC", true},
		{metrics.MetricL1DMissRate, "dl1_miss", "Miss rate DL1", "Miss rate (DL1)", false},
		{metrics.MetricL1IMissRate, "il1_miss", "Miss rate IL1", "Miss rate (IL1)", false},
		{metrics.MetricL2MissRate, "l2_miss", "Miss rate L2", "Miss rate (L2)", false},
		{metrics.MetricBPCondMissRate, "bp_mispred", "Mispred rate (cond)", "Mispred rate (cond)", false},
	}
}

// FigurePath is where the plot of metric for app is written.
func FigurePath(dir, cpu string, app FigureApp, metric FigureMetric) string {
	name := fmt.Sprintf("%s_%s_%s.png", strings.ToLower(cpu), app.Stem, metric.Stem)
	return filepath.Join(dir, name)
}

// PlotSweep writes one plot per (app, metric) pair into dir, with the L1
// size in KB on the x axis. It returns the paths written.
func PlotSweep(
	c *sweep.Collection,
	dir, cpu string,
	apps []FigureApp,
	figMetrics []FigureMetric,
) ([]string, error) {
	sizes, err := c.Plan.SizesKB()
	if err != nil {
		return nil, err
	}

	x := make([]float64, len(sizes))
	for i, kb := range sizes {
		x[i] = float64(kb)
	}

	cpuName := strings.ToUpper(cpu)
	var written []string
	for _, app := range apps {
		for _, fm := range figMetrics {
			title := fmt.Sprintf("%s (%s) - %s%s vs L1",
				app.Display, cpuName, fm.Title, app.Qualifier)
			yLabel := fm.YLabel
			if fm.Qualify && app.Qualifier != "" {
				yLabel = fm.Title + app.Qualifier
			}

			path := FigurePath(dir, cpu, app, fm)
			y := c.Series(app.App, fm.Metric)
			if err := PlotSeries(x, y, title, "L1 size (KB)", yLabel, path); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	return written, nil
}
