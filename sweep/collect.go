package sweep

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/sarchlab/m5sweep/metrics"
	"github.com/sarchlab/m5sweep/simout"
	"github.com/sarchlab/m5sweep/stats"
)

// Entry is what is known about one (application, L1 size) pair.
type Entry struct {
	App    string
	Label  string
	SizeKB int

	// HasData is false when the stats dump was missing or empty. Metrics is
	// meaningless in that case.
	HasData bool
	Metrics metrics.RunMetrics

	ExitCause string
	Complete  bool
}

type entryKey struct {
	app   string
	label string
}

// Collection holds the entries of every application at every L1 size.
type Collection struct {
	Plan Plan

	entries map[entryKey]Entry
	missing []string
}

// Collect reads the output tree rooted at base. Missing stats dumps and
// console logs are not errors; they leave the entry without data or with
// an empty exit cause.
func Collect(plan Plan, base string) (*Collection, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep plan: %w", err)
	}

	c := &Collection{
		Plan:    plan,
		entries: make(map[entryKey]Entry),
	}

	for _, label := range plan.Labels {
		kb, _ := ParseSizeKB(label)

		for _, run := range plan.Runs {
			e, err := readEntry(base, label, kb, run)
			if err != nil {
				return nil, err
			}
			if !e.HasData {
				c.missing = append(c.missing,
					filepath.Join(RunDir(base, label, run), stats.FileName))
			}
			c.entries[entryKey{run, label}] = e
		}

		for _, comp := range plan.Composites {
			c.entries[entryKey{comp.Name, label}] = c.combine(comp, label, kb)
		}
	}

	return c, nil
}

func readEntry(base, label string, kb int, run string) (Entry, error) {
	dir := RunDir(base, label, run)
	e := Entry{App: run, Label: label, SizeKB: kb}

	s, err := stats.ParseFile(filepath.Join(dir, stats.FileName))
	if err != nil {
		return e, fmt.Errorf("failed to collect %s at L1 %s: %w", run, label, err)
	}
	if len(s) > 0 {
		e.HasData = true
		e.Metrics = metrics.Extract(s)
	}

	cause, err := simout.ReadExitCause(filepath.Join(dir, simout.FileName))
	if err != nil {
		return e, fmt.Errorf("failed to collect %s at L1 %s: %w", run, label, err)
	}
	e.ExitCause = cause
	e.Complete = simout.IsComplete(cause)

	return e, nil
}

// combine builds a composite entry. It only has data when every part has.
func (c *Collection) combine(comp Composite, label string, kb int) Entry {
	e := Entry{App: comp.Name, Label: label, SizeKB: kb}

	parts := make([]simout.Part, 0, len(comp.Parts))
	runs := make([]metrics.RunMetrics, 0, len(comp.Parts))
	allData := true
	for _, p := range comp.Parts {
		pe := c.entries[entryKey{p.Run, label}]
		parts = append(parts, simout.Part{Label: p.Label, Cause: pe.ExitCause})
		if !pe.HasData {
			allData = false
			continue
		}
		runs = append(runs, pe.Metrics)
	}

	e.Complete = simout.AllComplete(parts...)
	if !allData {
		return e
	}

	e.HasData = true
	e.Metrics, _ = metrics.SumAll(runs...)
	e.ExitCause = simout.Join(parts...)

	return e
}

// Entry returns the entry of app at the given L1 label.
func (c *Collection) Entry(app, label string) (Entry, bool) {
	e, ok := c.entries[entryKey{app, label}]
	return e, ok
}

// Missing lists the stats dumps that were absent or empty.
func (c *Collection) Missing() []string {
	return append([]string(nil), c.missing...)
}

// Row is the flat, tabular form of an entry with data.
type Row struct {
	App            string  `json:"app"`
	L1             string  `json:"l1"`
	L1KB           int     `json:"l1_kb"`
	Complete       int     `json:"complete"`
	ExitCause      string  `json:"exit_cause"`
	SimSeconds     float64 `json:"simSeconds"`
	SimInsts       float64 `json:"simInsts"`
	NumCycles      float64 `json:"numCycles"`
	IPC            float64 `json:"ipc"`
	CPI            float64 `json:"cpi"`
	L1IMissRate    float64 `json:"l1i_miss_rate"`
	L1DMissRate    float64 `json:"l1d_miss_rate"`
	L2MissRate     float64 `json:"l2_miss_rate"`
	BPCondMissRate float64 `json:"bp_cond_miss_rate"`
}

// NewRow flattens an entry.
func NewRow(e Entry) Row {
	complete := 0
	if e.Complete {
		complete = 1
	}

	m := e.Metrics
	return Row{
		App:            e.App,
		L1:             e.Label,
		L1KB:           e.SizeKB,
		Complete:       complete,
		ExitCause:      e.ExitCause,
		SimSeconds:     m.SimSeconds,
		SimInsts:       m.SimInsts,
		NumCycles:      m.NumCycles,
		IPC:            m.IPC,
		CPI:            m.CPI,
		L1IMissRate:    m.L1IMissRate,
		L1DMissRate:    m.L1DMissRate,
		L2MissRate:     m.L2MissRate,
		BPCondMissRate: m.BPCondMissRate(),
	}
}

// Rows returns one row per entry with data, sorted by application name and
// then by L1 size.
func (c *Collection) Rows() []Row {
	rows := make([]Row, 0, len(c.entries))
	for _, e := range c.entries {
		if e.HasData {
			rows = append(rows, NewRow(e))
		}
	}

	SortRows(rows)

	return rows
}

// SortRows orders rows by application name, then by L1 size ascending.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].App != rows[j].App {
			return rows[i].App < rows[j].App
		}
		return rows[i].L1KB < rows[j].L1KB
	})
}

// Series returns metric for app at every plan label, with NaN where there
// is no data.
func (c *Collection) Series(app string, metric metrics.Metric) []float64 {
	out := make([]float64, 0, len(c.Plan.Labels))
	for _, label := range c.Plan.Labels {
		e, ok := c.Entry(app, label)
		if !ok || !e.HasData {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, e.Metrics.Value(metric))
	}
	return out
}
