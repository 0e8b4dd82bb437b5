// Package estimate predicts the wall-clock cost of a full L1 sweep from a
// calibration pass at a single L1 size.
package estimate

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"

	"github.com/sarchlab/m5sweep/metrics"
	"github.com/sarchlab/m5sweep/simout"
	"github.com/sarchlab/m5sweep/stats"
	"github.com/sarchlab/m5sweep/sweep"
)

const (
	// InstMargin is the slack added to the largest observed instruction
	// count when suggesting an instruction limit.
	InstMargin = 1.10

	// SlowdownFactor inflates the calibration time because smaller L1
	// sizes simulate more slowly.
	SlowdownFactor = 1.4
)

// Run is the calibration data of one run. Unknown values are NaN.
type Run struct {
	Name         string
	SimInsts     float64
	HostSeconds  float64
	HostInstRate float64
	ExitCause    string
}

// Estimate is the calibration result at one L1 size.
type Estimate struct {
	Label string
	Runs  []Run

	// SweepRuns is the number of simulations in the full sweep.
	SweepRuns  int
	SweepSizes int
}

// Calibrate reads the runs of the plan at the given L1 size.
func Calibrate(plan sweep.Plan, base, label string) (*Estimate, error) {
	if _, err := sweep.ParseSizeKB(label); err != nil {
		return nil, err
	}

	e := &Estimate{
		Label:      label,
		SweepRuns:  len(plan.Labels) * len(plan.Runs),
		SweepSizes: len(plan.Labels),
	}

	for _, name := range plan.Runs {
		dir := sweep.RunDir(base, label, name)

		st, err := stats.ParseFile(filepath.Join(dir, stats.FileName))
		if err != nil {
			return nil, err
		}

		cause, err := simout.ReadExitCause(filepath.Join(dir, simout.FileName))
		if err != nil {
			return nil, err
		}

		e.Runs = append(e.Runs, Run{
			Name:         name,
			SimInsts:     st.Get(metrics.StatSimInsts),
			HostSeconds:  st.Get(metrics.StatHostSeconds),
			HostInstRate: st.Get(metrics.StatHostInstRate),
			ExitCause:    cause,
		})
	}

	return e, nil
}

// SuggestedMaxInsts returns a safe instruction limit, or false when no run
// reported an instruction count.
func (e *Estimate) SuggestedMaxInsts() (uint64, bool) {
	maxInsts := 0.0
	for _, r := range e.Runs {
		if !math.IsNaN(r.SimInsts) && r.SimInsts > maxInsts {
			maxInsts = r.SimInsts
		}
	}

	if maxInsts <= 0 {
		return 0, false
	}

	return uint64(math.Floor(maxInsts*InstMargin)) + 1, true
}

// TotalHostSeconds sums the host time of every run, or returns false if any
// run lacks it.
func (e *Estimate) TotalHostSeconds() (float64, bool) {
	total := 0.0
	for _, r := range e.Runs {
		if math.IsNaN(r.HostSeconds) {
			return 0, false
		}
		total += r.HostSeconds
	}
	return total, true
}

// SweepSeconds scales the calibration time to the full sweep.
func (e *Estimate) SweepSeconds() (float64, bool) {
	total, ok := e.TotalHostSeconds()
	if !ok || len(e.Runs) == 0 {
		return 0, false
	}

	return total * float64(e.SweepRuns) / float64(len(e.Runs)) * SlowdownFactor, true
}

// Format renders a value for the report: "?" when unknown, a plain integer
// for large integral values, three decimals otherwise.
func Format(v float64, suffix string) string {
	if math.IsNaN(v) {
		return "?"
	}
	if math.Abs(v) >= 1000 && v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64) + suffix
	}
	return strconv.FormatFloat(v, 'f', 3, 64) + suffix
}

// Write prints the calibration report.
func (e *Estimate) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "- L1 used for estimate: %s\n", e.Label); err != nil {
		return err
	}

	for _, r := range e.Runs {
		cause := r.ExitCause
		if cause == "" {
			cause = "?"
		}

		_, err := fmt.Fprintf(w, "- %s: simInsts=%s hostSeconds=%s hostInstRate=%s exit='%s'\n",
			r.Name,
			Format(r.SimInsts, ""),
			Format(r.HostSeconds, "s"),
			Format(r.HostInstRate, ""),
			cause)
		if err != nil {
			return err
		}
	}

	if n, ok := e.SuggestedMaxInsts(); ok {
		if _, err := fmt.Fprintf(w, "- Suggested MAXINSTS (+10%% margin): %d\n", n); err != nil {
			return err
		}
	}

	if secs, ok := e.SweepSeconds(); ok {
		_, err := fmt.Fprintf(w, "- Full sweep estimate (%d sizes, %d runs): ~%.1f min (factor %.1fx)\n",
			e.SweepSizes, e.SweepRuns, secs/60.0, SlowdownFactor)
		if err != nil {
			return err
		}
	}

	return nil
}
