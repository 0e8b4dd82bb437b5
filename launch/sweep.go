package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/m5sweep/sweep"
	"github.com/sarchlab/m5sweep/sysconfig"
)

// Workload is the binary and arguments of one run in the sweep.
type Workload struct {
	Cmd     string
	Options []string
}

// SweepResult pairs a run of the sweep with its outcome.
type SweepResult struct {
	Label  string
	Run    string
	Result *Result
	Err    error
}

// RunSweep simulates every run of the plan at every L1 size, one at a time,
// into the output tree rooted at base. The builder supplies everything but
// the L1 size. A failed run does not stop the sweep; all failures are
// joined into the returned error.
func (l *Launcher) RunSweep(
	ctx context.Context,
	plan sweep.Plan,
	builder sysconfig.Builder,
	base string,
	workloads map[string]Workload,
) ([]SweepResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep plan: %w", err)
	}

	for _, run := range plan.Runs {
		if _, ok := workloads[run]; !ok {
			return nil, fmt.Errorf("no workload for run %q", run)
		}
	}

	var (
		results []SweepResult
		errs    []error
	)

	for _, label := range plan.Labels {
		sys, err := builder.WithL1Size(label).Build()
		if err != nil {
			return results, fmt.Errorf("L1 %s: %w", label, err)
		}

		for _, run := range plan.Runs {
			if err := ctx.Err(); err != nil {
				return results, errors.Join(append(errs, err)...)
			}

			w := workloads[run]
			job := Job{
				Cmd:     w.Cmd,
				Options: w.Options,
				OutDir:  sweep.RunDir(base, label, run),
			}

			slog.Info("Launching simulation", "l1", label, "run", run, "outdir", job.OutDir)

			res, err := l.Launch(ctx, sys, job)
			if err != nil {
				slog.Warn("Simulation failed", "l1", label, "run", run, "err", err)
				errs = append(errs, fmt.Errorf("L1 %s %s: %w", label, run, err))
			} else {
				slog.Info("Simulation finished", "l1", label, "run", run,
					"cause", res.ExitCause, "complete", res.Complete)
			}

			results = append(results, SweepResult{
				Label:  label,
				Run:    run,
				Result: res,
				Err:    err,
			})
		}
	}

	return results, errors.Join(errs...)
}
