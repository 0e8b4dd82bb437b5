package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/m5sweep/launch"
	"github.com/sarchlab/m5sweep/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every workload at every L1 size.",
	Long: `sweep runs the simulator once per L1 size and workload, writing ` +
		`each run into <base>/L1_<size>/<run>. Workloads are given as ` +
		`--bin run=path[,option...]; every run of the sweep needs one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		base := stringFlag(cmd, "base", envBase)
		sizes, _ := cmd.Flags().GetStringSlice("sizes")
		bins, _ := cmd.Flags().GetStringArray("bin")

		workloads, err := parseWorkloads(bins)
		if err != nil {
			return err
		}

		plan := sweep.DefaultPlan()
		plan.Labels = sizes

		builder, err := systemBuilder(cmd)
		if err != nil {
			return err
		}

		l := newLauncher(cmd)
		results, err := l.RunSweep(cmd.Context(), plan, builder, base, workloads)

		out := cmd.OutOrStdout()
		for _, r := range results {
			status := "failed"
			if r.Result != nil {
				status = fmt.Sprintf("complete=%t cause=%q", r.Result.Complete, r.Result.ExitCause)
			}
			fmt.Fprintf(out, "L1_%s/%s: %s\n", r.Label, r.Run, status)
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	addSystemFlags(sweepCmd, false)
	addLauncherFlags(sweepCmd)

	f := sweepCmd.Flags()
	f.String("base", "m5out/q5/A15", "Base output directory")
	f.StringSlice("sizes", sweep.DefaultPlan().Labels, "L1 sizes to simulate")
	f.StringArray("bin", nil, "Workload as run=path[,option...] (repeatable)")
}

// parseWorkloads turns run=path[,opt...] specs into workloads.
func parseWorkloads(specs []string) (map[string]launch.Workload, error) {
	workloads := make(map[string]launch.Workload, len(specs))
	for _, spec := range specs {
		run, rest, ok := strings.Cut(spec, "=")
		if !ok || run == "" || rest == "" {
			return nil, fmt.Errorf("invalid --bin %q, want run=path[,option...]", spec)
		}

		fields := strings.Split(rest, ",")
		workloads[run] = launch.Workload{Cmd: fields[0], Options: fields[1:]}
	}
	return workloads, nil
}
