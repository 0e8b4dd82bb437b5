package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/m5sweep/estimate"
	"github.com/sarchlab/m5sweep/sweep"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the cost of a full sweep from one calibrated L1 size.",
	Long: `estimate reads the runs at one L1 size, reports their instruction ` +
		`counts and host time, suggests a safe instruction limit and scales ` +
		`the host time to the whole sweep.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		base := stringFlag(cmd, "base", envBase)
		label, _ := cmd.Flags().GetString("l1")
		sizes, _ := cmd.Flags().GetStringSlice("sizes")

		plan := sweep.DefaultPlan()
		plan.Labels = sizes

		e, err := estimate.Calibrate(plan, base, label)
		if err != nil {
			return err
		}

		return e.Write(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	f := estimateCmd.Flags()
	f.String("base", "m5out/q4/A7", "Base output directory (contains L1_*/<run>/stats.txt)")
	f.String("l1", "16kB", "L1 size used for calibration")
	f.StringSlice("sizes", sweep.DefaultPlan().Labels, "L1 sizes of the full sweep")
}
