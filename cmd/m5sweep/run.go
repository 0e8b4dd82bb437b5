package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sarchlab/m5sweep/launch"
	"github.com/sarchlab/m5sweep/loader"
	"github.com/sarchlab/m5sweep/sysconfig"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- [workload options]",
	Short: "Run the simulator once on one workload.",
	Long: `run writes the system configuration into the output directory, ` +
		`starts the simulator on the workload and reports the exit cause ` +
		`it printed. Arguments after -- are passed to the workload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sys, err := buildSystem(cmd)
		if err != nil {
			return err
		}

		workload, _ := cmd.Flags().GetString("cmd")
		outDir, _ := cmd.Flags().GetString("outdir")
		if workload == "" {
			return fmt.Errorf("--cmd is required")
		}

		l := newLauncher(cmd)
		res, err := l.Launch(cmd.Context(), sys, launch.Job{
			Cmd:     workload,
			Options: args,
			OutDir:  outDir,
		})
		if err != nil {
			return err
		}

		if !res.Binary.Static() {
			slog.Warn("Workload is dynamically linked", "interpreter", res.Binary.Interpreter)
		}

		if fp, err := textFootprint(sys, res.Binary); err == nil {
			slog.Info("Text footprint in L1 I$",
				"lines", fp.Lines, "sets", fp.SetsUsed,
				"evictions", fp.Evictions, "fits", fp.Fits())
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Output directory: %s\n", res.Job.OutDir)
		fmt.Fprintf(out, "Exit cause: %s\n", res.ExitCause)
		fmt.Fprintf(out, "Complete: %t\n", res.Complete)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSystemFlags(runCmd, true)
	addLauncherFlags(runCmd)

	f := runCmd.Flags()
	f.String("cmd", "", "Path to RISC-V user ELF")
	f.String("outdir", "m5out", "Simulator output directory")
}

func addLauncherFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("gem5", "build/RISCV/gem5.opt", "Simulator binary")
	f.String("script", "",
		"Configuration script that reads config.json (empty writes the built-in "+launch.ScriptFileName+")")
}

func newLauncher(cmd *cobra.Command) *launch.Launcher {
	return &launch.Launcher{
		Binary: stringFlag(cmd, "gem5", envGem5),
		Script: stringFlag(cmd, "script", envScript),
		Runner: launch.ExecRunner{
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		},
	}
}

// textFootprint streams the executable segments of bin through the L1
// instruction cache of sys.
func textFootprint(sys *sysconfig.System, bin *loader.Binary) (sysconfig.Footprint, error) {
	var text []sysconfig.Region
	for _, seg := range bin.Segments {
		if seg.Flags&loader.SegmentFlagExecute == 0 {
			continue
		}
		text = append(text, sysconfig.Region{Start: seg.VirtAddr, Size: seg.MemSize})
	}
	return sys.L1I.Footprint(sys.CacheLineSize, text)
}
