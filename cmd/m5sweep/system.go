package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/m5sweep/sysconfig"
)

// addSystemFlags registers the flags that shape the simulated system.
func addSystemFlags(cmd *cobra.Command, withL1 bool) {
	f := cmd.Flags()
	f.String("preset", "a7", "System preset (a7, a15)")
	f.String("system", "", "Start from a system JSON file instead of a preset")
	if withL1 {
		f.String("l1", "32kB", "L1 I$ and D$ size (e.g., 2kB, 4kB, 8kB, 16kB)")
	}
	f.String("l1i", "", "L1 I$ size, overrides --l1")
	f.String("l1d", "", "L1 D$ size, overrides --l1")
	f.Int("l1-assoc", 0, "L1 associativity (0 keeps the preset)")
	f.String("l2", "", "L2 size (empty keeps the preset)")
	f.String("clock", "", "Core clock, e.g. 1GHz (empty keeps the preset)")
	f.String("mem-size", "", "Memory size, e.g. 2GB (empty keeps the preset)")
	f.Uint64("maxinsts", 0,
		"Stop after this many committed instructions. 0 means run to completion.")
	f.Int("progress", 10, "Print progress events at this frequency in Hz (0 disables).")
	f.String("bp", "", "Branch predictor type, e.g. BiModeBP (empty keeps the preset)")
	f.Int("btb", 0, "BTB entries (0 keeps the preset)")
	cmd.MarkFlagsMutuallyExclusive("preset", "system")
}

// systemBuilder collects the system flags into a builder. With --system the
// loaded file is the base and only flags given on the command line override
// it. The L1 size is only applied when the command has an --l1 flag.
func systemBuilder(cmd *cobra.Command) (sysconfig.Builder, error) {
	f := cmd.Flags()

	b := sysconfig.MakeBuilder()
	path, _ := f.GetString("system")
	if path != "" {
		base, err := sysconfig.Load(path)
		if err != nil {
			return b, err
		}
		b = b.WithBase(base)
	} else {
		preset, _ := f.GetString("preset")
		b = b.WithPreset(preset)
	}

	l1i, _ := f.GetString("l1i")
	l1d, _ := f.GetString("l1d")
	assoc, _ := f.GetInt("l1-assoc")
	l2, _ := f.GetString("l2")
	clock, _ := f.GetString("clock")
	memSize, _ := f.GetString("mem-size")
	bp, _ := f.GetString("bp")
	btb, _ := f.GetInt("btb")

	b = b.WithL1ISize(l1i).
		WithL1DSize(l1d).
		WithL1Assoc(assoc).
		WithL2Size(l2).
		WithClock(clock).
		WithMemSize(memSize).
		WithBranchPredictor(bp, btb)

	if f.Changed("maxinsts") {
		n, _ := f.GetUint64("maxinsts")
		b = b.WithMaxInsts(n)
	}

	if f.Changed("progress") {
		hz, _ := f.GetInt("progress")
		b = b.WithProgress(hz)
	}

	if l1, err := f.GetString("l1"); err == nil && (path == "" || f.Changed("l1")) {
		b = b.WithL1Size(l1)
	}

	return b, nil
}

// buildSystem builds the system described by the flags.
func buildSystem(cmd *cobra.Command) (*sysconfig.System, error) {
	b, err := systemBuilder(cmd)
	if err != nil {
		return nil, err
	}
	return b.Build()
}
