// Package main is the m5sweep command line: configure, launch and
// post-process L1 cache sweeps run on the gem5 simulator.
//
// Usage:
//
//	m5sweep config --preset a7 --l1 16kB --out config.json
//	m5sweep run --gem5 build/RISCV/gem5.opt --script se_sweep.py --cmd dijkstra_small --outdir m5out/run -- input.dat
//	m5sweep sweep --bin dijkstra=bin/dijkstra_small --bin blowfish_enc=bin/bf --bin blowfish_dec=bin/bf
//	m5sweep estimate --base m5out/q4/A7 --l1 16kB
//	m5sweep collect --base m5out/q5/A15 --fig-base tex/figs/q5
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/tebeka/atexit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
