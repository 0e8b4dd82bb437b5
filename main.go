// Package main provides the entry point banner for m5sweep.
// m5sweep configures, launches and post-processes gem5 L1 cache sweeps.
//
// For the full CLI, use: go run ./cmd/m5sweep
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("m5sweep - gem5 L1 cache sweep toolkit")
	fmt.Println("")
	fmt.Println("Usage: m5sweep <command> [flags]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  config     Print or write a system configuration")
	fmt.Println("  run        Simulate one workload")
	fmt.Println("  sweep      Simulate every workload at every L1 size")
	fmt.Println("  estimate   Estimate the cost of a full sweep")
	fmt.Println("  collect    Collect results into CSV, LaTeX, XLSX, SQLite and plots")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/m5sweep --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/m5sweep' instead.")
	}
}
