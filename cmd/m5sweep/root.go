package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Environment variables that override flag defaults. Flags given on the
// command line win.
const (
	envBase    = "M5SWEEP_BASE"
	envFigBase = "M5SWEEP_FIG_BASE"
	envOutCSV  = "M5SWEEP_OUT_CSV"
	envOutTeX  = "M5SWEEP_OUT_TEX"
	envGem5    = "M5SWEEP_GEM5"
	envScript  = "M5SWEEP_SCRIPT"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "m5sweep",
	Short: "Configure, run and collect gem5 L1 cache sweeps.",
	Long: `m5sweep builds gem5 system configurations for an L1 cache size ` +
		`sweep, launches the simulator for every size and workload, and ` +
		`turns the resulting stats.txt dumps into CSV, LaTeX, XLSX, SQLite ` +
		`and PNG reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return loadDotEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log debug messages")
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadDotEnv reads .env from the working directory when present.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		slog.Debug("Loaded .env")
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

// stringFlag returns the flag value if it was set on the command line,
// else the environment variable if set, else the flag default.
func stringFlag(cmd *cobra.Command, name, env string) string {
	v, _ := cmd.Flags().GetString(name)
	if cmd.Flags().Changed(name) || env == "" {
		return v
	}
	if e := os.Getenv(env); e != "" {
		return e
	}
	return v
}
