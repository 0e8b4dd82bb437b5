// Package report renders collected sweep results as CSV, LaTeX, XLSX and
// PNG plots.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// Columns is the fixed CSV column order.
var Columns = []string{
	"app",
	"l1",
	"l1_kb",
	"complete",
	"exit_cause",
	"simSeconds",
	"simInsts",
	"numCycles",
	"ipc",
	"cpi",
	"l1i_miss_rate",
	"l1d_miss_rate",
	"l2_miss_rate",
	"bp_cond_miss_rate",
}

// FormatFloat renders v the way the CSV output expects: shortest exact
// representation, and "nan" for missing values.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ensureDir creates dir and its parents. Existing directories are left
// alone.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func parentDir(path string) string {
	return filepath.Dir(path)
}

// createFile creates path, making its parent directories first.
func createFile(path string) (*os.File, error) {
	if err := ensureDir(parentDir(path)); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return f, nil
}

// writeFile runs write against a freshly created file at path.
func writeFile(path string, write func(f *os.File) error) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}
