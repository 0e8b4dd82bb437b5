package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/sarchlab/m5sweep/sweep"
)

// Sheet names used in the workbook.
const (
	RunsSheet = "runs"
	BestSheet = "best"
)

var bestColumns = []string{
	"application", "l1", "l1_kb", "complete", "numCycles", "ipc",
	"l1i_miss_rate", "l1d_miss_rate",
}

// WriteXLSX writes a workbook with every row on the runs sheet and the
// highlighted best configurations on the best sheet. Missing values are
// left as empty cells.
func WriteXLSX(path string, rows []sweep.Row, highlights []Highlight) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", RunsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", RunsSheet, err)
	}
	if _, err := f.NewSheet(BestSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", BestSheet, err)
	}

	sorted := append([]sweep.Row(nil), rows...)
	sweep.SortRows(sorted)

	runs := [][]any{stringsToCells(Columns)}
	for _, r := range sorted {
		runs = append(runs, []any{
			r.App, r.L1, r.L1KB, r.Complete, r.ExitCause,
			cell(r.SimSeconds), cell(r.SimInsts), cell(r.NumCycles),
			cell(r.IPC), cell(r.CPI),
			cell(r.L1IMissRate), cell(r.L1DMissRate), cell(r.L2MissRate),
			cell(r.BPCondMissRate),
		})
	}
	if err := writeSheet(f, RunsSheet, runs); err != nil {
		return err
	}

	best := [][]any{stringsToCells(bestColumns)}
	for _, h := range highlights {
		e := h.Entry
		best = append(best, []any{
			h.Display, e.Label, e.SizeKB, e.Complete,
			cell(e.Metrics.NumCycles), cell(e.Metrics.IPC),
			cell(e.Metrics.L1IMissRate), cell(e.Metrics.L1DMissRate),
		})
	}
	if err := writeSheet(f, BestSheet, best); err != nil {
		return err
	}

	if err := ensureDir(parentDir(path)); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}

		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// cell maps NaN to an empty cell.
func cell(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func stringsToCells(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
