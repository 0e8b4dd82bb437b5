package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sarchlab/m5sweep/sweep"
)

// WriteCSV writes a header and one line per row. Rows are sorted by
// application and L1 size first, whatever order they arrive in.
func WriteCSV(w io.Writer, rows []sweep.Row) error {
	sorted := append([]sweep.Row(nil), rows...)
	sweep.SortRows(sorted)

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range sorted {
		if err := cw.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	return nil
}

func csvRecord(r sweep.Row) []string {
	return []string{
		r.App,
		r.L1,
		strconv.Itoa(r.L1KB),
		strconv.Itoa(r.Complete),
		r.ExitCause,
		FormatFloat(r.SimSeconds),
		FormatFloat(r.SimInsts),
		FormatFloat(r.NumCycles),
		FormatFloat(r.IPC),
		FormatFloat(r.CPI),
		FormatFloat(r.L1IMissRate),
		FormatFloat(r.L1DMissRate),
		FormatFloat(r.L2MissRate),
		FormatFloat(r.BPCondMissRate),
	}
}

// WriteCSVFile writes the CSV to path, creating parent directories.
func WriteCSVFile(path string, rows []sweep.Row) error {
	return writeFile(path, func(f *os.File) error {
		return WriteCSV(f, rows)
	})
}
