package report

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/m5sweep/sweep"
)

// Highlight is one row of the summary table: an application's best
// configuration under a display name.
type Highlight struct {
	Display string
	Entry   sweep.Entry
}

// WriteLaTeX writes a booktabs tabular fragment with one row per
// highlight. Columns are application, L1 size, cycles, IPC and the L1
// instruction and data miss rates.
func WriteLaTeX(w io.Writer, highlights []Highlight) error {
	lines := []string{
		"% Auto-generated by m5sweep collect\n",
		"\\begin{tabular}{lrrrrr}\\toprule\n",
		"Application & L1 (KB) & Cycles & IPC & MR(IL1) & MR(DL1)\\\\\\midrule\n",
	}

	for _, h := range highlights {
		m := h.Entry.Metrics
		lines = append(lines, fmt.Sprintf(
			"%s & %d & %.0f & %.3f & %.4f & %.4f\\\\\n",
			h.Display, h.Entry.SizeKB, m.NumCycles, m.IPC,
			m.L1IMissRate, m.L1DMissRate))
	}

	lines = append(lines, "\\bottomrule\\end{tabular}\n")

	for _, l := range lines {
		if _, err := io.WriteString(w, l); err != nil {
			return fmt.Errorf("failed to write LaTeX table: %w", err)
		}
	}

	return nil
}

// WriteLaTeXFile writes the LaTeX fragment to path, creating parent
// directories.
func WriteLaTeXFile(path string, highlights []Highlight) error {
	return writeFile(path, func(f *os.File) error {
		return WriteLaTeX(f, highlights)
	})
}
