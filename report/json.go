package report

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/sarchlab/m5sweep/sweep"
)

// Number is a float that encodes NaN and infinities as JSON null.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// Metadata describes where a collection came from.
type Metadata struct {
	Timestamp string   `json:"timestamp"`
	Base      string   `json:"base"`
	CPU       string   `json:"cpu"`
	Missing   []string `json:"missing"`
}

// JSONRow is a CSV row with missing values as null.
type JSONRow struct {
	App            string `json:"app"`
	L1             string `json:"l1"`
	L1KB           int    `json:"l1_kb"`
	Complete       bool   `json:"complete"`
	ExitCause      string `json:"exit_cause"`
	SimSeconds     Number `json:"simSeconds"`
	SimInsts       Number `json:"simInsts"`
	NumCycles      Number `json:"numCycles"`
	IPC            Number `json:"ipc"`
	CPI            Number `json:"cpi"`
	L1IMissRate    Number `json:"l1i_miss_rate"`
	L1DMissRate    Number `json:"l1d_miss_rate"`
	L2MissRate     Number `json:"l2_miss_rate"`
	BPCondMissRate Number `json:"bp_cond_miss_rate"`
}

// JSONBest is one highlighted best configuration.
type JSONBest struct {
	App         string `json:"app"`
	Display     string `json:"display"`
	L1          string `json:"l1"`
	L1KB        int    `json:"l1_kb"`
	Complete    bool   `json:"complete"`
	NumCycles   Number `json:"numCycles"`
	IPC         Number `json:"ipc"`
	L1IMissRate Number `json:"l1i_miss_rate"`
	L1DMissRate Number `json:"l1d_miss_rate"`
}

// JSONReport is the machine-readable summary of a collection.
type JSONReport struct {
	Metadata Metadata   `json:"metadata"`
	Rows     []JSONRow  `json:"rows"`
	Best     []JSONBest `json:"best"`
}

// NewJSONReport converts rows and highlights for JSON output.
func NewJSONReport(meta Metadata, rows []sweep.Row, highlights []Highlight) JSONReport {
	if meta.Missing == nil {
		meta.Missing = []string{}
	}

	r := JSONReport{
		Metadata: meta,
		Rows:     make([]JSONRow, 0, len(rows)),
		Best:     make([]JSONBest, 0, len(highlights)),
	}

	sorted := append([]sweep.Row(nil), rows...)
	sweep.SortRows(sorted)
	for _, row := range sorted {
		r.Rows = append(r.Rows, JSONRow{
			App:            row.App,
			L1:             row.L1,
			L1KB:           row.L1KB,
			Complete:       row.Complete == 1,
			ExitCause:      row.ExitCause,
			SimSeconds:     Number(row.SimSeconds),
			SimInsts:       Number(row.SimInsts),
			NumCycles:      Number(row.NumCycles),
			IPC:            Number(row.IPC),
			CPI:            Number(row.CPI),
			L1IMissRate:    Number(row.L1IMissRate),
			L1DMissRate:    Number(row.L1DMissRate),
			L2MissRate:     Number(row.L2MissRate),
			BPCondMissRate: Number(row.BPCondMissRate),
		})
	}

	for _, h := range highlights {
		m := h.Entry.Metrics
		r.Best = append(r.Best, JSONBest{
			App:         h.Entry.App,
			Display:     h.Display,
			L1:          h.Entry.Label,
			L1KB:        h.Entry.SizeKB,
			Complete:    h.Entry.Complete,
			NumCycles:   Number(m.NumCycles),
			IPC:         Number(m.IPC),
			L1IMissRate: Number(m.L1IMissRate),
			L1DMissRate: Number(m.L1DMissRate),
		})
	}

	return r
}

// WriteJSON writes the indented JSON summary.
func WriteJSON(w io.Writer, meta Metadata, rows []sweep.Row, highlights []Highlight) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONReport(meta, rows, highlights))
}

// WriteJSONFile writes the JSON summary to path, creating parent
// directories.
func WriteJSONFile(path string, meta Metadata, rows []sweep.Row, highlights []Highlight) error {
	return writeFile(path, func(f *os.File) error {
		return WriteJSON(f, meta, rows, highlights)
	})
}
