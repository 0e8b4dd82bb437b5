package runstore

import (
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/m5sweep/sweep"
)

// Table names used by RecordCollection.
const (
	CollectionsTable = "collections"
	RunsTable        = "runs"
)

// CollectionEntry describes one collect invocation.
type CollectionEntry struct {
	ID        string
	Base      string
	CPU       string
	Timestamp string
	NumRows   int
}

// RunEntry is a sweep row tagged with the collection it belongs to.
type RunEntry struct {
	CollectionID   string
	App            string
	L1             string
	L1KB           int
	Complete       int
	ExitCause      string
	SimSeconds     float64
	SimInsts       float64
	NumCycles      float64
	IPC            float64
	CPI            float64
	L1IMissRate    float64
	L1DMissRate    float64
	L2MissRate     float64
	BPCondMissRate float64
}

func newRunEntry(id string, r sweep.Row) RunEntry {
	return RunEntry{
		CollectionID:   id,
		App:            r.App,
		L1:             r.L1,
		L1KB:           r.L1KB,
		Complete:       r.Complete,
		ExitCause:      r.ExitCause,
		SimSeconds:     r.SimSeconds,
		SimInsts:       r.SimInsts,
		NumCycles:      r.NumCycles,
		IPC:            r.IPC,
		CPI:            r.CPI,
		L1IMissRate:    r.L1IMissRate,
		L1DMissRate:    r.L1DMissRate,
		L2MissRate:     r.L2MissRate,
		BPCondMissRate: r.BPCondMissRate,
	}
}

// RecordCollection creates the collections and runs tables, buffers one
// collection entry plus one run entry per row, and flushes. It returns the
// generated collection ID.
func RecordCollection(rec Recorder, base, cpu string, rows []sweep.Row) (string, error) {
	if err := rec.CreateTable(CollectionsTable, CollectionEntry{}); err != nil {
		return "", err
	}
	if err := rec.CreateTable(RunsTable, RunEntry{}); err != nil {
		return "", err
	}

	id := xid.New().String()
	err := rec.Insert(CollectionsTable, CollectionEntry{
		ID:        id,
		Base:      base,
		CPU:       cpu,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		NumRows:   len(rows),
	})
	if err != nil {
		return "", err
	}

	for _, r := range rows {
		if err := rec.Insert(RunsTable, newRunEntry(id, r)); err != nil {
			return "", err
		}
	}

	if err := rec.Flush(); err != nil {
		return "", err
	}

	return id, nil
}
