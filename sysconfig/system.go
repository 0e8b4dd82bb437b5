// Package sysconfig describes the simulated system handed to gem5: CPU
// pipeline widths and queue sizes, branch predictor, cache hierarchy and
// memory.
//
// A System is serialized to JSON and read by the simulator's configuration
// script, which instantiates the corresponding gem5 objects.
package sysconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid system configuration")

// CPU holds the out-of-order core parameters.
type CPU struct {
	// Model is the gem5 CPU model, e.g. "DerivO3CPU".
	Model string `json:"model"`

	FetchWidth    int `json:"fetch_width"`
	DecodeWidth   int `json:"decode_width"`
	RenameWidth   int `json:"rename_width"`
	DispatchWidth int `json:"dispatch_width"`
	IssueWidth    int `json:"issue_width"`
	WBWidth       int `json:"wb_width"`
	CommitWidth   int `json:"commit_width"`

	// FetchBufferSize is in bytes and should not exceed the cache line.
	FetchBufferSize int `json:"fetch_buffer_size"`
	FetchQueueSize  int `json:"fetch_queue_size"`

	NumROBEntries int `json:"num_rob_entries"`
	LQEntries     int `json:"lq_entries"`
	SQEntries     int `json:"sq_entries"`
}

// BranchPredictor selects the gem5 predictor and its BTB size.
type BranchPredictor struct {
	// Type is the gem5 predictor class, e.g. "BiModeBP" or "TournamentBP".
	Type       string `json:"type"`
	BTBEntries int    `json:"btb_entries"`
}

// Cache holds the parameters of one cache level.
type Cache struct {
	Size  ByteSize `json:"size"`
	Assoc int      `json:"assoc"`

	TagLatency      int `json:"tag_latency"`
	DataLatency     int `json:"data_latency"`
	ResponseLatency int `json:"response_latency"`

	MSHRs          int `json:"mshrs"`
	TargetsPerMSHR int `json:"tgts_per_mshr"`

	ReadOnly       bool `json:"is_read_only"`
	WritebackClean bool `json:"writeback_clean"`
}

// Memory describes main memory.
type Memory struct {
	Size ByteSize `json:"size"`
	// Model is the gem5 DRAM interface, e.g. "DDR3_1600_8x8".
	Model string `json:"model"`
	// Mode is the gem5 memory mode, "timing" for O3 CPUs.
	Mode string `json:"mode"`
}

// System is the complete simulated machine.
type System struct {
	Name  string `json:"name"`
	Clock string `json:"clock"`

	CacheLineSize int `json:"cache_line_size"`

	CPU        CPU             `json:"cpu"`
	BranchPred BranchPredictor `json:"branch_pred"`

	L1I Cache `json:"l1i"`
	L1D Cache `json:"l1d"`
	L2  Cache `json:"l2"`

	Memory Memory `json:"memory"`

	// MaxInsts stops the run after this many committed instructions on
	// any thread. Zero runs to completion.
	MaxInsts uint64 `json:"max_insts"`

	// ProgressHz is how often the simulator prints progress. Zero
	// disables progress output.
	ProgressHz int `json:"progress_hz"`
}

// Freq returns the parsed core clock.
func (s *System) Freq() (sim.Freq, error) {
	return ParseFreq(s.Clock)
}

// Load reads a System from a JSON file.
func Load(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config file: %w", err)
	}

	s := &System{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	return s, nil
}

// Save writes the System to a JSON file.
func (s *System) Save(path string) error {
	data, err := s.MarshalIndent()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write system config file: %w", err)
	}

	return nil
}

// MarshalIndent renders the System as indented JSON with a trailing
// newline.
func (s *System) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize system config: %w", err)
	}
	return append(data, '\n'), nil
}

// Clone returns a deep copy of the System.
func (s *System) Clone() *System {
	c := *s
	return &c
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate checks that every parameter is usable by the simulator.
func (s *System) Validate() error {
	if _, err := s.Freq(); err != nil {
		return invalid("clock: %v", err)
	}

	if s.CacheLineSize <= 0 || !isPowerOfTwo(s.CacheLineSize) {
		return invalid("cache_line_size must be a positive power of two, got %d",
			s.CacheLineSize)
	}

	if err := s.CPU.validate(s.CacheLineSize); err != nil {
		return err
	}

	if s.BranchPred.Type == "" {
		return invalid("branch_pred.type must be set")
	}
	if s.BranchPred.BTBEntries <= 0 || !isPowerOfTwo(s.BranchPred.BTBEntries) {
		return invalid("branch_pred.btb_entries must be a positive power of two, got %d",
			s.BranchPred.BTBEntries)
	}

	levels := []struct {
		name  string
		cache Cache
	}{
		{"l1i", s.L1I},
		{"l1d", s.L1D},
		{"l2", s.L2},
	}
	for _, l := range levels {
		if err := l.cache.validate(l.name, s.CacheLineSize); err != nil {
			return err
		}
	}

	if s.Memory.Size == 0 {
		return invalid("memory.size must be > 0")
	}

	if s.ProgressHz < 0 {
		return invalid("progress_hz must be >= 0")
	}

	return nil
}

func (c CPU) validate(lineSize int) error {
	widths := []struct {
		name  string
		value int
	}{
		{"fetch_width", c.FetchWidth},
		{"decode_width", c.DecodeWidth},
		{"rename_width", c.RenameWidth},
		{"dispatch_width", c.DispatchWidth},
		{"issue_width", c.IssueWidth},
		{"wb_width", c.WBWidth},
		{"commit_width", c.CommitWidth},
		{"fetch_queue_size", c.FetchQueueSize},
		{"num_rob_entries", c.NumROBEntries},
		{"lq_entries", c.LQEntries},
		{"sq_entries", c.SQEntries},
	}
	for _, w := range widths {
		if w.value <= 0 {
			return invalid("cpu.%s must be > 0", w.name)
		}
	}

	if c.FetchBufferSize <= 0 || c.FetchBufferSize > lineSize {
		return invalid("cpu.fetch_buffer_size must be in (0, %d], got %d",
			lineSize, c.FetchBufferSize)
	}

	return nil
}

func (c Cache) validate(name string, lineSize int) error {
	if c.Assoc <= 0 {
		return invalid("%s.assoc must be > 0", name)
	}
	if c.TagLatency <= 0 || c.DataLatency <= 0 || c.ResponseLatency <= 0 {
		return invalid("%s latencies must be > 0", name)
	}
	if c.MSHRs <= 0 || c.TargetsPerMSHR <= 0 {
		return invalid("%s.mshrs and %s.tgts_per_mshr must be > 0", name, name)
	}
	if _, err := c.Geometry(lineSize); err != nil {
		return invalid("%s: %v", name, err)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
