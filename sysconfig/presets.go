package sysconfig

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultL1Size is the L1 size used when a preset is built without an
// explicit override.
const DefaultL1Size = 32 * KB

// A7 returns a Cortex-A7-like narrow O3 configuration with 32B lines,
// a bimodal predictor and a fixed 512kB L2.
func A7() *System {
	return &System{
		Name:          "a7",
		Clock:         "1GHz",
		CacheLineSize: 32,
		CPU: CPU{
			Model:           "DerivO3CPU",
			FetchWidth:      2,
			DecodeWidth:     2,
			RenameWidth:     4,
			DispatchWidth:   4,
			IssueWidth:      4,
			WBWidth:         2,
			CommitWidth:     2,
			FetchBufferSize: 32,
			FetchQueueSize:  8,
			NumROBEntries:   2,
			LQEntries:       8,
			SQEntries:       8,
		},
		BranchPred: BranchPredictor{Type: "BiModeBP", BTBEntries: 256},
		L1I:        l1i(DefaultL1Size, 2),
		L1D:        l1d(DefaultL1Size, 2),
		L2:         l2(512*KB, 8),
		Memory: Memory{
			Size:  2 * GB,
			Model: "DDR3_1600_8x8",
			Mode:  "timing",
		},
		ProgressHz: 10,
	}
}

// A15 returns a Cortex-A15-like wider core with 64B lines, a tournament
// predictor and a 16-way 512kB L2.
func A15() *System {
	return &System{
		Name:          "a15",
		Clock:         "1GHz",
		CacheLineSize: 64,
		CPU: CPU{
			Model:           "DerivO3CPU",
			FetchWidth:      4,
			DecodeWidth:     4,
			RenameWidth:     8,
			DispatchWidth:   8,
			IssueWidth:      8,
			WBWidth:         4,
			CommitWidth:     4,
			FetchBufferSize: 64,
			FetchQueueSize:  16,
			NumROBEntries:   16,
			LQEntries:       16,
			SQEntries:       16,
		},
		BranchPred: BranchPredictor{Type: "TournamentBP", BTBEntries: 256},
		L1I:        l1i(DefaultL1Size, 2),
		L1D:        l1d(DefaultL1Size, 2),
		L2:         l2(512*KB, 16),
		Memory: Memory{
			Size:  2 * GB,
			Model: "DDR3_1600_8x8",
			Mode:  "timing",
		},
		ProgressHz: 10,
	}
}

func l1i(size ByteSize, assoc int) Cache {
	return Cache{
		Size:            size,
		Assoc:           assoc,
		TagLatency:      2,
		DataLatency:     2,
		ResponseLatency: 2,
		MSHRs:           4,
		TargetsPerMSHR:  8,
		ReadOnly:        true,
		WritebackClean:  true,
	}
}

func l1d(size ByteSize, assoc int) Cache {
	return Cache{
		Size:            size,
		Assoc:           assoc,
		TagLatency:      2,
		DataLatency:     2,
		ResponseLatency: 2,
		MSHRs:           8,
		TargetsPerMSHR:  8,
		WritebackClean:  true,
	}
}

func l2(size ByteSize, assoc int) Cache {
	return Cache{
		Size:            size,
		Assoc:           assoc,
		TagLatency:      10,
		DataLatency:     10,
		ResponseLatency: 10,
		MSHRs:           16,
		TargetsPerMSHR:  12,
		WritebackClean:  true,
	}
}

var presets = map[string]func() *System{
	"a7":  A7,
	"a15": A15,
}

// Preset returns a fresh copy of the named preset. Names are
// case-insensitive.
func Preset(name string) (*System, error) {
	fn, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)",
			name, strings.Join(PresetNames(), ", "))
	}
	return fn(), nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
