package sysconfig

import (
	"fmt"
	"strings"
)

// Builder assembles a System from a preset, or from a loaded base system,
// and a set of overrides. Sizes and clocks are given in the simulator's
// notation and parsed on Build.
type Builder struct {
	preset     string
	base       *System
	l1Size     string
	l1iSize    string
	l1dSize    string
	l1Assoc    int
	l2Size     string
	clock      string
	memSize    string
	maxInsts   *uint64
	progressHz *int
	bpType     string
	btbEntries int
}

// MakeBuilder creates a builder for the "a7" preset.
func MakeBuilder() Builder {
	return Builder{preset: "a7"}
}

// WithPreset selects the base configuration.
func (b Builder) WithPreset(name string) Builder {
	b.preset = name
	return b
}

// WithBase starts from a copy of sys instead of a preset. The system keeps
// its name and any field no override touches, including MaxInsts.
func (b Builder) WithBase(sys *System) Builder {
	b.base = sys.Clone()
	return b
}

// WithL1Size sets both L1 instruction and data cache sizes.
func (b Builder) WithL1Size(size string) Builder {
	b.l1Size = size
	return b
}

// WithL1ISize sets the L1 instruction cache size only.
func (b Builder) WithL1ISize(size string) Builder {
	b.l1iSize = size
	return b
}

// WithL1DSize sets the L1 data cache size only.
func (b Builder) WithL1DSize(size string) Builder {
	b.l1dSize = size
	return b
}

// WithL1Assoc sets the associativity of both L1 caches.
func (b Builder) WithL1Assoc(assoc int) Builder {
	b.l1Assoc = assoc
	return b
}

// WithL2Size sets the L2 cache size.
func (b Builder) WithL2Size(size string) Builder {
	b.l2Size = size
	return b
}

// WithClock sets the core clock, e.g. "1GHz".
func (b Builder) WithClock(clock string) Builder {
	b.clock = clock
	return b
}

// WithMemSize sets the main memory size, e.g. "2GB".
func (b Builder) WithMemSize(size string) Builder {
	b.memSize = size
	return b
}

// WithMaxInsts stops the simulation after n committed instructions. Zero
// means run to completion.
func (b Builder) WithMaxInsts(n uint64) Builder {
	b.maxInsts = &n
	return b
}

// WithProgress sets the progress print frequency in Hz. Zero disables it.
func (b Builder) WithProgress(hz int) Builder {
	b.progressHz = &hz
	return b
}

// WithBranchPredictor overrides the predictor type and BTB size. An empty
// type or a zero BTB size keeps the preset value.
func (b Builder) WithBranchPredictor(bpType string, btbEntries int) Builder {
	b.bpType = bpType
	b.btbEntries = btbEntries
	return b
}

// Build applies the overrides to the base and validates the result.
func (b Builder) Build() (*System, error) {
	s, err := b.start()
	if err != nil {
		return nil, err
	}

	sizes := []struct {
		name  string
		value string
		dst   []*ByteSize
	}{
		{"l1", b.l1Size, []*ByteSize{&s.L1I.Size, &s.L1D.Size}},
		{"l1i", b.l1iSize, []*ByteSize{&s.L1I.Size}},
		{"l1d", b.l1dSize, []*ByteSize{&s.L1D.Size}},
		{"l2", b.l2Size, []*ByteSize{&s.L2.Size}},
		{"mem", b.memSize, []*ByteSize{&s.Memory.Size}},
	}
	for _, sz := range sizes {
		if sz.value == "" {
			continue
		}
		v, err := ParseSize(sz.value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s size: %v", ErrInvalidConfig, sz.name, err)
		}
		for _, d := range sz.dst {
			*d = v
		}
	}

	if b.l1Assoc > 0 {
		s.L1I.Assoc = b.l1Assoc
		s.L1D.Assoc = b.l1Assoc
	}

	if b.clock != "" {
		f, err := ParseFreq(b.clock)
		if err != nil {
			return nil, fmt.Errorf("%w: clock: %v", ErrInvalidConfig, err)
		}
		s.Clock = FormatFreq(f)
	}

	if b.maxInsts != nil {
		s.MaxInsts = *b.maxInsts
	}
	if b.progressHz != nil {
		s.ProgressHz = *b.progressHz
	}

	if b.bpType != "" {
		s.BranchPred.Type = b.bpType
	}
	if b.btbEntries > 0 {
		s.BranchPred.BTBEntries = b.btbEntries
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (b Builder) start() (*System, error) {
	if b.base != nil {
		return b.base.Clone(), nil
	}

	s, err := Preset(b.preset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s.Name = strings.ToLower(b.preset)

	return s, nil
}
