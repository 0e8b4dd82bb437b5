// Package loader inspects the RISC-V user binaries handed to the simulator
// in syscall-emulation mode.
package loader

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotRISCV is returned for ELF files built for another machine.
var ErrNotRISCV = errors.New("not a RISC-V ELF file")

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// String renders the flags as "rwx" with dashes for cleared bits.
func (f SegmentFlags) String() string {
	b := []byte("---")
	if f&SegmentFlagRead != 0 {
		b[0] = 'r'
	}
	if f&SegmentFlagWrite != 0 {
		b[1] = 'w'
	}
	if f&SegmentFlagExecute != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// Segment describes one PT_LOAD segment.
type Segment struct {
	VirtAddr uint64
	FileSize uint64
	// MemSize may be larger than FileSize for BSS.
	MemSize uint64
	Flags   SegmentFlags
}

// Binary summarizes a workload executable.
type Binary struct {
	Path string
	// Bits is 32 or 64.
	Bits       int
	EntryPoint uint64
	Segments   []Segment
	// Interpreter is the PT_INTERP path of a dynamically linked binary.
	Interpreter string
}

// Static reports whether the binary has no dynamic loader.
func (b *Binary) Static() bool {
	return b.Interpreter == ""
}

// MemSize returns the total memory footprint of the loadable segments.
func (b *Binary) MemSize() uint64 {
	var total uint64
	for _, s := range b.Segments {
		total += s.MemSize
	}
	return total
}

// Inspect opens a RISC-V ELF binary and returns its entry point and
// loadable segments. Segment contents are not read.
func Inspect(path string) (*Binary, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%w (machine type: %v)", ErrNotRISCV, f.Machine)
	}

	bin := &Binary{
		Path:       path,
		EntryPoint: f.Entry,
	}

	switch f.Class {
	case elf.ELFCLASS64:
		bin.Bits = 64
	case elf.ELFCLASS32:
		bin.Bits = 32
	default:
		return nil, fmt.Errorf("unsupported ELF class %v", f.Class)
	}

	for _, phdr := range f.Progs {
		switch phdr.Type {
		case elf.PT_INTERP:
			interp, err := io.ReadAll(phdr.Open())
			if err != nil {
				return nil, fmt.Errorf("failed to read interpreter path: %w", err)
			}
			bin.Interpreter = strings.TrimRight(string(interp), "\x00")
		case elf.PT_LOAD:
			bin.Segments = append(bin.Segments, Segment{
				VirtAddr: phdr.Vaddr,
				FileSize: phdr.Filesz,
				MemSize:  phdr.Memsz,
				Flags:    convertFlags(phdr.Flags),
			})
		}
	}

	return bin, nil
}

func convertFlags(pf elf.ProgFlag) SegmentFlags {
	var flags SegmentFlags
	if pf&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if pf&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if pf&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}
	return flags
}
