package sysconfig

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Geometry is the set/way layout of a cache.
type Geometry struct {
	NumSets  int
	Assoc    int
	LineSize int
}

// Blocks returns the total number of cache lines.
func (g Geometry) Blocks() int {
	return g.NumSets * g.Assoc
}

// Geometry derives the set/way layout of the cache for the given line size.
// The size must split evenly into a power-of-two number of sets.
func (c Cache) Geometry(lineSize int) (Geometry, error) {
	if lineSize <= 0 {
		return Geometry{}, fmt.Errorf("line size must be > 0, got %d", lineSize)
	}
	if c.Assoc <= 0 {
		return Geometry{}, fmt.Errorf("assoc must be > 0, got %d", c.Assoc)
	}

	way := uint64(c.Assoc) * uint64(lineSize)
	if c.Size == 0 || uint64(c.Size)%way != 0 {
		return Geometry{}, fmt.Errorf("size %s is not a multiple of %d ways x %dB lines",
			c.Size, c.Assoc, lineSize)
	}

	numSets := int(uint64(c.Size) / way)
	if !isPowerOfTwo(numSets) {
		return Geometry{}, fmt.Errorf("size %s gives %d sets, want a power of two",
			c.Size, numSets)
	}

	return Geometry{NumSets: numSets, Assoc: c.Assoc, LineSize: lineSize}, nil
}

// Directory builds an LRU tag directory with the given layout.
func (g Geometry) Directory() *akitacache.DirectoryImpl {
	return akitacache.NewDirectory(
		g.NumSets,
		g.Assoc,
		g.LineSize,
		akitacache.NewLRUVictimFinder(),
	)
}

// Region is a contiguous address range, e.g. a program's text segment.
type Region struct {
	Start uint64
	Size  uint64
}

// Footprint is the result of streaming a set of regions through a cold
// cache once.
type Footprint struct {
	// Lines is the number of distinct cache lines touched.
	Lines int
	// SetsUsed is the number of sets holding at least one line afterwards.
	SetsUsed int
	// Evictions counts lines pushed out by later lines of the same pass.
	// Zero means the regions fit in the cache together.
	Evictions int
}

// Fits reports whether every line stayed resident.
func (f Footprint) Fits() bool {
	return f.Evictions == 0
}

// Footprint streams every line of regions through a cold LRU directory
// shaped like the cache and counts conflicts.
func (c Cache) Footprint(lineSize int, regions []Region) (Footprint, error) {
	g, err := c.Geometry(lineSize)
	if err != nil {
		return Footprint{}, err
	}

	dir := g.Directory()
	line := uint64(lineSize)

	var fp Footprint
	for _, r := range regions {
		if r.Size == 0 {
			continue
		}

		first := r.Start / line * line
		end := r.Start + r.Size
		for addr := first; addr < end; addr += line {
			if block := dir.Lookup(0, addr); block != nil && block.IsValid {
				dir.Visit(block)
				continue
			}

			fp.Lines++
			victim := dir.FindVictim(addr)
			if victim.IsValid {
				fp.Evictions++
			}
			victim.Tag = addr
			victim.IsValid = true
			dir.Visit(victim)
		}
	}

	for _, set := range dir.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid {
				fp.SetsUsed++
				break
			}
		}
	}

	return fp, nil
}
