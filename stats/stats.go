// Package stats parses the end-of-run statistics dump written by gem5.
//
// A dump is a sequence of lines of the form
//
//	<dotted.name> <value> [# comment]
//
// Separator lines (starting with "-"), comment lines and anything else that
// does not follow that shape are ignored.
package stats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// FileName is the name gem5 gives the statistics dump inside its output
// directory.
const FileName = "stats.txt"

// maxLineSize bounds a single stat line. Vector stats with many buckets can
// be long, so this is generous.
const maxLineSize = 1024 * 1024

var lineRE = regexp.MustCompile(
	`^([^#\s]+)\s+([-+]?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?)\s*(?:#.*)?$`)

// Stats maps stat names to their values.
type Stats map[string]float64

// Lookup returns the value recorded for name and whether it was present.
func (s Stats) Lookup(name string) (float64, bool) {
	v, ok := s[name]
	return v, ok
}

// Get returns the value recorded for name, or NaN if it is absent.
func (s Stats) Get(name string) float64 {
	if v, ok := s[name]; ok {
		return v
	}
	return math.NaN()
}

// ParseLine parses a single stat line. ok is false for lines that do not
// have the stat shape or whose value cannot be represented as a float64.
func ParseLine(line string) (name string, value float64, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "-") {
		return "", 0, false
	}

	m := lineRE.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}

	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return "", 0, false
	}

	return m[1], v, true
}

// Parse reads a statistics dump. Malformed lines are skipped; only read
// errors are returned. If a name appears more than once (gem5 appends a
// new block on every stats dump) the last value wins.
func Parse(r io.Reader) (Stats, error) {
	s := Stats{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		name, value, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		s[name] = value
	}

	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("failed to read stats: %w", err)
	}

	return s, nil
}

// ParseFile parses the statistics dump at path. A missing file yields an
// empty Stats and no error.
func ParseFile(path string) (Stats, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Stats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open stats file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}
