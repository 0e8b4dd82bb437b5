package sysconfig

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
)

// ByteSize is a memory or cache capacity in bytes. It reads and writes the
// simulator's notation, e.g. "32kB" or "2GB", where k, M and G are powers
// of 1024.
type ByteSize uint64

// Byte size units.
const (
	B  ByteSize = 1
	KB ByteSize = 1024 * B
	MB ByteSize = 1024 * KB
	GB ByteSize = 1024 * MB
)

var sizeRE = regexp.MustCompile(`^(\d+)\s*([kKMG]i?B|B)?$`)

// ParseSize parses a size such as "32kB", "512KiB", "2GB" or "4096".
func ParseSize(s string) (ByteSize, error) {
	m := sizeRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	unit := B
	switch strings.ToUpper(strings.TrimSuffix(m[2], "iB")) {
	case "K", "KB":
		unit = KB
	case "M", "MB":
		unit = MB
	case "G", "GB":
		unit = GB
	}

	return ByteSize(n) * unit, nil
}

// String renders the size with the largest unit that divides it exactly.
func (s ByteSize) String() string {
	switch {
	case s != 0 && s%GB == 0:
		return fmt.Sprintf("%dGB", s/GB)
	case s != 0 && s%MB == 0:
		return fmt.Sprintf("%dMB", s/MB)
	case s != 0 && s%KB == 0:
		return fmt.Sprintf("%dkB", s/KB)
	default:
		return fmt.Sprintf("%dB", uint64(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ByteSize) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ByteSize) UnmarshalText(text []byte) error {
	v, err := ParseSize(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

var freqRE = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([kKMG]?Hz)$`)

// ParseFreq parses a clock such as "1GHz" or "800MHz".
func ParseFreq(s string) (sim.Freq, error) {
	m := freqRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid frequency %q", s)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
	}

	unit := sim.Hz
	switch strings.ToUpper(m[2]) {
	case "KHZ":
		unit = sim.KHz
	case "MHZ":
		unit = sim.MHz
	case "GHZ":
		unit = sim.GHz
	}

	f := sim.Freq(v) * unit
	if f <= 0 {
		return 0, fmt.Errorf("invalid frequency %q: must be > 0", s)
	}

	return f, nil
}

// FormatFreq renders f in the largest whole unit, e.g. "1GHz".
func FormatFreq(f sim.Freq) string {
	units := []struct {
		unit sim.Freq
		name string
	}{
		{sim.GHz, "GHz"},
		{sim.MHz, "MHz"},
		{sim.KHz, "kHz"},
	}

	for _, u := range units {
		if f >= u.unit {
			v := float64(f / u.unit)
			return strconv.FormatFloat(v, 'f', -1, 64) + u.name
		}
	}

	return strconv.FormatFloat(float64(f), 'f', -1, 64) + "Hz"
}
