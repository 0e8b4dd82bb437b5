// Package simout reads the simulator console log to find out why a run
// stopped.
package simout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// FileName is the console log gem5 writes when stdout is redirected.
const FileName = "simout"

var exitRE = regexp.MustCompile(`^Exiting @ tick \d+ because (.*)$`)

// Phrases that mark a run as cut short rather than finished.
var earlyTermination = []string{
	"max instruction count",
	"user interrupt",
}

// ParseExitCause returns the cause from the last "Exiting @ tick N because
// <cause>" line, or "" if there is none.
func ParseExitCause(r io.Reader) (string, error) {
	cause := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := exitRE.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m != nil {
			cause = strings.TrimSpace(m[1])
		}
	}

	if err := scanner.Err(); err != nil {
		return cause, fmt.Errorf("failed to read console log: %w", err)
	}

	return cause, nil
}

// ReadExitCause reads the console log at path. A missing log yields "".
func ReadExitCause(path string) (string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open console log: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseExitCause(f)
}

// IsComplete reports whether cause describes a natural end of the program.
// An empty cause is never complete.
func IsComplete(cause string) bool {
	if cause == "" {
		return false
	}

	lowered := strings.ToLower(cause)
	for _, phrase := range earlyTermination {
		if strings.Contains(lowered, phrase) {
			return false
		}
	}

	return true
}

// Part is one labelled component of a composite exit cause.
type Part struct {
	Label string
	Cause string
}

// Join renders the causes of several runs as "enc: a | dec: b".
func Join(parts ...Part) string {
	rendered := make([]string, 0, len(parts))
	for _, p := range parts {
		rendered = append(rendered, p.Label+": "+p.Cause)
	}
	return strings.TrimSpace(strings.Join(rendered, " | "))
}

// AllComplete reports whether every part completed. No parts means not
// complete.
func AllComplete(parts ...Part) bool {
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if !IsComplete(p.Cause) {
			return false
		}
	}
	return true
}
