// Package sweep collects the results of an L1 cache size sweep from the
// simulator output tree and picks the best configuration per application.
//
// The output tree has one directory per L1 size and one subdirectory per
// run:
//
//	<base>/L1_<label>/<run>/stats.txt
//	<base>/L1_<label>/<run>/simout
package sweep

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

var sizeLabelRE = regexp.MustCompile(`^(\d+)kB$`)

// ParseSizeKB converts an L1 label such as "16kB" to its size in KB.
func ParseSizeKB(label string) (int, error) {
	m := sizeLabelRE.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("unexpected L1 label: %q", label)
	}

	kb, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("unexpected L1 label: %q: %w", label, err)
	}

	return kb, nil
}

// ConfigDir is the directory holding every run of one L1 size.
func ConfigDir(base, label string) string {
	return filepath.Join(base, "L1_"+label)
}

// RunDir is the simulator output directory of one run.
func RunDir(base, label, run string) string {
	return filepath.Join(ConfigDir(base, label), run)
}

// Part is one run contributing to a composite application.
type Part struct {
	// Run is the run name, e.g. "blowfish_enc".
	Run string
	// Label is the short name used in the composite exit cause, e.g. "enc".
	Label string
}

// Composite is an application whose metrics are the sum of several runs.
type Composite struct {
	Name  string
	Parts []Part
}

// Plan describes the sweep: which L1 sizes were simulated, which runs were
// made at each size and which runs are combined into composite
// applications.
type Plan struct {
	Labels     []string
	Runs       []string
	Composites []Composite
}

// DefaultPlan is the A15 L1 sweep: Dijkstra plus Blowfish encode and
// decode at five L1 sizes, with the two Blowfish halves combined.
func DefaultPlan() Plan {
	return Plan{
		Labels: []string{"2kB", "4kB", "8kB", "16kB", "32kB"},
		Runs:   []string{"dijkstra", "blowfish_enc", "blowfish_dec"},
		Composites: []Composite{
			{
				Name: "blowfish_total",
				Parts: []Part{
					{Run: "blowfish_enc", Label: "enc"},
					{Run: "blowfish_dec", Label: "dec"},
				},
			},
		},
	}
}

// Apps lists the plain runs followed by the composites.
func (p Plan) Apps() []string {
	apps := make([]string, 0, len(p.Runs)+len(p.Composites))
	apps = append(apps, p.Runs...)
	for _, c := range p.Composites {
		apps = append(apps, c.Name)
	}
	return apps
}

// SizesKB returns the numeric size of every label, in plan order.
func (p Plan) SizesKB() ([]int, error) {
	sizes := make([]int, 0, len(p.Labels))
	for _, l := range p.Labels {
		kb, err := ParseSizeKB(l)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, kb)
	}
	return sizes, nil
}

// Validate checks that labels parse, names are unique and composites only
// refer to runs in the plan.
func (p Plan) Validate() error {
	if len(p.Labels) == 0 {
		return fmt.Errorf("plan has no L1 sizes")
	}

	seenLabels := map[string]bool{}
	for _, l := range p.Labels {
		if _, err := ParseSizeKB(l); err != nil {
			return err
		}
		if seenLabels[l] {
			return fmt.Errorf("duplicate L1 size %q", l)
		}
		seenLabels[l] = true
	}

	seenApps := map[string]bool{}
	for _, r := range p.Runs {
		if seenApps[r] {
			return fmt.Errorf("duplicate run %q", r)
		}
		seenApps[r] = true
	}

	runs := map[string]bool{}
	for _, r := range p.Runs {
		runs[r] = true
	}

	for _, c := range p.Composites {
		if seenApps[c.Name] {
			return fmt.Errorf("duplicate application %q", c.Name)
		}
		seenApps[c.Name] = true

		if len(c.Parts) == 0 {
			return fmt.Errorf("composite %q has no parts", c.Name)
		}
		for _, part := range c.Parts {
			if !runs[part.Run] {
				return fmt.Errorf("composite %q refers to unknown run %q",
					c.Name, part.Run)
			}
		}
	}

	return nil
}
