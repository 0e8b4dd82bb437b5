package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/m5sweep/metrics"
)

// ErrNoData is returned when there is nothing to choose a best
// configuration from.
var ErrNoData = errors.New("no data")

// Candidate is one configuration offered to Best. Metrics is nil when the
// configuration has no data.
type Candidate struct {
	Label    string
	Metrics  *metrics.RunMetrics
	Complete bool
}

// Best picks the candidate with the fewest cycles. Complete candidates are
// preferred; only when none is complete are all candidates with data
// compared. A candidate whose cycle count is NaN never beats one with a
// number. Ties keep the earlier candidate.
func Best(candidates []Candidate) (Candidate, error) {
	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Metrics != nil && c.Complete {
			pool = append(pool, c)
		}
	}

	if len(pool) == 0 {
		for _, c := range candidates {
			if c.Metrics != nil {
				pool = append(pool, c)
			}
		}
	}

	if len(pool) == 0 {
		return Candidate{}, ErrNoData
	}

	best := pool[0]
	for _, c := range pool[1:] {
		if fewerCycles(c.Metrics.NumCycles, best.Metrics.NumCycles) {
			best = c
		}
	}

	return best, nil
}

func fewerCycles(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

// Candidates lists app at every plan label, in plan order.
func (c *Collection) Candidates(app string) []Candidate {
	out := make([]Candidate, 0, len(c.Plan.Labels))
	for _, label := range c.Plan.Labels {
		e, ok := c.Entry(app, label)
		cand := Candidate{Label: label}
		if ok {
			cand.Complete = e.Complete
			if e.HasData {
				m := e.Metrics
				cand.Metrics = &m
			}
		}
		out = append(out, cand)
	}
	return out
}

// Best returns the best entry of app. The error wraps ErrNoData when app
// has no data at any L1 size.
func (c *Collection) Best(app string) (Entry, error) {
	best, err := Best(c.Candidates(app))
	if err != nil {
		return Entry{}, fmt.Errorf("missing data for %s: %w", app, err)
	}

	e, _ := c.Entry(app, best.Label)
	return e, nil
}
