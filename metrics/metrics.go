// Package metrics derives per-run performance metrics from gem5 statistics
// and aggregates related runs.
package metrics

import (
	"math"

	"github.com/sarchlab/m5sweep/stats"
)

// Names of the gem5 statistics the extractor reads.
const (
	StatSimSeconds   = "simSeconds"
	StatSimInsts     = "simInsts"
	StatHostSeconds  = "hostSeconds"
	StatHostInstRate = "hostInstRate"
	StatNumCycles    = "system.cpu.numCycles"
	StatIPC          = "system.cpu.ipc"
	StatCPI          = "system.cpu.cpi"

	StatL1IMissRate = "system.cpu.icache.overallMissRate::total"
	StatL1DMissRate = "system.cpu.dcache.overallMissRate::total"
	StatL2MissRate  = "system.l2cache.overallMissRate::total"

	StatL1IAccesses = "system.cpu.icache.overallAccesses::total"
	StatL1IMisses   = "system.cpu.icache.overallMisses::total"
	StatL1DAccesses = "system.cpu.dcache.overallAccesses::total"
	StatL1DMisses   = "system.cpu.dcache.overallMisses::total"
	StatL2Accesses  = "system.l2cache.overallAccesses::total"
	StatL2Misses    = "system.l2cache.overallMisses::total"

	StatBPCondPredicted = "system.cpu.branchPred.condPredicted"
	StatBPCondIncorrect = "system.cpu.branchPred.condIncorrect"
)

// RunMetrics holds the metrics of one simulator run, or of several runs
// summed together. Any field may be NaN when the statistic was missing.
type RunMetrics struct {
	SimSeconds float64 `json:"sim_seconds"`
	SimInsts   float64 `json:"sim_insts"`
	NumCycles  float64 `json:"num_cycles"`
	IPC        float64 `json:"ipc"`
	CPI        float64 `json:"cpi"`

	L1IMissRate float64 `json:"l1i_miss_rate"`
	L1DMissRate float64 `json:"l1d_miss_rate"`
	L2MissRate  float64 `json:"l2_miss_rate"`

	L1IAccesses float64 `json:"l1i_accesses"`
	L1IMisses   float64 `json:"l1i_misses"`
	L1DAccesses float64 `json:"l1d_accesses"`
	L1DMisses   float64 `json:"l1d_misses"`
	L2Accesses  float64 `json:"l2_accesses"`
	L2Misses    float64 `json:"l2_misses"`

	BPCondPredicted float64 `json:"bp_cond_predicted"`
	BPCondIncorrect float64 `json:"bp_cond_incorrect"`

	// HostSeconds and HostInstRate describe the simulator's own wall-clock
	// cost, not the simulated program.
	HostSeconds  float64 `json:"host_seconds"`
	HostInstRate float64 `json:"host_inst_rate"`
}

// SafeDiv returns num/den, or NaN when den is zero or either operand is NaN.
func SafeDiv(num, den float64) float64 {
	if den == 0 || math.IsNaN(num) || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}

// Extract builds RunMetrics from a parsed statistics dump. Absent
// statistics become NaN.
func Extract(s stats.Stats) RunMetrics {
	return RunMetrics{
		SimSeconds: s.Get(StatSimSeconds),
		SimInsts:   s.Get(StatSimInsts),
		NumCycles:  s.Get(StatNumCycles),
		IPC:        s.Get(StatIPC),
		CPI:        s.Get(StatCPI),

		L1IMissRate: s.Get(StatL1IMissRate),
		L1DMissRate: s.Get(StatL1DMissRate),
		L2MissRate:  s.Get(StatL2MissRate),

		L1IAccesses: s.Get(StatL1IAccesses),
		L1IMisses:   s.Get(StatL1IMisses),
		L1DAccesses: s.Get(StatL1DAccesses),
		L1DMisses:   s.Get(StatL1DMisses),
		L2Accesses:  s.Get(StatL2Accesses),
		L2Misses:    s.Get(StatL2Misses),

		BPCondPredicted: s.Get(StatBPCondPredicted),
		BPCondIncorrect: s.Get(StatBPCondIncorrect),

		HostSeconds:  s.Get(StatHostSeconds),
		HostInstRate: s.Get(StatHostInstRate),
	}
}

// BPCondMissRate is the conditional branch misprediction rate.
func (m RunMetrics) BPCondMissRate() float64 {
	return SafeDiv(m.BPCondIncorrect, m.BPCondPredicted)
}

// Sum combines two runs. Raw counters are added and every ratio is
// recomputed from the summed counters, so a long run weighs more than a
// short one.
func Sum(a, b RunMetrics) RunMetrics {
	r := RunMetrics{
		SimSeconds: a.SimSeconds + b.SimSeconds,
		SimInsts:   a.SimInsts + b.SimInsts,
		NumCycles:  a.NumCycles + b.NumCycles,

		L1IAccesses: a.L1IAccesses + b.L1IAccesses,
		L1IMisses:   a.L1IMisses + b.L1IMisses,
		L1DAccesses: a.L1DAccesses + b.L1DAccesses,
		L1DMisses:   a.L1DMisses + b.L1DMisses,
		L2Accesses:  a.L2Accesses + b.L2Accesses,
		L2Misses:    a.L2Misses + b.L2Misses,

		BPCondPredicted: a.BPCondPredicted + b.BPCondPredicted,
		BPCondIncorrect: a.BPCondIncorrect + b.BPCondIncorrect,

		HostSeconds: a.HostSeconds + b.HostSeconds,
	}

	r.IPC = SafeDiv(r.SimInsts, r.NumCycles)
	r.CPI = SafeDiv(r.NumCycles, r.SimInsts)
	r.L1IMissRate = SafeDiv(r.L1IMisses, r.L1IAccesses)
	r.L1DMissRate = SafeDiv(r.L1DMisses, r.L1DAccesses)
	r.L2MissRate = SafeDiv(r.L2Misses, r.L2Accesses)
	r.HostInstRate = SafeDiv(r.SimInsts, r.HostSeconds)

	return r
}

// SumAll folds Sum over runs. It returns false when runs is empty.
func SumAll(runs ...RunMetrics) (RunMetrics, bool) {
	if len(runs) == 0 {
		return RunMetrics{}, false
	}

	total := runs[0]
	for _, r := range runs[1:] {
		total = Sum(total, r)
	}

	return total, true
}

// Metric names a RunMetrics field that can be plotted or tabulated.
type Metric string

// Metrics known to Value.
const (
	MetricSimSeconds     Metric = "simSeconds"
	MetricSimInsts       Metric = "simInsts"
	MetricNumCycles      Metric = "numCycles"
	MetricIPC            Metric = "ipc"
	MetricCPI            Metric = "cpi"
	MetricL1IMissRate    Metric = "l1i_miss_rate"
	MetricL1DMissRate    Metric = "l1d_miss_rate"
	MetricL2MissRate     Metric = "l2_miss_rate"
	MetricBPCondMissRate Metric = "bp_cond_miss_rate"
)

// Value returns the named metric. Unknown metrics yield NaN.
func (m RunMetrics) Value(metric Metric) float64 {
	switch metric {
	case MetricSimSeconds:
		return m.SimSeconds
	case MetricSimInsts:
		return m.SimInsts
	case MetricNumCycles:
		return m.NumCycles
	case MetricIPC:
		return m.IPC
	case MetricCPI:
		return m.CPI
	case MetricL1IMissRate:
		return m.L1IMissRate
	case MetricL1DMissRate:
		return m.L1DMissRate
	case MetricL2MissRate:
		return m.L2MissRate
	case MetricBPCondMissRate:
		return m.BPCondMissRate()
	default:
		return math.NaN()
	}
}
