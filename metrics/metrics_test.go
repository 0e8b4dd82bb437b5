package metrics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m5sweep/metrics"
	"github.com/sarchlab/m5sweep/stats"
)

var _ = Describe("Metrics", func() {
	Describe("SafeDiv", func() {
		It("should divide normally", func() {
			Expect(metrics.SafeDiv(3, 4)).To(Equal(0.75))
		})

		DescribeTable("should yield NaN instead of failing",
			func(num, den float64) {
				Expect(math.IsNaN(metrics.SafeDiv(num, den))).To(BeTrue())
			},
			Entry("zero denominator", 1.0, 0.0),
			Entry("zero over zero", 0.0, 0.0),
			Entry("NaN numerator", math.NaN(), 2.0),
			Entry("NaN denominator", 2.0, math.NaN()),
		)
	})

	Describe("Extract", func() {
		It("should map gem5 names onto fields", func() {
			s := stats.Stats{
				metrics.StatSimInsts:        50,
				metrics.StatNumCycles:       100,
				metrics.StatIPC:             0.5,
				metrics.StatL1DMisses:       3,
				metrics.StatL1DAccesses:     30,
				metrics.StatBPCondPredicted: 10,
				metrics.StatBPCondIncorrect: 1,
			}

			m := metrics.Extract(s)
			Expect(m.SimInsts).To(Equal(50.0))
			Expect(m.NumCycles).To(Equal(100.0))
			Expect(m.IPC).To(Equal(0.5))
			Expect(m.L1DMisses).To(Equal(3.0))
			Expect(m.L1DAccesses).To(Equal(30.0))
			Expect(m.BPCondMissRate()).To(Equal(0.1))
		})

		It("should default every absent field to NaN", func() {
			m := metrics.Extract(stats.Stats{})
			Expect(math.IsNaN(m.SimSeconds)).To(BeTrue())
			Expect(math.IsNaN(m.CPI)).To(BeTrue())
			Expect(math.IsNaN(m.L2MissRate)).To(BeTrue())
			Expect(math.IsNaN(m.BPCondMissRate())).To(BeTrue())
		})
	})

	Describe("Sum", func() {
		var a, b metrics.RunMetrics

		BeforeEach(func() {
			a = metrics.RunMetrics{
				SimInsts: 50, NumCycles: 100, IPC: 0.5, CPI: 2,
				L1IAccesses: 100, L1IMisses: 10,
				L1DAccesses: 40, L1DMisses: 4,
				L2Accesses: 10, L2Misses: 5,
				BPCondPredicted: 20, BPCondIncorrect: 2,
			}
			b = metrics.RunMetrics{
				SimInsts: 100, NumCycles: 200, IPC: 0.5, CPI: 2,
				L1IAccesses: 300, L1IMisses: 10,
				L1DAccesses: 60, L1DMisses: 16,
				L2Accesses: 30, L2Misses: 5,
				BPCondPredicted: 80, BPCondIncorrect: 3,
			}
		})

		It("should sum counters and recompute IPC from the sums", func() {
			s := metrics.Sum(a, b)
			Expect(s.NumCycles).To(Equal(300.0))
			Expect(s.SimInsts).To(Equal(150.0))
			Expect(s.IPC).To(Equal(0.5))
			Expect(s.CPI).To(Equal(2.0))
		})

		It("should weigh miss rates by accesses rather than average them", func() {
			s := metrics.Sum(a, b)
			// Per-run rates are 0.1 and 1/30; their mean would be ~0.0667.
			Expect(s.L1IMissRate).To(Equal(20.0 / 400.0))
			Expect(s.L1DMissRate).To(Equal(20.0 / 100.0))
			Expect(s.L2MissRate).To(Equal(10.0 / 40.0))
			Expect(s.BPCondMissRate()).To(Equal(5.0 / 100.0))
		})

		It("should differ from the mean of per-run IPCs for unequal runs", func() {
			a.SimInsts, a.NumCycles, a.IPC = 100, 100, 1.0
			b.SimInsts, b.NumCycles, b.IPC = 100, 400, 0.25

			s := metrics.Sum(a, b)
			Expect(s.IPC).To(Equal(0.4))
			Expect(s.IPC).NotTo(Equal((a.IPC + b.IPC) / 2))
		})

		It("should propagate NaN without failing", func() {
			a.NumCycles = math.NaN()
			s := metrics.Sum(a, b)
			Expect(math.IsNaN(s.NumCycles)).To(BeTrue())
			Expect(math.IsNaN(s.IPC)).To(BeTrue())
			Expect(math.IsNaN(s.CPI)).To(BeTrue())
			Expect(s.SimInsts).To(Equal(150.0))
		})

		It("should yield NaN rates when there were no accesses", func() {
			a.L2Accesses, a.L2Misses = 0, 0
			b.L2Accesses, b.L2Misses = 0, 0
			s := metrics.Sum(a, b)
			Expect(math.IsNaN(s.L2MissRate)).To(BeTrue())
		})
	})

	Describe("SumAll", func() {
		It("should report false for no runs", func() {
			_, ok := metrics.SumAll()
			Expect(ok).To(BeFalse())
		})

		It("should return a single run unchanged", func() {
			r := metrics.RunMetrics{SimInsts: 7, NumCycles: 14, IPC: 0.5}
			s, ok := metrics.SumAll(r)
			Expect(ok).To(BeTrue())
			Expect(s).To(Equal(r))
		})

		It("should fold three runs", func() {
			r := metrics.RunMetrics{SimInsts: 10, NumCycles: 20}
			s, ok := metrics.SumAll(r, r, r)
			Expect(ok).To(BeTrue())
			Expect(s.SimInsts).To(Equal(30.0))
			Expect(s.NumCycles).To(Equal(60.0))
			Expect(s.IPC).To(Equal(0.5))
		})
	})

	Describe("Value", func() {
		It("should look up metrics by name", func() {
			m := metrics.RunMetrics{NumCycles: 9, IPC: 1.5,
				BPCondPredicted: 4, BPCondIncorrect: 1}
			Expect(m.Value(metrics.MetricNumCycles)).To(Equal(9.0))
			Expect(m.Value(metrics.MetricIPC)).To(Equal(1.5))
			Expect(m.Value(metrics.MetricBPCondMissRate)).To(Equal(0.25))
			Expect(math.IsNaN(m.Value("bogus"))).To(BeTrue())
		})
	})
})
