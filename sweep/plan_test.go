package sweep_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m5sweep/sweep"
)

var _ = Describe("Plan", func() {
	DescribeTable("ParseSizeKB",
		func(label string, kb int, ok bool) {
			got, err := sweep.ParseSizeKB(label)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(kb))
		},
		Entry("2kB", "2kB", 2, true),
		Entry("32kB", "32kB", 32, true),
		Entry("lower-case unit", "32kb", 0, false),
		Entry("MB unit", "1MB", 0, false),
		Entry("no number", "kB", 0, false),
		Entry("prefixed", "L1_2kB", 0, false),
	)

	It("should lay out run directories under L1_<label>", func() {
		Expect(sweep.RunDir("/out", "16kB", "dijkstra")).
			To(Equal(filepath.Join("/out", "L1_16kB", "dijkstra")))
	})

	It("should describe the default A15 sweep", func() {
		plan := sweep.DefaultPlan()
		Expect(plan.Validate()).To(Succeed())
		Expect(plan.Apps()).To(Equal([]string{
			"dijkstra", "blowfish_enc", "blowfish_dec", "blowfish_total"}))

		sizes, err := plan.SizesKB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sizes).To(Equal([]int{2, 4, 8, 16, 32}))
	})

	Describe("Validate", func() {
		It("should reject a bad label", func() {
			plan := sweep.DefaultPlan()
			plan.Labels = append(plan.Labels, "64KB")
			Expect(plan.Validate()).NotTo(Succeed())
		})

		It("should reject duplicate labels", func() {
			plan := sweep.DefaultPlan()
			plan.Labels = []string{"2kB", "2kB"}
			Expect(plan.Validate()).NotTo(Succeed())
		})

		It("should reject composites of unknown runs", func() {
			plan := sweep.DefaultPlan()
			plan.Runs = []string{"dijkstra"}
			Expect(plan.Validate()).To(MatchError(ContainSubstring("unknown run")))
		})

		It("should reject an empty plan", func() {
			Expect(sweep.Plan{}.Validate()).NotTo(Succeed())
		})
	})
})
