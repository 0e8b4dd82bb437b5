package sysconfig_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m5sweep/sysconfig"
)

var _ = Describe("Builder", func() {
	It("should build the A7 preset by default", func() {
		s, err := sysconfig.MakeBuilder().Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(sysconfig.A7()))
	})

	It("should set both L1 sizes", func() {
		s, err := sysconfig.MakeBuilder().WithL1Size("16kB").Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.L1I.Size).To(Equal(16 * sysconfig.KB))
		Expect(s.L1D.Size).To(Equal(16 * sysconfig.KB))
		Expect(s.L2.Size).To(Equal(512 * sysconfig.KB))
	})

	It("should let split sizes override the shared size", func() {
		s, err := sysconfig.MakeBuilder().
			WithL1Size("8kB").
			WithL1DSize("4kB").
			Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.L1I.Size).To(Equal(8 * sysconfig.KB))
		Expect(s.L1D.Size).To(Equal(4 * sysconfig.KB))
	})

	It("should apply every sweep label to both presets", func() {
		for _, preset := range sysconfig.PresetNames() {
			for _, label := range []string{"2kB", "4kB", "8kB", "16kB", "32kB"} {
				_, err := sysconfig.MakeBuilder().
					WithPreset(preset).
					WithL1Size(label).
					Build()
				Expect(err).NotTo(HaveOccurred(), preset+" "+label)
			}
		}
	})

	It("should apply run controls", func() {
		s, err := sysconfig.MakeBuilder().
			WithPreset("a15").
			WithClock("2000MHz").
			WithMemSize("4GB").
			WithL2Size("1MB").
			WithL1Assoc(4).
			WithMaxInsts(1000).
			WithProgress(0).
			WithBranchPredictor("TournamentBP", 512).
			Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("a15"))
		Expect(s.Clock).To(Equal("2GHz"))
		Expect(s.Memory.Size).To(Equal(4 * sysconfig.GB))
		Expect(s.L2.Size).To(Equal(sysconfig.MB))
		Expect(s.L1I.Assoc).To(Equal(4))
		Expect(s.L1D.Assoc).To(Equal(4))
		Expect(s.MaxInsts).To(Equal(uint64(1000)))
		Expect(s.ProgressHz).To(BeZero())
		Expect(s.BranchPred.BTBEntries).To(Equal(512))
	})

	It("should keep the preset progress when not overridden", func() {
		s, err := sysconfig.MakeBuilder().Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ProgressHz).To(Equal(10))
	})

	It("should not mutate the builder it was derived from", func() {
		base := sysconfig.MakeBuilder().WithL1Size("16kB")
		_ = base.WithL1Size("2kB")

		s, err := base.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.L1D.Size).To(Equal(16 * sysconfig.KB))
	})

	Describe("from a loaded system", func() {
		var sys *sysconfig.System

		BeforeEach(func() {
			sys = sysconfig.A15()
			sys.Name = "a15-big-l2"
			sys.L2.Size = 2 * sysconfig.MB
			sys.MaxInsts = 5000
		})

		It("should keep the loaded values", func() {
			s, err := sysconfig.MakeBuilder().WithBase(sys).Build()
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(sys))
		})

		It("should apply overrides on top of it", func() {
			s, err := sysconfig.MakeBuilder().
				WithBase(sys).
				WithL1Size("8kB").
				WithMaxInsts(7).
				Build()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Name).To(Equal("a15-big-l2"))
			Expect(s.L2.Size).To(Equal(2 * sysconfig.MB))
			Expect(s.L1I.Size).To(Equal(8 * sysconfig.KB))
			Expect(s.L1D.Size).To(Equal(8 * sysconfig.KB))
			Expect(s.MaxInsts).To(Equal(uint64(7)))
		})

		It("should not share state with the loaded system", func() {
			b := sysconfig.MakeBuilder().WithBase(sys)
			sys.L2.Size = 4 * sysconfig.MB

			s, err := b.WithL1Size("4kB").Build()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.L2.Size).To(Equal(2 * sysconfig.MB))
			Expect(sys.L1I.Size).NotTo(Equal(4 * sysconfig.KB))
		})

		It("should validate the result", func() {
			_, err := sysconfig.MakeBuilder().
				WithBase(sys).
				WithL1Size("3kB").
				Build()
			Expect(err).To(MatchError(sysconfig.ErrInvalidConfig))
		})
	})

	DescribeTable("should reject invalid overrides",
		func(b sysconfig.Builder) {
			_, err := b.Build()
			Expect(err).To(MatchError(sysconfig.ErrInvalidConfig))
		},
		Entry("unknown preset", sysconfig.MakeBuilder().WithPreset("m2")),
		Entry("bad size", sysconfig.MakeBuilder().WithL1Size("big")),
		Entry("uneven size", sysconfig.MakeBuilder().WithL1Size("3kB")),
		Entry("bad clock", sysconfig.MakeBuilder().WithClock("1 GigaHertz")),
	)
})
