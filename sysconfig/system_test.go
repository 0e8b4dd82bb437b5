package sysconfig_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m5sweep/sysconfig"
)

var _ = Describe("System", func() {
	Describe("Presets", func() {
		It("should describe the A7 core", func() {
			s := sysconfig.A7()
			Expect(s.Validate()).To(Succeed())

			Expect(s.Clock).To(Equal("1GHz"))
			Expect(s.CacheLineSize).To(Equal(32))
			Expect(s.CPU.Model).To(Equal("DerivO3CPU"))
			Expect(s.CPU.DecodeWidth).To(Equal(2))
			Expect(s.CPU.IssueWidth).To(Equal(4))
			Expect(s.CPU.CommitWidth).To(Equal(2))
			Expect(s.CPU.NumROBEntries).To(Equal(2))
			Expect(s.CPU.LQEntries).To(Equal(8))
			Expect(s.BranchPred).To(Equal(sysconfig.BranchPredictor{
				Type: "BiModeBP", BTBEntries: 256,
			}))
			Expect(s.L1I.Size).To(Equal(32 * sysconfig.KB))
			Expect(s.L1I.ReadOnly).To(BeTrue())
			Expect(s.L1D.ReadOnly).To(BeFalse())
			Expect(s.L1D.MSHRs).To(Equal(8))
			Expect(s.L2.Size).To(Equal(512 * sysconfig.KB))
			Expect(s.L2.Assoc).To(Equal(8))
			Expect(s.Memory.Size).To(Equal(2 * sysconfig.GB))
			Expect(s.ProgressHz).To(Equal(10))
			Expect(s.MaxInsts).To(BeZero())
		})

		It("should describe a valid A15 core", func() {
			s := sysconfig.A15()
			Expect(s.Validate()).To(Succeed())
			Expect(s.CacheLineSize).To(Equal(64))
			Expect(s.BranchPred.Type).To(Equal("TournamentBP"))
		})

		It("should look presets up case-insensitively", func() {
			s, err := sysconfig.Preset("A15")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Name).To(Equal("a15"))

			_, err = sysconfig.Preset("m2")
			Expect(err).To(HaveOccurred())
			Expect(sysconfig.PresetNames()).To(Equal([]string{"a15", "a7"}))
		})

		It("should hand out independent copies", func() {
			a := sysconfig.A7()
			a.L1I.Size = sysconfig.KB
			Expect(sysconfig.A7().L1I.Size).To(Equal(32 * sysconfig.KB))
		})
	})

	Describe("Cache geometry", func() {
		It("should derive sets from size, ways and line size", func() {
			g, err := sysconfig.A7().L1D.Geometry(32)
			Expect(err).NotTo(HaveOccurred())
			Expect(g).To(Equal(sysconfig.Geometry{NumSets: 512, Assoc: 2, LineSize: 32}))
			Expect(g.Blocks()).To(Equal(1024))

			g, err = sysconfig.A7().L2.Geometry(32)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.NumSets).To(Equal(2048))
		})

		It("should build a directory of matching capacity", func() {
			g, err := sysconfig.A7().L1D.Geometry(32)
			Expect(err).NotTo(HaveOccurred())

			dir := g.Directory()
			Expect(dir.GetSets()).To(HaveLen(512))
			Expect(dir.TotalSize()).To(Equal(uint64(32 * sysconfig.KB)))
		})

		It("should validate a large L2 without building its directory", func() {
			s := sysconfig.A7()
			s.L2.Size = 512 * sysconfig.MB
			s.L2.Assoc = 8

			start := time.Now()
			Expect(s.Validate()).To(Succeed())
			Expect(time.Since(start)).To(BeNumerically("<", 100*time.Millisecond))
		})

		It("should reject sizes that do not split into whole sets", func() {
			c := sysconfig.Cache{Size: 3 * sysconfig.KB, Assoc: 2}
			_, err := c.Geometry(64)
			Expect(err).To(HaveOccurred())

			c = sysconfig.Cache{Size: 100, Assoc: 2}
			_, err = c.Geometry(32)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Cache footprint", func() {
		// 2kB, 2 ways, 32B lines: 32 sets of 2 blocks.
		l1i := sysconfig.Cache{Size: 2 * sysconfig.KB, Assoc: 2}

		It("should keep a text segment of cache size resident", func() {
			fp, err := l1i.Footprint(32, []sysconfig.Region{
				{Start: 0x10000, Size: 2048},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(fp.Lines).To(Equal(64))
			Expect(fp.SetsUsed).To(Equal(32))
			Expect(fp.Evictions).To(BeZero())
			Expect(fp.Fits()).To(BeTrue())
		})

		It("should count evictions when the text outgrows the cache", func() {
			fp, err := l1i.Footprint(32, []sysconfig.Region{
				{Start: 0x10000, Size: 4096},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(fp.Lines).To(Equal(128))
			Expect(fp.Evictions).To(Equal(64))
			Expect(fp.Fits()).To(BeFalse())
		})

		It("should count shared and partial lines once", func() {
			fp, err := l1i.Footprint(32, []sysconfig.Region{
				{Start: 0x10010, Size: 0x20},
				{Start: 0x10000, Size: 0x40},
				{Start: 0x20000, Size: 0},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(fp.Lines).To(Equal(2))
			Expect(fp.SetsUsed).To(Equal(2))
		})

		It("should reject a cache with a broken geometry", func() {
			c := sysconfig.Cache{Size: 3 * sysconfig.KB, Assoc: 2}
			_, err := c.Footprint(64, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Validate", func() {
		var s *sysconfig.System

		BeforeEach(func() {
			s = sysconfig.A7()
		})

		It("should reject a bad clock", func() {
			s.Clock = "soon"
			Expect(s.Validate()).To(MatchError(sysconfig.ErrInvalidConfig))
		})

		It("should reject a non power-of-two line size", func() {
			s.CacheLineSize = 48
			Expect(s.Validate()).To(MatchError(sysconfig.ErrInvalidConfig))
		})

		It("should reject a fetch buffer wider than a line", func() {
			s.CPU.FetchBufferSize = 64
			Expect(s.Validate()).To(MatchError(sysconfig.ErrInvalidConfig))
		})

		It("should reject a zero pipeline width", func() {
			s.CPU.CommitWidth = 0
			Expect(s.Validate()).To(MatchError(sysconfig.ErrInvalidConfig))
		})

		It("should reject a bad BTB size", func() {
			s.BranchPred.BTBEntries = 100
			Expect(s.Validate()).To(MatchError(sysconfig.ErrInvalidConfig))
		})

		It("should reject an L1 that does not fit the line size", func() {
			s.L1D.Size = 3 * sysconfig.KB
			err := s.Validate()
			Expect(err).To(MatchError(sysconfig.ErrInvalidConfig))
			Expect(err.Error()).To(ContainSubstring("l1d"))
		})

		It("should reject empty memory", func() {
			s.Memory.Size = 0
			Expect(s.Validate()).To(MatchError(sysconfig.ErrInvalidConfig))
		})
	})

	Describe("JSON files", func() {
		var tmpDir string

		BeforeEach(func() {
			var err error
			tmpDir, err = os.MkdirTemp("", "sysconfig-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(tmpDir)
		})

		It("should save and load a system", func() {
			s := sysconfig.A15()
			s.MaxInsts = 5000000
			path := filepath.Join(tmpDir, "config.json")

			Expect(s.Save(path)).To(Succeed())

			loaded, err := sysconfig.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(s))
		})

		It("should write sizes in simulator notation", func() {
			data, err := sysconfig.A7().MarshalIndent()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"size": "32kB"`))
			Expect(string(data)).To(ContainSubstring(`"size": "2GB"`))
			Expect(string(data)).To(ContainSubstring(`"clock": "1GHz"`))
		})

		It("should fail on a missing file", func() {
			_, err := sysconfig.Load(filepath.Join(tmpDir, "nope.json"))
			Expect(err).To(HaveOccurred())
		})

		It("should fail on a bad size", func() {
			path := filepath.Join(tmpDir, "bad.json")
			Expect(os.WriteFile(path, []byte(`{"l1i": {"size": "lots"}}`), 0644)).To(Succeed())
			_, err := sysconfig.Load(path)
			Expect(err).To(HaveOccurred())
		})

		It("should clone without sharing state", func() {
			s := sysconfig.A7()
			c := s.Clone()
			c.L1I.Size = 2 * sysconfig.KB
			c.CPU.FetchWidth = 8
			Expect(s.L1I.Size).To(Equal(32 * sysconfig.KB))
			Expect(s.CPU.FetchWidth).To(Equal(2))
		})
	})
})
