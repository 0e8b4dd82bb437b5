package simout_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m5sweep/simout"
)

var _ = Describe("Exit cause", func() {
	Describe("ParseExitCause", func() {
		It("should take the last matching line", func() {
			log := strings.Join([]string{
				"gem5 Simulator System.  https://www.gem5.org",
				"Exiting @ tick 1000 because a thread reached the max instruction count",
				"some program output",
				"  Exiting @ tick 2000 because exiting with last active thread context  ",
				"trailing noise",
			}, "\n")

			cause, err := simout.ParseExitCause(strings.NewReader(log))
			Expect(err).NotTo(HaveOccurred())
			Expect(cause).To(Equal("exiting with last active thread context"))
		})

		It("should return an empty cause without a matching line", func() {
			cause, err := simout.ParseExitCause(strings.NewReader("Exiting soon\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(cause).To(BeEmpty())
		})

		It("should ignore lines with a non-numeric tick", func() {
			cause, err := simout.ParseExitCause(
				strings.NewReader("Exiting @ tick abc because done\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(cause).To(BeEmpty())
		})
	})

	Describe("ReadExitCause", func() {
		It("should return an empty cause for a missing log", func() {
			dir, err := os.MkdirTemp("", "simout-test-*")
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = os.RemoveAll(dir) }()

			cause, err := simout.ReadExitCause(filepath.Join(dir, simout.FileName))
			Expect(err).NotTo(HaveOccurred())
			Expect(cause).To(BeEmpty())
		})

		It("should read a log from disk", func() {
			dir, err := os.MkdirTemp("", "simout-test-*")
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = os.RemoveAll(dir) }()

			path := filepath.Join(dir, simout.FileName)
			Expect(os.WriteFile(path,
				[]byte("Exiting @ tick 42 because user interrupt received\n"), 0644)).
				To(Succeed())

			cause, err := simout.ReadExitCause(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cause).To(Equal("user interrupt received"))
		})
	})

	DescribeTable("IsComplete",
		func(cause string, complete bool) {
			Expect(simout.IsComplete(cause)).To(Equal(complete))
		},
		Entry("instruction cap", "a thread reached the max instruction count", false),
		Entry("instruction cap, upper case", "A thread reached the MAX INSTRUCTION COUNT", false),
		Entry("interrupt", "user interrupt received", false),
		Entry("natural exit", "exiting with last active thread context", true),
		Entry("any other cause", "m5_exit instruction encountered", true),
		Entry("empty", "", false),
	)

	Describe("Join and AllComplete", func() {
		parts := []simout.Part{
			{Label: "enc", Cause: "exiting with last active thread context"},
			{Label: "dec", Cause: "a thread reached the max instruction count"},
		}

		It("should render labelled causes", func() {
			Expect(simout.Join(parts...)).To(Equal(
				"enc: exiting with last active thread context | " +
					"dec: a thread reached the max instruction count"))
		})

		It("should require every part to be complete", func() {
			Expect(simout.AllComplete(parts...)).To(BeFalse())
			Expect(simout.AllComplete(parts[0])).To(BeTrue())
			Expect(simout.AllComplete()).To(BeFalse())
		})
	})
})
