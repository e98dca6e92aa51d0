package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"

	"github.com/they4kman/experimentation/machine-learning/pushgp/gp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/interp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

func init() {
	gomega.RegisterFailHandler(Fail)
}

func Test(t *testing.T) {
	RunSpecs(t, "Config")
}

const sample = `
[run]
population-size = 500
mutation-percent = 30
crossover-percent = 60
node-selection-mode = "size-tournament"
seed = 7

[interpreter]
instruction-set = "(registered.float input.makeinputs1)"
min-random-float = -1.0
max-random-float = 1.0
custom-stacks = ["vector"]

[problem]
kind = "float-regression"
target = "x*x"
inputs = [[0.5], [1.5], [2.0]]
`

var _ = Describe("Config", func() {
	It("falls back to the defaults", func() {
		c, err := Parse(nil)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(c).To(gomega.Equal(Default()))
		gomega.Expect(*c.Params()).To(gomega.Equal(*gp.DefaultParams()))
	})

	It("layers a file over the defaults", func() {
		c, err := Parse([]byte(sample))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(*c.Params()).To(MatchFields(IgnoreExtras, Fields{
			"PopulationSize":    gomega.Equal(500),
			"MutationPercent":   gomega.Equal(30),
			"CrossoverPercent":  gomega.Equal(60),
			"NodeSelectionMode": gomega.Equal(gp.NodeSelectionSizeTournament),
			"Seed":              gomega.Equal(int64(7)),
			"TournamentSize":    gomega.Equal(gp.DefaultParams().TournamentSize),
		}))
		gomega.Expect(c.Settings()).To(MatchFields(IgnoreExtras, Fields{
			"MinRandomFloat":   gomega.Equal(-1.0),
			"MaxRandomFloat":   gomega.Equal(1.0),
			"MinRandomInteger": gomega.Equal(interp.DefaultSettings().MinRandomInteger),
			"Seed":             gomega.Equal(int64(7)),
		}))
		gomega.Expect(c.Problem.Inputs).To(gomega.Equal([][]float64{{0.5}, {1.5}, {2.0}}))
	})

	It("builds the interpreter and problem it describes", func() {
		c, err := Parse([]byte(sample))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		in, err := c.NewInterpreter()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(in.StackNames()).To(gomega.ContainElement("vector"))
		_, ok := in.Instruction("input.in0")
		gomega.Expect(ok).To(gomega.BeTrue())

		p, err := c.NewProblem()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(p.Cases()).To(gomega.HaveLen(3))
		gomega.Expect(p.Cases()[2].Expected).To(gomega.Equal(program.Float(4)))
	})

	It("records whether the seed was given", func() {
		c, err := Parse([]byte("[run]\nseed = 1\n"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(c.Run.Seed).To(gomega.Equal(gp.DefaultParams().Seed))
		gomega.Expect(c.SeedDefined).To(gomega.BeTrue())

		c, err = Parse([]byte("[run]\npopulation-size = 10\n"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(c.SeedDefined).To(gomega.BeFalse())
		gomega.Expect(Default().SeedDefined).To(gomega.BeFalse())
	})

	It("replaces the default target with explicit cases", func() {
		c, err := Parse([]byte(`
[[problem.case]]
inputs = [1.0]
expected = 3.0

[[problem.case]]
inputs = [2.0]
expected = 5.0
`))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(c.Problem.Target).To(gomega.BeEmpty())

		p, err := c.NewProblem()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(p.Cases()).To(gomega.HaveLen(2))
		gomega.Expect(p.Cases()[1].Expected).To(gomega.Equal(program.Integer(5)))
	})

	It("rejects invalid files", func() {
		_, err := Parse([]byte("[run]\nmutation-percent = 80\ncrossover-percent = 30\n"))
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("more than 100")))

		_, err = Parse([]byte("[run]\npopulation = 10\n"))
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("unknown key")))

		_, err = Parse([]byte("[problem]\nkind = \"sorting\"\n"))
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("unknown kind")))

		_, err = Parse([]byte("[run\n"))
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("parse error")))
	})

	It("surfaces unknown instructions when building the interpreter", func() {
		c, err := Parse([]byte("[interpreter]\ninstruction-set = \"(integer.+ frobnicate)\"\n"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = c.NewInterpreter()
		gomega.Expect(errors.Is(err, interp.ErrUnknownInstruction)).To(gomega.BeTrue())
	})

	Describe("Load", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "pushgp-config")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("reads a file", func() {
			path := filepath.Join(dir, "pushgp.toml")
			gomega.Expect(os.WriteFile(path, []byte(sample), 0o644)).To(gomega.Succeed())

			c, err := Load(path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(c.Path).To(gomega.Equal(path))
			gomega.Expect(c.Run.PopulationSize).To(gomega.Equal(500))
		})

		It("reports missing files", func() {
			_, err := Load(filepath.Join(dir, "missing.toml"))
			gomega.Expect(errors.Is(err, os.ErrNotExist)).To(gomega.BeTrue())
		})
	})
})
