package interp

import (
	"errors"
	"math/rand"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

func init() {
	RegisterFailHandler(Fail)
}

func Test(t *testing.T) {
	RunSpecs(t, "Interpreter")
}

func run(in *Interpreter, text string) Outcome {
	p, err := in.Parse(text)
	Expect(err).NotTo(HaveOccurred())

	in.ClearStacks()
	outcome, err := in.Execute(p, -1)
	Expect(err).NotTo(HaveOccurred())
	return outcome
}

var _ = Describe("Interpreter", func() {
	var in *Interpreter

	BeforeEach(func() {
		in = New(DefaultSettings())
	})

	DescribeTable("integer results",
		func(text string, expected []int64) {
			run(in, text)
			if len(expected) == 0 {
				Expect(in.Int.Items()).To(BeEmpty())
			} else {
				Expect(in.Int.Items()).To(Equal(expected))
			}
		},
		Entry("addition", "(2 3 integer.+)", []int64{5}),
		Entry("subtraction takes second minus top", "(2 3 integer.-)", []int64{-1}),
		Entry("division", "(7 2 integer./)", []int64{3}),
		Entry("modulo", "(7 2 integer.%)", []int64{1}),
		Entry("division by zero pushes nothing", "(5 0 integer./)", nil),
		Entry("modulo by zero pushes nothing", "(5 0 integer.%)", nil),
		Entry("instruction before its operands sees empty stacks", "(integer.+ 2 3)", []int64{2, 3}),
		Entry("missing operand is left alone", "(1 integer.+)", []int64{1}),
		Entry("pop on empty stack", "(integer.pop)", nil),
		Entry("dup", "(5 integer.dup integer.*)", []int64{25}),
		Entry("swap", "(1 2 integer.swap)", []int64{2, 1}),
		Entry("rot", "(1 2 3 integer.rot)", []int64{2, 3, 1}),
		Entry("yank", "(1 2 3 1 integer.yank)", []int64{1, 3, 2}),
		Entry("yankdup", "(1 2 3 2 integer.yankdup)", []int64{1, 2, 3, 1}),
		Entry("shove", "(1 2 3 2 integer.shove)", []int64{3, 1, 2}),
		Entry("shove clamps deep indices", "(1 2 3 99 integer.shove)", []int64{3, 1, 2}),
		Entry("stackdepth", "(4 5 integer.stackdepth)", []int64{4, 5, 2}),
		Entry("negative power fails", "(2 -1 integer.pow)", nil),
		Entry("power", "(2 10 integer.pow)", []int64{1024}),
		Entry("power stays exact past float precision", "(3 35 integer.pow)", []int64{50031545098999707}),
		Entry("power overflow pushes nothing", "(2 63 integer.pow)", nil),
		Entry("power of a negative base", "(-2 63 integer.pow)", []int64{-9223372036854775808}),
		Entry("addition overflow pushes nothing", "(9223372036854775807 1 integer.+)", nil),
		Entry("addition underflow pushes nothing", "(-9223372036854775808 -1 integer.+)", nil),
		Entry("addition at the bounds", "(9223372036854775807 -1 integer.+)", []int64{9223372036854775806}),
		Entry("subtraction underflow pushes nothing", "(-9223372036854775808 1 integer.-)", nil),
		Entry("subtraction overflow pushes nothing", "(0 -9223372036854775808 integer.-)", nil),
		Entry("multiplication overflow pushes nothing", "(4611686018427387904 4 integer.*)", nil),
		Entry("multiplication of the minimum by -1 pushes nothing", "(-9223372036854775808 -1 integer.*)", nil),
		Entry("multiplication by -1", "(9223372036854775807 -1 integer.*)", []int64{-9223372036854775807}),
		Entry("fromboolean", "(true integer.fromboolean)", []int64{1}),
		Entry("fromfloat truncates", "(2.75 integer.fromfloat)", []int64{2}),
		Entry("nested programs run in order", "(1 (2 (3)) 4)", []int64{1, 2, 3, 4}),
		Entry("exec.k", "(exec.k 1 2)", []int64{1}),
		Entry("exec.s", "(exec.s 1 2 3)", []int64{1, 3, 2, 3}),
		Entry("exec.if true", "(true exec.if 1 2)", []int64{1}),
		Entry("exec.if false", "(false exec.if 1 2)", []int64{2}),
		Entry("exec.when false", "(false exec.when 1 2)", []int64{2}),
		Entry("exec.do*range", "(0 3 exec.do*range exec.noop)", []int64{0, 1, 2, 3}),
		Entry("exec.do*range downwards", "(2 0 exec.do*range exec.noop)", []int64{2, 1, 0}),
		Entry("exec.do*count", "(4 exec.do*count exec.noop)", []int64{0, 1, 2, 3}),
		Entry("exec.do*times", "(3 exec.do*times (2))", []int64{2, 2, 2}),
		Entry("code.do", "(2 3 code.quote integer.+ code.do)", []int64{5}),
		Entry("code.do*times", "(code.quote (7) 2 code.do*times)", []int64{7, 7}),
		Entry("code.size", "(code.quote (1 (2 3)) code.size)", []int64{5}),
		Entry("code.length", "(code.quote (1 (2 3)) code.length)", []int64{2}),
		Entry("code.position", "(code.quote 2 code.quote (1 2 3) code.position)", []int64{1}),
		Entry("code.nth wraps", "(code.quote (4 5 6) 4 code.nth code.do*)", []int64{5}),
		Entry("code.extract", "(code.quote (1 (2 3)) 3 code.extract code.do*)", []int64{2}),
	)

	DescribeTable("float results",
		func(text string, expected []float64) {
			run(in, text)
			if len(expected) == 0 {
				Expect(in.Float.Items()).To(BeEmpty())
			} else {
				Expect(in.Float.Items()).To(Equal(expected))
			}
		},
		Entry("multiplication", "(1.5 2.0 float.*)", []float64{3}),
		Entry("division", "(3.0 2.0 float./)", []float64{1.5}),
		Entry("division by zero pushes nothing", "(3.0 0.0 float./)", nil),
		Entry("ln of a negative pushes nothing", "(-1.0 float.ln)", nil),
		Entry("frominteger", "(3 float.frominteger)", []float64{3}),
	)

	DescribeTable("boolean results",
		func(text string, expected []bool) {
			run(in, text)
			Expect(in.Bool.Items()).To(Equal(expected))
		},
		Entry("less than", "(1 2 integer.<)", []bool{true}),
		Entry("greater than", "(1 2 integer.>)", []bool{false}),
		Entry("integer equality", "(2 2 integer.=)", []bool{true}),
		Entry("and", "(true false boolean.and)", []bool{false}),
		Entry("xor", "(true false boolean.xor)", []bool{true}),
		Entry("code.atom", "(code.quote 1 code.atom)", []bool{true}),
		Entry("code.null", "(code.quote () code.null)", []bool{true}),
		Entry("code.contains", "(code.quote (1 (2 3)) code.quote 3 code.contains)", []bool{true}),
		Entry("code.member", "(code.quote 2 code.quote (1 2) code.member)", []bool{true}),
		Entry("code.=", "(code.quote (1 2) code.quote (1 2) code.=)", []bool{true}),
	)

	It("pushes unknown names onto the name stack", func() {
		run(in, "(foo 1 bar)")
		Expect(in.Name.Items()).To(Equal([]string{"foo", "bar"}))
		Expect(in.Int.Items()).To(Equal([]int64{1}))
	})

	It("quotes the next name instead of executing it", func() {
		Expect(in.Define("double", func(in *Interpreter) {
			if v, ok := in.Int.Pop(); ok {
				in.Int.Push(v * 2)
			}
		})).To(Succeed())

		run(in, "(3 name.quote double double)")
		Expect(in.Name.Items()).To(Equal([]string{"double"}))
		Expect(in.Int.Items()).To(Equal([]int64{6}))
	})

	It("resumes after a yield", func() {
		outcome := run(in, "(1 exec.yield 2)")
		Expect(outcome.Status).To(Equal(StatusYielded))
		Expect(in.Int.Items()).To(Equal([]int64{1}))

		outcome, err := in.Run(-1)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Status).To(Equal(StatusStopped))
		Expect(in.Int.Items()).To(Equal([]int64{1, 2}))
	})

	It("stops at the step budget", func() {
		p, err := in.Parse("(1 2 3)")
		Expect(err).NotTo(HaveOccurred())

		outcome, err := in.Execute(p, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(Outcome{Steps: 2, Status: StatusStopped}))
		Expect(in.Int.Items()).To(Equal([]int64{1}))
		Expect(in.Exec.Size()).To(Equal(2))
	})

	It("bounds runaway recursion with the step budget", func() {
		p, err := in.Parse("(exec.y (1 integer.pop))")
		Expect(err).NotTo(HaveOccurred())

		outcome, err := in.Execute(p, 500)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Steps).To(Equal(500))
	})

	It("produces identical stacks for repeated executions from cleared stacks", func() {
		text := "(1 2.5 true (3 integer.dup code.quote (foo 4) exec.s 5 6 7) 0 3 exec.do*range (integer.* name.quote bar))"
		run(in, text)
		first := in.DumpStacks()
		Expect(first).NotTo(BeEmpty())

		run(in, text)
		Expect(in.DumpStacks()).To(Equal(first))
	})

	It("leaves stacks intact between executions", func() {
		run(in, "(1 2)")
		p, _ := in.Parse("(integer.+)")
		_, err := in.Execute(p, -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(in.Int.Items()).To(Equal([]int64{3}))
	})

	It("looks up instructions case-insensitively by default", func() {
		run(in, "(2 3 INTEGER.+)")
		Expect(in.Int.Items()).To(Equal([]int64{5}))
	})

	It("treats differently cased names as data when case-sensitive", func() {
		settings := DefaultSettings()
		settings.CaseSensitive = true
		in = New(settings)

		run(in, "(2 3 INTEGER.+)")
		Expect(in.Int.Items()).To(Equal([]int64{2, 3}))
		Expect(in.Name.Items()).To(Equal([]string{"INTEGER.+"}))
	})

	It("rejects conflicting instruction definitions", func() {
		err := in.Define("integer.+", func(*Interpreter) {})
		Expect(errors.Is(err, ErrConflictingInstruction)).To(BeTrue())

		Expect(in.Define("frob", func(*Interpreter) {})).To(Succeed())
		err = in.Define("frob", func(*Interpreter) {})
		Expect(errors.Is(err, ErrConflictingInstruction)).To(BeTrue())
	})

	It("returns the existing instruction for a repeated identity", func() {
		triple := func(in *Interpreter) {
			if v, ok := in.Int.Pop(); ok {
				in.Int.Push(v * 3)
			}
		}

		first, err := in.DefineAs("triple", "triple-v1", triple)
		Expect(err).NotTo(HaveOccurred())
		again, err := in.DefineAs("TRIPLE", "triple-v1", triple)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(BeIdenticalTo(first))

		_, err = in.DefineAs("triple", "triple-v2", triple)
		Expect(errors.Is(err, ErrConflictingInstruction)).To(BeTrue())
		_, err = in.DefineAs("integer.+", "integer.+", triple)
		Expect(errors.Is(err, ErrConflictingInstruction)).To(BeTrue())

		run(in, "(4 triple)")
		Expect(in.Int.Items()).To(Equal([]int64{12}))
	})

	It("refuses code larger than the point limit", func() {
		settings := DefaultSettings()
		settings.MaxPointsInProgram = 4
		in = New(settings)

		run(in, "(code.quote (1 2) code.quote (3 4) code.append)")
		Expect(in.Code.Size()).To(Equal(1))
	})

	It("reports the stacks it holds", func() {
		run(in, "(2 3 integer.+ true)")
		Expect(in.DumpStacks()).To(ContainSubstring("integer: [5]"))
		Expect(in.DumpStacks()).To(ContainSubstring("boolean: [true]"))
	})

	Describe("custom stacks", func() {
		It("registers a stack with its instruction family", func() {
			Expect(in.AddStack("vector")).To(Succeed())
			Expect(in.StackNames()).To(ContainElement("vector"))

			_, ok := in.Instruction("vector.dup")
			Expect(ok).To(BeTrue())

			vector, ok := in.CustomStack("vector")
			Expect(ok).To(BeTrue())

			in.ClearStacks()
			vector.Push(program.Integer(1))
			p, err := in.Parse("(vector.dup)")
			Expect(err).NotTo(HaveOccurred())
			_, err = in.Execute(p, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(vector.Items()).To(Equal([]program.Atom{program.Integer(1), program.Integer(1)}))
		})

		It("rejects duplicate stacks", func() {
			err := in.AddStack("integer")
			Expect(errors.Is(err, ErrStackExists)).To(BeTrue())
		})
	})

	Describe("inputs", func() {
		It("defines input instructions", func() {
			Expect(in.SetInstructionText("(input.makeinputs2)")).To(Succeed())

			p, err := in.Parse("(input.in1 input.in0)")
			Expect(err).NotTo(HaveOccurred())

			in.ClearStacks()
			in.SetInputs(program.Integer(7), program.Integer(9))
			_, err = in.Execute(p, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Int.Items()).To(Equal([]int64{9, 7}))
		})

		It("pushes every input", func() {
			in.ClearStacks()
			in.SetInputs(program.Integer(1), program.Boolean(true), program.Integer(2))
			p, _ := in.Parse("(input.inall)")
			_, err := in.Execute(p, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Int.Items()).To(Equal([]int64{1, 2}))
			Expect(in.Bool.Items()).To(Equal([]bool{true}))
		})
	})

	Describe("SetInstructions", func() {
		It("rejects unknown instructions", func() {
			err := in.SetInstructionText("(integer.+ frobnicate)")
			Expect(errors.Is(err, ErrUnknownInstruction)).To(BeTrue())
		})

		It("names the kind of a rejected list entry", func() {
			err := in.SetInstructionText("(integer.+ (integer.-))")
			Expect(errors.Is(err, ErrUnknownInstruction)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("program (integer.-)")))
		})

		It("rejects unknown stacks", func() {
			err := in.SetInstructionText("(registered.nosuch)")
			Expect(errors.Is(err, ErrUnknownInstruction)).To(BeTrue())
		})

		It("expands registered stacks", func() {
			Expect(in.SetInstructionText("(registered.integer)")).To(Succeed())

			rng := rand.New(rand.NewSource(3))
			for i := 0; i < 200; i++ {
				switch a := in.RandomAtom(rng).(type) {
				case program.Instruction:
					Expect(string(a)).To(HavePrefix("integer."))
				case program.Integer:
					Expect(int64(a)).To(BeNumerically(">=", -10))
					Expect(int64(a)).To(BeNumerically("<=", 10))
				default:
					Fail("unexpected atom " + a.String())
				}
			}
		})
	})

	Describe("RandomCode", func() {
		BeforeEach(func() {
			Expect(in.SetInstructionText("(true false integer.+ integer.-)")).To(Succeed())
		})

		It("produces programs of exactly the requested size", func() {
			rng := rand.New(rand.NewSource(1))
			total := 0
			for i := 0; i < 1000; i++ {
				p := in.RandomCode(rng, 10)
				Expect(p.Size()).To(Equal(10))
				total += p.Size()
			}
			Expect(float64(total) / 1000).To(BeNumerically("~", 10, 0.5))
		})

		It("only uses atoms from the instruction set", func() {
			rng := rand.New(rand.NewSource(2))
			allowed := map[string]bool{"true": true, "false": true, "integer.+": true, "integer.-": true}
			in.RandomCode(rng, 40).Walk(func(_ int, a program.Atom) {
				if _, ok := a.(*program.Program); !ok {
					Expect(allowed).To(HaveKey(a.String()))
				}
			})
		})

		It("is deterministic for a seed", func() {
			a := in.RandomCode(rand.New(rand.NewSource(9)), 25)
			b := in.RandomCode(rand.New(rand.NewSource(9)), 25)
			Expect(program.Equal(a, b)).To(BeTrue())
		})

		It("keeps the size with no active instructions", func() {
			empty := New(DefaultSettings())
			Expect(empty.RandomCode(rand.New(rand.NewSource(1)), 5).Size()).To(Equal(5))
		})
	})

	Describe("Fork", func() {
		It("shares instructions but not stacks", func() {
			run(in, "(1 2)")
			forked := in.Fork(7)
			Expect(forked.Int.Size()).To(BeZero())

			run(forked, "(2 3 integer.+)")
			Expect(forked.Int.Items()).To(Equal([]int64{5}))
			Expect(in.Int.Items()).To(Equal([]int64{1, 2}))
		})

		It("draws the same constants for the same seed", func() {
			a, b := in.Fork(42), in.Fork(42)
			run(a, "(integer.rand integer.rand float.rand)")
			run(b, "(integer.rand integer.rand float.rand)")
			Expect(a.Int.Items()).To(Equal(b.Int.Items()))
			Expect(a.Float.Items()).To(Equal(b.Float.Items()))
		})
	})
})

func BenchmarkInterpreter_Execute(b *testing.B) {
	in := New(DefaultSettings())
	p, err := in.Parse("(0 100 exec.do*range (integer.dup integer.* integer.pop) 3 4 integer.+)")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		in.ClearStacks()
		in.Execute(p, -1)
	}
}

func BenchmarkInterpreter_RandomCode(b *testing.B) {
	in := New(DefaultSettings())
	if err := in.SetInstructionText("(registered.integer registered.boolean registered.exec)"); err != nil {
		b.Fatal(err)
	}
	rng := rand.New(rand.NewSource(0)) // static seed for repeatability

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		in.RandomCode(rng, 50)
	}
}
