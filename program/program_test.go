package program

import (
	"errors"
	"math/rand"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	"github.com/onsi/gomega"
)

func init() {
	gomega.RegisterFailHandler(Fail)
}

func Test(t *testing.T) {
	RunSpecs(t, "Program")
}

// randomProgram builds an arbitrary tree from supported atom kinds.
func randomProgram(rng *rand.Rand, depth int) *Program {
	p := New()
	n := rng.Intn(5)
	for i := 0; i < n; i++ {
		switch rng.Intn(6) {
		case 0:
			p.Append(Integer(rng.Int63n(200) - 100))
		case 1:
			p.Append(Float(float64(rng.Intn(2000)-1000) / 8))
		case 2:
			p.Append(Boolean(rng.Intn(2) == 0))
		case 3:
			p.Append(Name("sym"))
		default:
			if depth > 0 {
				p.Append(randomProgram(rng, depth-1))
			} else {
				p.Append(Integer(0))
			}
		}
	}
	return p
}

func sizeByDefinition(p *Program) int {
	n := 1
	for _, a := range p.Atoms() {
		if sub, ok := a.(*Program); ok {
			n += sizeByDefinition(sub)
		} else {
			n++
		}
	}
	return n
}

var _ = Describe("Program", func() {
	DescribeTable("Parse / String",
		func(text string, expected string, expectedSize int) {
			p, err := Parse(text)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(p.String()).To(gomega.Equal(expected))
			gomega.Expect(p.Size()).To(gomega.Equal(expectedSize))
		},
		Entry("empty text", "", "()", 1),
		Entry("empty program", "()", "()", 1),
		Entry("flat", "(integer.+ 2 3)", "(integer.+ 2 3)", 4),
		Entry("no outer parens", "1 2", "(1 2)", 3),
		Entry("nested", "(1 (2 (3)) 4)", "(1 (2 (3)) 4)", 7),
		Entry("floats keep a point", "(1.0 -2.5 3.)", "(1.0 -2.5 3.0)", 4),
		Entry("booleans", "(true false)", "(true false)", 3),
		Entry("tight parens", "((a)(b))", "((a) (b))", 5),
	)

	It("distinguishes literal kinds", func() {
		p := MustParse("(7 7.5 true foo integer.+ ())")
		kinds := make([]Kind, p.Len())
		for i, a := range p.Atoms() {
			kinds[i] = KindOf(a)
		}
		gomega.Expect(kinds).To(gomega.Equal([]Kind{KindInteger, KindFloat, KindBoolean, KindName, KindName, KindProgram}))
	})

	It("resolves instruction names through the parser", func() {
		ps := Parser{ResolveInstruction: func(tok string) (Instruction, bool) {
			if tok == "INTEGER.+" || tok == "integer.+" {
				return Instruction("integer.+"), true
			}
			return "", false
		}}
		p, err := ps.Parse("(INTEGER.+ 1.5 bar)")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(p.At(0)).To(gomega.Equal(Instruction("integer.+")))
		gomega.Expect(p.At(1)).To(gomega.Equal(Float(1.5)))
		gomega.Expect(p.At(2)).To(gomega.Equal(Name("bar")))
	})

	DescribeTable("malformed text",
		func(text string) {
			_, err := Parse(text)
			var malformed *MalformedProgramError
			gomega.Expect(errors.As(err, &malformed)).To(gomega.BeTrue())
		},
		Entry("unclosed", "(1 2"),
		Entry("unclosed nested", "(1 (2 3)"),
		Entry("stray close", "(1 2))"),
	)

	Describe("global indexing", func() {
		var p *Program

		BeforeEach(func() {
			p = MustParse("(a (b c) d)")
		})

		DescribeTable("Subtree",
			func(index int, expected string) {
				a, ok := p.Subtree(index)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(a.String()).To(gomega.Equal(expected))
			},
			Entry("root", 0, "(a (b c) d)"),
			Entry("first leaf", 1, "a"),
			Entry("nested program", 2, "(b c)"),
			Entry("inside nested", 3, "b"),
			Entry("last of nested", 4, "c"),
			Entry("after nested", 5, "d"),
		)

		It("reports out-of-range indices", func() {
			_, ok := p.Subtree(6)
			gomega.Expect(ok).To(gomega.BeFalse())
			_, ok = p.Subtree(-1)
			gomega.Expect(ok).To(gomega.BeFalse())
			gomega.Expect(p.ReplaceSubtree(6, Integer(1))).To(gomega.BeFalse())
		})

		It("replaces with a deep copy", func() {
			replacement := MustParse("(x y)")
			gomega.Expect(p.ReplaceSubtree(1, replacement)).To(gomega.BeTrue())
			gomega.Expect(p.String()).To(gomega.Equal("((x y) (b c) d)"))

			replacement.Append(Name("z"))
			gomega.Expect(p.String()).To(gomega.Equal("((x y) (b c) d)"))
		})

		It("replaces the root's contents at index 0", func() {
			gomega.Expect(p.ReplaceSubtree(0, Integer(3))).To(gomega.BeTrue())
			gomega.Expect(p.String()).To(gomega.Equal("(3)"))
		})

		It("flattens a nested program into its parent", func() {
			gomega.Expect(p.Flatten(2)).To(gomega.BeTrue())
			gomega.Expect(p.String()).To(gomega.Equal("(a b c d)"))
			gomega.Expect(p.Size()).To(gomega.Equal(5))
		})

		It("does not flatten leaves or the root", func() {
			gomega.Expect(p.Flatten(1)).To(gomega.BeFalse())
			gomega.Expect(p.Flatten(0)).To(gomega.BeFalse())
			gomega.Expect(p.String()).To(gomega.Equal("(a (b c) d)"))
		})

		It("separates leaf and internal points", func() {
			leaves, internals := p.Points()
			gomega.Expect(leaves).To(gomega.Equal([]int{1, 3, 4, 5}))
			gomega.Expect(internals).To(gomega.Equal([]int{0, 2}))
		})
	})

	It("clones deeply", func() {
		p := MustParse("(1 (2 (3)))")
		c := p.Clone()
		c.At(1).(*Program).Append(Integer(9))
		gomega.Expect(p.String()).To(gomega.Equal("(1 (2 (3)))"))
		gomega.Expect(c.String()).To(gomega.Equal("(1 (2 (3) 9))"))
		gomega.Expect(Equal(p, p.Clone())).To(gomega.BeTrue())
		gomega.Expect(Equal(p, c)).To(gomega.BeFalse())
	})

	Describe("properties over random trees", func() {
		rng := rand.New(rand.NewSource(11))
		var programs []*Program
		for i := 0; i < 200; i++ {
			programs = append(programs, randomProgram(rng, 4))
		}

		It("sizes recursively", func() {
			for _, p := range programs {
				gomega.Expect(p.Size()).To(gomega.Equal(sizeByDefinition(p)))
			}
		})

		It("round-trips through text", func() {
			for _, p := range programs {
				parsed, err := Parse(p.String())
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(parsed.Size()).To(gomega.Equal(p.Size()))
				gomega.Expect(Equal(parsed, p)).To(gomega.BeTrue(), p.String())
			}
		})

		It("is unchanged by self-replacement at every index", func() {
			for _, p := range programs {
				for i := 0; i < p.Size(); i++ {
					edited := p.Clone()
					sub, ok := edited.Subtree(i)
					gomega.Expect(ok).To(gomega.BeTrue())
					gomega.Expect(edited.ReplaceSubtree(i, sub)).To(gomega.BeTrue())
					gomega.Expect(Equal(edited, p)).To(gomega.BeTrue())
				}
			}
		})

		It("keeps the size when flattening a leaf", func() {
			for _, p := range programs {
				leaves, _ := p.Points()
				for _, i := range leaves {
					edited := p.Clone()
					edited.Flatten(i)
					gomega.Expect(edited.Size()).To(gomega.Equal(p.Size()))
				}
			}
		})

		It("shrinks by one when flattening a nested program", func() {
			for _, p := range programs {
				_, internals := p.Points()
				for _, i := range internals[1:] {
					edited := p.Clone()
					gomega.Expect(edited.Flatten(i)).To(gomega.BeTrue())
					gomega.Expect(edited.Size()).To(gomega.Equal(p.Size() - 1))
				}
			}
		})
	})
})
