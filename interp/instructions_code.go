package interp

import (
	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

// asList treats a leaf as a one-element list.
func asList(a program.Atom) []program.Atom {
	if p, ok := a.(*program.Program); ok {
		return p.Atoms()
	}
	return []program.Atom{a}
}

// listOf builds a new program from deep copies of atoms.
func listOf(atoms ...program.Atom) *program.Program {
	p := program.New()
	for _, a := range atoms {
		p.Append(program.CloneAtom(a))
	}
	return p
}

func wrapIndex(i int64, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = -i
	}
	return int(i % int64(n))
}

func containsSubtree(tree, target program.Atom) bool {
	found := false
	if p, ok := tree.(*program.Program); ok {
		p.Walk(func(_ int, a program.Atom) {
			if !found && program.Equal(a, target) {
				found = true
			}
		})
		return found
	}
	return program.Equal(tree, target)
}

// container finds the smallest program within tree that has target as one of
// its elements.
func container(tree, target program.Atom) (*program.Program, bool) {
	p, ok := tree.(*program.Program)
	if !ok {
		return nil, false
	}

	var best *program.Program
	p.Walk(func(_ int, a program.Atom) {
		sub, ok := a.(*program.Program)
		if !ok {
			return
		}
		for _, el := range sub.Atoms() {
			if program.Equal(el, target) {
				if best == nil || sub.Size() < best.Size() {
					best = sub
				}
				return
			}
		}
	})
	return best, best != nil
}

// subst replaces every occurrence of old within tree by replacement.
func subst(tree, old, replacement program.Atom) program.Atom {
	if program.Equal(tree, old) {
		return program.CloneAtom(replacement)
	}
	p, ok := tree.(*program.Program)
	if !ok {
		return tree
	}
	result := program.New()
	for _, a := range p.Atoms() {
		result.Append(subst(a, old, replacement))
	}
	return result
}

// pushCode pushes a onto the code stack unless it exceeds the size limit.
func (in *Interpreter) pushCode(a program.Atom) {
	if in.fits(a) {
		in.Code.Push(a)
	}
}

func (in *Interpreter) registerCodeInstructions() {
	r := in.registry

	r.mustRegister("code.=", compare(codes, program.Equal))
	r.mustRegister("code.noop", func(in *Interpreter) {})

	r.mustRegister("code.append", func(in *Interpreter) {
		top, second, ok := in.Code.Pop2()
		if !ok {
			return
		}
		in.pushCode(listOf(append(append([]program.Atom(nil), asList(top)...), asList(second)...)...))
	})
	r.mustRegister("code.atom", func(in *Interpreter) {
		if a, ok := in.Code.Pop(); ok {
			_, isProgram := a.(*program.Program)
			in.Bool.Push(!isProgram)
		}
	})
	r.mustRegister("code.car", func(in *Interpreter) {
		a, ok := in.Code.Pop()
		if !ok {
			return
		}
		if list := asList(a); len(list) > 0 {
			in.Code.Push(list[0])
		} else {
			in.Code.Push(program.New())
		}
	})
	r.mustRegister("code.cdr", func(in *Interpreter) {
		a, ok := in.Code.Pop()
		if !ok {
			return
		}
		list := asList(a)
		if len(list) <= 1 {
			in.Code.Push(program.New())
			return
		}
		in.Code.Push(listOf(list[1:]...))
	})
	r.mustRegister("code.cons", func(in *Interpreter) {
		top, second, ok := in.Code.Pop2()
		if !ok {
			return
		}
		in.pushCode(listOf(append([]program.Atom{second}, asList(top)...)...))
	})
	r.mustRegister("code.list", func(in *Interpreter) {
		top, second, ok := in.Code.Pop2()
		if !ok {
			return
		}
		in.pushCode(listOf(second, top))
	})
	r.mustRegister("code.container", func(in *Interpreter) {
		top, second, ok := in.Code.Pop2()
		if !ok {
			return
		}
		if found, ok := container(second, top); ok {
			in.Code.Push(found.Clone())
		} else {
			in.Code.Push(program.New())
		}
	})
	r.mustRegister("code.contains", func(in *Interpreter) {
		top, second, ok := in.Code.Pop2()
		if !ok {
			return
		}
		in.Bool.Push(containsSubtree(second, top))
	})
	r.mustRegister("code.member", func(in *Interpreter) {
		top, second, ok := in.Code.Pop2()
		if !ok {
			return
		}
		member := false
		for _, a := range asList(top) {
			if program.Equal(a, second) {
				member = true
				break
			}
		}
		in.Bool.Push(member)
	})
	r.mustRegister("code.position", func(in *Interpreter) {
		top, second, ok := in.Code.Pop2()
		if !ok {
			return
		}
		position := int64(-1)
		for i, a := range asList(top) {
			if program.Equal(a, second) {
				position = int64(i)
				break
			}
		}
		in.Int.Push(position)
	})
	r.mustRegister("code.length", func(in *Interpreter) {
		if a, ok := in.Code.Pop(); ok {
			in.Int.Push(int64(len(asList(a))))
		}
	})
	r.mustRegister("code.size", func(in *Interpreter) {
		if a, ok := in.Code.Pop(); ok {
			in.Int.Push(int64(program.AtomSize(a)))
		}
	})
	r.mustRegister("code.null", func(in *Interpreter) {
		if a, ok := in.Code.Pop(); ok {
			p, isProgram := a.(*program.Program)
			in.Bool.Push(isProgram && p.Len() == 0)
		}
	})
	r.mustRegister("code.nth", func(in *Interpreter) {
		if in.Code.Size() == 0 || in.Int.Size() == 0 {
			return
		}
		n, _ := in.Int.Pop()
		a, _ := in.Code.Pop()
		list := asList(a)
		if len(list) == 0 {
			in.Code.Push(program.New())
			return
		}
		in.Code.Push(list[wrapIndex(n, len(list))])
	})
	r.mustRegister("code.nthcdr", func(in *Interpreter) {
		if in.Code.Size() == 0 || in.Int.Size() == 0 {
			return
		}
		n, _ := in.Int.Pop()
		a, _ := in.Code.Pop()
		list := asList(a)
		if len(list) == 0 {
			in.Code.Push(program.New())
			return
		}
		in.Code.Push(listOf(list[wrapIndex(n, len(list)):]...))
	})
	r.mustRegister("code.extract", func(in *Interpreter) {
		if in.Code.Size() == 0 || in.Int.Size() == 0 {
			return
		}
		n, _ := in.Int.Pop()
		a, _ := in.Code.Pop()
		p, ok := a.(*program.Program)
		if !ok {
			in.Code.Push(a)
			return
		}
		sub, _ := p.Subtree(wrapIndex(n, p.Size()))
		in.Code.Push(program.CloneAtom(sub))
	})
	r.mustRegister("code.insert", func(in *Interpreter) {
		if in.Code.Size() < 2 || in.Int.Size() == 0 {
			return
		}
		n, _ := in.Int.Pop()
		top, second, _ := in.Code.Pop2()
		p, ok := top.(*program.Program)
		if !ok {
			in.pushCode(program.CloneAtom(second))
			return
		}
		edited := p.Clone()
		edited.ReplaceSubtree(wrapIndex(n, edited.Size()), second)
		in.pushCode(edited)
	})
	r.mustRegister("code.subst", func(in *Interpreter) {
		if in.Code.Size() < 3 {
			return
		}
		tree, old, _ := in.Code.Pop2()
		replacement, _ := in.Code.Pop()
		in.pushCode(subst(tree, old, replacement))
	})

	r.mustRegister("code.quote", func(in *Interpreter) {
		if a, ok := in.Exec.Pop(); ok {
			in.Code.Push(a)
		}
	})
	r.mustRegister("code.do", func(in *Interpreter) {
		if a, ok := in.Code.Top(); ok {
			in.Exec.Push(program.Instruction("code.pop"))
			in.Exec.Push(a)
		}
	})
	r.mustRegister("code.do*", func(in *Interpreter) {
		if a, ok := in.Code.Pop(); ok {
			in.Exec.Push(a)
		}
	})
	r.mustRegister("code.if", func(in *Interpreter) {
		if in.Code.Size() < 2 || in.Bool.Size() == 0 {
			return
		}
		cond, _ := in.Bool.Pop()
		top, second, _ := in.Code.Pop2()
		if cond {
			in.Exec.Push(second)
		} else {
			in.Exec.Push(top)
		}
	})
	r.mustRegister("code.do*range", doRange(codeLoop))
	r.mustRegister("code.do*count", doCount(codeLoop, false))
	r.mustRegister("code.do*times", doCount(codeLoop, true))

	r.mustRegister("code.frominteger", convert(ints, codes, func(i int64) (program.Atom, bool) { return program.Integer(i), true }))
	r.mustRegister("code.fromfloat", convert(floats, codes, func(f float64) (program.Atom, bool) { return program.Float(f), true }))
	r.mustRegister("code.fromboolean", convert(bools, codes, func(b bool) (program.Atom, bool) { return program.Boolean(b), true }))
	r.mustRegister("code.rand", func(in *Interpreter) {
		size, ok := in.Int.Pop()
		if !ok || len(in.generators) == 0 {
			return
		}
		n := wrapIndex(size, in.MaxRandomCodeSize) + 1
		in.pushCode(in.RandomCode(in.rng, n))
	})
}
