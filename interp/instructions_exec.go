package interp

import (
	"fmt"

	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
	"github.com/they4kman/experimentation/machine-learning/pushgp/stack"
)

// loopBody describes where a looping instruction takes its body from. Code
// loops quote the body back onto the code stack before each pass; exec loops
// read it straight off the exec stack.
type loopBody struct {
	stack  func(*Interpreter) *stack.Typed[program.Atom]
	name   string
	quoted bool
}

var (
	codeLoop = loopBody{stack: codes, name: "code.do*range", quoted: true}
	execLoop = loopBody{stack: execs, name: "exec.do*range"}
)

// next builds the program that runs the remaining passes from index to dest.
func (l loopBody) next(index, dest int64, body program.Atom) *program.Program {
	if l.quoted {
		return program.New(program.Integer(index), program.Integer(dest),
			program.Instruction("code.quote"), body, program.Instruction(l.name))
	}
	return program.New(program.Integer(index), program.Integer(dest),
		program.Instruction(l.name), body)
}

// doRange runs the body for every index from the second integer to the top
// integer inclusive, pushing the current index before each pass. Passes are
// unrolled one at a time onto the exec stack.
func doRange(l loopBody) InstructionFunc {
	return func(in *Interpreter) {
		if in.Int.Size() < 2 || l.stack(in).Size() == 0 {
			return
		}
		dest, current, _ := in.Int.Pop2()
		body, _ := l.stack(in).Pop()

		if current != dest {
			step := int64(1)
			if current > dest {
				step = -1
			}
			in.Exec.Push(l.next(current+step, dest, body))
		}

		in.Int.Push(current)
		in.Exec.Push(body)
	}
}

// doCount runs the body n times with indices 0..n-1. With dropIndex the
// index is popped before each pass.
func doCount(l loopBody, dropIndex bool) InstructionFunc {
	return func(in *Interpreter) {
		if in.Int.Size() == 0 || l.stack(in).Size() == 0 {
			return
		}
		n, _ := in.Int.Pop()
		body, _ := l.stack(in).Pop()
		if n < 1 {
			return
		}

		if dropIndex {
			body = program.New(program.Instruction("integer.pop"), body)
		}
		in.Exec.Push(l.next(0, n-1, body))
	}
}

func (in *Interpreter) registerExecInstructions() {
	r := in.registry

	r.mustRegister("exec.=", compare(execs, program.Equal))
	r.mustRegister("exec.noop", func(in *Interpreter) {})
	r.mustRegister("exec.yield", func(in *Interpreter) { in.yielded = true })

	// K combinator: keep the top, drop the one below it
	r.mustRegister("exec.k", func(in *Interpreter) {
		if top, _, ok := in.Exec.Pop2(); ok {
			in.Exec.Push(top)
		}
	})
	// S combinator: a b c becomes a c (b c)
	r.mustRegister("exec.s", func(in *Interpreter) {
		if in.Exec.Size() < 3 {
			return
		}
		a, b, _ := in.Exec.Pop2()
		c, _ := in.Exec.Pop()

		bc := listOf(b, c)
		if !in.fits(bc) {
			return
		}
		in.Exec.Push(bc)
		in.Exec.Push(c)
		in.Exec.Push(a)
	})
	// Y combinator: a becomes a (exec.y a)
	r.mustRegister("exec.y", func(in *Interpreter) {
		a, ok := in.Exec.Pop()
		if !ok {
			return
		}
		in.Exec.Push(program.New(program.Instruction("exec.y"), a))
		in.Exec.Push(a)
	})

	r.mustRegister("exec.if", func(in *Interpreter) {
		if in.Exec.Size() < 2 || in.Bool.Size() == 0 {
			return
		}
		cond, _ := in.Bool.Pop()
		top, second, _ := in.Exec.Pop2()
		if cond {
			in.Exec.Push(top)
		} else {
			in.Exec.Push(second)
		}
	})
	r.mustRegister("exec.when", func(in *Interpreter) {
		if in.Exec.Size() == 0 || in.Bool.Size() == 0 {
			return
		}
		if cond, _ := in.Bool.Pop(); !cond {
			in.Exec.Discard()
		}
	})

	r.mustRegister("exec.do*range", doRange(execLoop))
	r.mustRegister("exec.do*count", doCount(execLoop, false))
	r.mustRegister("exec.do*times", doCount(execLoop, true))
}

func (in *Interpreter) registerNameInstructions() {
	r := in.registry

	r.mustRegister("name.=", compare(names, equal[string]))
	r.mustRegister("name.quote", func(in *Interpreter) { in.quoteName = true })
	r.mustRegister("name.rand", func(in *Interpreter) {
		in.Name.Push(fmt.Sprintf("n%d", in.rng.Intn(1000)))
	})
}

func (in *Interpreter) registerInputInstructions() {
	r := in.registry

	r.mustRegister("input.index", func(in *Interpreter) {
		if in.Input.Size() == 0 || in.Int.Size() == 0 {
			return
		}
		i, _ := in.Int.Pop()
		a, _ := in.Input.Peek(wrapIndex(i, in.Input.Size()))
		in.PushAtom(a)
	})
	r.mustRegister("input.inall", func(in *Interpreter) {
		for i := 0; i < in.Input.Size(); i++ {
			a, _ := in.Input.Peek(i)
			in.PushAtom(a)
		}
	})
	r.mustRegister("input.inallrev", func(in *Interpreter) {
		for i := in.Input.Size() - 1; i >= 0; i-- {
			a, _ := in.Input.Peek(i)
			in.PushAtom(a)
		}
	})
}
