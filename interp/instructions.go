package interp

import (
	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
	"github.com/they4kman/experimentation/machine-learning/pushgp/stack"
)

func ints(in *Interpreter) *stack.Typed[int64]          { return in.Int }
func floats(in *Interpreter) *stack.Typed[float64]      { return in.Float }
func bools(in *Interpreter) *stack.Typed[bool]          { return in.Bool }
func names(in *Interpreter) *stack.Typed[string]        { return in.Name }
func codes(in *Interpreter) *stack.Typed[program.Atom]  { return in.Code }
func execs(in *Interpreter) *stack.Typed[program.Atom]  { return in.Exec }
func inputs(in *Interpreter) *stack.Typed[program.Atom] { return in.Input }

// binary pops the top two values and pushes op(second, top), so the value
// pushed first is the left operand. A failed op consumes its operands.
func binary[T any](s func(*Interpreter) *stack.Typed[T], op func(a, b T) (T, bool)) InstructionFunc {
	return func(in *Interpreter) {
		st := s(in)
		top, second, ok := st.Pop2()
		if !ok {
			return
		}
		if result, ok := op(second, top); ok {
			st.Push(result)
		}
	}
}

func unary[T any](s func(*Interpreter) *stack.Typed[T], op func(a T) (T, bool)) InstructionFunc {
	return func(in *Interpreter) {
		st := s(in)
		v, ok := st.Pop()
		if !ok {
			return
		}
		if result, ok := op(v); ok {
			st.Push(result)
		}
	}
}

// compare pops two values and pushes cmp(second, top) onto the boolean stack.
func compare[T any](s func(*Interpreter) *stack.Typed[T], cmp func(a, b T) bool) InstructionFunc {
	return func(in *Interpreter) {
		top, second, ok := s(in).Pop2()
		if !ok {
			return
		}
		in.Bool.Push(cmp(second, top))
	}
}

func convert[F, T any](from func(*Interpreter) *stack.Typed[F], to func(*Interpreter) *stack.Typed[T], conv func(F) (T, bool)) InstructionFunc {
	return func(in *Interpreter) {
		v, ok := from(in).Pop()
		if !ok {
			return
		}
		if result, ok := conv(v); ok {
			to(in).Push(result)
		}
	}
}

func equal[T comparable](a, b T) bool { return a == b }

// registerStackFamily adds the structural instructions every stack gets.
// Depth arguments come from the integer stack.
func (in *Interpreter) registerStackFamily(name string, s func(*Interpreter) stack.Stack) {
	r := in.registry

	r.mustRegister(name+".pop", func(in *Interpreter) { s(in).Discard() })
	r.mustRegister(name+".dup", func(in *Interpreter) { s(in).Dup() })
	r.mustRegister(name+".swap", func(in *Interpreter) { s(in).Swap() })
	r.mustRegister(name+".rot", func(in *Interpreter) { s(in).Rot() })
	r.mustRegister(name+".flush", func(in *Interpreter) { s(in).Flush() })
	r.mustRegister(name+".stackdepth", func(in *Interpreter) { in.Int.Push(int64(s(in).Size())) })

	withDepth := func(op func(st stack.Stack, depth int)) InstructionFunc {
		return func(in *Interpreter) {
			depth, ok := in.Int.Pop()
			if !ok {
				return
			}
			op(s(in), int(depth))
		}
	}
	r.mustRegister(name+".shove", withDepth(stack.Stack.ShoveTop))
	r.mustRegister(name+".yank", withDepth(stack.Stack.Yank))
	r.mustRegister(name+".yankdup", withDepth(stack.Stack.YankDup))
}

func (in *Interpreter) registerBuiltins() {
	in.registerStackFamily(IntegerStack, func(in *Interpreter) stack.Stack { return in.Int })
	in.registerStackFamily(FloatStack, func(in *Interpreter) stack.Stack { return in.Float })
	in.registerStackFamily(BooleanStack, func(in *Interpreter) stack.Stack { return in.Bool })
	in.registerStackFamily(NameStack, func(in *Interpreter) stack.Stack { return in.Name })
	in.registerStackFamily(CodeStack, func(in *Interpreter) stack.Stack { return in.Code })
	in.registerStackFamily(ExecStack, func(in *Interpreter) stack.Stack { return in.Exec })
	in.registry.mustRegister("input.stackdepth", func(in *Interpreter) { in.Int.Push(int64(in.Input.Size())) })

	in.registerIntegerInstructions()
	in.registerFloatInstructions()
	in.registerBooleanInstructions()
	in.registerNameInstructions()
	in.registerCodeInstructions()
	in.registerExecInstructions()
	in.registerInputInstructions()
}
