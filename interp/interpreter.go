package interp

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
	"github.com/they4kman/experimentation/machine-learning/pushgp/stack"
)

// Names of the built-in stacks, in stack-set order.
const (
	ExecStack    = "exec"
	CodeStack    = "code"
	IntegerStack = "integer"
	FloatStack   = "float"
	BooleanStack = "boolean"
	NameStack    = "name"
	InputStack   = "input"
)

var builtinStacks = []string{ExecStack, CodeStack, IntegerStack, FloatStack, BooleanStack, NameStack, InputStack}

type Settings struct {
	// Instruction names are lower-cased before lookup unless set.
	CaseSensitive bool

	// Ephemeral random constant bounds. Sampled values are min + k*resolution.
	MinRandomInteger        int64
	MaxRandomInteger        int64
	RandomIntegerResolution int64
	MinRandomFloat          float64
	MaxRandomFloat          float64
	RandomFloatResolution   float64

	// Upper bound on the size argument of code.rand.
	MaxRandomCodeSize int

	// Code-building instructions refuse to produce anything larger.
	MaxPointsInProgram int

	// Seed of the interpreter's own random source, used by *.rand instructions.
	Seed int64
}

func DefaultSettings() Settings {
	return Settings{
		MinRandomInteger:        -10,
		MaxRandomInteger:        10,
		RandomIntegerResolution: 1,
		MinRandomFloat:          -10,
		MaxRandomFloat:          10,
		RandomFloatResolution:   0.01,
		MaxRandomCodeSize:       30,
		MaxPointsInProgram:      100,
		Seed:                    1,
	}
}

// shared is the part of an interpreter that forks have in common. It is only
// mutated during setup.
type shared struct {
	Settings
	registry   *registry
	generators []AtomGenerator
	custom     []string
}

type Status int

const (
	// StatusStopped means the exec stack emptied or the step budget ran out.
	StatusStopped Status = iota
	// StatusYielded means a yield instruction ended execution early.
	StatusYielded
	// StatusFatal means the dispatcher met an atom it cannot handle.
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusYielded:
		return "yielded"
	default:
		return "fatal"
	}
}

type Outcome struct {
	Steps  int
	Status Status
}

// Interpreter is the stack machine. Each interpreter owns its stack set;
// forks share the instruction registry and the active instruction set.
type Interpreter struct {
	*shared

	Int   *stack.Typed[int64]
	Float *stack.Typed[float64]
	Bool  *stack.Typed[bool]
	Name  *stack.Typed[string]
	Code  *stack.Typed[program.Atom]
	Exec  *stack.Typed[program.Atom]
	Input *stack.Typed[program.Atom]

	custom map[string]*stack.Typed[program.Atom]

	rng       *rand.Rand
	yielded   bool
	quoteName bool
}

func New(settings Settings) *Interpreter {
	in := &Interpreter{
		shared: &shared{
			Settings: settings,
			registry: newRegistry(settings.CaseSensitive),
		},
	}
	in.initStacks(settings.Seed)
	in.registerBuiltins()
	return in
}

func (in *Interpreter) initStacks(seed int64) {
	in.Int = stack.New[int64]()
	in.Float = stack.New[float64]()
	in.Bool = stack.New[bool]()
	in.Name = stack.New[string]()
	in.Code = stack.New[program.Atom]()
	in.Exec = stack.New[program.Atom]()
	in.Input = stack.New[program.Atom]()
	in.custom = make(map[string]*stack.Typed[program.Atom])
	for _, name := range in.shared.custom {
		in.custom[name] = stack.New[program.Atom]()
	}
	in.rng = rand.New(rand.NewSource(seed))
}

// Fork returns an interpreter with fresh stacks and its own random source
// that shares the registry and the active instruction set with in.
func (in *Interpreter) Fork(seed int64) *Interpreter {
	forked := &Interpreter{shared: in.shared}
	forked.initStacks(seed)
	return forked
}

// AddStack registers a custom stack of atoms and its standard instruction
// family. Only valid during setup, before any fork is made.
func (in *Interpreter) AddStack(name string) error {
	name = in.registry.normalize(name)
	if _, ok := in.Stack(name); ok {
		return fmt.Errorf("%w: %s", ErrStackExists, name)
	}

	in.shared.custom = append(in.shared.custom, name)
	in.custom[name] = stack.New[program.Atom]()

	atoms := func(in *Interpreter) *stack.Typed[program.Atom] { return in.custom[name] }
	in.registerStackFamily(name, func(in *Interpreter) stack.Stack { return in.custom[name] })
	in.registry.mustRegister(name+".=", compare(atoms, program.Equal))
	return nil
}

// Define registers a problem-specific instruction. Defining the same name
// twice is a configuration error.
func (in *Interpreter) Define(name string, fn InstructionFunc) error {
	in.registry.userDefined++
	_, err := in.DefineAs(name, fmt.Sprintf("user:%d", in.registry.userDefined), fn)
	return err
}

// DefineAs registers a problem-specific instruction under identity. A repeated
// registration with the same identity returns the existing instruction; any
// other registration of a taken name fails with ErrConflictingInstruction.
func (in *Interpreter) DefineAs(name, identity string, fn InstructionFunc) (*Instruction, error) {
	return in.registry.register(name, "def:"+identity, fn)
}

// Instruction looks up a registered instruction by name.
func (in *Interpreter) Instruction(name string) (*Instruction, bool) {
	return in.registry.lookup(name)
}

// StackNames lists built-in stacks followed by custom stacks in the order
// they were added.
func (in *Interpreter) StackNames() []string {
	return append(append([]string(nil), builtinStacks...), in.shared.custom...)
}

func (in *Interpreter) Stack(name string) (stack.Stack, bool) {
	switch name {
	case ExecStack:
		return in.Exec, true
	case CodeStack:
		return in.Code, true
	case IntegerStack:
		return in.Int, true
	case FloatStack:
		return in.Float, true
	case BooleanStack:
		return in.Bool, true
	case NameStack:
		return in.Name, true
	case InputStack:
		return in.Input, true
	}
	s, ok := in.custom[name]
	return s, ok
}

// CustomStack returns a problem-defined stack by name.
func (in *Interpreter) CustomStack(name string) (*stack.Typed[program.Atom], bool) {
	s, ok := in.custom[in.registry.normalize(name)]
	return s, ok
}

// Parse parses program text, resolving known instruction names.
func (in *Interpreter) Parse(text string) (*program.Program, error) {
	return program.Parser{ResolveInstruction: in.registry.resolve}.Parse(text)
}

func (in *Interpreter) ClearStacks() {
	for _, name := range in.StackNames() {
		s, _ := in.Stack(name)
		s.Flush()
	}
	in.yielded = false
	in.quoteName = false
}

// SetInputs replaces the input stack contents, first input at index 0.
func (in *Interpreter) SetInputs(inputs ...program.Atom) {
	in.Input.Flush()
	for i := len(inputs) - 1; i >= 0; i-- {
		in.Input.Push(inputs[i])
	}
}

// PushAtom pushes a onto the stack matching its kind. Instructions and
// programs go to the code stack.
func (in *Interpreter) PushAtom(a program.Atom) {
	switch v := a.(type) {
	case program.Integer:
		in.Int.Push(int64(v))
	case program.Float:
		in.Float.Push(float64(v))
	case program.Boolean:
		in.Bool.Push(bool(v))
	case program.Name:
		in.Name.Push(string(v))
	default:
		in.Code.Push(a)
	}
}

// Load pushes p onto both the code and the exec stacks.
func (in *Interpreter) Load(p *program.Program) {
	in.Code.Push(p)
	in.Exec.Push(p)
}

// Execute loads p and runs it. A negative maxSteps means no step limit.
func (in *Interpreter) Execute(p *program.Program, maxSteps int) (Outcome, error) {
	in.Load(p)
	return in.Run(maxSteps)
}

// Run executes atoms from the exec stack until it empties, maxSteps atoms have
// been executed, or a yield instruction runs.
func (in *Interpreter) Run(maxSteps int) (Outcome, error) {
	in.yielded = false
	steps := 0

	for maxSteps < 0 || steps < maxSteps {
		a, ok := in.Exec.Pop()
		if !ok {
			break
		}
		steps++

		if err := in.dispatch(a); err != nil {
			return Outcome{Steps: steps, Status: StatusFatal}, err
		}
		if in.yielded {
			return Outcome{Steps: steps, Status: StatusYielded}, nil
		}
	}

	return Outcome{Steps: steps, Status: StatusStopped}, nil
}

func (in *Interpreter) dispatch(a program.Atom) error {
	switch v := a.(type) {
	case *program.Program:
		atoms := v.Atoms()
		for i := len(atoms) - 1; i >= 0; i-- {
			in.Exec.Push(atoms[i])
		}
	case program.Integer:
		in.Int.Push(int64(v))
	case program.Float:
		in.Float.Push(float64(v))
	case program.Boolean:
		in.Bool.Push(bool(v))
	case program.Instruction:
		in.call(string(v))
	case program.Name:
		in.call(string(v))
	default:
		return fmt.Errorf("%w: %T", ErrUnknownAtom, a)
	}
	return nil
}

// call runs the named instruction; unresolved or quoted names become data.
func (in *Interpreter) call(name string) {
	if in.quoteName {
		in.quoteName = false
		in.Name.Push(name)
		return
	}
	if inst, ok := in.registry.lookup(name); ok {
		inst.fn(in)
		return
	}
	in.Name.Push(name)
}

// fits reports whether a may be pushed by a code-building instruction.
func (in *Interpreter) fits(a program.Atom) bool {
	return in.MaxPointsInProgram <= 0 || program.AtomSize(a) <= in.MaxPointsInProgram
}

// DumpStacks renders every non-empty stack, top last.
func (in *Interpreter) DumpStacks() string {
	var buf strings.Builder
	for _, name := range in.StackNames() {
		var items []string
		switch name {
		case IntegerStack:
			for _, v := range in.Int.Items() {
				items = append(items, program.Integer(v).String())
			}
		case FloatStack:
			for _, v := range in.Float.Items() {
				items = append(items, program.Float(v).String())
			}
		case BooleanStack:
			for _, v := range in.Bool.Items() {
				items = append(items, program.Boolean(v).String())
			}
		case NameStack:
			items = append(items, in.Name.Items()...)
		default:
			var atoms []program.Atom
			switch name {
			case ExecStack:
				atoms = in.Exec.Items()
			case CodeStack:
				atoms = in.Code.Items()
			case InputStack:
				atoms = in.Input.Items()
			default:
				atoms = in.custom[name].Items()
			}
			for _, a := range atoms {
				items = append(items, a.String())
			}
		}

		if len(items) > 0 {
			fmt.Fprintf(&buf, "%s: [%s]\n", name, strings.Join(items, " "))
		}
	}
	return buf.String()
}
