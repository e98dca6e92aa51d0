package interp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/they4kman/experimentation/machine-learning/pushgp/internal/trie"
	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

var (
	ErrUnknownInstruction     = errors.New("unknown instruction")
	ErrConflictingInstruction = errors.New("conflicting instruction registration")
	ErrUnknownAtom            = errors.New("unknown atom kind")
	ErrStackExists            = errors.New("stack already exists")
)

// InstructionFunc acts on the stacks of the interpreter executing it. Atoms
// taken off a stack must be treated as immutable: programs are shared between
// stacks and with the individual being evaluated, so any edit works on a clone.
type InstructionFunc func(in *Interpreter)

type Instruction struct {
	Name string

	// identity tells repeated registrations of the same logical instruction
	// apart from conflicting ones
	identity string
	fn       InstructionFunc
}

// registry maps canonical instruction names to definitions. It is filled at
// setup time and read-only once any interpreter sharing it starts executing.
type registry struct {
	caseSensitive bool
	names         *trie.Trie
	userDefined   int
}

func newRegistry(caseSensitive bool) *registry {
	return &registry{
		caseSensitive: caseSensitive,
		names:         trie.NewTrie(),
	}
}

func (r *registry) normalize(name string) string {
	if r.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

func (r *registry) register(name, identity string, fn InstructionFunc) (*Instruction, error) {
	name = r.normalize(name)
	if existing, ok := r.lookup(name); ok {
		if existing.identity == identity {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConflictingInstruction, name)
	}

	inst := &Instruction{Name: name, identity: identity, fn: fn}
	r.names.Set(name, inst)
	return inst, nil
}

func (r *registry) mustRegister(name string, fn InstructionFunc) {
	if _, err := r.register(name, "builtin:"+name, fn); err != nil {
		panic(err)
	}
}

func (r *registry) lookup(name string) (*Instruction, bool) {
	v, ok := r.names.Get(r.normalize(name))
	if !ok {
		return nil, false
	}
	return v.(*Instruction), true
}

// withPrefix lists the instructions whose canonical name starts with prefix,
// in lexicographic order.
func (r *registry) withPrefix(prefix string) []*Instruction {
	var found []*Instruction
	r.names.WalkPrefix(r.normalize(prefix), func(_ string, v interface{}) {
		found = append(found, v.(*Instruction))
	})
	return found
}

func (r *registry) resolve(token string) (program.Instruction, bool) {
	if inst, ok := r.lookup(token); ok {
		return program.Instruction(inst.Name), true
	}
	return "", false
}
