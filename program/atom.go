package program

import (
	"strconv"
	"strings"
)

// Atom is one indivisible element of a Program: a literal, a symbolic name, an
// instruction reference, or a nested *Program.
type Atom interface {
	String() string
	isAtom()
}

type Kind uint8

const (
	KindInteger Kind = iota
	KindFloat
	KindBoolean
	KindName
	KindInstruction
	KindProgram
)

var kindNames = [...]string{
	KindInteger:     "integer",
	KindFloat:       "float",
	KindBoolean:     "boolean",
	KindName:        "name",
	KindInstruction: "instruction",
	KindProgram:     "program",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

type Integer int64

type Float float64

type Boolean bool

// Name is a symbol which did not resolve to an instruction at parse time.
type Name string

// Instruction references a registered instruction by its canonical name.
type Instruction string

func (Integer) isAtom()     {}
func (Float) isAtom()       {}
func (Boolean) isAtom()     {}
func (Name) isAtom()        {}
func (Instruction) isAtom() {}
func (*Program) isAtom()    {}

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

// String always includes a decimal point so the text parses back as a Float.
func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (n Name) String() string        { return string(n) }
func (i Instruction) String() string { return string(i) }

// KindOf returns the kind of a.
func KindOf(a Atom) Kind {
	switch a.(type) {
	case Integer:
		return KindInteger
	case Float:
		return KindFloat
	case Boolean:
		return KindBoolean
	case Name:
		return KindName
	case Instruction:
		return KindInstruction
	default:
		return KindProgram
	}
}

// AtomSize is 1 for any leaf, and Size() for a nested Program.
func AtomSize(a Atom) int {
	if p, ok := a.(*Program); ok {
		return p.Size()
	}
	return 1
}

// CloneAtom deep-copies nested programs; every other atom is an immutable value.
func CloneAtom(a Atom) Atom {
	if p, ok := a.(*Program); ok {
		return p.Clone()
	}
	return a
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Atom) bool {
	switch av := a.(type) {
	case *Program:
		bv, ok := b.(*Program)
		if !ok || len(av.atoms) != len(bv.atoms) {
			return false
		}
		for i := range av.atoms {
			if !Equal(av.atoms[i], bv.atoms[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
