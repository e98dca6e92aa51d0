package program

import "strings"

// Program is an ordered, mutable sequence of atoms. Nested programs are owned
// by exactly one parent; every structural edit copies or moves subtrees.
//
// Points in the whole tree are addressed by a pre-order global index: index 0
// is the program itself, and a nested program occupies Size() consecutive
// indices starting at its own slot.
type Program struct {
	atoms []Atom
}

func New(atoms ...Atom) *Program {
	return &Program{atoms: atoms}
}

// Len is the number of top-level atoms.
func (p *Program) Len() int {
	return len(p.atoms)
}

func (p *Program) At(i int) Atom {
	return p.atoms[i]
}

// Atoms returns the top-level atoms. The slice is shared with p.
func (p *Program) Atoms() []Atom {
	return p.atoms
}

func (p *Program) Append(atoms ...Atom) {
	p.atoms = append(p.atoms, atoms...)
}

// Size counts p itself plus every atom of every nested program.
func (p *Program) Size() int {
	n := 1
	for _, a := range p.atoms {
		n += AtomSize(a)
	}
	return n
}

// Clone returns a deep copy of p.
func (p *Program) Clone() *Program {
	cloned := &Program{atoms: make([]Atom, len(p.atoms))}
	for i, a := range p.atoms {
		cloned.atoms[i] = CloneAtom(a)
	}
	return cloned
}

func (p *Program) String() string {
	var buf strings.Builder
	p.write(&buf)
	return buf.String()
}

func (p *Program) write(buf *strings.Builder) {
	buf.WriteByte('(')
	for i, a := range p.atoms {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if sub, ok := a.(*Program); ok {
			sub.write(buf)
		} else {
			buf.WriteString(a.String())
		}
	}
	buf.WriteByte(')')
}

// locate finds the parent and top-level slot of the point at index, where
// index is relative to p and at least 1.
func (p *Program) locate(index int) (*Program, int, bool) {
	offset := 1
	for i, a := range p.atoms {
		size := AtomSize(a)
		if index == offset {
			return p, i, true
		}
		if index < offset+size {
			return a.(*Program).locate(index - offset)
		}
		offset += size
	}
	return nil, 0, false
}

// Subtree returns the atom at a global index.
func (p *Program) Subtree(index int) (Atom, bool) {
	if index == 0 {
		return p, true
	}
	if index < 0 {
		return nil, false
	}
	parent, slot, ok := p.locate(index)
	if !ok {
		return nil, false
	}
	return parent.atoms[slot], true
}

// ReplaceSubtree overwrites the point at index with a deep copy of
// replacement. Replacing index 0 replaces the contents of p: a program's
// atoms are adopted, any other atom becomes p's only element.
func (p *Program) ReplaceSubtree(index int, replacement Atom) bool {
	if index == 0 {
		if sub, ok := replacement.(*Program); ok {
			p.atoms = sub.Clone().atoms
		} else {
			p.atoms = []Atom{replacement}
		}
		return true
	}
	if index < 0 {
		return false
	}
	parent, slot, ok := p.locate(index)
	if !ok {
		return false
	}
	parent.atoms[slot] = CloneAtom(replacement)
	return true
}

// Flatten splices the children of the nested program at index into its
// parent. It reports whether anything was spliced; leaves and the root are
// left untouched.
func (p *Program) Flatten(index int) bool {
	if index <= 0 {
		return false
	}
	parent, slot, ok := p.locate(index)
	if !ok {
		return false
	}
	sub, isProgram := parent.atoms[slot].(*Program)
	if !isProgram {
		return false
	}

	spliced := make([]Atom, 0, len(parent.atoms)-1+len(sub.atoms))
	spliced = append(spliced, parent.atoms[:slot]...)
	spliced = append(spliced, sub.atoms...)
	spliced = append(spliced, parent.atoms[slot+1:]...)
	parent.atoms = spliced
	return true
}

// Walk visits every point in global index order.
func (p *Program) Walk(fn func(index int, a Atom)) {
	fn(0, p)
	p.walk(1, fn)
}

func (p *Program) walk(index int, fn func(int, Atom)) int {
	for _, a := range p.atoms {
		fn(index, a)
		if sub, ok := a.(*Program); ok {
			index = sub.walk(index+1, fn)
		} else {
			index++
		}
	}
	return index
}

// Points returns the global indices of leaves and of nested programs
// (including the root) separately.
func (p *Program) Points() (leaves, internals []int) {
	p.Walk(func(index int, a Atom) {
		if _, ok := a.(*Program); ok {
			internals = append(internals, index)
		} else {
			leaves = append(leaves, index)
		}
	})
	return leaves, internals
}
