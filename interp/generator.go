package interp

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

// AtomGenerator produces one atom of random code. The active instruction set
// is a list of generators, each drawn with equal probability.
type AtomGenerator interface {
	Generate(rng *rand.Rand) program.Atom
}

type literalGenerator struct {
	atom program.Atom
}

func (g literalGenerator) Generate(*rand.Rand) program.Atom { return g.atom }

type integerERC struct {
	min, max, resolution int64
}

func (g integerERC) Generate(rng *rand.Rand) program.Atom {
	return program.Integer(randomInteger(rng, g.min, g.max, g.resolution))
}

type floatERC struct {
	min, max, resolution float64
}

func (g floatERC) Generate(rng *rand.Rand) program.Atom {
	return program.Float(randomFloat(rng, g.min, g.max, g.resolution))
}

type booleanERC struct{}

func (booleanERC) Generate(rng *rand.Rand) program.Atom {
	return program.Boolean(rng.Intn(2) == 0)
}

func randomInteger(rng *rand.Rand, min, max, resolution int64) int64 {
	if resolution <= 0 {
		resolution = 1
	}
	if max <= min {
		return min
	}
	return rng.Int63n((max-min)/resolution+1)*resolution + min
}

func randomFloat(rng *rand.Rand, min, max, resolution float64) float64 {
	if max <= min {
		return min
	}
	if resolution <= 0 {
		return min + rng.Float64()*(max-min)
	}
	steps := int64(math.Floor((max-min)/resolution)) + 1
	return float64(rng.Int63n(steps))*resolution + min
}

func (in *Interpreter) randomInteger(rng *rand.Rand) int64 {
	return randomInteger(rng, in.MinRandomInteger, in.MaxRandomInteger, in.RandomIntegerResolution)
}

func (in *Interpreter) randomFloat(rng *rand.Rand) float64 {
	return randomFloat(rng, in.MinRandomFloat, in.MaxRandomFloat, in.RandomFloatResolution)
}

const (
	registeredPrefix = "registered."
	makeInputsPrefix = "input.makeinputs"
)

// SetInstructions replaces the active instruction set with list. Literals in
// the list always generate themselves and instructions generate themselves.
// Two pseudo-instructions expand into several generators:
//
//	registered.<stack>     every instruction of the stack family, plus an
//	                       ephemeral random constant for integer, float and
//	                       boolean
//	input.makeinputsN      defines input.in0 .. input.in<N-1>
//
// Only valid during setup, before any fork is made.
func (in *Interpreter) SetInstructions(list *program.Program) error {
	var generators []AtomGenerator

	for _, a := range list.Atoms() {
		switch v := a.(type) {
		case program.Integer, program.Float, program.Boolean:
			generators = append(generators, literalGenerator{atom: v})

		case program.Instruction:
			generators = append(generators, literalGenerator{atom: v})

		case program.Name:
			expanded, err := in.expandInstructionName(string(v))
			if err != nil {
				return err
			}
			generators = append(generators, expanded...)

		default:
			return fmt.Errorf("%w: %s %s", ErrUnknownInstruction, program.KindOf(a), a)
		}
	}

	in.generators = generators
	return nil
}

// SetInstructionText parses text and installs it as the instruction set.
func (in *Interpreter) SetInstructionText(text string) error {
	list, err := in.Parse(text)
	if err != nil {
		return err
	}
	return in.SetInstructions(list)
}

func (in *Interpreter) expandInstructionName(name string) ([]AtomGenerator, error) {
	name = in.registry.normalize(name)

	switch {
	case strings.HasPrefix(name, registeredPrefix):
		stackName := strings.TrimPrefix(name, registeredPrefix)
		if _, ok := in.Stack(stackName); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownInstruction, name)
		}

		var generators []AtomGenerator
		for _, inst := range in.registry.withPrefix(stackName + ".") {
			generators = append(generators, literalGenerator{atom: program.Instruction(inst.Name)})
		}
		switch stackName {
		case IntegerStack:
			generators = append(generators, integerERC{in.MinRandomInteger, in.MaxRandomInteger, in.RandomIntegerResolution})
		case FloatStack:
			generators = append(generators, floatERC{in.MinRandomFloat, in.MaxRandomFloat, in.RandomFloatResolution})
		case BooleanStack:
			generators = append(generators, booleanERC{})
		}
		return generators, nil

	case strings.HasPrefix(name, makeInputsPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(name, makeInputsPrefix))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownInstruction, name)
		}
		generators := make([]AtomGenerator, 0, n)
		for i := 0; i < n; i++ {
			inst, err := in.defineInput(i)
			if err != nil {
				return nil, err
			}
			generators = append(generators, literalGenerator{atom: program.Instruction(inst.Name)})
		}
		return generators, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownInstruction, name)
}

// defineInput registers input.in<i>, which pushes input i onto its stack.
func (in *Interpreter) defineInput(i int) (*Instruction, error) {
	name := fmt.Sprintf("input.in%d", i)
	return in.registry.register(name, name, func(in *Interpreter) {
		if i < in.Input.Size() {
			a, _ := in.Input.Peek(i)
			in.PushAtom(a)
		}
	})
}

// RandomAtom draws one atom from a uniformly chosen generator. With no active
// generators it returns an empty program.
func (in *Interpreter) RandomAtom(rng *rand.Rand) program.Atom {
	if len(in.generators) == 0 {
		return program.New()
	}
	return in.generators[rng.Intn(len(in.generators))].Generate(rng)
}

// RandomCode returns a random program of exactly size points. Sizes below 1
// are treated as 1.
func (in *Interpreter) RandomCode(rng *rand.Rand, size int) *program.Program {
	p := program.New()
	if size <= 1 {
		return p
	}

	parts := decompose(rng, size-1)
	shuffle(rng, parts)
	for _, part := range parts {
		if part == 1 {
			p.Append(in.RandomAtom(rng))
		} else {
			p.Append(in.RandomCode(rng, part))
		}
	}
	return p
}

// decompose splits n into a random list of positive parts summing to n.
func decompose(rng *rand.Rand, n int) []int {
	var parts []int
	for n > 0 {
		part := rng.Intn(n) + 1
		parts = append(parts, part)
		n -= part
	}
	return parts
}

func shuffle(rng *rand.Rand, parts []int) {
	for i := len(parts) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		parts[i], parts[j] = parts[j], parts[i]
	}
}
