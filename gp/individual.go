package gp

import (
	"math"

	"github.com/they4kman/experimentation/machine-learning/pushgp/interp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

// TestCase is one input/expected-output pair. Its contents are only
// interpreted by the Problem that produced it.
type TestCase struct {
	Inputs   []program.Atom
	Expected program.Atom
}

// Problem maps program executions onto numeric errors.
type Problem interface {
	Cases() []TestCase

	// Error runs p against one test case on in, which the caller owns for the
	// duration of the call, and returns a non-negative error.
	Error(in *interp.Interpreter, p *program.Program, tc TestCase, executionLimit int) float64
}

type Individual struct {
	Program *program.Program

	// Mean absolute error over all test cases. Lower is better.
	Fitness float64
	Errors  []float64

	evaluated bool
}

func NewIndividual(p *program.Program) *Individual {
	return &Individual{Program: p}
}

func (ind *Individual) Evaluated() bool {
	return ind.evaluated
}

// Clone deep-copies the program. The copy keeps the fitness of the original.
func (ind *Individual) Clone() *Individual {
	return &Individual{
		Program:   ind.Program.Clone(),
		Fitness:   ind.Fitness,
		Errors:    append([]float64(nil), ind.Errors...),
		evaluated: ind.evaluated,
	}
}

func (ind *Individual) invalidate() {
	ind.evaluated = false
	ind.Errors = nil
}

func (ind *Individual) setErrors(errs []float64) {
	ind.Errors = errs
	ind.Fitness = meanError(errs)
	ind.evaluated = true
}

// meanError averages absolute errors, treating NaN and infinite errors as the
// largest finite float so fitness stays totally ordered.
func meanError(errs []float64) float64 {
	if len(errs) == 0 {
		return 0
	}

	n := float64(len(errs))
	mean := 0.0
	for _, e := range errs {
		e = math.Abs(e)
		if math.IsNaN(e) || math.IsInf(e, 0) {
			e = math.MaxFloat64
		}
		mean += e / n
	}
	if math.IsInf(mean, 0) || mean > math.MaxFloat64 {
		return math.MaxFloat64
	}
	return mean
}

type Population []*Individual

func (pop Population) Len() int           { return len(pop) }
func (pop Population) Swap(i, j int)      { pop[i], pop[j] = pop[j], pop[i] }
func (pop Population) Less(i, j int) bool { return pop[i].Fitness < pop[j].Fitness }

// Best returns the fittest individual, the earliest one on ties.
func (pop Population) Best() *Individual {
	var best *Individual
	for _, ind := range pop {
		if best == nil || ind.Fitness < best.Fitness {
			best = ind
		}
	}
	return best
}
