package problem

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/PaesslerAG/gval"

	"github.com/they4kman/experimentation/machine-learning/pushgp/gp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/interp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

type Kind string

const (
	IntegerRegression Kind = "integer-regression"
	FloatRegression   Kind = "float-regression"
)

var ErrNoCases = errors.New("problem has no test cases")

// TargetLang evaluates target expressions: arithmetic plus a few functions.
// Input i is bound to x<i>; the first input is also bound to x.
var TargetLang gval.Language

func init() {
	unaryFunc := func(name string, fn func(float64) float64) gval.Language {
		return gval.Function(name, func(arguments ...interface{}) (interface{}, error) {
			if len(arguments) != 1 {
				return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(arguments))
			}
			x, isFloat := arguments[0].(float64)
			if !isFloat {
				return nil, fmt.Errorf("expected float, got: %v", arguments[0])
			}
			return fn(x), nil
		})
	}

	TargetLang = gval.NewLanguage(
		gval.Arithmetic(),
		gval.PrefixOperator("+", func(c context.Context, parameter interface{}) (interface{}, error) {
			p, isFloat := parameter.(float64)
			if !isFloat {
				return nil, fmt.Errorf("expected float, got: %s", parameter)
			}

			return +p, nil
		}),
		unaryFunc("abs", math.Abs),
		unaryFunc("sqrt", math.Sqrt),
		unaryFunc("sin", math.Sin),
		unaryFunc("cos", math.Cos),
		unaryFunc("exp", math.Exp),
		unaryFunc("ln", math.Log),
	)
}

type Case struct {
	Inputs   []float64
	Expected float64
}

// Definition describes a regression problem. Test cases are the explicit
// Cases followed by one case per entry of Inputs, whose expected output is
// Target evaluated on that entry.
type Definition struct {
	Kind   Kind
	Target string
	Inputs [][]float64
	Cases  []Case

	// Error charged when the program leaves no result
	NoResultPenalty float64
}

// Regression scores programs by the distance between the top of the integer
// or float stack and the expected output.
type Regression struct {
	kind    Kind
	cases   []gp.TestCase
	penalty float64
}

func New(def Definition) (*Regression, error) {
	switch def.Kind {
	case IntegerRegression, FloatRegression:
	default:
		return nil, fmt.Errorf("unknown problem kind %q", def.Kind)
	}

	r := &Regression{kind: def.Kind, penalty: def.NoResultPenalty}
	for _, c := range def.Cases {
		r.cases = append(r.cases, r.testCase(c.Inputs, c.Expected))
	}

	if def.Target != "" {
		target, err := TargetLang.NewEvaluable(def.Target)
		if err != nil {
			return nil, fmt.Errorf("cannot parse target %q: %w", def.Target, err)
		}

		for _, inputs := range def.Inputs {
			expected, err := target.EvalFloat64(context.Background(), bindings(inputs))
			if err != nil {
				return nil, fmt.Errorf("cannot evaluate target %q at %v: %w", def.Target, inputs, err)
			}
			r.cases = append(r.cases, r.testCase(inputs, expected))
		}
	}

	if len(r.cases) == 0 {
		return nil, ErrNoCases
	}
	return r, nil
}

func bindings(inputs []float64) map[string]interface{} {
	vars := make(map[string]interface{}, len(inputs)+1)
	for i, v := range inputs {
		vars[fmt.Sprintf("x%d", i)] = v
	}
	if len(inputs) > 0 {
		vars["x"] = inputs[0]
	}
	return vars
}

func (r *Regression) testCase(inputs []float64, expected float64) gp.TestCase {
	tc := gp.TestCase{Inputs: make([]program.Atom, len(inputs))}
	for i, v := range inputs {
		if r.kind == IntegerRegression {
			tc.Inputs[i] = program.Integer(math.Round(v))
		} else {
			tc.Inputs[i] = program.Float(v)
		}
	}

	if r.kind == IntegerRegression {
		tc.Expected = program.Integer(math.Round(expected))
	} else {
		tc.Expected = program.Float(expected)
	}
	return tc
}

func (r *Regression) Kind() Kind {
	return r.kind
}

func (r *Regression) Cases() []gp.TestCase {
	return r.cases
}

// Error runs p with the inputs on both the input stack and their typed
// stacks, then compares the top of the result stack with the expected value.
func (r *Regression) Error(in *interp.Interpreter, p *program.Program, tc gp.TestCase, executionLimit int) float64 {
	in.ClearStacks()
	in.SetInputs(tc.Inputs...)
	for _, a := range tc.Inputs {
		in.PushAtom(a)
	}

	if _, err := in.Execute(p, executionLimit); err != nil {
		return r.penalty
	}

	switch expected := tc.Expected.(type) {
	case program.Integer:
		result, ok := in.Int.Top()
		if !ok {
			return r.penalty
		}
		return math.Abs(float64(result) - float64(expected))

	case program.Float:
		result, ok := in.Float.Top()
		if !ok {
			return r.penalty
		}
		return math.Abs(result - float64(expected))
	}

	return r.penalty
}
