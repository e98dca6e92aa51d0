package gp

import (
	"github.com/sourcegraph/conc/pool"

	"github.com/they4kman/experimentation/machine-learning/pushgp/interp"
)

// evaluateOne runs every test case against ind on in.
func (sim *Simulation) evaluateOne(in *interp.Interpreter, ind *Individual) {
	var key string
	if sim.cache != nil {
		key = ind.Program.String()
		if cached, ok := sim.cache.Get(key); ok {
			ind.setErrors(append([]float64(nil), cached.([]float64)...))
			return
		}
	}

	cases := sim.problem.Cases()
	errs := make([]float64, len(cases))
	for i, tc := range cases {
		errs[i] = sim.problem.Error(in, ind.Program, tc, sim.params.ExecutionLimit)
	}
	ind.setErrors(errs)

	if sim.cache != nil {
		sim.cache.Add(key, append([]float64(nil), errs...))
	}
}

// evaluate assigns fitness to every individual of pop that lacks one. With
// evaluation workers, pop is split into one chunk per worker and each chunk
// runs on its own fork of the interpreter.
func (sim *Simulation) evaluate(pop Population) {
	pending := make(Population, 0, len(pop))
	for _, ind := range pop {
		if !ind.evaluated {
			pending = append(pending, ind)
		}
	}
	if len(pending) == 0 {
		return
	}

	workers := sim.params.EvaluationWorkers
	if workers <= 1 {
		for _, ind := range pending {
			sim.evaluateOne(sim.interp, ind)
		}
		return
	}

	chunkSize := (len(pending) + workers - 1) / workers
	p := pool.New().WithMaxGoroutines(workers)
	for start := 0; start < len(pending); start += chunkSize {
		end := start + chunkSize
		if end > len(pending) {
			end = len(pending)
		}

		// forks are seeded here, in order, so runs stay reproducible
		chunk, forked := pending[start:end], sim.interp.Fork(sim.rng.Int63())
		p.Go(func() {
			for _, ind := range chunk {
				sim.evaluateOne(forked, ind)
			}
		})
	}
	p.Wait()
}
