package gp

import (
	"context"
	"fmt"
	"math/rand"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tliron/commonlog"

	"github.com/they4kman/experimentation/machine-learning/pushgp/interp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

// ReportSink receives the report of every generation, and the final report
// once the run is over.
type ReportSink interface {
	WriteReport(sim *Simulation, report *Report) error
}

type Simulation struct {
	params  Params
	interp  *interp.Interpreter
	problem Problem
	rng     *rand.Rand
	cache   *lru.Cache
	log     commonlog.Logger

	generation int
	population Population
	next       Population

	sinks []ReportSink
}

// NewSimulation prepares a run of problem on in. The instruction set of in
// must be in place; it is not modified for the rest of the run.
func NewSimulation(params *Params, in *interp.Interpreter, problem Problem) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sim := &Simulation{
		params:  *params,
		interp:  in,
		problem: problem,
		rng:     rand.New(rand.NewSource(params.Seed)),
		log:     commonlog.GetLogger("pushgp.gp"),
	}

	if params.FitnessCacheSize > 0 {
		cache, err := lru.New(params.FitnessCacheSize)
		if err != nil {
			return nil, fmt.Errorf("cannot create fitness cache: %w", err)
		}
		sim.cache = cache
	}

	return sim, nil
}

func (sim *Simulation) AddSink(sink ReportSink) {
	sim.sinks = append(sim.sinks, sink)
}

func (sim *Simulation) Params() Params {
	return sim.params
}

func (sim *Simulation) Generation() int {
	return sim.generation
}

func (sim *Simulation) Population() Population {
	return sim.population
}

// Rand is the random source driving selection and variation. It must only be
// used from the goroutine running the simulation.
func (sim *Simulation) Rand() *rand.Rand {
	return sim.rng
}

// Init creates and evaluates generation 0 from random programs.
func (sim *Simulation) Init() {
	sim.generation = 0
	sim.population = make(Population, sim.params.PopulationSize)
	sim.next = make(Population, sim.params.PopulationSize)

	for i := range sim.population {
		size := sim.rng.Intn(sim.params.MaxRandomCodeSize) + 2
		sim.population[i] = NewIndividual(sim.interp.RandomCode(sim.rng, size))
	}
	sim.evaluate(sim.population)
}

// Resume continues from a saved generation. Missing individuals are filled in
// with random programs and surplus ones are dropped.
func (sim *Simulation) Resume(generation int, programs []*program.Program) {
	sim.generation = generation
	sim.population = make(Population, sim.params.PopulationSize)
	sim.next = make(Population, sim.params.PopulationSize)

	for i := range sim.population {
		if i < len(programs) {
			sim.population[i] = NewIndividual(programs[i].Clone())
		} else {
			size := sim.rng.Intn(sim.params.MaxRandomCodeSize) + 2
			sim.population[i] = NewIndividual(sim.interp.RandomCode(sim.rng, size))
		}
	}
	sim.evaluate(sim.population)
}

// Step breeds and evaluates the next generation, and reports whether it
// contains a solution.
func (sim *Simulation) Step() bool {
	sim.reproduce()
	sim.evaluate(sim.next)

	sim.population, sim.next = sim.next, sim.population
	sim.generation++

	return sim.population.Best().Fitness == 0
}

// reproduce fills the next generation slot by slot. Selection and variation
// share the simulation's random source, so they run on one goroutine.
func (sim *Simulation) reproduce() {
	mutation := sim.params.MutationPercent
	crossover := mutation + sim.params.CrossoverPercent
	simplification := crossover + sim.params.SimplificationPercent

	for i := range sim.next {
		parent := sim.tournament(sim.rng, i)

		switch method := sim.rng.Intn(100); {
		case method < mutation:
			sim.next[i] = sim.Mutate(sim.rng, parent)
		case method < crossover:
			sim.next[i] = sim.Crossover(sim.rng, parent, sim.tournament(sim.rng, i))
		case method < simplification:
			sim.next[i] = sim.Autosimplify(sim.rng, parent, sim.params.ReproductionSimplifications)
		default:
			sim.next[i] = parent.Clone()
		}
	}
}

// Report summarizes the current generation, simplifying a copy of its best
// individual.
func (sim *Simulation) Report() *Report {
	return sim.report(sim.params.ReportSimplifications, false)
}

func (sim *Simulation) report(simplifications int, final bool) *Report {
	best := sim.population.Best()
	simplified := sim.Autosimplify(sim.rng, best, simplifications)

	fitnessSum, sizeSum := 0.0, 0
	for _, ind := range sim.population {
		fitnessSum += ind.Fitness / float64(len(sim.population))
		sizeSum += ind.Program.Size()
	}

	return &Report{
		Generation:        sim.generation,
		BestFitness:       best.Fitness,
		MeanFitness:       fitnessSum,
		MeanSize:          float64(sizeSum) / float64(len(sim.population)),
		Best:              best.Program.String(),
		BestErrors:        append([]float64(nil), best.Errors...),
		Simplified:        simplified.Program.String(),
		SimplifiedFitness: simplified.Fitness,
		SimplifiedSize:    simplified.Program.Size(),
		Success:           best.Fitness == 0,
		Final:             final,
	}
}

func (sim *Simulation) publish(report *Report) error {
	for _, sink := range sim.sinks {
		if err := sink.WriteReport(sim, report); err != nil {
			return err
		}
	}
	return nil
}

// Run evolves the population until a solution turns up, the generation limit
// is reached or ctx is done, and returns the final report. A population set up
// by Init or Resume is continued; otherwise Init is called first.
func (sim *Simulation) Run(ctx context.Context) (*Report, error) {
	if sim.population == nil {
		sim.Init()
	}

	for {
		report := sim.Report()
		sim.log.Infof("generation %d: best %g, mean %g, mean size %.1f",
			report.Generation, report.BestFitness, report.MeanFitness, report.MeanSize)
		sim.log.Debugf("generation %d: simplified best %s", report.Generation, report.Simplified)

		if err := sim.publish(report); err != nil {
			return nil, err
		}

		if report.Success || sim.generation >= sim.params.MaxGenerations {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sim.Step()
	}

	final := sim.report(sim.params.FinalSimplifications, true)
	if final.Success {
		sim.log.Noticef("solved at generation %d: %s", final.Generation, final.Simplified)
	} else {
		sim.log.Noticef("no solution after %d generations, best fitness %g", final.Generation, final.BestFitness)
	}

	if err := sim.publish(final); err != nil {
		return nil, err
	}
	return final, nil
}
