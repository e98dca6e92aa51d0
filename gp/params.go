package gp

import (
	"fmt"
)

type MutationMode string

const (
	// MutationSubtree replaces the selected subtree with random code of a
	// freshly drawn size.
	MutationSubtree MutationMode = "subtree"

	// MutationFair draws the replacement size from a window around the size of
	// the replaced subtree.
	MutationFair MutationMode = "fair"
)

type NodeSelectionMode string

const (
	NodeSelectionUnbiased        NodeSelectionMode = "unbiased"
	NodeSelectionLeafProbability NodeSelectionMode = "leaf-probability"
	NodeSelectionSizeTournament  NodeSelectionMode = "size-tournament"
)

type Params struct {
	// Number of individuals in each generation
	PopulationSize int

	// The run stops after this many generations, or as soon as an individual
	// with zero fitness turns up
	MaxGenerations int

	// Step budget of a single program execution. Set to -1 for no limit.
	ExecutionLimit int

	// Initial programs and subtree mutations draw sizes up to this bound
	MaxRandomCodeSize int

	// Mutations and crossovers producing larger programs are rejected
	MaxPointsInProgram int

	TournamentSize int

	// Tournament candidates for slot i are drawn from [i-radius, i+radius],
	// wrapping around the population. Set to 0 to draw from everywhere.
	TrivialGeographyRadius int

	// Reproduction method shares. What is left of 100 is cloned.
	MutationPercent       int
	CrossoverPercent      int
	SimplificationPercent int

	// Autosimplify steps spent per simplifying reproduction, per generation
	// report, and on the final best individual
	ReproductionSimplifications int
	ReportSimplifications       int
	FinalSimplifications        int

	// Chance that a simplification step flattens a subtree instead of removing
	// some
	SimplifyFlattenPercent int

	MutationMode MutationMode

	// Fair mutation draws sizes within this fraction of the replaced size
	FairMutationRange float64

	NodeSelectionMode NodeSelectionMode

	// Chance of picking a leaf under NodeSelectionLeafProbability
	NodeSelectionLeafProbability float64

	// Number of candidate points under NodeSelectionSizeTournament
	NodeSelectionTournamentSize int

	// Number of workers evaluating individuals each generation. Set to 0 to
	// evaluate on the calling goroutine.
	EvaluationWorkers int

	// Number of program texts whose fitness is remembered across generations.
	// Set to 0 to disable the cache.
	FitnessCacheSize int

	Seed int64
}

func DefaultParams() *Params {
	return &Params{
		PopulationSize: 200,
		MaxGenerations: 200,
		ExecutionLimit: 150,

		MaxRandomCodeSize:  40,
		MaxPointsInProgram: 100,

		TournamentSize:         7,
		TrivialGeographyRadius: 0,

		MutationPercent:       40,
		CrossoverPercent:      40,
		SimplificationPercent: 5,

		ReproductionSimplifications: 25,
		ReportSimplifications:       100,
		FinalSimplifications:        1000,
		SimplifyFlattenPercent:      20,

		MutationMode:      MutationSubtree,
		FairMutationRange: 0.3,

		NodeSelectionMode:            NodeSelectionUnbiased,
		NodeSelectionLeafProbability: 0.1,
		NodeSelectionTournamentSize:  2,

		EvaluationWorkers: 0,
		FitnessCacheSize:  0,

		Seed: 1,
	}
}

// Validate reports the first setting that cannot drive a run.
func (params *Params) Validate() error {
	switch {
	case params.PopulationSize < 1:
		return fmt.Errorf("population-size must be positive, got %d", params.PopulationSize)
	case params.MaxGenerations < 0:
		return fmt.Errorf("max-generations must not be negative, got %d", params.MaxGenerations)
	case params.MaxRandomCodeSize < 1:
		return fmt.Errorf("max-random-code-size must be positive, got %d", params.MaxRandomCodeSize)
	case params.TournamentSize < 1:
		return fmt.Errorf("tournament-size must be positive, got %d", params.TournamentSize)
	case params.TrivialGeographyRadius < 0:
		return fmt.Errorf("trivial-geography-radius must not be negative, got %d", params.TrivialGeographyRadius)
	case params.MutationPercent < 0 || params.CrossoverPercent < 0 || params.SimplificationPercent < 0:
		return fmt.Errorf("reproduction percentages must not be negative")
	case params.MutationPercent+params.CrossoverPercent+params.SimplificationPercent > 100:
		return fmt.Errorf("reproduction percentages add up to %d, more than 100",
			params.MutationPercent+params.CrossoverPercent+params.SimplificationPercent)
	case params.SimplifyFlattenPercent < 0 || params.SimplifyFlattenPercent > 100:
		return fmt.Errorf("simplify-flatten-percent must be within [0, 100], got %d", params.SimplifyFlattenPercent)
	case params.EvaluationWorkers < 0:
		return fmt.Errorf("evaluation-workers must not be negative, got %d", params.EvaluationWorkers)
	case params.FitnessCacheSize < 0:
		return fmt.Errorf("fitness-cache-size must not be negative, got %d", params.FitnessCacheSize)
	}

	switch params.MutationMode {
	case MutationSubtree, MutationFair:
	default:
		return fmt.Errorf("unknown mutation-mode %q", params.MutationMode)
	}

	switch params.NodeSelectionMode {
	case NodeSelectionUnbiased, NodeSelectionLeafProbability:
	case NodeSelectionSizeTournament:
		if params.NodeSelectionTournamentSize < 1 {
			return fmt.Errorf("node-selection-tournament-size must be positive, got %d", params.NodeSelectionTournamentSize)
		}
	default:
		return fmt.Errorf("unknown node-selection-mode %q", params.NodeSelectionMode)
	}

	return nil
}
