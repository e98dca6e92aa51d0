package gp

import (
	"math"
	"math/rand"

	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

// selectNode picks a global index within p according to the node selection
// mode.
func (sim *Simulation) selectNode(rng *rand.Rand, p *program.Program) int {
	size := p.Size()

	switch sim.params.NodeSelectionMode {
	case NodeSelectionLeafProbability:
		leaves, internals := p.Points()
		pool := internals
		if rng.Float64() < sim.params.NodeSelectionLeafProbability && len(leaves) > 0 {
			pool = leaves
		} else if len(internals) == 0 {
			pool = leaves
		}
		return pool[rng.Intn(len(pool))]

	case NodeSelectionSizeTournament:
		best, bestSize := 0, -1
		for i := 0; i < sim.params.NodeSelectionTournamentSize; i++ {
			index := rng.Intn(size)
			sub, _ := p.Subtree(index)
			if s := program.AtomSize(sub); s > bestSize {
				best, bestSize = index, s
			}
		}
		return best
	}

	return rng.Intn(size)
}

// randomSubtree generates replacement code of the given size. A single point
// is a plain atom rather than an empty program.
func (sim *Simulation) randomSubtree(rng *rand.Rand, size int) program.Atom {
	if size <= 1 {
		return sim.interp.RandomAtom(rng)
	}
	return sim.interp.RandomCode(rng, size)
}

// replacementSize is the size of the code replacing a subtree of oldSize
// points.
func (sim *Simulation) replacementSize(rng *rand.Rand, oldSize int) int {
	if sim.params.MutationMode != MutationFair {
		return rng.Intn(sim.params.MaxRandomCodeSize) + 1
	}

	window := int(math.Max(1, sim.params.FairMutationRange*float64(oldSize)))
	size := oldSize + rng.Intn(2*window+1) - window
	if size < 1 {
		size = 1
	}
	return size
}

// replace swaps the subtree at index for replacement, returning nil when the
// result would exceed the program size limit.
func (sim *Simulation) replace(p *program.Program, index int, replacement program.Atom) *program.Program {
	old, ok := p.Subtree(index)
	if !ok {
		return nil
	}

	newSize := p.Size() - program.AtomSize(old) + program.AtomSize(replacement)
	if index == 0 {
		// the root adopts the replacement's contents
		newSize = program.AtomSize(replacement)
		if _, isProgram := replacement.(*program.Program); !isProgram {
			newSize++
		}
	}
	if sim.params.MaxPointsInProgram > 0 && newSize > sim.params.MaxPointsInProgram {
		return nil
	}

	edited := p.Clone()
	edited.ReplaceSubtree(index, replacement)
	return edited
}

// Mutate replaces a selected subtree of a copy of parent with random code.
// An edit exceeding the size limit leaves the copy unchanged.
func (sim *Simulation) Mutate(rng *rand.Rand, parent *Individual) *Individual {
	child := parent.Clone()

	index := sim.selectNode(rng, parent.Program)
	old, _ := parent.Program.Subtree(index)
	replacement := sim.randomSubtree(rng, sim.replacementSize(rng, program.AtomSize(old)))

	if edited := sim.replace(parent.Program, index, replacement); edited != nil {
		child.Program = edited
		child.invalidate()
	}
	return child
}

// Crossover puts a selected subtree of donor in place of a selected subtree of
// a copy of parent. An edit exceeding the size limit leaves the copy
// unchanged.
func (sim *Simulation) Crossover(rng *rand.Rand, parent, donor *Individual) *Individual {
	child := parent.Clone()

	index := sim.selectNode(rng, parent.Program)
	insert, _ := donor.Program.Subtree(sim.selectNode(rng, donor.Program))

	if edited := sim.replace(parent.Program, index, insert); edited != nil {
		child.Program = edited
		child.invalidate()
	}
	return child
}

// tournament returns the fittest of TournamentSize individuals drawn around
// slot.
func (sim *Simulation) tournament(rng *rand.Rand, slot int) *Individual {
	pop := sim.population
	radius := sim.params.TrivialGeographyRadius

	var best *Individual
	for i := 0; i < sim.params.TournamentSize; i++ {
		var index int
		if radius > 0 {
			index = slot + rng.Intn(2*radius+1) - radius
			index = ((index % len(pop)) + len(pop)) % len(pop)
		} else {
			index = rng.Intn(len(pop))
		}

		if best == nil || pop[index].Fitness < best.Fitness {
			best = pop[index]
		}
	}
	return best
}

// Autosimplify repeatedly shrinks a copy of ind, keeping each edit that does
// not worsen fitness. The result is never less fit than ind.
func (sim *Simulation) Autosimplify(rng *rand.Rand, ind *Individual, steps int) *Individual {
	best := ind.Clone()
	if !best.evaluated {
		sim.evaluateOne(sim.interp, best)
	}

	for i := 0; i < steps && best.Program.Size() > 1; i++ {
		trial := best.Program.Clone()

		if rng.Intn(100) < sim.params.SimplifyFlattenPercent {
			trial.Flatten(rng.Intn(trial.Size()-1) + 1)
		} else {
			removals := rng.Intn(3) + 1
			for j := 0; j < removals && trial.Size() > 1; j++ {
				index := rng.Intn(trial.Size()-1) + 1
				trial.ReplaceSubtree(index, program.New())
				trial.Flatten(index)
			}
		}

		candidate := NewIndividual(trial)
		sim.evaluateOne(sim.interp, candidate)
		if candidate.Fitness <= best.Fitness {
			best = candidate
		}
	}

	return best
}
