package optimizer

import (
	"math/rand"

	"troopcalc/internal/combat"
	"troopcalc/internal/util"
)

// TournamentSelection draws k individuals with replacement and returns the fittest.
func TournamentSelection(pop *Population, k int, rng *rand.Rand) *Individual {
	if pop == nil || len(pop.Individuals) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	best := pop.Individuals[rng.Intn(len(pop.Individuals))]
	for i := 1; i < k; i++ {
		c := pop.Individuals[rng.Intn(len(pop.Individuals))]
		if c.Fitness > best.Fitness {
			best = c
		}
	}
	return best
}

// BlendCrossover averages two parents and jitters every component by up to noise.
func BlendCrossover(a, b combat.Formation, noise float64, rng *rand.Rand) combat.Formation {
	child := a.Add(b).Scale(0.5)
	for _, t := range combat.TroopTypes {
		child[t] += util.Jitter(rng, noise)
	}
	return child
}

// Recombine pairs consecutive parents and yields two children per pair.
// An odd parent out is paired with the first parent.
func Recombine(parents []combat.Formation, noise float64, rng *rand.Rand) []combat.Formation {
	children := make([]combat.Formation, 0, len(parents)+1)
	for i := 0; i < len(parents); i += 2 {
		a := parents[i]
		b := parents[0]
		if i+1 < len(parents) {
			b = parents[i+1]
		}
		children = append(children,
			BlendCrossover(a, b, noise, rng),
			BlendCrossover(a, b, noise, rng))
	}
	return children
}

// MutateAndRepair normalises child, occasionally nudges one component inside its band, and
// replaces anything still invalid with a constrained perturbation of it.
func MutateAndRepair(child combat.Formation, c *combat.Constraints, rate, noise float64, rng *rand.Rand) combat.Formation {
	norm, ok := child.Normalize()
	if !ok {
		return c.Constrained(rng, nil)
	}
	if rng.Float64() < rate {
		t := combat.TroopTypes[rng.Intn(combat.NumTroopTypes)]
		norm[t] = c.Clamp(t, norm[t]+util.Jitter(rng, noise))
		if n, ok := norm.Normalize(); ok {
			norm = n
		}
	}
	if !c.Validate(norm) {
		return c.Constrained(rng, &norm)
	}
	return norm
}
