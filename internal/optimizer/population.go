package optimizer

import (
	"sort"

	"troopcalc/internal/combat"
)

// Individual is one candidate formation with its last evaluation.
type Individual struct {
	Formation combat.Formation
	Fitness   float64
	Result    combat.MatchResult
	Evaluated bool
}

type Population struct {
	Individuals []*Individual
	Generation  int
}

func NewPopulation(individuals []*Individual) *Population {
	return &Population{Individuals: individuals}
}

func (p *Population) Size() int { return len(p.Individuals) }

// Best returns the fittest evaluated individual, or nil.
func (p *Population) Best() *Individual {
	var best *Individual
	for _, ind := range p.Individuals {
		if !ind.Evaluated {
			continue
		}
		if best == nil || ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

func (p *Population) AverageFitness() float64 {
	sum, n := 0.0, 0
	for _, ind := range p.Individuals {
		if ind.Evaluated {
			sum += ind.Fitness
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Diversity is the mean L1 distance of the formations from their centroid.
func (p *Population) Diversity() float64 {
	if len(p.Individuals) == 0 {
		return 0
	}
	var centroid combat.Formation
	for _, ind := range p.Individuals {
		centroid = centroid.Add(ind.Formation)
	}
	centroid = centroid.Scale(1 / float64(len(p.Individuals)))
	d := 0.0
	for _, ind := range p.Individuals {
		d += ind.Formation.L1(centroid)
	}
	return d / float64(len(p.Individuals))
}

// Ranked returns the individuals sorted by descending fitness. Ties keep their order.
func (p *Population) Ranked() []*Individual {
	out := make([]*Individual, len(p.Individuals))
	copy(out, p.Individuals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fitness > out[j].Fitness })
	return out
}

// GenerationStats summarises one generation of the known-enemy search.
type GenerationStats struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	AvgFitness  float64 `json:"avg_fitness"`
	Diversity   float64 `json:"diversity"`
	Evaluations int     `json:"evaluations"`
}
