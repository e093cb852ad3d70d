package optimizer

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"troopcalc/internal/combat"
)

// OptimizeKnown searches for the formation that does best against a fully specified enemy.
// The context is checked between generations.
func (o *Optimizer) OptimizeKnown(ctx context.Context, you, enemy combat.Side) (*Report, error) {
	g := o.Genetic
	individuals := make([]*Individual, g.PopulationSize)
	for i := range individuals {
		individuals[i] = &Individual{Formation: o.Constraints.Constrained(o.Rng, nil)}
	}
	pop := NewPopulation(individuals)
	report := &Report{Mode: ModeKnown}

	evaluations := 0
	for gen := 0; gen < g.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, ind := range pop.Individuals {
			o.evaluate(ind, you, enemy)
		}
		evaluations += pop.Size()
		stats := o.generationStats(pop, evaluations)
		report.Generations = append(report.Generations, stats)

		pop = o.nextGeneration(pop)
	}

	for _, ind := range pop.Individuals {
		o.evaluate(ind, you, enemy)
	}
	report.Recommendations = o.topKnown(pop, you, enemy)

	fields := []zap.Field{zap.String("mode", string(ModeKnown)), zap.Int("evaluations", evaluations+pop.Size())}
	if len(report.Recommendations) > 0 {
		fields = append(fields, zap.Float64("best_ratio", report.Recommendations[0].Ratio))
	}
	o.Logger.Info("optimization complete", fields...)
	return report, nil
}

func (o *Optimizer) generationStats(pop *Population, evaluations int) GenerationStats {
	stats := GenerationStats{
		Generation:  pop.Generation,
		AvgFitness:  pop.AverageFitness(),
		Diversity:   pop.Diversity(),
		Evaluations: evaluations,
	}
	if best := pop.Best(); best != nil {
		stats.BestFitness = best.Fitness
	}
	o.Logger.Debug("generation",
		zap.String("mode", string(ModeKnown)),
		zap.Int("generation", stats.Generation),
		zap.Float64("best", stats.BestFitness),
		zap.Float64("avg", stats.AvgFitness),
		zap.Float64("diversity", stats.Diversity))
	if o.OnGenerationComplete != nil {
		o.OnGenerationComplete(stats)
	}
	return stats
}

func (o *Optimizer) nextGeneration(pop *Population) *Population {
	g := o.Genetic
	parents := make([]combat.Formation, pop.Size())
	for i := range parents {
		parents[i] = TournamentSelection(pop, g.TournamentSize, o.Rng).Formation
	}
	children := Recombine(parents, g.CrossoverNoise, o.Rng)
	if len(children) > pop.Size() {
		children = children[:pop.Size()]
	}
	next := make([]*Individual, len(children))
	for i, c := range children {
		next[i] = &Individual{Formation: MutateAndRepair(c, o.Constraints, g.MutationRate, g.MutationNoise, o.Rng)}
	}
	out := NewPopulation(next)
	out.Generation = pop.Generation + 1
	return out
}

// topKnown rounds the fittest individuals to the 5% grid, drops duplicates, and re-runs
// the match for each survivor.
func (o *Optimizer) topKnown(pop *Population, you, enemy combat.Side) []Recommendation {
	seen := map[combat.Formation]bool{}
	var out []Recommendation
	for _, ind := range pop.Ranked() {
		if len(out) == o.Genetic.TopK {
			break
		}
		rounded := &Individual{Formation: o.Constraints.RoundTo5Percent(ind.Formation)}
		if seen[rounded.Formation] {
			continue
		}
		seen[rounded.Formation] = true
		o.evaluate(rounded, you, enemy)
		out = append(out, Recommendation{MatchResult: rounded.Result, Fitness: rounded.Fitness})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fitness > out[j].Fitness })
	return out
}
