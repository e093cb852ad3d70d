package optimizer

import (
	"sort"

	"go.uber.org/zap"

	"troopcalc/internal/combat"
)

// Grid bounds in whole percent.
const (
	gridMin  = 10
	gridMax  = 55
	gridStep = 5
)

// GridSearch runs every formation on the 5% grid with each type between 10% and 55% and
// returns the top K by ratio. It ignores the generator constraints and is deterministic.
func (o *Optimizer) GridSearch(you, enemy combat.Side) *Report {
	var results []combat.MatchResult
	for inf := gridMin; inf <= gridMax; inf += gridStep {
		for cav := gridMin; cav <= gridMax; cav += gridStep {
			arch := 100 - inf - cav
			if arch < gridMin || arch > gridMax {
				continue
			}
			you.Formation = combat.NewFormation(float64(inf)/100, float64(cav)/100, float64(arch)/100)
			results = append(results, o.Rules.RunMatch(you, enemy))
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Ratio > results[j].Ratio })

	k := o.Genetic.TopK
	if k > len(results) {
		k = len(results)
	}
	report := &Report{Mode: ModeGrid}
	for _, r := range results[:k] {
		report.Recommendations = append(report.Recommendations, Recommendation{MatchResult: r})
	}
	o.Logger.Info("optimization complete",
		zap.String("mode", string(ModeGrid)),
		zap.Int("evaluations", len(results)))
	return report
}
