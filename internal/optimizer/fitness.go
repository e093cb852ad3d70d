package optimizer

import (
	"math"

	"troopcalc/internal/combat"
)

// Efficiency scores how close f sits to the ideal bands. In-band types score 1 and the
// score falls linearly to 0 at IdealFalloff outside the band. The mean is scaled by the
// synergy multiplier and penalised when the largest share exceeds SpreadLimit times the
// smallest.
func (o *Optimizer) Efficiency(f combat.Formation) float64 {
	score := 0.0
	for _, t := range combat.TroopTypes {
		b := o.idealBands[t]
		dist := 0.0
		switch {
		case f[t] < b.Min:
			dist = b.Min - f[t]
		case f[t] > b.Max:
			dist = f[t] - b.Max
		}
		s := 1.0
		if dist > 0 {
			s = 0
			if o.Genetic.IdealFalloff > 0 {
				s = math.Max(0, 1-dist/o.Genetic.IdealFalloff)
			}
		}
		score += s
	}
	score /= combat.NumTroopTypes
	score *= o.Rules.SynergyMultiplier(f)

	lo, hi := f[f.Smallest()], f[f.Largest()]
	if lo <= 0 || hi/lo > o.Genetic.SpreadLimit {
		score *= o.Genetic.SpreadPenalty
	}
	return score
}

// Fitness blends ratio, win chance and efficiency; invalid formations are penalised.
func (o *Optimizer) Fitness(f combat.Formation, res combat.MatchResult) float64 {
	w := o.Genetic.Fitness
	fit := w.Ratio*res.Ratio + w.Win*res.WinPercentage/100 + w.Efficiency*o.Efficiency(f)
	if !o.Constraints.Validate(f) {
		fit *= o.Genetic.InvalidPenalty
	}
	return fit
}

func (o *Optimizer) evaluate(ind *Individual, you, enemy combat.Side) {
	you.Formation = ind.Formation
	ind.Result = o.Rules.RunMatch(you, enemy)
	ind.Fitness = o.Fitness(ind.Formation, ind.Result)
	ind.Evaluated = true
}
