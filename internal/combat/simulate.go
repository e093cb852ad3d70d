package combat

import "math"

// RunMatch pits you against enemy in both directions.
// A non-positive enemy total yields the neutral ratio 1.0 without synergy.
func (r *Rules) RunMatch(you, enemy Side) MatchResult {
	yourTotal, yourBd := r.TotalEffDamage(you, enemy.Formation, enemy.Stats)
	enemyTotal, enemyBd := r.TotalEffDamage(enemy, you.Formation, you.Stats)

	ratio, syn := 1.0, 1.0
	if enemyTotal > 0 {
		syn = r.SynergyMultiplier(you.Formation)
		ratio = yourTotal / enemyTotal * syn
	}
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 1.0
	}
	ratio = math.Round(ratio*10000) / 10000

	return MatchResult{
		Formation:      you.Formation,
		Ratio:          ratio,
		WinPercentage:  WinPercentage(ratio, r.WinSteepness),
		Synergy:        syn,
		YourDamage:     yourTotal,
		YourBreakdown:  yourBd,
		EnemyDamage:    enemyTotal,
		EnemyBreakdown: enemyBd,
	}
}

// SynergyMultiplier rewards closeness to the reference formation and applies role bands.
func (r *Rules) SynergyMultiplier(f Formation) float64 {
	s := r.Synergy
	if !s.Enabled {
		return 1.0
	}
	dev := f.L1(s.Reference)
	m := 1 + s.Weight*(1-dev/2)
	for _, role := range s.Roles {
		if role.Band.Contains(f[role.Type]) {
			m *= role.Inside
		} else {
			m *= role.Outside
		}
	}
	return m
}

// WinProbability is a logistic curve centred on ratio 1.
func WinProbability(ratio, steepness float64) float64 {
	return 1.0 / (1.0 + math.Exp(-steepness*(ratio-1.0)))
}

// WinPercentage is WinProbability as a percentage with one decimal.
func WinPercentage(ratio, steepness float64) float64 {
	return math.Round(WinProbability(ratio, steepness)*1000) / 10
}
