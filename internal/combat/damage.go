package combat

import "math"

// EffDamage is the heuristic damage a group of troopCount troops deals.
// alpha and beta set how strongly enemy defense and health suppress it.
func EffDamage(troopCount, atk, leth, adv, enemyDef, enemyHp, alpha, beta float64) float64 {
	mitig := math.Pow(1+enemyDef/100, alpha) * math.Pow(1+enemyHp/100, beta)
	return troopCount * (1 + atk/100) * (1 + leth/100) * adv / mitig
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// TotalEffDamage sums side's damage into an enemy with the given formation and stats.
// Each type is rounded to cents before it is added to the total.
func (r *Rules) TotalEffDamage(side Side, enemyFormation Formation, enemyStats StatProfile) (float64, Breakdown) {
	var bd Breakdown
	total := 0.0
	for _, t := range TroopTypes {
		adv := r.Advantage(t, enemyFormation)
		count := float64(side.Troops) * side.Formation[t]
		st := side.Stats[t]
		v := round2(EffDamage(count, st.Attack, st.Lethality, adv,
			enemyStats[t].Defense, enemyStats[t].Health, r.Alpha, r.Beta))
		bd[t] = v
		total += v
	}
	return round2(total), bd
}
