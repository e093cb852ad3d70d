package combat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffDamage_ZeroStatsCollapsesToTroopsTimesAdvantage(t *testing.T) {
	assert.InDelta(t, 1350.0, EffDamage(1000, 0, 0, 1.35, 0, 0, 0.7, 0.3), 1e-9)
}

func TestEffDamage_Mitigation(t *testing.T) {
	// (1+1)^1 * (1+0)^0 halves the damage
	assert.InDelta(t, 500.0, EffDamage(1000, 0, 0, 1, 100, 0, 1, 0), 1e-9)
	// attack and lethality multiply
	assert.InDelta(t, 4000.0, EffDamage(1000, 100, 100, 1, 0, 0, 0.7, 0.3), 1e-9)

	want := 1000 * 3.0 * 2.0 / (math.Pow(6, 0.7) * math.Pow(5, 0.3))
	assert.InDelta(t, want, EffDamage(1000, 200, 100, 1, 500, 400, 0.7, 0.3), 1e-9)
}

func TestEffDamage_ExponentsAreFree(t *testing.T) {
	a := EffDamage(1000, 0, 0, 1, 300, 300, 0.7, 0.3)
	b := EffDamage(1000, 0, 0, 1, 300, 300, 0.3, 0.7)
	assert.InDelta(t, a, b, 1e-9) // symmetric stats
	c := EffDamage(1000, 0, 0, 1, 300, 0, 0.9, 0.3)
	d := EffDamage(1000, 0, 0, 1, 300, 0, 0.5, 0.3)
	assert.Less(t, c, d)
}

func TestTotalEffDamage_RoundsPerType(t *testing.T) {
	r := DefaultRules()
	side := Side{Formation: NewFormation(1.0/3, 1.0/3, 1.0/3), Troops: 1001}
	total, bd := r.TotalEffDamage(side, NewFormation(1.0/3, 1.0/3, 1.0/3), StatProfile{})

	sum := 0.0
	for _, v := range bd {
		assert.InDelta(t, math.Round(v*100)/100, v, 1e-12)
		sum += v
	}
	assert.InDelta(t, sum, total, 1e-9)
}

func TestScenarioB_ArcherHeavyBeatsInfantryHeavy(t *testing.T) {
	r := DefaultRules()
	you := Side{Formation: NewFormation(0.25, 0.15, 0.60), Troops: 100000}
	enemy := Side{Formation: NewFormation(0.60, 0.30, 0.10), Troops: 100000}

	res := r.RunMatch(you, enemy)

	// 25000*1.08 + 15000*0.885 + 60000*1.135
	assert.InDelta(t, 108375.0, res.YourDamage, 0.01)
	// 60000*0.9025 + 30000*1.1475 + 10000*1.05
	assert.InDelta(t, 99075.0, res.EnemyDamage, 0.01)
	assert.InDelta(t, 68100.0, res.YourBreakdown[Archer], 0.01)
	assert.InDelta(t, 1.027*1.02*1.01, res.Synergy, 1e-9)
	assert.Greater(t, res.Ratio, 1.0)
	assert.InDelta(t, 108375.0/99075.0*res.Synergy, res.Ratio, 1e-4)
	assert.Greater(t, res.WinPercentage, 50.0)
}
