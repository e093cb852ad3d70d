package optimizer

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"troopcalc/internal/combat"
	"troopcalc/internal/config"
)

func newTestOptimizer(t *testing.T, seed int64) *Optimizer {
	t.Helper()
	cfg := config.Default()
	cfg.Search.Genetic.PopulationSize = 24
	cfg.Search.Genetic.Generations = 8
	o, err := New(cfg, rand.New(rand.NewSource(seed)), nil)
	require.NoError(t, err)
	return o
}

func knownSides() (combat.Side, combat.Side) {
	you := combat.Side{
		Stats: combat.StatProfile{
			{Attack: 300, Defense: 320, Lethality: 250, Health: 280},
			{Attack: 280, Defense: 260, Lethality: 240, Health: 230},
			{Attack: 360, Defense: 240, Lethality: 300, Health: 220},
		},
		Formation: combat.NewFormation(0.33, 0.33, 0.34),
		Troops:    150000,
	}
	enemy := combat.Side{
		Stats:     combat.UniformProfile(combat.Stats{Attack: 300, Defense: 300, Lethality: 250, Health: 250}),
		Formation: combat.NewFormation(0.60, 0.30, 0.10),
		Troops:    140000,
	}
	return you, enemy
}

func assertOnGrid(t *testing.T, c *combat.Constraints, f combat.Formation) {
	t.Helper()
	steps := 0
	for _, v := range f {
		n := math.Round(v * 20)
		assert.InDelta(t, n/20, v, 1e-12, "%v", f)
		steps += int(n)
	}
	assert.Equal(t, 20, steps, "%v", f)
	assert.True(t, c.Validate(f), "%v", f)
}

func TestNew_RejectsBadTables(t *testing.T) {
	cfg := config.Default()
	cfg.Blind.Archetypes["archer"] = append(cfg.Blind.Archetypes["archer"], map[string]float64{"Wizard": 1})
	_, err := New(cfg, nil, nil)
	assert.ErrorContains(t, err, "archetypes")

	cfg = config.Default()
	cfg.Search.Genetic.IdealBands["Siege"] = config.Band{Min: 0, Max: 1}
	_, err = New(cfg, nil, nil)
	assert.ErrorContains(t, err, "ideal band")
}

func TestEfficiency(t *testing.T) {
	o := newTestOptimizer(t, 1)

	ref := combat.NewFormation(0.30, 0.20, 0.50)
	assert.InDelta(t, o.Rules.SynergyMultiplier(ref), o.Efficiency(ref), 1e-12)

	o.Rules = o.Rules.WithoutSynergy()
	assert.InDelta(t, 1.0, o.Efficiency(ref), 1e-12)
	// infantry 0.10 short and archers 0.05 over, spread 4x
	assert.InDelta(t, 0.75*0.8, o.Efficiency(combat.NewFormation(0.15, 0.25, 0.60)), 1e-9)
	assert.InDelta(t, 0.8*0.5, o.Efficiency(combat.NewFormation(0.0, 0.35, 0.65)), 1e-9)
}

func TestFitness_PenalisesInvalid(t *testing.T) {
	o := newTestOptimizer(t, 1)
	you, enemy := knownSides()

	f := combat.NewFormation(0.10, 0.30, 0.60)
	you.Formation = f
	res := o.Rules.RunMatch(you, enemy)
	w := o.Genetic.Fitness
	raw := w.Ratio*res.Ratio + w.Win*res.WinPercentage/100 + w.Efficiency*o.Efficiency(f)

	assert.InDelta(t, raw*0.5, o.Fitness(f, res), 1e-12)
}

func TestOptimizeKnown(t *testing.T) {
	o := newTestOptimizer(t, 42)
	var seen []GenerationStats
	o.OnGenerationComplete = func(s GenerationStats) { seen = append(seen, s) }
	you, enemy := knownSides()

	report, err := o.OptimizeKnown(context.Background(), you, enemy)
	require.NoError(t, err)

	assert.Equal(t, ModeKnown, report.Mode)
	require.Len(t, seen, 8)
	assert.Equal(t, seen, report.Generations)
	for i, s := range seen {
		assert.Equal(t, i, s.Generation)
		assert.Equal(t, 24*(i+1), s.Evaluations)
		assert.GreaterOrEqual(t, s.BestFitness, s.AvgFitness)
	}

	require.NotEmpty(t, report.Recommendations)
	assert.LessOrEqual(t, len(report.Recommendations), 5)
	distinct := map[combat.Formation]bool{}
	for i, rec := range report.Recommendations {
		assertOnGrid(t, o.Constraints, rec.Formation)
		assert.False(t, distinct[rec.Formation], "duplicate %v", rec.Formation)
		distinct[rec.Formation] = true
		if i > 0 {
			assert.LessOrEqual(t, rec.Fitness, report.Recommendations[i-1].Fitness)
		}
		you.Formation = rec.Formation
		assert.Equal(t, o.Rules.RunMatch(you, enemy), rec.MatchResult)
	}
}

func TestOptimizeKnown_SeedIsReproducible(t *testing.T) {
	you, enemy := knownSides()
	a, err := newTestOptimizer(t, 7).OptimizeKnown(context.Background(), you, enemy)
	require.NoError(t, err)
	b, err := newTestOptimizer(t, 7).OptimizeKnown(context.Background(), you, enemy)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestOptimizeKnown_Canceled(t *testing.T) {
	o := newTestOptimizer(t, 42)
	you, enemy := knownSides()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.OptimizeKnown(ctx, you, enemy)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = o.OptimizeBlind(ctx, you, enemy.Troops)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecommend_RoutesBlindWithoutEnemyStats(t *testing.T) {
	you, enemy := knownSides()

	o := newTestOptimizer(t, 42)
	o.OnGenerationComplete = func(GenerationStats) { t.Fatal("genetic search ran in blind mode") }
	blind := enemy
	blind.Stats = combat.StatProfile{}
	report, err := o.Recommend(context.Background(), you, blind)
	require.NoError(t, err)
	assert.Equal(t, ModeBlind, report.Mode)
	assert.Empty(t, report.Generations)
	assert.NotEmpty(t, report.Playstyle)

	o = newTestOptimizer(t, 42)
	report, err = o.Recommend(context.Background(), you, enemy)
	require.NoError(t, err)
	assert.Equal(t, ModeKnown, report.Mode)
	assert.Len(t, report.Generations, 8)
}

func TestOptimizeBlind(t *testing.T) {
	o := newTestOptimizer(t, 42)
	you, _ := knownSides()
	you.Stats = combat.UniformProfile(combat.Stats{Attack: 500, Defense: 500, Lethality: 500, Health: 500})
	you.Stats[combat.Archer].Attack = 1000

	report, err := o.OptimizeBlind(context.Background(), you, 0)
	require.NoError(t, err)

	assert.Equal(t, combat.PlaystyleArcher, report.Playstyle)
	assert.Len(t, report.Scenarios, 8)
	require.NotEmpty(t, report.Recommendations)
	assert.LessOrEqual(t, len(report.Recommendations), 5)
	for i, rec := range report.Recommendations {
		assertOnGrid(t, o.Constraints, rec.Formation)
		assert.Equal(t, combat.PlaystyleArcher, rec.Playstyle)
		assert.NotEmpty(t, rec.BestScenario)
		assert.Contains(t, rec.Description, rec.BestScenario)
		assert.GreaterOrEqual(t, rec.BestRatio+1e-4, rec.Ratio)
		assert.LessOrEqual(t, rec.WorstRatio-1e-4, rec.Ratio)
		assert.InDelta(t, rec.BestRatio-rec.WorstRatio, rec.Consistency, 1e-4)
		assert.GreaterOrEqual(t, rec.WinPercentage, 0.0)
		assert.LessOrEqual(t, rec.WinPercentage, 100.0)
		if i > 0 {
			assert.LessOrEqual(t, rec.Ratio, report.Recommendations[i-1].Ratio)
		}
	}
}

func TestOptimizeBlind_ZeroEnemyTroopsMirrorsYours(t *testing.T) {
	you, _ := knownSides()
	a, err := newTestOptimizer(t, 9).OptimizeBlind(context.Background(), you, 0)
	require.NoError(t, err)
	b, err := newTestOptimizer(t, 9).OptimizeBlind(context.Background(), you, you.Troops)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBlindCandidates(t *testing.T) {
	o := newTestOptimizer(t, 3)
	bases := len(o.book.For(combat.PlaystyleInfantry))

	cands := o.BlindCandidates(combat.PlaystyleInfantry)
	assert.LessOrEqual(t, len(cands), bases*(1+o.Blind.Variants))
	assert.GreaterOrEqual(t, len(cands), bases*(1+o.Blind.Variants)-2)
	keys := map[string]bool{}
	for _, c := range cands {
		assert.InDelta(t, 1.0, c.Sum(), 1e-9)
		k := c.Key(o.Blind.GroupGranularity)
		assert.False(t, keys[k], k)
		keys[k] = true
	}
	assert.Contains(t, cands, combat.NewFormation(0.45, 0.20, 0.35))

	o.Blind.Variants = 0
	assert.Equal(t, o.BlindCandidates(combat.PlaystyleBalanced), o.BlindCandidates("mystery"))
}

func TestBlindCandidates_PoolSizeAcrossSeeds(t *testing.T) {
	for _, style := range []combat.Playstyle{combat.PlaystyleArcher, combat.PlaystyleInfantry, combat.PlaystyleBalanced, combat.PlaystyleInfantryArcher} {
		total := 0
		for seed := int64(1); seed <= 20; seed++ {
			o := newTestOptimizer(t, seed)
			total += len(o.BlindCandidates(style))
		}
		assert.GreaterOrEqual(t, float64(total)/20, 11.0, style)
	}
}

func TestBlindCandidates_FallsBackWhenNothingNormalizes(t *testing.T) {
	cfg := config.Default()
	cfg.Blind.Variants = 0
	cfg.Blind.Archetypes = map[string][]map[string]float64{
		"balanced": {{"Inf": 0}},
	}
	o, err := New(cfg, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	assert.Equal(t, []combat.Formation{o.Constraints.Fallback}, o.BlindCandidates(combat.PlaystyleArcher))
}

func TestOptimizeBlind_RoundingThatBreaksBandsFallsBack(t *testing.T) {
	cfg := config.Default()
	cfg.Blind.Variants = 0
	cfg.Blind.Archetypes = map[string][]map[string]float64{
		"balanced": {{"Inf": 1}},
	}
	o, err := New(cfg, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	you, _ := knownSides()

	report, err := o.OptimizeBlind(context.Background(), you, 0)
	require.NoError(t, err)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, o.Constraints.Fallback, report.Recommendations[0].Formation)
}

func TestOptimizeBlind_TopIsRescoredOnGrid(t *testing.T) {
	o := newTestOptimizer(t, 5)
	you, _ := knownSides()
	you.Stats = combat.UniformProfile(combat.Stats{Attack: 400, Defense: 400, Lethality: 400, Health: 400})

	report, err := o.OptimizeBlind(context.Background(), you, 0)
	require.NoError(t, err)
	seen := map[combat.Formation]bool{}
	for _, rec := range report.Recommendations {
		assertOnGrid(t, o.Constraints, rec.Formation)
		assert.False(t, seen[rec.Formation], "%v", rec.Formation)
		seen[rec.Formation] = true

		var worst float64
		for i, sc := range report.Scenarios {
			you.Formation = rec.Formation
			r := o.Rules.RunMatch(you, combat.Side{Stats: o.placeholder, Formation: sc.Formation, Troops: you.Troops}).Ratio
			if i == 0 || r < worst {
				worst = r
			}
		}
		assert.Equal(t, worst, rec.WorstRatio)
	}
}

func TestGridSearch(t *testing.T) {
	o := newTestOptimizer(t, 1)
	you, enemy := knownSides()

	report := o.GridSearch(you, enemy)
	assert.Equal(t, ModeGrid, report.Mode)
	require.Len(t, report.Recommendations, 5)
	for i, rec := range report.Recommendations {
		for _, v := range rec.Formation {
			assert.GreaterOrEqual(t, v, 0.10-1e-12)
			assert.LessOrEqual(t, v, 0.55+1e-12)
		}
		assert.InDelta(t, 1.0, rec.Formation.Sum(), 1e-9)
		if i > 0 {
			assert.LessOrEqual(t, rec.Ratio, report.Recommendations[i-1].Ratio)
		}
	}
	// the grid is deterministic
	assert.Equal(t, report, o.GridSearch(you, enemy))
}
