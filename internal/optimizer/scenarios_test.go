package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"troopcalc/internal/combat"
	"troopcalc/internal/config"
)

func TestSampleScenarios(t *testing.T) {
	table, err := scenarioTable(config.Default().Blind.Meta)
	require.NoError(t, err)
	ids := map[string]combat.Formation{}
	for _, s := range table {
		ids[s.ID] = s.Formation
	}

	got := SampleScenarios(table, 200, 0.04, rand.New(rand.NewSource(42)))
	require.Len(t, got, 200)
	for _, s := range got {
		base, ok := ids[s.ID]
		require.True(t, ok, s.ID)
		assert.InDelta(t, 1.0, s.Formation.Sum(), 1e-9)
		for _, tt := range combat.TroopTypes {
			assert.InDelta(t, base[tt], s.Formation[tt], 0.1)
		}
	}
}

func TestPickScenario_FollowsWeights(t *testing.T) {
	table := []Scenario{
		{ID: "never", Weight: 0},
		{ID: "rare", Weight: 1},
		{ID: "common", Weight: 9},
	}
	rng := rand.New(rand.NewSource(42))
	counts := map[string]int{}
	for i := 0; i < 5000; i++ {
		s, ok := pickScenario(table, rng)
		require.True(t, ok)
		counts[s.ID]++
	}
	assert.Zero(t, counts["never"])
	assert.Greater(t, counts["common"], 5*counts["rare"])

	_, ok := pickScenario([]Scenario{{ID: "x"}}, rng)
	assert.False(t, ok)
	assert.Empty(t, SampleScenarios(nil, 8, 0.04, rng))
}

func TestArchetypeBook(t *testing.T) {
	book, err := NewArchetypeBook(config.Default().Blind.Archetypes)
	require.NoError(t, err)
	assert.Len(t, book.For(combat.PlaystyleCavalryArcher), 3)
	assert.Equal(t, book.For(combat.PlaystyleBalanced), book.For("unknown"))

	var nilBook *ArchetypeBook
	assert.Nil(t, nilBook.For(combat.PlaystyleArcher))

	_, err = NewArchetypeBook(map[string][]map[string]float64{"archer": {{"Arrows": 1}}})
	assert.ErrorContains(t, err, "archer[0]")
}
