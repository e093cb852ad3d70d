package optimizer

import (
	"fmt"
	"math"
	"math/rand"

	"troopcalc/internal/combat"
	"troopcalc/internal/config"
	"troopcalc/internal/util"
)

// Scenario is an enemy formation the blind search plays against.
type Scenario struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Weight      float64          `json:"weight"`
	Formation   combat.Formation `json:"formation"`
}

func scenarioTable(meta []config.MetaFormation) ([]Scenario, error) {
	out := make([]Scenario, 0, len(meta))
	for _, m := range meta {
		f, err := combat.FormationFromMap(m.Formation)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.ID, err)
		}
		out = append(out, Scenario{
			ID:          m.ID,
			Description: m.Description,
			Weight:      math.Max(m.Weight, 0),
			Formation:   f,
		})
	}
	return out, nil
}

// pickScenario draws one entry with probability proportional to its weight.
func pickScenario(table []Scenario, rng *rand.Rand) (Scenario, bool) {
	total := 0.0
	for _, s := range table {
		total += s.Weight
	}
	if total <= 0 {
		return Scenario{}, false
	}
	pick := rng.Float64() * total
	acc := 0.0
	for _, s := range table {
		acc += s.Weight
		if pick <= acc {
			return s, true
		}
	}
	return table[len(table)-1], true
}

// SampleScenarios draws n weighted meta formations and perturbs each by up to jitter per
// component.
func SampleScenarios(table []Scenario, n int, jitter float64, rng *rand.Rand) []Scenario {
	out := make([]Scenario, 0, n)
	for i := 0; i < n; i++ {
		s, ok := pickScenario(table, rng)
		if !ok {
			break
		}
		f := s.Formation
		for _, t := range combat.TroopTypes {
			f[t] += util.Jitter(rng, jitter)
		}
		if norm, ok := f.Normalize(); ok {
			s.Formation = norm
		}
		out = append(out, s)
	}
	return out
}
