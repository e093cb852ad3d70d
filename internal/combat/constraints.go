package combat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"troopcalc/internal/config"
	"troopcalc/internal/util"
)

// Constraints describes which formations the optimizers may propose.
// The simulator itself accepts any normalised formation.
type Constraints struct {
	Bands        [NumTroopTypes]config.Band
	SumTolerance float64
	MaxDominance float64
	Perturbation float64
	Attempts     int
	Fallback     Formation
	Neutral      Formation
}

func NewConstraints(cfg *config.ConstraintsConfig) (*Constraints, error) {
	c := &Constraints{
		SumTolerance: cfg.SumTolerance,
		MaxDominance: cfg.MaxDominance,
		Perturbation: cfg.Perturbation,
		Attempts:     cfg.Attempts,
	}
	for k, b := range cfg.Bands {
		t, err := ParseTroopType(k)
		if err != nil {
			return nil, fmt.Errorf("constraint band: %w", err)
		}
		c.Bands[t] = b
	}
	var err error
	if c.Fallback, err = FormationFromMap(cfg.Fallback); err != nil {
		return nil, fmt.Errorf("fallback formation: %w", err)
	}
	if c.Neutral, err = FormationFromMap(cfg.Neutral); err != nil {
		return nil, fmt.Errorf("neutral formation: %w", err)
	}
	return c, nil
}

func DefaultConstraints() *Constraints {
	c, err := NewConstraints(&config.Default().Search.Constraints)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks bands, the sum, that cavalry never outnumbers the rest, and that no
// single type dwarfs the other two combined.
func (c *Constraints) Validate(f Formation) bool {
	if !f.IsFinite() {
		return false
	}
	for _, t := range TroopTypes {
		if !c.Bands[t].Contains(f[t]) {
			return false
		}
	}
	if math.Abs(f.Sum()-1) > c.SumTolerance {
		return false
	}
	if f[Cavalry] > f[Infantry]+f[Archer] {
		return false
	}
	s := []float64{f[0], f[1], f[2]}
	sort.Sort(sort.Reverse(sort.Float64Slice(s)))
	if s[1]+s[2] <= 0 || s[0]/(s[1]+s[2]) > c.MaxDominance {
		return false
	}
	return true
}

// RoundTo5Percent snaps every fraction to a multiple of 0.05 and puts the residual on
// the largest type so the result sums to exactly one. Unusable input gives Fallback.
func (c *Constraints) RoundTo5Percent(f Formation) Formation {
	return snap(f, 20, c.Fallback)
}

func snap(f Formation, steps int, fallback Formation) Formation {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fallback
		}
	}
	norm, ok := f.Normalize()
	if !ok {
		return fallback
	}
	var n [NumTroopTypes]int
	total := 0
	for i, v := range norm {
		n[i] = int(math.Round(v * float64(steps)))
		total += n[i]
	}
	n[norm.Largest()] += steps - total

	var out Formation
	for i := range n {
		out[i] = float64(n[i]) / float64(steps)
	}
	return out
}

// Clamp keeps v inside the band for t.
func (c *Constraints) Clamp(t TroopType, v float64) float64 {
	b := c.Bands[t]
	return math.Max(b.Min, math.Min(b.Max, v))
}

// Random draws each fraction uniformly from its band, renormalises and rounds.
func (c *Constraints) Random(rng *rand.Rand) Formation {
	var f Formation
	for _, t := range TroopTypes {
		f[t] = util.Uniform(rng, c.Bands[t].Min, c.Bands[t].Max)
	}
	norm, _ := f.Normalize()
	return c.RoundTo5Percent(norm)
}

// Constrained perturbs base (or a fresh random formation when base is nil) until it finds
// a valid formation, giving up after Attempts tries.
func (c *Constraints) Constrained(rng *rand.Rand, base *Formation) Formation {
	for i := 0; i < c.Attempts; i++ {
		var cand Formation
		if base != nil {
			cand = *base
		} else {
			cand = c.Random(rng)
		}
		for _, t := range TroopTypes {
			cand[t] += util.Jitter(rng, c.Perturbation)
		}
		norm, ok := cand.Normalize()
		if ok && c.Validate(norm) {
			return norm
		}
	}
	return c.RoundTo5Percent(c.Neutral)
}
