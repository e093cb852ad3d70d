package combat

import (
	"sort"

	"troopcalc/internal/config"
)

type Playstyle string

const (
	PlaystyleInfantry        Playstyle = "infantry"
	PlaystyleCavalry         Playstyle = "cavalry"
	PlaystyleArcher          Playstyle = "archer"
	PlaystyleInfantryCavalry Playstyle = "infantry_cavalry"
	PlaystyleInfantryArcher  Playstyle = "infantry_archer"
	PlaystyleCavalryArcher   Playstyle = "cavalry_archer"
	PlaystyleBalanced        Playstyle = "balanced"
)

var dominantStyles = [NumTroopTypes]Playstyle{PlaystyleInfantry, PlaystyleCavalry, PlaystyleArcher}

var hybridStyles = []struct {
	pair  [2]TroopType
	style Playstyle
}{
	{[2]TroopType{Infantry, Cavalry}, PlaystyleInfantryCavalry},
	{[2]TroopType{Infantry, Archer}, PlaystyleInfantryArcher},
	{[2]TroopType{Cavalry, Archer}, PlaystyleCavalryArcher},
}

// pairMatch ignores order.
func pairMatch(pair [2]TroopType, a, b TroopType) bool {
	return (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a)
}

func hybridOf(a, b TroopType) Playstyle {
	for _, h := range hybridStyles {
		if pairMatch(h.pair, a, b) {
			return h.style
		}
	}
	return PlaystyleBalanced
}

type PlaystyleDetector struct {
	cfg config.PlaystyleConfig
}

func NewPlaystyleDetector(cfg config.PlaystyleConfig) *PlaystyleDetector {
	return &PlaystyleDetector{cfg: cfg}
}

// Strengths returns each type's share of the summed stat efficiency.
// The second result is false when the profile carries no usable signal.
func (d *PlaystyleDetector) Strengths(p StatProfile) ([NumTroopTypes]float64, bool) {
	var eff [NumTroopTypes]float64
	total := 0.0
	for _, t := range TroopTypes {
		s := p[t]
		offense := (d.cfg.AttackWeight*s.Attack + d.cfg.LethalityWeight*s.Lethality) / 100
		defense := (d.cfg.DefenseWeight*s.Defense + d.cfg.HealthWeight*s.Health) / 100
		eff[t] = d.cfg.OffenseShare*offense + d.cfg.DefenseShare*defense
		total += eff[t]
	}
	if total <= 0 || !p.IsFinite() {
		return [NumTroopTypes]float64{}, false
	}
	for i := range eff {
		eff[i] /= total
	}
	return eff, true
}

// Detect classifies a stat profile: a single dominant type, a hybrid of the two strongest
// types, or balanced.
func (d *PlaystyleDetector) Detect(p StatProfile) Playstyle {
	rel, ok := d.Strengths(p)
	if !ok {
		return PlaystyleBalanced
	}
	ranked := []TroopType{Infantry, Cavalry, Archer}
	sort.SliceStable(ranked, func(i, j int) bool { return rel[ranked[i]] > rel[ranked[j]] })

	if rel[ranked[0]] >= d.cfg.Dominant {
		return dominantStyles[ranked[0]]
	}
	strong := 0
	for _, v := range rel {
		if v > d.cfg.Hybrid {
			strong++
		}
	}
	if strong >= 2 {
		return hybridOf(ranked[0], ranked[1])
	}
	return PlaystyleBalanced
}
