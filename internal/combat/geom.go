package combat

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formation is the fraction of an army assigned to each troop type.
// Optimizer code treats it as a point on the 2-simplex.
type Formation [NumTroopTypes]float64

func NewFormation(inf, cav, arch float64) Formation { return Formation{inf, cav, arch} }

func FormationFromMap(m map[string]float64) (Formation, error) {
	var f Formation
	for k, v := range m {
		t, err := ParseTroopType(k)
		if err != nil {
			return Formation{}, err
		}
		f[t] = v
	}
	return f, nil
}

func (f Formation) Map() map[string]float64 {
	m := make(map[string]float64, NumTroopTypes)
	for _, t := range TroopTypes {
		m[t.Key()] = f[t]
	}
	return m
}

func (f Formation) MarshalJSON() ([]byte, error) { return marshalTroopMap(f) }

func (f *Formation) UnmarshalJSON(data []byte) error {
	v, err := unmarshalTroopMap(data)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f Formation) MarshalYAML() (any, error) { return f.Map(), nil }

func (f *Formation) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]float64
	if err := value.Decode(&m); err != nil {
		return err
	}
	v, err := FormationFromMap(m)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f Formation) Add(g Formation) Formation {
	return Formation{f[0] + g[0], f[1] + g[1], f[2] + g[2]}
}

func (f Formation) Sub(g Formation) Formation {
	return Formation{f[0] - g[0], f[1] - g[1], f[2] - g[2]}
}

func (f Formation) Scale(s float64) Formation {
	return Formation{f[0] * s, f[1] * s, f[2] * s}
}

func (f Formation) Sum() float64 { return f[0] + f[1] + f[2] }

// L1 is the sum of absolute per-type differences, in [0, 2] for normalised formations.
func (f Formation) L1(g Formation) float64 {
	d := f.Sub(g)
	return math.Abs(d[0]) + math.Abs(d[1]) + math.Abs(d[2])
}

func (f Formation) IsFinite() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Normalize clamps negative fractions to zero and rescales to sum 1.
// It reports false when that is impossible.
func (f Formation) Normalize() (Formation, bool) {
	if !f.IsFinite() {
		return f, false
	}
	for i := range f {
		if f[i] < 0 {
			f[i] = 0
		}
	}
	s := f.Sum()
	if s <= 0 {
		return f, false
	}
	return f.Scale(1 / s), true
}

// Largest returns the dominant type; ties go to the earlier type.
func (f Formation) Largest() TroopType {
	best := Infantry
	for _, t := range TroopTypes[1:] {
		if f[t] > f[best] {
			best = t
		}
	}
	return best
}

func (f Formation) Smallest() TroopType {
	best := Infantry
	for _, t := range TroopTypes[1:] {
		if f[t] < f[best] {
			best = t
		}
	}
	return best
}

// Key buckets a formation at the given granularity (0.01 = whole percents).
func (f Formation) Key(granularity float64) string {
	parts := make([]string, NumTroopTypes)
	for i, v := range f {
		parts[i] = fmt.Sprintf("%d", int(math.Round(v/granularity)))
	}
	return strings.Join(parts, "/")
}

func (f Formation) String() string {
	return fmt.Sprintf("Inf %.0f%% / Cav %.0f%% / Arch %.0f%%", f[0]*100, f[1]*100, f[2]*100)
}
