package combat

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

type TroopType int

const (
	Infantry TroopType = iota
	Cavalry
	Archer
)

const NumTroopTypes = 3

var TroopTypes = [NumTroopTypes]TroopType{Infantry, Cavalry, Archer}

var (
	troopKeys  = [NumTroopTypes]string{"Inf", "Cav", "Arch"}
	troopNames = [NumTroopTypes]string{"Infantry", "Cavalry", "Archer"}
)

// Key is the short name used by snapshots, config tables and JSON.
func (t TroopType) Key() string {
	if !t.valid() {
		return fmt.Sprintf("TroopType(%d)", int(t))
	}
	return troopKeys[t]
}

func (t TroopType) String() string {
	if !t.valid() {
		return fmt.Sprintf("TroopType(%d)", int(t))
	}
	return troopNames[t]
}

func (t TroopType) valid() bool { return t >= 0 && int(t) < NumTroopTypes }

func ParseTroopType(s string) (TroopType, error) {
	s = strings.TrimSpace(s)
	for _, t := range TroopTypes {
		if strings.EqualFold(s, t.Key()) || strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown troop type %q", s)
}

// Stats are percentage-style bonuses, e.g. Attack 250 means +250%.
type Stats struct {
	Attack    float64 `json:"attack"`
	Defense   float64 `json:"defense"`
	Lethality float64 `json:"lethality"`
	Health    float64 `json:"health"`
}

func (s Stats) IsZero() bool { return s == Stats{} }

func (s Stats) finite() bool {
	for _, v := range []float64{s.Attack, s.Defense, s.Lethality, s.Health} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type StatProfile [NumTroopTypes]Stats

func UniformProfile(s Stats) StatProfile { return StatProfile{s, s, s} }

// IsZero reports the "no intel" sentinel: every stat of every type is zero.
func (p StatProfile) IsZero() bool {
	for _, s := range p {
		if !s.IsZero() {
			return false
		}
	}
	return true
}

func (p StatProfile) IsFinite() bool {
	for _, s := range p {
		if !s.finite() {
			return false
		}
	}
	return true
}

func (p StatProfile) MarshalJSON() ([]byte, error) {
	m := make(map[string]Stats, NumTroopTypes)
	for _, t := range TroopTypes {
		m[t.Key()] = p[t]
	}
	return json.Marshal(m)
}

func (p *StatProfile) UnmarshalJSON(b []byte) error {
	var m map[string]Stats
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out StatProfile
	for k, v := range m {
		t, err := ParseTroopType(k)
		if err != nil {
			return err
		}
		out[t] = v
	}
	*p = out
	return nil
}

// Side is one army: its stats, how it splits troops across types, and its size.
type Side struct {
	Stats     StatProfile `json:"stats"`
	Formation Formation   `json:"formation"`
	Troops    int         `json:"troops"`
}

// Breakdown is a per-type damage figure.
type Breakdown [NumTroopTypes]float64

func (b Breakdown) MarshalJSON() ([]byte, error) { return marshalTroopMap(b) }

func (b *Breakdown) UnmarshalJSON(data []byte) error {
	v, err := unmarshalTroopMap(data)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

type MatchResult struct {
	Formation      Formation `json:"formation"`
	Ratio          float64   `json:"ratio"`
	WinPercentage  float64   `json:"win_percentage"`
	Synergy        float64   `json:"synergy"`
	YourDamage     float64   `json:"your_damage"`
	YourBreakdown  Breakdown `json:"your_breakdown"`
	EnemyDamage    float64   `json:"enemy_damage"`
	EnemyBreakdown Breakdown `json:"enemy_breakdown"`
}

func marshalTroopMap(v [NumTroopTypes]float64) ([]byte, error) {
	m := make(map[string]float64, NumTroopTypes)
	for _, t := range TroopTypes {
		m[t.Key()] = v[t]
	}
	return json.Marshal(m)
}

func unmarshalTroopMap(data []byte) ([NumTroopTypes]float64, error) {
	var out [NumTroopTypes]float64
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return out, err
	}
	for k, v := range m {
		t, err := ParseTroopType(k)
		if err != nil {
			return out, err
		}
		out[t] = v
	}
	return out, nil
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
