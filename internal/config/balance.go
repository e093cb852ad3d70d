package config

// BalanceConfig holds the game-balance table used by the match simulator.
// Troop type keys are the short names Inf, Cav and Arch.
type BalanceConfig struct {
	Alpha        float64                       `yaml:"alpha"`
	Beta         float64                       `yaml:"beta"`
	WinSteepness float64                       `yaml:"win_steepness"`
	Advantage    map[string]map[string]float64 `yaml:"advantage"`
	Synergy      SynergyConfig                 `yaml:"synergy"`
}

type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (b Band) Contains(v float64) bool { return v >= b.Min && v <= b.Max }

// SynergyConfig biases the match ratio toward a reference formation.
type SynergyConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Weight    float64            `yaml:"weight"`
	Reference map[string]float64 `yaml:"reference"`
	Roles     []RoleBonus        `yaml:"roles"`
}

// RoleBonus multiplies the ratio by Inside when the fraction of Type lies in
// [Min, Max] and by Outside otherwise. 1.0 is neutral.
type RoleBonus struct {
	ID      string  `yaml:"id"`
	Type    string  `yaml:"type"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Inside  float64 `yaml:"inside"`
	Outside float64 `yaml:"outside"`
	Note    string  `yaml:"note"`
}
