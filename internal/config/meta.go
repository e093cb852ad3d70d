package config

// BlindConfig drives the optimizer when nothing is known about the enemy.
type BlindConfig struct {
	Scenarios        int                             `yaml:"scenarios"`
	ScenarioJitter   float64                         `yaml:"scenario_jitter"`
	Variants         int                             `yaml:"variants"`
	VariantJitter    float64                         `yaml:"variant_jitter"`
	GroupGranularity float64                         `yaml:"group_granularity"`
	TopK             int                             `yaml:"top_k"`
	PlaceholderStats StatsDef                        `yaml:"placeholder_stats"`
	Meta             []MetaFormation                 `yaml:"meta"`
	Archetypes       map[string][]map[string]float64 `yaml:"archetypes"`
}

type StatsDef struct {
	Attack    float64 `yaml:"attack"`
	Defense   float64 `yaml:"defense"`
	Lethality float64 `yaml:"lethality"`
	Health    float64 `yaml:"health"`
}

type MetaFormation struct {
	ID          string             `yaml:"id"`
	Description string             `yaml:"description"`
	Weight      float64            `yaml:"weight"`
	Formation   map[string]float64 `yaml:"formation"`
}
