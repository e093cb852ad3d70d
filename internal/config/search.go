package config

type SearchConfig struct {
	Seed        int64             `yaml:"seed"`
	Constraints ConstraintsConfig `yaml:"constraints"`
	Genetic     GeneticConfig     `yaml:"genetic"`
	Playstyle   PlaystyleConfig   `yaml:"playstyle"`
}

// ConstraintsConfig describes the admissible formation space for generated candidates.
type ConstraintsConfig struct {
	Bands        map[string]Band    `yaml:"bands"`
	SumTolerance float64            `yaml:"sum_tolerance"`
	MaxDominance float64            `yaml:"max_dominance"`
	Perturbation float64            `yaml:"perturbation"`
	Attempts     int                `yaml:"attempts"`
	Fallback     map[string]float64 `yaml:"fallback"`
	Neutral      map[string]float64 `yaml:"neutral"`
}

type GeneticConfig struct {
	PopulationSize int             `yaml:"population_size"`
	Generations    int             `yaml:"generations"`
	TournamentSize int             `yaml:"tournament_size"`
	MutationRate   float64         `yaml:"mutation_rate"`
	CrossoverNoise float64         `yaml:"crossover_noise"`
	MutationNoise  float64         `yaml:"mutation_noise"`
	TopK           int             `yaml:"top_k"`
	Fitness        FitnessWeights  `yaml:"fitness"`
	InvalidPenalty float64         `yaml:"invalid_penalty"`
	IdealBands     map[string]Band `yaml:"ideal_bands"`
	IdealFalloff   float64         `yaml:"ideal_falloff"`
	SpreadLimit    float64         `yaml:"spread_limit"`
	SpreadPenalty  float64         `yaml:"spread_penalty"`
}

type FitnessWeights struct {
	Ratio      float64 `yaml:"ratio"`
	Win        float64 `yaml:"win"`
	Efficiency float64 `yaml:"efficiency"`
}

type PlaystyleConfig struct {
	AttackWeight    float64 `yaml:"attack_weight"`
	LethalityWeight float64 `yaml:"lethality_weight"`
	DefenseWeight   float64 `yaml:"defense_weight"`
	HealthWeight    float64 `yaml:"health_weight"`
	OffenseShare    float64 `yaml:"offense_share"`
	DefenseShare    float64 `yaml:"defense_share"`
	Dominant        float64 `yaml:"dominant"`
	Hybrid          float64 `yaml:"hybrid"`
}
