package config

// Config bundles every tunable table the engine reads.
type Config struct {
	Balance BalanceConfig `yaml:"balance"`
	Search  SearchConfig  `yaml:"search"`
	Blind   BlindConfig   `yaml:"meta"`
}

func ratios(inf, cav, arch float64) map[string]float64 {
	return map[string]float64{"Inf": inf, "Cav": cav, "Arch": arch}
}

// Default returns a freshly allocated configuration matching assets/*.yaml.
func Default() *Config {
	return &Config{
		Balance: BalanceConfig{
			Alpha:        0.7,
			Beta:         0.3,
			WinSteepness: 8.0,
			Advantage: map[string]map[string]float64{
				"Inf":  {"Inf": 1.0, "Cav": 1.35, "Arch": 0.75},
				"Cav":  {"Inf": 0.75, "Cav": 1.0, "Arch": 1.35},
				"Arch": {"Inf": 1.35, "Cav": 0.75, "Arch": 1.0},
			},
			Synergy: SynergyConfig{
				Enabled:   true,
				Weight:    0.03,
				Reference: ratios(0.30, 0.20, 0.50),
				Roles: []RoleBonus{
					{ID: "archer_backbone", Type: "Arch", Min: 0.40, Max: 0.60, Inside: 1.02, Outside: 1.0, Note: "archers carry damage from the back line"},
					{ID: "infantry_frontline", Type: "Inf", Min: 0.25, Max: 0.40, Inside: 1.01, Outside: 0.99},
					{ID: "cavalry_flank", Type: "Cav", Min: 0.10, Max: 0.30, Inside: 1.0, Outside: 0.98, Note: "overcommitted cavalry gets picked off"},
				},
			},
		},
		Search: SearchConfig{
			Constraints: ConstraintsConfig{
				Bands: map[string]Band{
					"Inf":  {Min: 0.15, Max: 0.60},
					"Cav":  {Min: 0.10, Max: 0.55},
					"Arch": {Min: 0.15, Max: 0.60},
				},
				SumTolerance: 0.01,
				MaxDominance: 2.5,
				Perturbation: 0.075,
				Attempts:     10,
				Fallback:     ratios(0.30, 0.20, 0.50),
				Neutral:      ratios(0.33, 0.33, 0.34),
			},
			Genetic: GeneticConfig{
				PopulationSize: 60,
				Generations:    30,
				TournamentSize: 3,
				MutationRate:   0.12,
				CrossoverNoise: 0.05,
				MutationNoise:  0.05,
				TopK:           5,
				Fitness:        FitnessWeights{Ratio: 0.5, Win: 0.3, Efficiency: 0.2},
				InvalidPenalty: 0.5,
				IdealBands: map[string]Band{
					"Inf":  {Min: 0.25, Max: 0.45},
					"Cav":  {Min: 0.15, Max: 0.35},
					"Arch": {Min: 0.35, Max: 0.55},
				},
				IdealFalloff:  0.20,
				SpreadLimit:   3.0,
				SpreadPenalty: 0.8,
			},
			Playstyle: PlaystyleConfig{
				AttackWeight:    0.6,
				LethalityWeight: 0.4,
				DefenseWeight:   0.5,
				HealthWeight:    0.5,
				OffenseShare:    0.7,
				DefenseShare:    0.3,
				Dominant:        0.38,
				Hybrid:          0.30,
			},
		},
		Blind: BlindConfig{
			Scenarios:        8,
			ScenarioJitter:   0.04,
			Variants:         3,
			VariantJitter:    0.05,
			GroupGranularity: 0.01,
			TopK:             5,
			PlaceholderStats: StatsDef{Attack: 500, Defense: 500, Lethality: 400, Health: 400},
			Meta: []MetaFormation{
				{ID: "standard", Description: "Reference 3/2/5 split", Weight: 0.20, Formation: ratios(0.30, 0.20, 0.50)},
				{ID: "archer_heavy", Description: "Archer carry behind a thin line", Weight: 0.15, Formation: ratios(0.25, 0.15, 0.60)},
				{ID: "balanced_thirds", Description: "Even split across all types", Weight: 0.13, Formation: ratios(0.34, 0.33, 0.33)},
				{ID: "infantry_wall", Description: "Heavy infantry front", Weight: 0.12, Formation: ratios(0.50, 0.20, 0.30)},
				{ID: "inf_arch_core", Description: "Infantry screen with archer core", Weight: 0.12, Formation: ratios(0.40, 0.15, 0.45)},
				{ID: "cavalry_rush", Description: "Cavalry-led dive", Weight: 0.10, Formation: ratios(0.25, 0.45, 0.30)},
				{ID: "cav_arch_flank", Description: "Mobile cavalry and archers", Weight: 0.10, Formation: ratios(0.20, 0.30, 0.50)},
				{ID: "bruiser", Description: "Melee-heavy brawl", Weight: 0.08, Formation: ratios(0.40, 0.35, 0.25)},
			},
			Archetypes: map[string][]map[string]float64{
				"infantry":         {ratios(0.45, 0.20, 0.35), ratios(0.40, 0.15, 0.45), ratios(0.50, 0.15, 0.35)},
				"cavalry":          {ratios(0.30, 0.35, 0.35), ratios(0.25, 0.30, 0.45), ratios(0.30, 0.40, 0.30)},
				"archer":           {ratios(0.25, 0.15, 0.60), ratios(0.30, 0.15, 0.55), ratios(0.20, 0.20, 0.60)},
				"infantry_cavalry": {ratios(0.40, 0.30, 0.30), ratios(0.35, 0.35, 0.30), ratios(0.40, 0.25, 0.35)},
				"infantry_archer":  {ratios(0.40, 0.15, 0.45), ratios(0.35, 0.15, 0.50), ratios(0.45, 0.10, 0.45)},
				"cavalry_archer":   {ratios(0.20, 0.30, 0.50), ratios(0.25, 0.25, 0.50), ratios(0.20, 0.35, 0.45)},
				"balanced":         {ratios(0.30, 0.20, 0.50), ratios(0.35, 0.25, 0.40), ratios(0.35, 0.30, 0.35)},
			},
		},
	}
}
