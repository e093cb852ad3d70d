package optimizer

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"troopcalc/internal/combat"
	"troopcalc/internal/config"
	"troopcalc/internal/util"
)

type Mode string

const (
	ModeKnown Mode = "known"
	ModeBlind Mode = "blind"
	ModeGrid  Mode = "grid"
)

// Recommendation is one suggested formation. The embedded result is the match the
// formation was judged on; blind recommendations also carry their scenario spread.
type Recommendation struct {
	combat.MatchResult
	Fitness      float64          `json:"fitness,omitempty"`
	BestRatio    float64          `json:"best_ratio,omitempty"`
	WorstRatio   float64          `json:"worst_ratio,omitempty"`
	Consistency  float64          `json:"consistency,omitempty"`
	Playstyle    combat.Playstyle `json:"playstyle,omitempty"`
	BestScenario string           `json:"best_scenario,omitempty"`
	Description  string           `json:"description,omitempty"`
}

type Report struct {
	Mode            Mode              `json:"mode"`
	Playstyle       combat.Playstyle  `json:"playstyle,omitempty"`
	Recommendations []Recommendation  `json:"recommendations"`
	Generations     []GenerationStats `json:"generations,omitempty"`
	Scenarios       []Scenario        `json:"scenarios,omitempty"`
}

// Optimizer owns an rng and is not safe for concurrent use.
type Optimizer struct {
	Rules       *combat.Rules
	Constraints *combat.Constraints
	Detector    *combat.PlaystyleDetector
	Genetic     config.GeneticConfig
	Blind       config.BlindConfig
	Rng         *rand.Rand
	Logger      *zap.Logger

	// OnGenerationComplete, when set, observes every generation of the known-enemy search.
	OnGenerationComplete func(GenerationStats)

	idealBands  [combat.NumTroopTypes]config.Band
	book        *ArchetypeBook
	meta        []Scenario
	placeholder combat.StatProfile
}

// New builds an optimizer from cfg. A nil rng is seeded from cfg.Search.Seed and a nil
// logger discards everything.
func New(cfg *config.Config, rng *rand.Rand, logger *zap.Logger) (*Optimizer, error) {
	rules, err := combat.NewRules(&cfg.Balance)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	cons, err := combat.NewConstraints(&cfg.Search.Constraints)
	if err != nil {
		return nil, fmt.Errorf("constraints: %w", err)
	}
	book, err := NewArchetypeBook(cfg.Blind.Archetypes)
	if err != nil {
		return nil, fmt.Errorf("archetypes: %w", err)
	}
	meta, err := scenarioTable(cfg.Blind.Meta)
	if err != nil {
		return nil, fmt.Errorf("meta: %w", err)
	}
	if rng == nil {
		rng = util.New(cfg.Search.Seed)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Optimizer{
		Rules:       rules,
		Constraints: cons,
		Detector:    combat.NewPlaystyleDetector(cfg.Search.Playstyle),
		Genetic:     cfg.Search.Genetic,
		Blind:       cfg.Blind,
		Rng:         rng,
		Logger:      logger,
		book:        book,
		meta:        meta,
	}
	for k, b := range cfg.Search.Genetic.IdealBands {
		t, err := combat.ParseTroopType(k)
		if err != nil {
			return nil, fmt.Errorf("ideal band: %w", err)
		}
		o.idealBands[t] = b
	}
	ps := cfg.Blind.PlaceholderStats
	o.placeholder = combat.UniformProfile(combat.Stats{
		Attack: ps.Attack, Defense: ps.Defense, Lethality: ps.Lethality, Health: ps.Health,
	})
	return o, nil
}

// Recommend runs the blind search when nothing is known about the enemy's stats and the
// genetic search otherwise.
func (o *Optimizer) Recommend(ctx context.Context, you, enemy combat.Side) (*Report, error) {
	if enemy.Stats.IsZero() {
		return o.OptimizeBlind(ctx, you, enemy.Troops)
	}
	return o.OptimizeKnown(ctx, you, enemy)
}
