package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

var troopKeys = []string{"Inf", "Cav", "Arch"}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// loadOptional decodes path over out; a missing file leaves out untouched.
func loadOptional(path string, out any) error {
	err := loadYAML(path, out)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadAll reads balance.yaml, search.yaml and meta.yaml from dir on top of Default().
// An empty dir yields the defaults.
func LoadAll(dir string) (*Config, error) {
	cfg := Default()
	if dir == "" {
		return cfg, nil
	}
	if err := loadOptional(filepath.Join(dir, "balance.yaml"), &cfg.Balance); err != nil {
		return nil, err
	}
	if err := loadOptional(filepath.Join(dir, "search.yaml"), &cfg.Search); err != nil {
		return nil, err
	}
	if err := loadOptional(filepath.Join(dir, "meta.yaml"), &cfg.Blind); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders a config or one of its sections as YAML.
func Marshal(section any) ([]byte, error) {
	return yaml.Marshal(section)
}

func (c *Config) Validate() error {
	for _, a := range troopKeys {
		row, ok := c.Balance.Advantage[a]
		if !ok {
			return fmt.Errorf("%w: advantage row %s missing", ErrInvalidConfig, a)
		}
		for _, b := range troopKeys {
			if v, ok := row[b]; !ok || v <= 0 || math.IsNaN(v) {
				return fmt.Errorf("%w: advantage %s/%s must be positive", ErrInvalidConfig, a, b)
			}
		}
		band, ok := c.Search.Constraints.Bands[a]
		if !ok || band.Min < 0 || band.Max > 1 || band.Min > band.Max {
			return fmt.Errorf("%w: band %s", ErrInvalidConfig, a)
		}
	}
	g := c.Search.Genetic
	if g.PopulationSize < 2 || g.Generations < 0 || g.TournamentSize < 1 || g.TopK < 1 {
		return fmt.Errorf("%w: genetic sizes (population %d, generations %d, tournament %d, top_k %d)",
			ErrInvalidConfig, g.PopulationSize, g.Generations, g.TournamentSize, g.TopK)
	}
	if g.MutationRate < 0 || g.MutationRate > 1 {
		return fmt.Errorf("%w: mutation_rate %.3f", ErrInvalidConfig, g.MutationRate)
	}
	if c.Search.Constraints.Attempts < 1 {
		return fmt.Errorf("%w: constraints.attempts must be >= 1", ErrInvalidConfig)
	}
	b := c.Blind
	if b.Scenarios < 1 || b.TopK < 1 || b.GroupGranularity <= 0 {
		return fmt.Errorf("%w: blind sizes", ErrInvalidConfig)
	}
	if len(b.Meta) == 0 {
		return fmt.Errorf("%w: blind meta table is empty", ErrInvalidConfig)
	}
	total := 0.0
	for _, m := range b.Meta {
		if m.Weight < 0 {
			return fmt.Errorf("%w: meta %s has negative weight", ErrInvalidConfig, m.ID)
		}
		total += m.Weight
	}
	if total <= 0 {
		return fmt.Errorf("%w: meta weights sum to %.3f", ErrInvalidConfig, total)
	}
	if len(b.Archetypes["balanced"]) == 0 {
		return fmt.Errorf("%w: archetype \"balanced\" is required as fallback", ErrInvalidConfig)
	}
	return nil
}
