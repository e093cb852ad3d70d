package combat

import (
	"fmt"

	"troopcalc/internal/config"
)

// Rules is the runtime form of config.BalanceConfig.
type Rules struct {
	Alpha        float64
	Beta         float64
	WinSteepness float64
	// Matrix[you][enemy] is the multiplier your type gets against the enemy type.
	Matrix  [NumTroopTypes][NumTroopTypes]float64
	Synergy Synergy
}

// Synergy is a deliberate bias toward Reference. It is game-balance tuning, not part of
// the damage model, and can be switched off.
type Synergy struct {
	Enabled   bool
	Weight    float64
	Reference Formation
	Roles     []RoleBonus
}

type RoleBonus struct {
	ID      string
	Type    TroopType
	Band    config.Band
	Inside  float64
	Outside float64
}

func NewRules(cfg *config.BalanceConfig) (*Rules, error) {
	r := &Rules{
		Alpha:        cfg.Alpha,
		Beta:         cfg.Beta,
		WinSteepness: cfg.WinSteepness,
	}
	for yk, row := range cfg.Advantage {
		you, err := ParseTroopType(yk)
		if err != nil {
			return nil, fmt.Errorf("advantage row: %w", err)
		}
		for ek, v := range row {
			enemy, err := ParseTroopType(ek)
			if err != nil {
				return nil, fmt.Errorf("advantage %s: %w", yk, err)
			}
			r.Matrix[you][enemy] = v
		}
	}

	ref, err := FormationFromMap(cfg.Synergy.Reference)
	if err != nil {
		return nil, fmt.Errorf("synergy reference: %w", err)
	}
	r.Synergy = Synergy{Enabled: cfg.Synergy.Enabled, Weight: cfg.Synergy.Weight, Reference: ref}
	for _, rb := range cfg.Synergy.Roles {
		t, err := ParseTroopType(rb.Type)
		if err != nil {
			return nil, fmt.Errorf("synergy role %s: %w", rb.ID, err)
		}
		role := RoleBonus{
			ID:      rb.ID,
			Type:    t,
			Band:    config.Band{Min: rb.Min, Max: rb.Max},
			Inside:  rb.Inside,
			Outside: rb.Outside,
		}
		// an omitted multiplier is neutral
		if role.Inside == 0 {
			role.Inside = 1
		}
		if role.Outside == 0 {
			role.Outside = 1
		}
		r.Synergy.Roles = append(r.Synergy.Roles, role)
	}
	return r, nil
}

func DefaultRules() *Rules {
	r, err := NewRules(&config.Default().Balance)
	if err != nil {
		panic(err)
	}
	return r
}

// WithExponents returns a copy using the given mitigation exponents.
func (r *Rules) WithExponents(alpha, beta float64) *Rules {
	cp := *r
	cp.Alpha, cp.Beta = alpha, beta
	cp.Synergy.Roles = append([]RoleBonus(nil), r.Synergy.Roles...)
	return &cp
}

// WithoutSynergy returns a copy with the synergy layer disabled.
func (r *Rules) WithoutSynergy() *Rules {
	cp := *r
	cp.Synergy.Enabled = false
	cp.Synergy.Roles = append([]RoleBonus(nil), r.Synergy.Roles...)
	return &cp
}

// Advantage weights your type's matchup row by the enemy's formation.
func (r *Rules) Advantage(you TroopType, enemy Formation) float64 {
	adv := 0.0
	for _, t := range TroopTypes {
		adv += enemy[t] * r.Matrix[you][t]
	}
	return adv
}
