package optimizer

import (
	"fmt"

	"troopcalc/internal/combat"
)

// ArchetypeBook maps a playstyle to the base formations worth trying for it.
type ArchetypeBook struct {
	byStyle map[combat.Playstyle][]combat.Formation
}

func NewArchetypeBook(table map[string][]map[string]float64) (*ArchetypeBook, error) {
	ab := &ArchetypeBook{byStyle: map[combat.Playstyle][]combat.Formation{}}
	for style, rows := range table {
		for i, row := range rows {
			f, err := combat.FormationFromMap(row)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", style, i, err)
			}
			ab.byStyle[combat.Playstyle(style)] = append(ab.byStyle[combat.Playstyle(style)], f)
		}
	}
	return ab, nil
}

// For returns the bases for style, falling back to the balanced bucket.
func (ab *ArchetypeBook) For(style combat.Playstyle) []combat.Formation {
	if ab == nil {
		return nil
	}
	if v := ab.byStyle[style]; len(v) > 0 {
		return v
	}
	return ab.byStyle[combat.PlaystyleBalanced]
}
