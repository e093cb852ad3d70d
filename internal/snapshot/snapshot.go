package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"troopcalc/internal/combat"
)

var (
	ErrNotEnoughRows    = errors.New("not enough rows")
	ErrInvalidFormation = errors.New("invalid formation")
	ErrInvalidTroops    = errors.New("invalid troop count")
	ErrInvalidStats     = errors.New("invalid stats")
)

// Header is the first row of every snapshot file.
var Header = []string{"Side", "Type", "Attack", "Defense", "Lethality", "Health", "Formation %", "Total Troops"}

const (
	sideYour  = "Your"
	sideEnemy = "Enemy"
	minFields = 7
	minLines  = 7
)

// formationTolerance is how far a user-entered formation may sum away from 1.
const formationTolerance = 0.001

// Snapshot is everything needed to replay a matchup.
type Snapshot struct {
	You   combat.Side `json:"you"`
	Enemy combat.Side `json:"enemy"`
}

// Template is an empty matchup with even formations.
func Template() Snapshot {
	even := combat.NewFormation(0.33, 0.33, 0.34)
	return Snapshot{
		You:   combat.Side{Formation: even},
		Enemy: combat.Side{Formation: even},
	}
}

// Swap exchanges the two sides.
func (s Snapshot) Swap() Snapshot {
	return Snapshot{You: s.Enemy, Enemy: s.You}
}

// Export writes s as CSV. Formation fractions are written as whole percents.
func Export(w io.Writer, s Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, part := range []struct {
		name string
		side combat.Side
	}{{sideYour, s.You}, {sideEnemy, s.Enemy}} {
		for i, t := range combat.TroopTypes {
			st := part.side.Stats[t]
			troops := ""
			if i == 0 {
				troops = strconv.Itoa(part.side.Troops)
			}
			row := []string{
				part.name,
				t.Key(),
				formatFloat(st.Attack),
				formatFloat(st.Defense),
				formatFloat(st.Lethality),
				formatFloat(st.Health),
				strconv.Itoa(int(math.Round(part.side.Formation[t] * 100))),
				troops,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import reads a snapshot written by Export or by hand. Short rows and rows naming an
// unknown side or type are skipped and numbers that do not parse read as zero.
func Import(r io.Reader) (*Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var lines [][]string
	for _, rec := range records {
		if !blank(rec) {
			lines = append(lines, rec)
		}
	}
	if len(lines) < minLines {
		return nil, fmt.Errorf("read snapshot: %d lines: %w", len(lines), ErrNotEnoughRows)
	}

	s := &Snapshot{}
	for _, rec := range lines[1:] {
		if len(rec) < minFields {
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		var side *combat.Side
		switch {
		case strings.EqualFold(rec[0], sideYour):
			side = &s.You
		case strings.EqualFold(rec[0], sideEnemy):
			side = &s.Enemy
		default:
			continue
		}
		t, err := combat.ParseTroopType(rec[1])
		if err != nil {
			continue
		}
		side.Stats[t] = combat.Stats{
			Attack:    parseFloat(rec[2]),
			Defense:   parseFloat(rec[3]),
			Lethality: parseFloat(rec[4]),
			Health:    parseFloat(rec[5]),
		}
		side.Formation[t] = parseFloat(rec[6]) / 100
		if len(rec) > 7 && rec[7] != "" {
			side.Troops = parseInt(rec[7])
		}
	}
	return s, nil
}

// Validate applies the rules a user-supplied matchup must meet: formations summing to one,
// finite stats and non-negative troops. requireTroops additionally demands a positive
// troop count on both sides.
func (s Snapshot) Validate(requireTroops bool) error {
	for _, part := range []struct {
		name string
		side combat.Side
	}{{"you", s.You}, {"enemy", s.Enemy}} {
		if err := ValidateSide(part.side, requireTroops); err != nil {
			return fmt.Errorf("%s: %w", part.name, err)
		}
	}
	return nil
}

// ValidateOptimize requires a usable side of your own. The enemy formation only matters
// when its stats are known or the grid search is requested.
func (s Snapshot) ValidateOptimize(grid bool) error {
	if err := ValidateSide(s.You, true); err != nil {
		return fmt.Errorf("you: %w", err)
	}
	if grid || !s.Enemy.Stats.IsZero() {
		if err := ValidateSide(s.Enemy, false); err != nil {
			return fmt.Errorf("enemy: %w", err)
		}
	} else if s.Enemy.Troops < 0 {
		return fmt.Errorf("enemy: %w: %d", ErrInvalidTroops, s.Enemy.Troops)
	}
	return nil
}

func ValidateSide(side combat.Side, requireTroops bool) error {
	f := side.Formation
	if !f.IsFinite() || math.Abs(f.Sum()-1) > formationTolerance {
		return fmt.Errorf("%w: %v sums to %.3f", ErrInvalidFormation, f, f.Sum())
	}
	for _, v := range f {
		if v < 0 {
			return fmt.Errorf("%w: negative share in %v", ErrInvalidFormation, f)
		}
	}
	if side.Troops < 0 || (requireTroops && side.Troops == 0) {
		return fmt.Errorf("%w: %d", ErrInvalidTroops, side.Troops)
	}
	if !side.Stats.IsFinite() {
		return ErrInvalidStats
	}
	return nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// parseFloat reads the longest leading number, so "30%" is 30; anything else is 0.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(floatPrefix.FindString(strings.TrimSpace(s)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseInt reads the leading integer digits: "7000.9" is 7000, "1e5" is 1.
func parseInt(s string) int {
	v, err := strconv.Atoi(intPrefix.FindString(strings.TrimSpace(s)))
	if err != nil {
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
