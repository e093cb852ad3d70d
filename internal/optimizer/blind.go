package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"troopcalc/internal/combat"
	"troopcalc/internal/util"
)

type scenarioSummary struct {
	formation combat.Formation
	weighted  float64
	best      combat.MatchResult
	worst     combat.MatchResult
	bestID    string
	bestDesc  string
}

// OptimizeBlind recommends formations without enemy stats by scoring candidates against a
// sample of common enemy formations. A zero enemyTroops assumes an even fight.
func (o *Optimizer) OptimizeBlind(ctx context.Context, you combat.Side, enemyTroops int) (*Report, error) {
	style := o.Detector.Detect(you.Stats)
	if enemyTroops <= 0 {
		enemyTroops = you.Troops
	}
	candidates := o.BlindCandidates(style)
	scenarios := SampleScenarios(o.meta, o.Blind.Scenarios, o.Blind.ScenarioJitter, o.Rng)

	summaries := make([]scenarioSummary, 0, len(candidates))
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s, ok := o.scoreCandidate(you, cand, scenarios, enemyTroops); ok {
			summaries = append(summaries, s)
		}
	}
	sortByWeighted(summaries)

	report := &Report{Mode: ModeBlind, Playstyle: style, Scenarios: scenarios}
	for _, s := range o.topBlind(summaries, you, scenarios, enemyTroops) {
		report.Recommendations = append(report.Recommendations, o.blindRecommendation(style, s))
	}

	fields := []zap.Field{
		zap.String("mode", string(ModeBlind)),
		zap.String("playstyle", string(style)),
		zap.Int("candidates", len(candidates)),
		zap.Int("scenarios", len(scenarios)),
	}
	if len(report.Recommendations) > 0 {
		fields = append(fields, zap.Float64("best_ratio", report.Recommendations[0].Ratio))
	}
	o.Logger.Info("optimization complete", fields...)
	return report, nil
}

// BlindCandidates expands the archetype bases for style with random variants and keeps
// the normalized formations that are distinct at the grouping granularity.
func (o *Optimizer) BlindCandidates(style combat.Playstyle) []combat.Formation {
	var raw []combat.Formation
	for _, base := range o.book.For(style) {
		raw = append(raw, base)
		for i := 0; i < o.Blind.Variants; i++ {
			v := base
			for _, t := range combat.TroopTypes {
				v[t] += util.Jitter(o.Rng, o.Blind.VariantJitter)
			}
			raw = append(raw, v)
		}
	}

	seen := map[string]bool{}
	var out []combat.Formation
	for _, f := range raw {
		norm, ok := f.Normalize()
		if !ok {
			continue
		}
		key := norm.Key(o.Blind.GroupGranularity)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, norm)
	}
	if len(out) == 0 {
		out = append(out, o.Constraints.Fallback)
	}
	return out
}

// topBlind walks the ranked summaries, rounds each formation to the 5% grid, drops
// duplicates and formations the rounding made invalid, and rescores the survivors.
func (o *Optimizer) topBlind(ranked []scenarioSummary, you combat.Side, scenarios []Scenario, enemyTroops int) []scenarioSummary {
	seen := map[combat.Formation]bool{}
	var out []scenarioSummary
	for _, s := range ranked {
		if len(out) == o.Blind.TopK {
			break
		}
		r := o.Constraints.RoundTo5Percent(s.formation)
		if seen[r] || !o.Constraints.Validate(r) {
			continue
		}
		seen[r] = true
		if rs, ok := o.scoreCandidate(you, r, scenarios, enemyTroops); ok {
			out = append(out, rs)
		}
	}
	if len(out) == 0 {
		if rs, ok := o.scoreCandidate(you, o.Constraints.Fallback, scenarios, enemyTroops); ok {
			out = append(out, rs)
		}
	}
	sortByWeighted(out)
	return out
}

func sortByWeighted(s []scenarioSummary) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].weighted > s[j].weighted })
}

func (o *Optimizer) scoreCandidate(you combat.Side, cand combat.Formation, scenarios []Scenario, enemyTroops int) (scenarioSummary, bool) {
	you.Formation = cand
	s := scenarioSummary{formation: cand}
	sum, weights := 0.0, 0.0
	for i, sc := range scenarios {
		enemy := combat.Side{Stats: o.placeholder, Formation: sc.Formation, Troops: enemyTroops}
		res := o.Rules.RunMatch(you, enemy)
		sum += sc.Weight * res.Ratio
		weights += sc.Weight
		if i == 0 || res.Ratio > s.best.Ratio {
			s.best, s.bestID, s.bestDesc = res, sc.ID, sc.Description
		}
		if i == 0 || res.Ratio < s.worst.Ratio {
			s.worst = res
		}
	}
	if weights <= 0 {
		return s, false
	}
	s.weighted = sum / weights
	return s, true
}

func (o *Optimizer) blindRecommendation(style combat.Playstyle, s scenarioSummary) Recommendation {
	res := s.best
	res.Formation = s.formation
	res.Ratio = math.Round(s.weighted*10000) / 10000
	res.WinPercentage = math.Round((s.best.WinPercentage+s.worst.WinPercentage)*5) / 10
	return Recommendation{
		MatchResult:  res,
		BestRatio:    s.best.Ratio,
		WorstRatio:   s.worst.Ratio,
		Consistency:  math.Round((s.best.Ratio-s.worst.Ratio)*10000) / 10000,
		Playstyle:    style,
		BestScenario: s.bestID,
		Description:  fmt.Sprintf("%s build, strongest against %s (%s)", style, s.bestID, s.bestDesc),
	}
}
