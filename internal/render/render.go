// Package render prints matchups and optimizer reports as terminal tables.
package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"troopcalc/internal/combat"
	"troopcalc/internal/optimizer"
)

const (
	favourable   = 1.05
	unfavourable = 0.95
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	goodColor  = color.New(color.FgGreen, color.Bold)
	evenColor  = color.New(color.FgYellow)
	badColor   = color.New(color.FgRed)
)

// RatioColor picks green for a clear edge, red for a clear deficit and yellow otherwise.
func RatioColor(ratio float64) *color.Color {
	switch {
	case ratio >= favourable:
		return goodColor
	case ratio < unfavourable:
		return badColor
	default:
		return evenColor
	}
}

type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer { return &Printer{w: w} }

// Match prints both sides' damage per type followed by the ratio and win chance.
func (p *Printer) Match(res combat.MatchResult) error {
	titleColor.Fprintln(p.w, "Matchup")
	table := tablewriter.NewTable(p.w,
		tablewriter.WithHeader([]string{"Type", "Your Share", "Your Damage", "Enemy Damage"}),
	)
	for _, t := range combat.TroopTypes {
		row := []string{
			t.String(),
			fmt.Sprintf("%.0f%%", res.Formation[t]*100),
			fmt.Sprintf("%.2f", res.YourBreakdown[t]),
			fmt.Sprintf("%.2f", res.EnemyBreakdown[t]),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Append([]string{"Total", "", fmt.Sprintf("%.2f", res.YourDamage), fmt.Sprintf("%.2f", res.EnemyDamage)}); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	c := RatioColor(res.Ratio)
	fmt.Fprintf(p.w, "Damage ratio: %s  (synergy x%.4f)\n", c.Sprintf("%.4f", res.Ratio), res.Synergy)
	fmt.Fprintf(p.w, "Win chance:   %s\n", c.Sprintf("%.1f%%", res.WinPercentage))
	return nil
}

// Report prints the ranked recommendations of an optimizer run.
func (p *Printer) Report(rep *optimizer.Report) error {
	switch rep.Mode {
	case optimizer.ModeBlind:
		titleColor.Fprintf(p.w, "Blind recommendations (playstyle: %s)\n", rep.Playstyle)
	case optimizer.ModeGrid:
		titleColor.Fprintln(p.w, "Grid search results")
	default:
		titleColor.Fprintln(p.w, "Recommended formations")
	}

	header := []string{"#", "Infantry", "Cavalry", "Archer", "Ratio", "Win %"}
	if rep.Mode == optimizer.ModeBlind {
		header = append(header, "Best", "Worst", "Best vs")
	}
	table := tablewriter.NewTable(p.w, tablewriter.WithHeader(header))
	for i, rec := range rep.Recommendations {
		f := rec.Formation
		row := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.0f%%", f[combat.Infantry]*100),
			fmt.Sprintf("%.0f%%", f[combat.Cavalry]*100),
			fmt.Sprintf("%.0f%%", f[combat.Archer]*100),
			RatioColor(rec.Ratio).Sprintf("%.4f", rec.Ratio),
			fmt.Sprintf("%.1f", rec.WinPercentage),
		}
		if rep.Mode == optimizer.ModeBlind {
			row = append(row,
				fmt.Sprintf("%.4f", rec.BestRatio),
				fmt.Sprintf("%.4f", rec.WorstRatio),
				rec.BestScenario)
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if len(rep.Recommendations) == 0 {
		badColor.Fprintln(p.w, "no formation found")
	}
	return nil
}
