package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"troopcalc/internal/config"
	"troopcalc/internal/observability"
	"troopcalc/internal/snapshot"
)

type globalFlags struct {
	configDir string
	seed      int64
	verbose   bool
	alpha     float64
	beta      float64
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "troopcalc",
		Short: "Troop formation damage calculator and optimizer",
		Long: `Estimates the effective damage ratio between two armies split across infantry,
cavalry and archers, and searches for the formation that does best against a known
or unknown enemy.`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configDir, "config", "assets", "directory holding balance.yaml, search.yaml and meta.yaml")
	pf.Int64Var(&g.seed, "seed", 0, "random seed (0 = time seeded, overrides search.yaml)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")
	pf.Float64Var(&g.alpha, "alpha", 0, "defense mitigation exponent (overrides balance.yaml)")
	pf.Float64Var(&g.beta, "beta", 0, "health mitigation exponent (overrides balance.yaml)")

	root.AddCommand(
		newMatchCmd(g),
		newOptimizeCmd(g),
		newTemplateCmd(),
		newConfigCmd(g),
		newServeCmd(g),
	)
	return root
}

// load reads the config tables and applies the flag overrides.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadAll(g.configDir)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("alpha") {
		cfg.Balance.Alpha = g.alpha
	}
	if flags.Changed("beta") {
		cfg.Balance.Beta = g.beta
	}
	if flags.Changed("seed") {
		cfg.Search.Seed = g.seed
	}
	return cfg, nil
}

func (g *globalFlags) logger() (*zap.Logger, error) {
	return observability.NewLogger(g.verbose)
}

func readSnapshot(path string) (*snapshot.Snapshot, error) {
	if path == "" {
		return nil, fmt.Errorf("--snapshot is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := snapshot.Import(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
