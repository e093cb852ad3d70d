package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"troopcalc/internal/api"
	"troopcalc/internal/combat"
	"troopcalc/internal/config"
	"troopcalc/internal/observability"
	"troopcalc/internal/optimizer"
	"troopcalc/internal/render"
	"troopcalc/internal/snapshot"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMatchCmd(g *globalFlags) *cobra.Command {
	var path string
	var swap, noSynergy, asJSON bool
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Simulate the matchup stored in a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			snap, err := readSnapshot(path)
			if err != nil {
				return err
			}
			if swap {
				*snap = snap.Swap()
			}
			if err := snap.Validate(true); err != nil {
				return err
			}
			rules, err := combat.NewRules(&cfg.Balance)
			if err != nil {
				return err
			}
			if noSynergy {
				rules = rules.WithoutSynergy()
			}
			res := rules.RunMatch(snap.You, snap.Enemy)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return render.New(cmd.OutOrStdout()).Match(res)
		},
	}
	cmd.Flags().StringVarP(&path, "snapshot", "s", "", "snapshot CSV")
	cmd.Flags().BoolVar(&swap, "swap", false, "swap your side with the enemy's")
	cmd.Flags().BoolVar(&noSynergy, "no-synergy", false, "disable the formation synergy bonus")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newOptimizeCmd(g *globalFlags) *cobra.Command {
	var path string
	var grid, blind, asJSON bool
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Recommend formations for the matchup stored in a snapshot",
		Long: `Runs the genetic search when enemy stats are known and the blind multi-scenario
search when they are all zero (or --blind is given). --grid runs the exhaustive 5% grid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			snap, err := readSnapshot(path)
			if err != nil {
				return err
			}
			if blind {
				snap.Enemy.Stats = combat.StatProfile{}
			}
			if err := snap.ValidateOptimize(grid); err != nil {
				return err
			}
			opt, err := optimizer.New(cfg, nil, logger)
			if err != nil {
				return err
			}

			var rep *optimizer.Report
			if grid {
				rep = opt.GridSearch(snap.You, snap.Enemy)
			} else if rep, err = opt.Recommend(cmd.Context(), snap.You, snap.Enemy); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			return render.New(cmd.OutOrStdout()).Report(rep)
		},
	}
	cmd.Flags().StringVarP(&path, "snapshot", "s", "", "snapshot CSV")
	cmd.Flags().BoolVar(&grid, "grid", false, "exhaustive 5% grid search instead of the genetic search")
	cmd.Flags().BoolVar(&blind, "blind", false, "ignore the enemy's stats")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty snapshot CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return snapshot.Export(cmd.OutOrStdout(), snapshot.Template())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := snapshot.Export(f, snapshot.Template()); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration after overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			b, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			reg := prometheus.NewRegistry()
			srv, err := api.NewServer(cfg, api.Options{
				Timeout:  timeout,
				Seed:     cfg.Search.Seed,
				Logger:   logger,
				Metrics:  observability.NewMetrics("", reg),
				Gatherer: reg,
			})
			if err != nil {
				return err
			}
			httpSrv := &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 5 * time.Second}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", zap.String("addr", addr))
				errCh <- httpSrv.ListenAndServe()
			}()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("shutting down", zap.String("signal", sig.String()))
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request optimisation timeout")
	return cmd
}
