package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"troopcalc/internal/api"
	"troopcalc/internal/combat"
	"troopcalc/internal/config"
	"troopcalc/internal/observability"
	"troopcalc/internal/optimizer"
	"troopcalc/internal/snapshot"
)

func main() {
	var cfgDir, addr, snapPath, out string
	var seed int64
	var n, workers int
	var timeout time.Duration
	var verbose bool
	flag.StringVar(&cfgDir, "config", "assets", "config dir")
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&snapPath, "snapshot", "", "snapshot CSV; when set, run a batch sweep instead of serving")
	flag.StringVar(&out, "out", "sweep.json", "batch summary file")
	flag.Int64Var(&seed, "seed", 12345, "seed")
	flag.IntVar(&n, "n", 50, "number of optimizer runs in a batch")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "batch workers")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-request optimisation timeout")
	flag.BoolVar(&verbose, "verbose", false, "debug logging")
	flag.Parse()

	logger, err := observability.NewLogger(verbose)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadAll(cfgDir)
	if err != nil {
		logger.Fatal("load config", zap.String("dir", cfgDir), zap.Error(err))
	}

	if snapPath != "" {
		if err := runBatch(cfg, logger, snapPath, out, n, workers, seed); err != nil {
			logger.Fatal("batch", zap.Error(err))
		}
		return
	}
	if err := serve(cfg, logger, addr, timeout, seed); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

func runBatch(cfg *config.Config, logger *zap.Logger, snapPath, out string, n, workers int, seed int64) error {
	f, err := os.Open(snapPath)
	if err != nil {
		return err
	}
	snap, err := snapshot.Import(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", snapPath, err)
	}
	if err := snap.ValidateOptimize(false); err != nil {
		return err
	}

	start := time.Now()
	sum, err := optimizer.Sweep(context.Background(), cfg, snap.You, snap.Enemy, n, workers, seed, logger)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, combat.MarshalPretty(sum), 0644); err != nil {
		return err
	}
	fmt.Printf("Batch %d (%s) done in %s: %s chosen %.0f%% of runs -> %s\n",
		n, sum.Mode, time.Since(start).Round(time.Millisecond), sum.Consensus,
		sum.ConsensusRate*100, filepath.Base(out))
	return nil
}

func serve(cfg *config.Config, logger *zap.Logger, addr string, timeout time.Duration, seed int64) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv, err := api.NewServer(cfg, api.Options{
		Timeout:  timeout,
		Seed:     seed,
		Logger:   logger,
		Metrics:  observability.NewMetrics("simsvc", reg),
		Gatherer: reg,
	})
	if err != nil {
		return err
	}
	httpSrv := &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("simsvc listening", zap.String("addr", addr), zap.Duration("timeout", timeout))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
