package optimizer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"troopcalc/internal/combat"
	"troopcalc/internal/config"
	"troopcalc/internal/util"
)

// seedStride spaces the per-run seeds of a sweep.
const seedStride = 7919

// SweepSummary aggregates many seeded runs of Recommend over one matchup.
type SweepSummary struct {
	Runs          int              `json:"runs"`
	Seed          int64            `json:"seed"`
	Mode          Mode             `json:"mode"`
	TopCounts     map[string]int   `json:"top_counts"`
	Consensus     combat.Formation `json:"consensus"`
	ConsensusRate float64          `json:"consensus_rate"`
	MeanTopRatio  float64          `json:"mean_top_ratio"`
	MinTopRatio   float64          `json:"min_top_ratio"`
	MaxTopRatio   float64          `json:"max_top_ratio"`
}

// runSeed derives the seed of run i. It is never zero, so no run falls back to a time seed.
func runSeed(seed int64, i int) int64 {
	s := seed + int64(i+1)*seedStride
	if s == 0 {
		s = seedStride
	}
	return s
}

// Sweep runs Recommend n times with seeds derived from seed across a pool of workers and
// reports how stable the top recommendation is. A zero seed picks one from the clock and
// records it in the summary. Each run owns its optimizer.
func Sweep(ctx context.Context, cfg *config.Config, you, enemy combat.Side, n, workers int, seed int64, logger *zap.Logger) (*SweepSummary, error) {
	if n < 1 {
		return nil, fmt.Errorf("sweep needs at least one run, got %d", n)
	}
	if workers < 1 {
		workers = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	type outcome struct {
		mode Mode
		top  *Recommendation
		err  error
	}
	results := make([]outcome, n)
	jobs := make(chan int, n)
	wg := sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				o, err := New(cfg, util.New(runSeed(seed, i)), logger)
				if err != nil {
					results[i].err = err
					continue
				}
				rep, err := o.Recommend(ctx, you, enemy)
				if err != nil {
					results[i].err = err
					continue
				}
				results[i].mode = rep.Mode
				if len(rep.Recommendations) > 0 {
					results[i].top = &rep.Recommendations[0]
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sum := &SweepSummary{Runs: n, Seed: seed, TopCounts: map[string]int{}}
	formations := map[string]combat.Formation{}
	total, counted := 0.0, 0
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		sum.Mode = r.mode
		if r.top == nil {
			continue
		}
		key := r.top.Formation.Key(0.05)
		sum.TopCounts[key]++
		formations[key] = r.top.Formation
		if counted == 0 || r.top.Ratio < sum.MinTopRatio {
			sum.MinTopRatio = r.top.Ratio
		}
		if counted == 0 || r.top.Ratio > sum.MaxTopRatio {
			sum.MaxTopRatio = r.top.Ratio
		}
		total += r.top.Ratio
		counted++
	}
	if counted == 0 {
		return sum, nil
	}
	sum.MeanTopRatio = total / float64(counted)

	keys := make([]string, 0, len(sum.TopCounts))
	for k := range sum.TopCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if sum.TopCounts[k] > sum.TopCounts[best] {
			best = k
		}
	}
	sum.Consensus = formations[best]
	sum.ConsensusRate = float64(sum.TopCounts[best]) / float64(n)

	logger.Info("sweep complete",
		zap.String("mode", string(sum.Mode)),
		zap.Int("runs", n),
		zap.String("consensus", sum.Consensus.String()),
		zap.Float64("consensus_rate", sum.ConsensusRate))
	return sum, nil
}
