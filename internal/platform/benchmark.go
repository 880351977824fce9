package platform

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BenchmarkConfig struct {
	Run     RunConfig
	Runs    int
	Workers int
}

// Benchmark repeats cfg.Run with seeds Seed, Seed+1, ... on at most Workers
// goroutines. Every run gets its own Breeder, so no randomness source is
// shared. Results keep the run order. Only the base seed is taken from the
// clock when it is 0; a derived seed that happens to be 0 is used as is.
func (r *Runner) Benchmark(ctx context.Context, cfg BenchmarkConfig) ([]RunResult, error) {
	if cfg.Runs <= 0 {
		return nil, errors.New("benchmark runs must be > 0")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	baseSeed := cfg.Run.Seed
	if baseSeed == 0 {
		baseSeed = r.now().UnixNano()
	}
	prefix := cfg.Run.RunID
	if prefix == "" {
		prefix = fmt.Sprintf("bench-%d", baseSeed)
	}

	r.logger.Info("benchmark started",
		zap.String("prefix", prefix),
		zap.Int("runs", cfg.Runs),
		zap.Int("workers", workers),
		zap.Int64("base_seed", baseSeed),
	)

	results := make([]RunResult, cfg.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Runs; i++ {
		runCfg := cfg.Run
		runCfg.RunID = fmt.Sprintf("%s-%03d", prefix, i)
		seed := baseSeed + int64(i)
		g.Go(func() error {
			result, err := r.run(gctx, runCfg, seed, nil)
			results[i] = result
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
