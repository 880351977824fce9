package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weasel/internal/evo"
	"weasel/internal/logging"
	"weasel/internal/metrics"
	"weasel/internal/model"
	"weasel/internal/storage"
)

// RunConfig describes one breeding run. A nil MaxGenerations leaves the run
// bounded only by the target score, while a cap of 0 breeds nothing past the
// seed. Seed 0 seeds from the clock.
type RunConfig struct {
	RunID          string
	Target         string
	Alphabet       string
	PopulationSize int
	MutationRate   evo.Fraction
	Fitness        string
	MaxGenerations *int
	Seed           int64
}

// GenerationReport is handed to an Observer for every generation, starting
// with the seed as generation 0.
type GenerationReport struct {
	RunID       string
	Generation  int
	Text        string
	Score       int
	TargetScore int
}

// Observer receives generation reports in order. Returning an error stops the
// run.
type Observer func(GenerationReport) error

type RunResult struct {
	Record  model.RunRecord
	History []model.GenerationRecord
	Elapsed time.Duration
}

type Config struct {
	Store   storage.Store
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Runner drives Sequences to completion and records what happened.
type Runner struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		store:   cfg.Store,
		metrics: cfg.Metrics,
		logger:  logging.OrNop(cfg.Logger),
		now:     time.Now,
	}
}

// Run breeds until the target score is reached, MaxGenerations is hit, the
// observer fails or ctx is done. Cancellation is only checked between
// generations. A cancelled run is still persisted and its partial result is
// returned alongside ctx's error.
func (r *Runner) Run(ctx context.Context, cfg RunConfig, observe Observer) (RunResult, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = r.now().UnixNano()
	}
	return r.run(ctx, cfg, seed, observe)
}

// run is Run with the seed already resolved; seed is used as given, 0 included.
func (r *Runner) run(ctx context.Context, cfg RunConfig, seed int64, observe Observer) (RunResult, error) {
	fitness, err := evo.ResolveFitness(cfg.Fitness)
	if err != nil {
		return RunResult{}, err
	}
	breeder, err := evo.NewBreeder(evo.BreederConfig{
		Source:         evo.NewRandSource(seed),
		Target:         cfg.Target,
		Alphabet:       cfg.Alphabet,
		PopulationSize: cfg.PopulationSize,
		MutationRate:   cfg.MutationRate,
		Fitness:        fitness,
	})
	if err != nil {
		return RunResult{}, err
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	started := r.now()
	targetScore := fitness.Score(cfg.Target, cfg.Target)
	logger := r.logger.With(zap.String("run_id", runID))
	logger.Info("run started",
		zap.String("target", cfg.Target),
		zap.Int("alphabet_size", len(breeder.Alphabet())),
		zap.Int("population", cfg.PopulationSize),
		zap.Stringer("mutation_rate", cfg.MutationRate),
		zap.String("fitness", fitness.Name()),
		zap.Int64("seed", seed),
		zap.Intp("max_generations", cfg.MaxGenerations),
	)

	seq, seedText := breeder.Start(evo.ScoreGoal(targetScore))
	defer seq.Close()

	emit := func(rec model.GenerationRecord) error {
		if observe == nil {
			return nil
		}
		return observe(GenerationReport{
			RunID:       runID,
			Generation:  rec.Generation,
			Text:        rec.Text,
			Score:       rec.Score,
			TargetScore: targetScore,
		})
	}

	history := []model.GenerationRecord{{Generation: 0, Text: seedText, Score: fitness.Score(cfg.Target, seedText)}}
	var evaluations int64
	runErr := emit(history[0])
	outcome := metrics.OutcomeCapped

	for gen := 1; runErr == nil && (cfg.MaxGenerations == nil || gen <= *cfg.MaxGenerations); gen++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		off, ok := seq.Next()
		if !ok {
			break
		}
		evaluations += int64(cfg.PopulationSize)
		r.metrics.ObserveGeneration(cfg.PopulationSize, off.Score)

		rec := model.GenerationRecord{Generation: gen, Text: off.Text, Score: off.Score}
		history = append(history, rec)
		logger.Debug("generation bred", zap.Int("generation", gen), zap.Int("score", off.Score))
		runErr = emit(rec)
	}

	last := history[len(history)-1]
	reached := last.Score >= targetScore
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		outcome = metrics.OutcomeCancelled
	case runErr != nil:
		outcome = metrics.OutcomeFailed
	case reached:
		outcome = metrics.OutcomeReached
	}
	r.metrics.ObserveRun(outcome)

	elapsed := r.now().Sub(started)
	record := storage.Stamp(model.RunRecord{
		ID:             runID,
		Target:         cfg.Target,
		Alphabet:       cfg.Alphabet,
		PopulationSize: cfg.PopulationSize,
		MutationRate:   cfg.MutationRate.Value(),
		Fitness:        fitness.Name(),
		Seed:           seed,
		MaxGenerations: copyCap(cfg.MaxGenerations),
		TargetScore:    targetScore,
		Generations:    last.Generation,
		FinalText:      last.Text,
		FinalScore:     last.Score,
		Reached:        reached,
		Evaluations:    evaluations,
		ElapsedMS:      elapsed.Milliseconds(),
		CreatedAtUTC:   model.FormatTimestamp(started),
	})
	result := RunResult{Record: record, History: history, Elapsed: elapsed}

	logger.Info("run finished",
		zap.String("outcome", outcome),
		zap.Int("generations", last.Generation),
		zap.Int("final_score", last.Score),
		zap.Int("target_score", targetScore),
		zap.Duration("elapsed", elapsed),
	)

	// Persist with a fresh context so a cancelled run still leaves a record.
	if err := r.persist(context.WithoutCancel(ctx), result); err != nil {
		logger.Error("persist run", zap.Error(err))
		return result, errors.Join(runErr, err)
	}
	if runErr != nil {
		return result, fmt.Errorf("run %s stopped at generation %d: %w", runID, last.Generation, runErr)
	}
	return result, nil
}

func (r *Runner) persist(ctx context.Context, result RunResult) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.SaveRun(ctx, result.Record); err != nil {
		return fmt.Errorf("save run %s: %w", result.Record.ID, err)
	}
	if err := r.store.SaveGenerations(ctx, result.Record.ID, result.History); err != nil {
		return fmt.Errorf("save generations %s: %w", result.Record.ID, err)
	}
	return nil
}

func copyCap(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
