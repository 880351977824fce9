// Package weasel runs cumulative selection experiments: a population of
// mutated copies is bred from the best string of the previous generation
// until it matches a target.
package weasel

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"weasel/internal/config"
	"weasel/internal/evo"
	"weasel/internal/logging"
	"weasel/internal/metrics"
	"weasel/internal/model"
	"weasel/internal/platform"
	"weasel/internal/stats"
	"weasel/internal/storage"
)

const (
	defaultArtifactsDir = "runs"
	defaultDBPath       = "weasel.db"
	defaultRunsLimit    = 20
)

// Fraction is a number in the closed range [0, 1].
type Fraction = evo.Fraction

func NewFraction(v float64) (Fraction, error) { return evo.NewFraction(v) }

func ParseFraction(s string) (Fraction, error) { return evo.ParseFraction(s) }

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

type Client struct {
	store   storage.Store
	runner  *platform.Runner
	logger  *zap.Logger
	metrics *metrics.Metrics

	artifactsDir string

	initOnce sync.Once
	initErr  error
}

// Generation is one line of a run's report.
type Generation struct {
	RunID       string
	Generation  int
	Text        string
	Score       int
	TargetScore int
}

// RunRequest describes a run. Target and Alphabet are used as given: an
// empty target converges at once and an empty alphabet is rejected.
type RunRequest struct {
	RunID    string
	Target   string
	Alphabet string
	// Offspring is the number of challengers bred per generation. 0 means 100.
	Offspring int
	// MutationRate defaults to 0.05 when nil.
	MutationRate *Fraction
	Fitness      string
	// MaxGenerations caps bred generations when set. A cap of 0 reports only
	// the seed.
	MaxGenerations *int
	Seed           int64
	// OnGeneration is called for the seed and every bred generation. An error
	// stops the run.
	OnGeneration func(Generation) error
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Seed         int64
	TargetScore  int
	Generations  int
	FinalText    string
	FinalScore   int
	Reached      bool
	Evaluations  int64
	Elapsed      time.Duration
}

type BenchmarkRequest struct {
	Run     RunRequest
	Runs    int
	Workers int
}

type BenchmarkSummary struct {
	stats.BenchmarkSummary
	Path string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Target       string
	Seed         int64
	Population   int
	MutationRate float64
	Generations  int
	FinalScore   int
	TargetScore  int
	Reached      bool
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	logger := logging.OrNop(opts.Logger)
	return &Client{
		store:        store,
		runner:       platform.NewRunner(platform.Config{Store: store, Metrics: opts.Metrics, Logger: logger}),
		logger:       logger,
		metrics:      opts.Metrics,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the backing store. Other methods call it as needed.
func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// Run breeds one run to completion and records it under the artifacts
// directory. When the run stops early the partial summary is returned with
// the error.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	runCfg := runConfigFromRequest(req)

	var observe platform.Observer
	if req.OnGeneration != nil {
		observe = func(report platform.GenerationReport) error {
			return req.OnGeneration(Generation(report))
		}
	}

	result, runErr := c.runner.Run(ctx, runCfg, observe)
	if result.Record.ID == "" {
		return RunSummary{}, runErr
	}
	runDir, err := c.record(result)
	if err != nil {
		return RunSummary{}, errors.Join(runErr, err)
	}
	return summaryFromResult(result, runDir), runErr
}

// Benchmark repeats a run with consecutive seeds and writes the aggregate
// statistics next to the run artifacts.
func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (BenchmarkSummary, error) {
	if err := c.Init(ctx); err != nil {
		return BenchmarkSummary{}, err
	}
	if req.Runs <= 0 {
		return BenchmarkSummary{}, errors.New("benchmark runs must be > 0")
	}
	runCfg := runConfigFromRequest(req.Run)
	if runCfg.Seed == 0 {
		runCfg.Seed = time.Now().UnixNano()
	}
	benchmarkID := runCfg.RunID
	if benchmarkID == "" {
		benchmarkID = fmt.Sprintf("bench-%d", runCfg.Seed)
		runCfg.RunID = benchmarkID
	}

	results, runErr := c.runner.Benchmark(ctx, platform.BenchmarkConfig{
		Run:     runCfg,
		Runs:    req.Runs,
		Workers: req.Workers,
	})

	records := make([]model.RunRecord, 0, len(results))
	for _, result := range results {
		if result.Record.ID == "" {
			continue
		}
		if _, err := c.record(result); err != nil {
			return BenchmarkSummary{}, errors.Join(runErr, err)
		}
		records = append(records, result.Record)
	}
	if runErr != nil {
		return BenchmarkSummary{}, runErr
	}

	summary := stats.SummarizeBenchmark(benchmarkID, records)
	path, err := stats.WriteBenchmarkSummary(c.artifactsDir, summary)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	c.logger.Info("benchmark finished",
		zap.String("benchmark_id", benchmarkID),
		zap.Int("runs", summary.TotalRuns),
		zap.Float64("success_rate", summary.SuccessRate),
		zap.Float64("avg_generations", summary.AvgGenerations),
	)
	return BenchmarkSummary{BenchmarkSummary: summary, Path: filepath.Clean(path)}, nil
}

// Runs lists recorded runs, newest first.
func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:        e.RunID,
			CreatedAtUTC: e.CreatedAtUTC,
			Target:       e.Target,
			Seed:         e.Seed,
			Population:   e.PopulationSize,
			MutationRate: e.MutationRate,
			Generations:  e.Generations,
			FinalScore:   e.FinalScore,
			TargetScore:  e.TargetScore,
			Reached:      e.Reached,
		})
	}
	return out, nil
}

// History returns the champion of every generation of a run. The store is
// consulted first; runs recorded by an earlier process are read back from
// their artifacts.
func (c *Client) History(ctx context.Context, req HistoryRequest) ([]model.GenerationRecord, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.artifactsDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("history requires run id or latest")
	}

	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetGenerations(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, ok, err = stats.ReadGenerations(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

func (c *Client) record(result platform.RunResult) (string, error) {
	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.ArtifactsFromRecord(result.Record, result.History))
	if err != nil {
		return "", err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.IndexEntryFromRecord(result.Record)); err != nil {
		return "", err
	}
	return runDir, nil
}

func runConfigFromRequest(req RunRequest) platform.RunConfig {
	if req.Offspring == 0 {
		req.Offspring = config.DefaultOffspring
	}
	rate := evo.MustFraction(config.DefaultMutationRate)
	if req.MutationRate != nil {
		rate = *req.MutationRate
	}
	return platform.RunConfig{
		RunID:          req.RunID,
		Target:         req.Target,
		Alphabet:       req.Alphabet,
		PopulationSize: req.Offspring,
		MutationRate:   rate,
		Fitness:        req.Fitness,
		MaxGenerations: req.MaxGenerations,
		Seed:           req.Seed,
	}
}

func summaryFromResult(result platform.RunResult, runDir string) RunSummary {
	rec := result.Record
	return RunSummary{
		RunID:        rec.ID,
		ArtifactsDir: filepath.Clean(runDir),
		Seed:         rec.Seed,
		TargetScore:  rec.TargetScore,
		Generations:  rec.Generations,
		FinalText:    rec.FinalText,
		FinalScore:   rec.FinalScore,
		Reached:      rec.Reached,
		Evaluations:  rec.Evaluations,
		Elapsed:      result.Elapsed,
	}
}
