package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"weasel/internal/evo"
	"weasel/internal/metrics"
	"weasel/internal/storage"
)

func newTestRunner(t *testing.T) (*Runner, *storage.MemoryStore, *metrics.Metrics) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))
	m := metrics.New()
	return NewRunner(Config{Store: store, Metrics: m, Logger: zaptest.NewLogger(t)}), store, m
}

func generationCap(n int) *int {
	return &n
}

func catConfig(seed int64) RunConfig {
	return RunConfig{
		RunID:          "cat",
		Target:         "CAT",
		Alphabet:       "CAT",
		PopulationSize: 200,
		MutationRate:   evo.MustFraction(0.3),
		Fitness:        "match",
		Seed:           seed,
	}
}

func TestRunnerReachesTargetAndPersists(t *testing.T) {
	ctx := context.Background()
	runner, store, m := newTestRunner(t)

	var reports []GenerationReport
	result, err := runner.Run(ctx, catConfig(42), func(rep GenerationReport) error {
		reports = append(reports, rep)
		return nil
	})
	require.NoError(t, err)

	require.NotEmpty(t, reports)
	assert.Equal(t, 0, reports[0].Generation)
	for i, rep := range reports {
		assert.Equal(t, i, rep.Generation)
		assert.Equal(t, 3, rep.TargetScore)
		assert.Equal(t, "cat", rep.RunID)
		assert.Equal(t, 3, evo.GraphemeCount(rep.Text))
	}
	final := reports[len(reports)-1]
	assert.Equal(t, "CAT", final.Text)
	assert.Equal(t, 3, final.Score)

	rec := result.Record
	assert.True(t, rec.Reached)
	assert.Equal(t, 3, rec.TargetScore)
	assert.Equal(t, final.Generation, rec.Generations)
	assert.Equal(t, int64(rec.Generations*200), rec.Evaluations)
	assert.Equal(t, int64(42), rec.Seed)
	assert.Equal(t, storage.CurrentSchemaVersion, rec.SchemaVersion)

	saved, ok, err := store.GetRun(ctx, "cat")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, saved)

	history, ok, err := store.GetGenerations(ctx, "cat")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result.History, history)
	assert.Len(t, history, len(reports))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.OutcomeReached)))
	assert.Equal(t, float64(rec.Generations), testutil.ToFloat64(m.GenerationsTotal))
}

func TestRunnerIsDeterministicForSeed(t *testing.T) {
	runner, _, _ := newTestRunner(t)
	a, err := runner.Run(context.Background(), catConfig(9), nil)
	require.NoError(t, err)
	b, err := runner.Run(context.Background(), catConfig(9), nil)
	require.NoError(t, err)
	assert.Equal(t, a.History, b.History)
}

func TestRunnerStopsAtGenerationCap(t *testing.T) {
	runner, _, m := newTestRunner(t)
	cfg := RunConfig{
		Target:         "AAAA",
		Alphabet:       "B",
		PopulationSize: 1,
		MutationRate:   evo.MustFraction(0),
		MaxGenerations: generationCap(5),
		Seed:           1,
	}

	count := 0
	result, err := runner.Run(context.Background(), cfg, func(GenerationReport) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	assert.False(t, result.Record.Reached)
	assert.Equal(t, 5, result.Record.Generations)
	assert.Equal(t, "BBBB", result.Record.FinalText)
	assert.NotEmpty(t, result.Record.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.OutcomeCapped)))
}

func TestRunnerZeroCapEmitsOnlyTheSeed(t *testing.T) {
	runner, store, m := newTestRunner(t)
	cfg := catConfig(3)
	cfg.MaxGenerations = generationCap(0)

	var reports []GenerationReport
	result, err := runner.Run(context.Background(), cfg, func(rep GenerationReport) error {
		reports = append(reports, rep)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 0, reports[0].Generation)
	assert.Equal(t, 0, result.Record.Generations)
	assert.Equal(t, int64(0), result.Record.Evaluations)
	require.NotNil(t, result.Record.MaxGenerations)
	assert.Equal(t, 0, *result.Record.MaxGenerations)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GenerationsTotal))

	history, ok, err := store.GetGenerations(context.Background(), "cat")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, history, 1)
}

func TestRunnerRecordsTimestampsInFixedWidth(t *testing.T) {
	runner, _, _ := newTestRunner(t)
	runner.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 5, 100_000_000, time.UTC) }

	result, err := runner.Run(context.Background(), catConfig(2), nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:00:05.100000000Z", result.Record.CreatedAtUTC)
}

func TestRunnerObserverErrorStopsRun(t *testing.T) {
	runner, store, _ := newTestRunner(t)
	errStop := errors.New("stop")

	cfg := catConfig(1)
	cfg.Target = "METHINKS IT IS LIKE A WEASEL"
	cfg.Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ "
	cfg.PopulationSize = 10
	result, err := runner.Run(context.Background(), cfg, func(rep GenerationReport) error {
		if rep.Generation == 2 {
			return errStop
		}
		return nil
	})
	require.ErrorIs(t, err, errStop)
	assert.Len(t, result.History, 3)

	_, ok, err := store.GetRun(context.Background(), "cat")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunnerHonorsCancellationBetweenGenerations(t *testing.T) {
	runner, store, m := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := RunConfig{
		RunID:          "cancelled",
		Target:         "AAAA",
		Alphabet:       "B",
		PopulationSize: 1,
		MutationRate:   evo.MustFraction(0),
		Seed:           3,
	}
	result, err := runner.Run(ctx, cfg, func(rep GenerationReport) error {
		if rep.Generation == 3 {
			cancel()
		}
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, result.Record.Generations)

	_, ok, err := store.GetGenerations(context.Background(), "cancelled")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.OutcomeCancelled)))
}

func TestRunnerRejectsInvalidConfig(t *testing.T) {
	runner, _, _ := newTestRunner(t)

	cfg := catConfig(1)
	cfg.Alphabet = ""
	_, err := runner.Run(context.Background(), cfg, nil)
	var cfgErr *evo.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	cfg = catConfig(1)
	cfg.Fitness = "nope"
	_, err = runner.Run(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, evo.ErrFitnessNotFound)

	cfg = catConfig(1)
	cfg.PopulationSize = 0
	_, err = runner.Run(context.Background(), cfg, nil)
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRunnerWithoutStoreOrMetrics(t *testing.T) {
	runner := NewRunner(Config{})
	result, err := runner.Run(context.Background(), catConfig(4), nil)
	require.NoError(t, err)
	assert.True(t, result.Record.Reached)
}

func TestRunnerConstantFitnessStopsAfterFirstGeneration(t *testing.T) {
	runner, _, _ := newTestRunner(t)
	cfg := catConfig(6)
	cfg.Fitness = "constant"

	result, err := runner.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Record.TargetScore)
	assert.Equal(t, 1, result.Record.Generations)
	assert.True(t, result.Record.Reached)
}
