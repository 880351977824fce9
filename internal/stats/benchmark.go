package stats

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"weasel/internal/model"
)

const benchmarksDir = "benchmarks"

type BenchmarkRun struct {
	RunID       string `json:"run_id"`
	Seed        int64  `json:"seed"`
	Success     bool   `json:"success"`
	Generations int    `json:"generations"`
	Evaluations int64  `json:"evaluations"`
	FinalScore  int    `json:"final_score"`
}

// BenchmarkSummary aggregates a batch of runs. The generation and evaluation
// statistics only cover runs that reached their target.
type BenchmarkSummary struct {
	BenchmarkID    string         `json:"benchmark_id"`
	GeneratedAt    string         `json:"generated_at_utc"`
	TotalRuns      int            `json:"total_runs"`
	SuccessRuns    int            `json:"success_runs"`
	SuccessRate    float64        `json:"success_rate"`
	AvgGenerations float64        `json:"avg_generations"`
	StdGenerations float64        `json:"std_generations"`
	MinGenerations int            `json:"min_generations"`
	MaxGenerations int            `json:"max_generations"`
	AvgEvaluations float64        `json:"avg_evaluations"`
	Runs           []BenchmarkRun `json:"runs"`
}

func SummarizeBenchmark(benchmarkID string, records []model.RunRecord) BenchmarkSummary {
	summary := BenchmarkSummary{
		BenchmarkID: benchmarkID,
		TotalRuns:   len(records),
		Runs:        make([]BenchmarkRun, 0, len(records)),
	}
	generations := make([]float64, 0, len(records))
	evaluations := make([]float64, 0, len(records))
	for _, rec := range records {
		summary.Runs = append(summary.Runs, BenchmarkRun{
			RunID:       rec.ID,
			Seed:        rec.Seed,
			Success:     rec.Reached,
			Generations: rec.Generations,
			Evaluations: rec.Evaluations,
			FinalScore:  rec.FinalScore,
		})
		if !rec.Reached {
			continue
		}
		summary.SuccessRuns++
		generations = append(generations, float64(rec.Generations))
		evaluations = append(evaluations, float64(rec.Evaluations))
		if summary.SuccessRuns == 1 || rec.Generations < summary.MinGenerations {
			summary.MinGenerations = rec.Generations
		}
		if rec.Generations > summary.MaxGenerations {
			summary.MaxGenerations = rec.Generations
		}
	}
	if summary.TotalRuns > 0 {
		summary.SuccessRate = float64(summary.SuccessRuns) / float64(summary.TotalRuns)
	}
	summary.AvgGenerations = mean(generations)
	summary.StdGenerations = stddev(generations)
	summary.AvgEvaluations = mean(evaluations)
	return summary
}

func WriteBenchmarkSummary(baseDir string, summary BenchmarkSummary) (string, error) {
	if summary.BenchmarkID == "" {
		return "", fmt.Errorf("benchmark id is required")
	}
	dir := filepath.Join(baseDir, benchmarksDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if summary.GeneratedAt == "" {
		summary.GeneratedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	path := filepath.Join(dir, summary.BenchmarkID+".json")
	if err := writeJSON(path, summary); err != nil {
		return "", err
	}
	return path, nil
}

func ReadBenchmarkSummary(baseDir, benchmarkID string) (BenchmarkSummary, bool, error) {
	var summary BenchmarkSummary
	ok, err := readJSON(filepath.Join(baseDir, benchmarksDir, benchmarkID+".json"), &summary)
	return summary, ok, err
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	acc := 0.0
	for _, v := range values {
		acc += (v - m) * (v - m)
	}
	return math.Sqrt(acc / float64(len(values)))
}
