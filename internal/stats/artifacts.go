package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"weasel/internal/model"
)

const (
	runIndexFile    = "run_index.json"
	configFile      = "config.json"
	generationsFile = "generations.csv"
	summaryFile     = "summary.json"
)

type RunConfig struct {
	RunID          string  `json:"run_id"`
	Target         string  `json:"target"`
	Alphabet       string  `json:"alphabet"`
	PopulationSize int     `json:"population_size"`
	MutationRate   float64 `json:"mutation_rate"`
	Fitness        string  `json:"fitness"`
	MaxGenerations *int    `json:"max_generations,omitempty"`
	Seed           int64   `json:"seed"`
}

type RunSummary struct {
	TargetScore int    `json:"target_score"`
	Generations int    `json:"generations"`
	FinalText   string `json:"final_text"`
	FinalScore  int    `json:"final_score"`
	Reached     bool   `json:"reached"`
	Evaluations int64  `json:"evaluations"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

type RunArtifacts struct {
	Config      RunConfig
	Summary     RunSummary
	Generations []model.GenerationRecord
}

type RunIndexEntry struct {
	RunID          string  `json:"run_id"`
	Target         string  `json:"target"`
	PopulationSize int     `json:"population_size"`
	MutationRate   float64 `json:"mutation_rate"`
	Seed           int64   `json:"seed"`
	Generations    int     `json:"generations"`
	FinalScore     int     `json:"final_score"`
	TargetScore    int     `json:"target_score"`
	Reached        bool    `json:"reached"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

// ArtifactsFromRecord splits a run record and its history into artifacts.
func ArtifactsFromRecord(rec model.RunRecord, history []model.GenerationRecord) RunArtifacts {
	return RunArtifacts{
		Config: RunConfig{
			RunID:          rec.ID,
			Target:         rec.Target,
			Alphabet:       rec.Alphabet,
			PopulationSize: rec.PopulationSize,
			MutationRate:   rec.MutationRate,
			Fitness:        rec.Fitness,
			MaxGenerations: rec.MaxGenerations,
			Seed:           rec.Seed,
		},
		Summary: RunSummary{
			TargetScore: rec.TargetScore,
			Generations: rec.Generations,
			FinalText:   rec.FinalText,
			FinalScore:  rec.FinalScore,
			Reached:     rec.Reached,
			Evaluations: rec.Evaluations,
			ElapsedMS:   rec.ElapsedMS,
		},
		Generations: history,
	}
}

// IndexEntryFromRecord builds the run index line for rec.
func IndexEntryFromRecord(rec model.RunRecord) RunIndexEntry {
	return RunIndexEntry{
		RunID:          rec.ID,
		Target:         rec.Target,
		PopulationSize: rec.PopulationSize,
		MutationRate:   rec.MutationRate,
		Seed:           rec.Seed,
		Generations:    rec.Generations,
		FinalScore:     rec.FinalScore,
		TargetScore:    rec.TargetScore,
		Reached:        rec.Reached,
		CreatedAtUTC:   rec.CreatedAtUTC,
	}
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, configFile), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, summaryFile), artifacts.Summary); err != nil {
		return "", err
	}
	if err := writeGenerations(filepath.Join(runDir, generationsFile), artifacts.Generations); err != nil {
		return "", err
	}
	return runDir, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, configFile), &cfg)
	return cfg, ok, err
}

func ReadRunSummary(baseDir, runID string) (RunSummary, bool, error) {
	var summary RunSummary
	ok, err := readJSON(filepath.Join(baseDir, runID, summaryFile), &summary)
	return summary, ok, err
}

// ReadGenerations loads the generations CSV written for runID.
func ReadGenerations(baseDir, runID string) ([]model.GenerationRecord, bool, error) {
	f, err := os.Open(filepath.Join(baseDir, runID, generationsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return []model.GenerationRecord{}, true, nil
	}

	out := make([]model.GenerationRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, false, fmt.Errorf("generations row %d: want 3 columns, got %d", i+1, len(row))
		}
		gen, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, false, fmt.Errorf("generations row %d: %w", i+1, err)
		}
		score, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, false, fmt.Errorf("generations row %d: %w", i+1, err)
		}
		out = append(out, model.GenerationRecord{Generation: gen, Text: row[1], Score: score})
	}
	return out, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns indexed runs newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if c := model.CompareTimestamps(indexed[i].entry.CreatedAtUTC, indexed[j].entry.CreatedAtUTC); c != 0 {
			return c > 0
		}
		// Prefer later appended entries for equal timestamps.
		return indexed[i].idx > indexed[j].idx
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func writeGenerations(path string, generations []model.GenerationRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"generation", "text", "score"}); err != nil {
		return err
	}
	for _, g := range generations {
		if err := w.Write([]string{strconv.Itoa(g.Generation), g.Text, strconv.Itoa(g.Score)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}
