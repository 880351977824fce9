package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one breeding run: the settings it was started with and
// where it ended up.
type RunRecord struct {
	VersionedRecord
	ID             string  `json:"id"`
	Target         string  `json:"target"`
	Alphabet       string  `json:"alphabet"`
	PopulationSize int     `json:"population_size"`
	MutationRate   float64 `json:"mutation_rate"`
	Fitness        string  `json:"fitness"`
	Seed           int64   `json:"seed"`
	MaxGenerations *int    `json:"max_generations,omitempty"`
	TargetScore    int     `json:"target_score"`
	Generations    int     `json:"generations"`
	FinalText      string  `json:"final_text"`
	FinalScore     int     `json:"final_score"`
	Reached        bool    `json:"reached"`
	Evaluations    int64   `json:"evaluations"`
	ElapsedMS      int64   `json:"elapsed_ms"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

// GenerationRecord is one champion. Generation 0 is the random seed.
type GenerationRecord struct {
	Generation int    `json:"generation"`
	Text       string `json:"text"`
	Score      int    `json:"score"`
}
