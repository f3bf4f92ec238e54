package model

// TimestampLayout is a fixed-width RFC 3339 layout, so timestamps written with
// it sort lexically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Run summarizes one search from configuration to termination.
type Run struct {
	VersionedRecord
	ID                 string  `json:"id"`
	Target             string  `json:"target"`
	Alphabet           string  `json:"alphabet"`
	Seed               int64   `json:"seed"`
	MutationRate       float64 `json:"mutation_rate"`
	Copies             int     `json:"copies"`
	Parents            int     `json:"parents"`
	Recombination      string  `json:"recombination"`
	Workers            int     `json:"workers"`
	MaxGenerations     int     `json:"max_generations"`
	Generations        int     `json:"generations"`
	Evaluations        int     `json:"evaluations"`
	BestCandidate      string  `json:"best_candidate"`
	BestFitness        int     `json:"best_fitness"`
	Solved             bool    `json:"solved"`
	Reason             string  `json:"reason"`
	StartedAtUTC       string  `json:"started_at_utc"`
	FinishedAtUTC      string  `json:"finished_at_utc"`
	ElapsedMS          int64   `json:"elapsed_ms"`
	DiagnosticsDropped int     `json:"diagnostics_dropped,omitempty"`
}

// ProgressRecord is one strict improvement of the best-known fitness.
type ProgressRecord struct {
	VersionedRecord
	Generation int    `json:"generation"`
	Candidate  string `json:"candidate"`
	Fitness    int    `json:"fitness"`
}

type GenerationDiagnostics struct {
	Generation       int     `json:"generation"`
	BestFitness      int     `json:"best_fitness"`
	MeanFitness      float64 `json:"mean_fitness"`
	WorstFitness     int     `json:"worst_fitness"`
	DistinctChildren int     `json:"distinct_children"`
}
