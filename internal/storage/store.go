package storage

import (
	"context"
	"errors"
	"time"

	"weasel/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

// Store defines persistence operations for search runs and their history.
type Store interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	// ListRuns returns runs newest first. A limit <= 0 returns all runs.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	SaveProgress(ctx context.Context, runID string, progress []model.ProgressRecord) error
	GetProgress(ctx context.Context, runID string) ([]model.ProgressRecord, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
}

// startedKey normalizes a run start time to model.TimestampLayout so that
// variable-width RFC 3339 values order correctly as strings.
func startedKey(run model.Run) string {
	ts, err := time.Parse(time.RFC3339Nano, run.StartedAtUTC)
	if err != nil {
		return run.StartedAtUTC
	}
	return ts.UTC().Format(model.TimestampLayout)
}
