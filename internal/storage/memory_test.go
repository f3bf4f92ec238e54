package storage

import (
	"context"
	"errors"
	"testing"

	"weasel/internal/model"
)

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveRun(context.Background(), model.Run{ID: "r1"}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestMemoryStoreRunRoundTripAndOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	runs := []model.Run{
		{VersionedRecord: CurrentVersion(), ID: "old", Target: "CAT", StartedAtUTC: "2026-01-01T00:00:00Z"},
		{VersionedRecord: CurrentVersion(), ID: "new", Target: "DOG", StartedAtUTC: "2026-02-01T00:00:00Z"},
	}
	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}

	got, ok, err := store.GetRun(ctx, "old")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok || got.Target != "CAT" {
		t.Fatalf("unexpected run: ok=%t %+v", ok, got)
	}
	if _, ok, _ := store.GetRun(ctx, "missing"); ok {
		t.Fatal("expected missing run")
	}

	listed, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "new" || listed[1].ID != "old" {
		t.Fatalf("expected newest first, got %+v", listed)
	}
	limited, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("list runs limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "new" {
		t.Fatalf("unexpected limited list: %+v", limited)
	}
}

func TestMemoryStoreProgressAndDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	progress := []model.ProgressRecord{
		{VersionedRecord: CurrentVersion(), Generation: 1, Candidate: "CAX", Fitness: 1},
		{VersionedRecord: CurrentVersion(), Generation: 3, Candidate: "CAT", Fitness: 0},
	}
	if err := store.SaveProgress(ctx, "run-1", progress); err != nil {
		t.Fatalf("save progress: %v", err)
	}
	progress[0].Candidate = "mutated"
	gotProgress, ok, err := store.GetProgress(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get progress: ok=%t err=%v", ok, err)
	}
	if len(gotProgress) != 2 || gotProgress[0].Candidate != "CAX" {
		t.Fatalf("unexpected progress: %+v", gotProgress)
	}

	diagnostics := []model.GenerationDiagnostics{
		{Generation: 1, BestFitness: 1, MeanFitness: 2.5, WorstFitness: 3, DistinctChildren: 40},
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	gotDiagnostics, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get diagnostics: ok=%t err=%v", ok, err)
	}
	if len(gotDiagnostics) != 1 || gotDiagnostics[0].DistinctChildren != 40 {
		t.Fatalf("unexpected diagnostics: %+v", gotDiagnostics)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveRun(ctx, model.Run{ID: "r1"}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty store after reset, got %d runs", len(runs))
	}
}
