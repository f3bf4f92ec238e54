package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"weasel/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "weasel.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSQLiteStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	first := model.Run{VersionedRecord: CurrentVersion(), ID: "a", Target: "CAT", StartedAtUTC: "2026-01-01T00:00:00Z", Solved: true}
	second := model.Run{VersionedRecord: CurrentVersion(), ID: "b", Target: "DOG", StartedAtUTC: "2026-03-01T00:00:00Z"}
	for _, run := range []model.Run{first, second} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}
	first.Generations = 12
	if err := store.SaveRun(ctx, first); err != nil {
		t.Fatalf("upsert run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, "a")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok || loaded.Generations != 12 || !loaded.Solved {
		t.Fatalf("unexpected run: ok=%t %+v", ok, loaded)
	}
	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, ok=%t err=%v", ok, err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "b" {
		t.Fatalf("expected newest first, got %+v", runs)
	}
	runs, err = store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
}

func TestSQLiteStoreProgressDiagnosticsAndReset(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	progress := []model.ProgressRecord{{VersionedRecord: CurrentVersion(), Generation: 2, Candidate: "CAT", Fitness: 0}}
	if err := store.SaveProgress(ctx, "r1", progress); err != nil {
		t.Fatalf("save progress: %v", err)
	}
	diagnostics := []model.GenerationDiagnostics{{Generation: 1, BestFitness: 1}, {Generation: 2, BestFitness: 0}}
	if err := store.SaveGenerationDiagnostics(ctx, "r1", diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}

	gotProgress, ok, err := store.GetProgress(ctx, "r1")
	if err != nil || !ok || len(gotProgress) != 1 || gotProgress[0].Candidate != "CAT" {
		t.Fatalf("unexpected progress: ok=%t err=%v %+v", ok, err, gotProgress)
	}
	gotDiagnostics, ok, err := store.GetGenerationDiagnostics(ctx, "r1")
	if err != nil || !ok || len(gotDiagnostics) != 2 {
		t.Fatalf("unexpected diagnostics: ok=%t err=%v %+v", ok, err, gotDiagnostics)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, err := store.GetProgress(ctx, "r1"); err != nil || ok {
		t.Fatalf("expected progress removed, ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "weasel.db"))
	if err := store.SaveRun(context.Background(), model.Run{ID: "r1"}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}
