package stats

import (
	"os"
	"path/filepath"
	"testing"

	"weasel/internal/model"
)

func TestWriteAndReadRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	artifacts := RunArtifacts{
		Run: model.Run{ID: "run-123", Target: "CAT", Seed: 1, Generations: 3, Solved: true},
		Progress: []model.ProgressRecord{
			{Generation: 1, Candidate: "CXT", Fitness: 1},
			{Generation: 3, Candidate: "CAT", Fitness: 0},
		},
		Diagnostics: []model.GenerationDiagnostics{{Generation: 1}, {Generation: 2}, {Generation: 3}},
	}

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	for _, file := range []string{"run.json", "progress.json", "generation_diagnostics.json", "progress.txt"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	transcript, err := os.ReadFile(filepath.Join(runDir, "progress.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if want := "CAT\nCXT : 1\nCAT : 3\n"; string(transcript) != want {
		t.Fatalf("unexpected transcript:\n%q\nwant\n%q", transcript, want)
	}

	loaded, err := ReadRunArtifacts(runDir)
	if err != nil {
		t.Fatalf("read artifacts: %v", err)
	}
	if loaded.Run != artifacts.Run || len(loaded.Progress) != 2 || len(loaded.Diagnostics) != 3 {
		t.Fatalf("unexpected artifacts: %+v", loaded)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected missing run id error")
	}
}

func TestRunIndexUpsert(t *testing.T) {
	baseDir := t.TempDir()
	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list empty index: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %d", len(entries))
	}

	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "a", Target: "CAT"}); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "b", Target: "DOG"}); err != nil {
		t.Fatalf("append b: %v", err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "a", Target: "CAT", Solved: true}); err != nil {
		t.Fatalf("update a: %v", err)
	}

	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 2 || !entries[0].Solved || entries[1].RunID != "b" {
		t.Fatalf("unexpected index: %+v", entries)
	}
}
