package evo

import (
	"context"
	"testing"
)

func TestDiagnosticsWindowKeepsMostRecentGenerations(t *testing.T) {
	w := NewDiagnosticsWindow(3)
	for gen := 1; gen <= 7; gen++ {
		w.OnGeneration(GenerationDiagnostics{Generation: gen})
	}
	got := w.Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 retained generations, got %d", len(got))
	}
	for i, want := range []int{5, 6, 7} {
		if got[i].Generation != want {
			t.Fatalf("snapshot[%d]: expected generation %d, got %d", i, want, got[i].Generation)
		}
	}
	if w.Dropped() != 4 {
		t.Fatalf("expected 4 dropped generations, got %d", w.Dropped())
	}
}

func TestDiagnosticsWindowBelowCapacity(t *testing.T) {
	w := NewDiagnosticsWindow(10)
	w.OnGeneration(GenerationDiagnostics{Generation: 1})
	w.OnGeneration(GenerationDiagnostics{Generation: 2})
	got := w.Snapshot()
	if len(got) != 2 || got[0].Generation != 1 || got[1].Generation != 2 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if w.Dropped() != 0 {
		t.Fatalf("expected nothing dropped, got %d", w.Dropped())
	}
	if len(NewDiagnosticsWindow(0).Snapshot()) != 0 {
		t.Fatal("expected empty snapshot for a fresh window")
	}
}

func TestDiagnosticsWindowBoundsLongRun(t *testing.T) {
	w := NewDiagnosticsWindow(5)
	m := newTestMonitor(t, MonitorConfig{
		Target:         "METHINKS",
		Seed:           1,
		Mutation:       PointMutation{Alphabet: DefaultAlphabet, Rate: 0},
		Copies:         10,
		MaxGenerations: 40,
		Observer:       w,
	})
	result, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Generations != 40 {
		t.Fatalf("expected generation limit of 40, got %d", result.Generations)
	}
	got := w.Snapshot()
	if len(got) != 5 || got[0].Generation != 36 || got[4].Generation != 40 {
		t.Fatalf("expected generations 36..40, got %+v", got)
	}
}

func TestMultiObserverFansOutInOrder(t *testing.T) {
	var calls []string
	record := func(name string) Observer {
		return ObserverFuncs{
			Improvement: func(Progress) { calls = append(calls, name+":improvement") },
			Generation:  func(GenerationDiagnostics) { calls = append(calls, name+":generation") },
		}
	}
	m := MultiObserver{record("a"), nil, record("b")}
	m.OnGeneration(GenerationDiagnostics{Generation: 1})
	m.OnImprovement(Progress{Generation: 1})

	want := []string{"a:generation", "b:generation", "a:improvement", "b:improvement"}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d: expected %s, got %s", i, want[i], calls[i])
		}
	}
}
