package storage

import (
	"context"
	"sort"
	"sync"

	"weasel/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.Run
	progress    map[string][]model.ProgressRecord
	diagnostics map[string][]model.GenerationDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.reset()
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return nil
}

func (s *MemoryStore) reset() {
	s.initialized = true
	s.runs = make(map[string]model.Run)
	s.progress = make(map[string][]model.ProgressRecord)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.Run, 0, len(s.runs))
	keys := make(map[string]string, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
		keys[run.ID] = startedKey(run)
	}
	sort.Slice(runs, func(i, j int) bool {
		ki, kj := keys[runs[i].ID], keys[runs[j].ID]
		if ki != kj {
			return ki > kj
		}
		return runs[i].ID < runs[j].ID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) SaveProgress(_ context.Context, runID string, progress []model.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.progress[runID] = append([]model.ProgressRecord(nil), progress...)
	return nil
}

func (s *MemoryStore) GetProgress(_ context.Context, runID string) ([]model.ProgressRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	progress, ok := s.progress[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.ProgressRecord(nil), progress...), true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}
