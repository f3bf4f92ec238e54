package weasel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"weasel/internal/evo"
	"weasel/internal/model"
	"weasel/internal/stats"
	"weasel/internal/storage"
)

const (
	defaultDBPath     = "weasel.db"
	defaultExportsDir = "exports"
	defaultTrials     = 10
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
}

type Client struct {
	store      storage.Store
	exportsDir string
}

type RunRequest struct {
	RunID    string
	Target   string
	Alphabet string
	Seed     int64
	// MutationRate defaults to evo.DefaultMutationRate when nil.
	MutationRate   *float64
	Copies         int
	Parents        int
	Recombination  string
	Workers        int
	MaxGenerations int
	// DiagnosticsWindow bounds how many recent generations are persisted;
	// zero uses evo.DefaultDiagnosticsWindow.
	DiagnosticsWindow int
}

type RunSummary struct {
	RunID       string
	Target      string
	Seed        int64
	Generations int
	Evaluations int
	Best        evo.Candidate
	BestFitness int
	Solved      bool
	Reason      evo.TerminationReason
	Progress    []evo.Progress
	Elapsed     time.Duration
}

type RunsRequest struct {
	Limit int
}

type RunRef struct {
	RunID  string
	Latest bool
}

type DiagnosticsRequest struct {
	RunRef
	Limit int
}

type ExportRequest struct {
	RunRef
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type BenchmarkRequest struct {
	Run    RunRequest
	Trials int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.KindMemory
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	return c.store.Reset(ctx)
}

// Run searches for req.Target and persists the outcome. Validation errors,
// including evo.ErrInvalidCharacter, are returned before any search starts.
// A canceled ctx still records the partial run.
func (c *Client) Run(ctx context.Context, req RunRequest, observer evo.Observer) (RunSummary, error) {
	req = withDefaults(req)
	diagnostics := evo.NewDiagnosticsWindow(req.DiagnosticsWindow)
	monitor, err := newMonitor(req, evo.MultiObserver{observer, diagnostics})
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.store.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	started := time.Now().UTC()
	result, runErr := monitor.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return RunSummary{}, runErr
	}
	finished := time.Now().UTC()

	// Persist with a context that survives the cancellation of the run.
	saveCtx := context.WithoutCancel(ctx)
	record := model.Run{
		VersionedRecord:    storage.CurrentVersion(),
		ID:                 runID,
		Target:             req.Target,
		Alphabet:           req.Alphabet,
		Seed:               req.Seed,
		MutationRate:       *req.MutationRate,
		Copies:             req.Copies,
		Parents:            req.Parents,
		Recombination:      req.Recombination,
		Workers:            req.Workers,
		MaxGenerations:     req.MaxGenerations,
		Generations:        result.Generations,
		Evaluations:        result.Evaluations,
		BestCandidate:      string(result.Best.Candidate),
		BestFitness:        result.Best.Fitness,
		Solved:             result.Solved,
		Reason:             string(result.Reason),
		StartedAtUTC:       started.Format(model.TimestampLayout),
		FinishedAtUTC:      finished.Format(model.TimestampLayout),
		ElapsedMS:          finished.Sub(started).Milliseconds(),
		DiagnosticsDropped: diagnostics.Dropped(),
	}
	if err := c.store.SaveRun(saveCtx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run %s: %w", runID, err)
	}
	if err := c.store.SaveProgress(saveCtx, runID, progressRecords(result.Progress)); err != nil {
		return RunSummary{}, fmt.Errorf("save progress %s: %w", runID, err)
	}
	if err := c.store.SaveGenerationDiagnostics(saveCtx, runID, diagnosticsRecords(diagnostics.Snapshot())); err != nil {
		return RunSummary{}, fmt.Errorf("save diagnostics %s: %w", runID, err)
	}

	return RunSummary{
		RunID:       runID,
		Target:      req.Target,
		Seed:        req.Seed,
		Generations: result.Generations,
		Evaluations: result.Evaluations,
		Best:        result.Best.Candidate,
		BestFitness: result.Best.Fitness,
		Solved:      result.Solved,
		Reason:      result.Reason,
		Progress:    result.Progress,
		Elapsed:     finished.Sub(started),
	}, runErr
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.Run, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListRuns(ctx, req.Limit)
}

func (c *Client) GetRun(ctx context.Context, ref RunRef) (model.Run, error) {
	runID, err := c.resolveRunID(ctx, ref)
	if err != nil {
		return model.Run{}, err
	}
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.Run{}, err
	}
	if !ok {
		return model.Run{}, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}

func (c *Client) Progress(ctx context.Context, ref RunRef) ([]model.ProgressRecord, error) {
	runID, err := c.resolveRunID(ctx, ref)
	if err != nil {
		return nil, err
	}
	progress, ok, err := c.store.GetProgress(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("progress not found for run: %s", runID)
	}
	return progress, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRunID(ctx, req.RunRef)
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return diagnostics, nil
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	run, err := c.GetRun(ctx, req.RunRef)
	if err != nil {
		return ExportSummary{}, err
	}
	progress, _, err := c.store.GetProgress(ctx, run.ID)
	if err != nil {
		return ExportSummary{}, err
	}
	diagnostics, _, err := c.store.GetGenerationDiagnostics(ctx, run.ID)
	if err != nil {
		return ExportSummary{}, err
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	dir, err := stats.WriteRunArtifacts(outDir, stats.RunArtifacts{
		Run:         run,
		Progress:    progress,
		Diagnostics: diagnostics,
	})
	if err != nil {
		return ExportSummary{}, err
	}
	if err := stats.AppendRunIndex(outDir, stats.RunIndexEntry{
		RunID:        run.ID,
		Target:       run.Target,
		Seed:         run.Seed,
		Generations:  run.Generations,
		Solved:       run.Solved,
		StartedAtUTC: run.StartedAtUTC,
	}); err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: run.ID, Directory: dir}, nil
}

// Benchmark repeats req.Run with seeds Seed, Seed+1, ... and summarizes the
// trials. Benchmark trials are not persisted.
func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (stats.BenchmarkSummary, error) {
	if req.Trials < 0 {
		return stats.BenchmarkSummary{}, errors.New("trials must be >= 0")
	}
	if req.Trials == 0 {
		req.Trials = defaultTrials
	}
	base := withDefaults(req.Run)

	trials := make([]stats.Trial, 0, req.Trials)
	for i := 0; i < req.Trials; i++ {
		trialReq := base
		trialReq.Seed = base.Seed + int64(i)
		monitor, err := newMonitor(trialReq, nil)
		if err != nil {
			return stats.BenchmarkSummary{}, err
		}
		started := time.Now()
		result, err := monitor.Run(ctx)
		if err != nil {
			return stats.BenchmarkSummary{}, err
		}
		trials = append(trials, stats.Trial{
			Seed:        trialReq.Seed,
			Solved:      result.Solved,
			Generations: result.Generations,
			Evaluations: result.Evaluations,
			ElapsedMS:   time.Since(started).Milliseconds(),
		})
	}
	return stats.SummarizeTrials(base.Target, trials), nil
}

func (c *Client) resolveRunID(ctx context.Context, ref RunRef) (string, error) {
	if ref.RunID != "" && ref.Latest {
		return "", errors.New("use either run id or latest, not both")
	}
	if err := c.store.Init(ctx); err != nil {
		return "", err
	}
	if ref.RunID != "" {
		return ref.RunID, nil
	}
	if !ref.Latest {
		return "", errors.New("run id or latest is required")
	}
	runs, err := c.store.ListRuns(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs found")
	}
	return runs[0].ID, nil
}

func withDefaults(req RunRequest) RunRequest {
	if req.Alphabet == "" {
		req.Alphabet = evo.DefaultAlphabetChars
	}
	if req.MutationRate == nil {
		rate := evo.DefaultMutationRate
		req.MutationRate = &rate
	}
	if req.Copies <= 0 {
		req.Copies = evo.DefaultCopies
	}
	if req.Parents <= 0 {
		req.Parents = evo.DefaultParents
	}
	if req.Recombination == "" {
		req.Recombination = evo.RecombinationUniform
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	return req
}

func newMonitor(req RunRequest, observer evo.Observer) (*evo.PopulationMonitor, error) {
	alphabet, err := evo.NewAlphabet(req.Alphabet)
	if err != nil {
		return nil, err
	}
	if err := alphabet.Validate(req.Target); err != nil {
		return nil, err
	}
	mutation, err := evo.NewPointMutation(alphabet, *req.MutationRate)
	if err != nil {
		return nil, err
	}
	recombiner, err := evo.RecombinerFromName(req.Recombination)
	if err != nil {
		return nil, err
	}
	return evo.NewPopulationMonitor(evo.MonitorConfig{
		Target:         evo.Candidate(req.Target),
		Alphabet:       alphabet,
		Mutation:       mutation,
		Recombiner:     recombiner,
		Selector:       evo.TruncationSelector{},
		Copies:         req.Copies,
		Parents:        req.Parents,
		MaxGenerations: req.MaxGenerations,
		Workers:        req.Workers,
		Seed:           req.Seed,
		Observer:       observer,
	})
}

func progressRecords(progress []evo.Progress) []model.ProgressRecord {
	out := make([]model.ProgressRecord, len(progress))
	for i, p := range progress {
		out[i] = model.ProgressRecord{
			VersionedRecord: storage.CurrentVersion(),
			Generation:      p.Generation,
			Candidate:       string(p.Candidate),
			Fitness:         p.Fitness,
		}
	}
	return out
}

func diagnosticsRecords(diagnostics []evo.GenerationDiagnostics) []model.GenerationDiagnostics {
	out := make([]model.GenerationDiagnostics, len(diagnostics))
	for i, d := range diagnostics {
		out[i] = model.GenerationDiagnostics{
			Generation:       d.Generation,
			BestFitness:      d.BestFitness,
			MeanFitness:      d.MeanFitness,
			WorstFitness:     d.WorstFitness,
			DistinctChildren: d.DistinctChildren,
		}
	}
	return out
}

func Float64(v float64) *float64 {
	return &v
}

// ValidateRequest checks req the way Run would, so callers can fail before
// producing any output.
func ValidateRequest(req RunRequest) error {
	_, err := newMonitor(withDefaults(req), nil)
	return err
}
