package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"weasel/internal/evo"
	"weasel/internal/model"
	"weasel/internal/stats"
	"weasel/internal/storage"
	weaselapi "weasel/pkg/weasel"
)

const (
	defaultDBPath = "weasel.db"
	exportsDir    = "exports"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "init":
			return runInit(ctx, args[1:], stdout, stderr)
		case "reset":
			return runReset(ctx, args[1:], stdout, stderr)
		case "runs":
			return runRuns(ctx, args[1:], stdout, stderr)
		case "progress":
			return runProgress(ctx, args[1:], stdout, stderr)
		case "diagnostics":
			return runDiagnostics(ctx, args[1:], stdout, stderr)
		case "benchmark":
			return runBenchmark(ctx, args[1:], stdout, stderr)
		case "export":
			return runExport(ctx, args[1:], stdout, stderr)
		}
	}
	return runSearch(ctx, args, stdout, stderr)
}

type searchFlags struct {
	config        *string
	runID         *string
	alphabet      *string
	seed          *int64
	rate          *float64
	copies        *int
	parents       *int
	recombination *string
	workers       *int
	maxGens       *int
	diagWindow    *int
}

func registerSearchFlags(fs *flag.FlagSet, defaultSeed int64) *searchFlags {
	return &searchFlags{
		config:        fs.String("config", "", "optional run config JSON path"),
		runID:         fs.String("run-id", "", "explicit run id (optional)"),
		alphabet:      fs.String("alphabet", evo.DefaultAlphabetChars, "permissible characters"),
		seed:          fs.Int64("seed", defaultSeed, "rng seed (0 derives one from the clock)"),
		rate:          fs.Float64("rate", evo.DefaultMutationRate, "per-character mutation rate in [0, 1]"),
		copies:        fs.Int("copies", evo.DefaultCopies, "children bred per generation"),
		parents:       fs.Int("parents", evo.DefaultParents, "parents retained per generation"),
		recombination: fs.String("recombination", evo.RecombinationUniform, "recombination strategy: uniform|none"),
		workers:       fs.Int("workers", 1, "goroutines breeding each generation"),
		maxGens:       fs.Int("max-gens", 0, "stop after N generations (0 runs until solved)"),
		diagWindow:    fs.Int("diagnostics-window", evo.DefaultDiagnosticsWindow, "recent generations kept for diagnostics"),
	}
}

// request merges config file values, explicit flags and the positional target.
func (f *searchFlags) request(fs *flag.FlagSet) (weaselapi.RunRequest, error) {
	if fs.NArg() > 1 {
		return weaselapi.RunRequest{}, usageError(fmt.Sprintf("expected at most one target, got %d arguments", fs.NArg()))
	}
	cfg, err := loadOrDefaultRunConfig(*f.config)
	if err != nil {
		return weaselapi.RunRequest{}, err
	}

	setFlags := map[string]bool{}
	if *f.config == "" {
		fs.VisitAll(func(fl *flag.Flag) {
			setFlags[fl.Name] = true
		})
	} else {
		fs.Visit(func(fl *flag.Flag) {
			setFlags[fl.Name] = true
		})
	}
	req := cfg.Request
	err = overrideFromFlags(&req, setFlags, map[string]any{
		"run-id":             *f.runID,
		"alphabet":           *f.alphabet,
		"seed":               *f.seed,
		"rate":               *f.rate,
		"copies":             *f.copies,
		"parents":            *f.parents,
		"recombination":      *f.recombination,
		"workers":            *f.workers,
		"max-gens":           *f.maxGens,
		"diagnostics-window": *f.diagWindow,
	})
	if err != nil {
		return weaselapi.RunRequest{}, err
	}

	switch {
	case fs.NArg() == 1:
		req.Target = fs.Arg(0)
	case !cfg.HasTarget:
		req.Target = evo.DefaultTarget
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	return req, nil
}

func runSearch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("weasel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	search := registerSearchFlags(fs, 0)
	storeKind := fs.String("store", storage.KindMemory, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	quiet := fs.Bool("quiet", false, "suppress the run summary on a terminal stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := search.request(fs)
	if err != nil {
		return err
	}
	if err := weaselapi.ValidateRequest(req); err != nil {
		return err
	}

	client, err := weaselapi.New(weaselapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ExportsDir: exportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Fprintln(stdout, req.Target)
	summary, err := client.Run(ctx, req, evo.ObserverFuncs{
		Improvement: func(p evo.Progress) {
			fmt.Fprintf(stdout, "%s : %d\n", p.Candidate, p.Generation)
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("search interrupted run_id=%s generations=%d best_fitness=%d: %w", summary.RunID, summary.Generations, summary.BestFitness, err)
		}
		return err
	}
	if !*quiet && isTerminal(stderr) {
		fmt.Fprintf(stderr, "run completed run_id=%s seed=%d generations=%s evaluations=%s elapsed=%s\n",
			summary.RunID,
			summary.Seed,
			humanize.Comma(int64(summary.Generations)),
			humanize.Comma(int64(summary.Evaluations)),
			summary.Elapsed.Round(time.Millisecond),
		)
	}
	if !summary.Solved {
		return fmt.Errorf("target not reached run_id=%s reason=%s generations=%d best=%q best_fitness=%d",
			summary.RunID, summary.Reason, summary.Generations, summary.Best, summary.BestFitness)
	}
	return nil
}

func runInit(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	storeKind := fs.String("store", storage.KindSQLite, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := weaselapi.New(weaselapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(stderr)
	storeKind := fs.String("store", storage.KindSQLite, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := weaselapi.New(weaselapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "reset store=%s\n", *storeKind)
	return nil
}

func runRuns(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.KindSQLite, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := weaselapi.New(weaselapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, weaselapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(stdout, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs found")
		return nil
	}

	for _, r := range runs {
		started := r.StartedAtUTC
		if ts, err := time.Parse(time.RFC3339Nano, r.StartedAtUTC); err == nil {
			started = humanize.Time(ts)
		}
		fmt.Fprintf(stdout, "run_id=%s started=%q target=%q seed=%d parents=%d copies=%d solved=%t generations=%s best=%q\n",
			r.ID,
			started,
			r.Target,
			r.Seed,
			r.Parents,
			r.Copies,
			r.Solved,
			humanize.Comma(int64(r.Generations)),
			r.BestCandidate,
		)
	}
	return nil
}

func runProgress(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("progress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show progress for the most recent run")
	from := fs.String("from", "", "read progress from an exported run directory instead of the store")
	jsonOut := fs.Bool("json", false, "emit progress records as JSON")
	storeKind := fs.String("store", storage.KindSQLite, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *from != "" {
		if *runID != "" || *latest {
			return errors.New("use either --from or --run-id/--latest, not both")
		}
		artifacts, err := stats.ReadRunArtifacts(*from)
		if err != nil {
			return fmt.Errorf("read export %s: %w", *from, err)
		}
		return printProgress(stdout, artifacts.Run.Target, artifacts.Progress, *jsonOut)
	}
	if err := checkRunRef(*runID, *latest, "progress"); err != nil {
		return err
	}

	client, err := weaselapi.New(weaselapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ref := weaselapi.RunRef{RunID: *runID, Latest: *latest}
	r, err := client.GetRun(ctx, ref)
	if err != nil {
		return err
	}
	progress, err := client.Progress(ctx, weaselapi.RunRef{RunID: r.ID})
	if err != nil {
		return err
	}
	return printProgress(stdout, r.Target, progress, *jsonOut)
}

func printProgress(w io.Writer, target string, progress []model.ProgressRecord, jsonOut bool) error {
	if jsonOut {
		return writeJSON(w, progress)
	}
	fmt.Fprintln(w, target)
	for _, p := range progress {
		fmt.Fprintf(w, "%s : %d\n", p.Candidate, p.Generation)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	fs.SetOutput(stderr)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.KindSQLite, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunRef(*runID, *latest, "diagnostics"); err != nil {
		return err
	}

	client, err := weaselapi.New(weaselapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, weaselapi.DiagnosticsRequest{
		RunRef: weaselapi.RunRef{RunID: *runID, Latest: *latest},
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(stdout, diagnostics)
	}
	if len(diagnostics) == 0 {
		fmt.Fprintln(stdout, "no generations recorded")
		return nil
	}
	for _, d := range diagnostics {
		fmt.Fprintf(stdout, "generation=%d best_fitness=%d mean_fitness=%.3f worst_fitness=%d distinct_children=%d\n",
			d.Generation,
			d.BestFitness,
			d.MeanFitness,
			d.WorstFitness,
			d.DistinctChildren,
		)
	}
	return nil
}

func runBenchmark(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	fs.SetOutput(stderr)
	search := registerSearchFlags(fs, 1)
	trials := fs.Int("trials", 10, "number of seeded runs")
	jsonOut := fs.Bool("json", false, "emit benchmark summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *trials <= 0 {
		return errors.New("trials must be > 0")
	}
	req, err := search.request(fs)
	if err != nil {
		return err
	}
	if err := weaselapi.ValidateRequest(req); err != nil {
		return err
	}

	client, err := weaselapi.New(weaselapi.Options{StoreKind: storage.KindMemory})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Benchmark(ctx, weaselapi.BenchmarkRequest{Run: req, Trials: *trials})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(stdout, summary)
	}
	fmt.Fprintf(stdout, "benchmark target=%q trials=%d solved=%d first_seed=%d\n", summary.Target, summary.Trials, summary.Solved, summary.FirstSeed)
	fmt.Fprintf(stdout, "generations mean=%.2f std=%.2f min=%.0f max=%.0f\n",
		summary.Generations.Mean, summary.Generations.Std, summary.Generations.Min, summary.Generations.Max)
	fmt.Fprintf(stdout, "evaluations mean=%s min=%s max=%s\n",
		humanize.Commaf(summary.Evaluations.Mean),
		humanize.Comma(int64(summary.Evaluations.Min)),
		humanize.Comma(int64(summary.Evaluations.Max)),
	)
	return nil
}

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "output directory")
	storeKind := fs.String("store", storage.KindSQLite, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunRef(*runID, *latest, "export"); err != nil {
		return err
	}

	client, err := weaselapi.New(weaselapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ExportsDir: *outDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, weaselapi.ExportRequest{
		RunRef: weaselapi.RunRef{RunID: *runID, Latest: *latest},
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
	return nil
}

func checkRunRef(runID string, latest bool, command string) error {
	if runID != "" && latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if runID == "" && !latest {
		return fmt.Errorf("%s requires --run-id or --latest", command)
	}
	return nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: weasel [flags] [TARGET]\n       weasel <init|reset|runs|progress|diagnostics|benchmark|export> [flags]", msg)
}
