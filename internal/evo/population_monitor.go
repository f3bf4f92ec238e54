package evo

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

const (
	DefaultTarget       = "METHINKS IT IS LIKE A WEASEL"
	DefaultMutationRate = 0.05
	DefaultCopies       = 400
	DefaultParents      = 3
)

type MonitorState int

const (
	StateInitializing MonitorState = iota
	StateEvaluating
	StateSelecting
	StateTerminated
)

func (s MonitorState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateEvaluating:
		return "evaluating"
	case StateSelecting:
		return "selecting"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type TerminationReason string

const (
	ReasonSolved          TerminationReason = "solved"
	ReasonGenerationLimit TerminationReason = "generation_limit"
	ReasonCanceled        TerminationReason = "canceled"
)

type MonitorConfig struct {
	Target     Candidate
	Alphabet   Alphabet
	Mutation   Mutator
	Recombiner Recombiner
	Selector   Selector
	// Copies is the number of children bred per generation.
	Copies  int
	Parents int
	// MaxGenerations stops the search early; zero means unbounded.
	MaxGenerations int
	Workers        int
	Seed           int64
	Observer       Observer
}

type RunResult struct {
	Best        ScoredCandidate
	Parents     []ScoredCandidate
	Generations int
	Evaluations int
	Solved      bool
	Reason      TerminationReason
	Progress    []Progress
}

// PopulationMonitor drives the breed, score and select loop. It is not safe
// for concurrent use.
type PopulationMonitor struct {
	cfg    MonitorConfig
	rng    *rand.Rand
	scorer Scorer
	state  MonitorState
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if cfg.Alphabet.Len() == 0 {
		cfg.Alphabet = DefaultAlphabet
	}
	if err := cfg.Alphabet.Validate(string(cfg.Target)); err != nil {
		return nil, err
	}
	if cfg.Mutation == nil {
		return nil, fmt.Errorf("mutation operator is required")
	}
	if cfg.Parents <= 0 {
		return nil, fmt.Errorf("parent count must be > 0")
	}
	if cfg.Copies < cfg.Parents {
		return nil, fmt.Errorf("copies must be >= parent count: copies=%d parents=%d", cfg.Copies, cfg.Parents)
	}
	if cfg.MaxGenerations < 0 {
		return nil, fmt.Errorf("max generations must be >= 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Workers > cfg.Copies {
		cfg.Workers = cfg.Copies
	}
	if cfg.Recombiner == nil {
		cfg.Recombiner = UniformCrossover{}
	}
	if cfg.Selector == nil {
		cfg.Selector = TruncationSelector{}
	}
	if cfg.Observer == nil {
		cfg.Observer = ObserverFuncs{}
	}

	return &PopulationMonitor{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		scorer: NewScorer(cfg.Target),
		state:  StateInitializing,
	}, nil
}

func (m *PopulationMonitor) State() MonitorState {
	return m.state
}

// Run searches until the target is matched, the generation limit is hit or
// ctx is done. On cancellation the partial result is returned with ctx.Err().
func (m *PopulationMonitor) Run(ctx context.Context) (RunResult, error) {
	m.state = StateInitializing
	seeded := SeedPopulation(m.rng, m.cfg.Alphabet, m.scorer.TargetLen(), m.cfg.Parents)
	scoredParents := make([]ScoredCandidate, len(seeded))
	for i, candidate := range seeded {
		fitness, err := m.scorer.Score(candidate)
		if err != nil {
			return RunResult{}, err
		}
		scoredParents[i] = ScoredCandidate{Candidate: candidate, Fitness: fitness, Index: i}
	}
	scoredParents = RankScored(scoredParents)

	result := RunResult{
		Best:        scoredParents[0],
		Parents:     scoredParents,
		Evaluations: len(scoredParents),
	}
	parents := seeded

	m.state = StateEvaluating
	for gen := 1; result.Best.Fitness > 0; gen++ {
		if err := ctx.Err(); err != nil {
			result.Reason = ReasonCanceled
			m.state = StateTerminated
			return result, err
		}
		if m.cfg.MaxGenerations > 0 && gen > m.cfg.MaxGenerations {
			result.Reason = ReasonGenerationLimit
			m.state = StateTerminated
			return result, nil
		}

		m.state = StateEvaluating
		children, err := m.breed(ctx, parents)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				result.Reason = ReasonCanceled
				m.state = StateTerminated
				return result, ctxErr
			}
			return RunResult{}, err
		}
		result.Evaluations += len(children)

		m.state = StateSelecting
		selected, err := m.cfg.Selector.Select(children, m.cfg.Parents)
		if err != nil {
			return RunResult{}, err
		}
		parents = make([]Candidate, len(selected))
		for i, s := range selected {
			parents[i] = s.Candidate
		}
		result.Parents = selected
		result.Generations = gen

		diag, bestChild := diagnose(gen, children)
		m.cfg.Observer.OnGeneration(diag)

		if bestChild.Fitness < result.Best.Fitness {
			result.Best = bestChild
			progress := Progress{Generation: gen, Candidate: bestChild.Candidate, Fitness: bestChild.Fitness}
			result.Progress = append(result.Progress, progress)
			m.cfg.Observer.OnImprovement(progress)
		}
	}

	result.Solved = true
	result.Reason = ReasonSolved
	m.state = StateTerminated
	return result, nil
}

func (m *PopulationMonitor) breed(ctx context.Context, parents []Candidate) ([]ScoredCandidate, error) {
	children := make([]ScoredCandidate, m.cfg.Copies)
	if m.cfg.Workers <= 1 {
		if err := m.breedRange(m.rng, parents, children, 0); err != nil {
			return nil, err
		}
		return children, nil
	}

	chunk := (m.cfg.Copies + m.cfg.Workers - 1) / m.cfg.Workers
	seeds := make([]int64, m.cfg.Workers)
	for i := range seeds {
		seeds[i] = m.rng.Int63()
	}

	errs := make([]error, m.cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < m.cfg.Workers; w++ {
		start := w * chunk
		if start >= len(children) {
			break
		}
		end := start + chunk
		if end > len(children) {
			end = len(children)
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[w] = err
				return
			}
			rng := rand.New(rand.NewSource(seeds[w]))
			errs[w] = m.breedRange(rng, parents, children[start:end], start)
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return children, nil
}

func (m *PopulationMonitor) breedRange(rng *rand.Rand, parents []Candidate, out []ScoredCandidate, offset int) error {
	for i := range out {
		child, err := m.cfg.Recombiner.Recombine(rng, parents)
		if err != nil {
			return err
		}
		child = m.cfg.Mutation.Mutate(rng, child)
		fitness, err := m.scorer.Score(child)
		if err != nil {
			return err
		}
		out[i] = ScoredCandidate{Candidate: child, Fitness: fitness, Index: offset + i}
	}
	return nil
}

func diagnose(generation int, children []ScoredCandidate) (GenerationDiagnostics, ScoredCandidate) {
	best := children[0]
	worst := children[0].Fitness
	total := 0
	distinct := make(map[Candidate]struct{}, len(children))
	for _, child := range children {
		total += child.Fitness
		if child.Fitness < best.Fitness {
			best = child
		}
		if child.Fitness > worst {
			worst = child.Fitness
		}
		distinct[child.Candidate] = struct{}{}
	}
	return GenerationDiagnostics{
		Generation:       generation,
		BestFitness:      best.Fitness,
		MeanFitness:      float64(total) / float64(len(children)),
		WorstFitness:     worst,
		DistinctChildren: len(distinct),
	}, best
}
