package stats

import "math"

// Series holds population statistics of a sample.
type Series struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func Summarize(values []float64) Series {
	if len(values) == 0 {
		return Series{}
	}
	s := Series{Min: values[0], Max: values[0]}
	total := 0.0
	for _, value := range values {
		total += value
		if value > s.Max {
			s.Max = value
		}
		if value < s.Min {
			s.Min = value
		}
	}
	s.Mean = total / float64(len(values))
	sumSq := 0.0
	for _, value := range values {
		diff := s.Mean - value
		sumSq += diff * diff
	}
	s.Std = math.Sqrt(sumSq / float64(len(values)))
	return s
}

// BenchmarkSummary aggregates repeated seeded runs of the same configuration.
type BenchmarkSummary struct {
	Target      string `json:"target"`
	Trials      int    `json:"trials"`
	Solved      int    `json:"solved"`
	FirstSeed   int64  `json:"first_seed"`
	Generations Series `json:"generations"`
	Evaluations Series `json:"evaluations"`
	ElapsedMS   Series `json:"elapsed_ms"`
}

type Trial struct {
	Seed        int64
	Solved      bool
	Generations int
	Evaluations int
	ElapsedMS   int64
}

func SummarizeTrials(target string, trials []Trial) BenchmarkSummary {
	summary := BenchmarkSummary{Target: target, Trials: len(trials)}
	if len(trials) == 0 {
		return summary
	}
	summary.FirstSeed = trials[0].Seed
	generations := make([]float64, 0, len(trials))
	evaluations := make([]float64, 0, len(trials))
	elapsed := make([]float64, 0, len(trials))
	for _, trial := range trials {
		if trial.Solved {
			summary.Solved++
		}
		generations = append(generations, float64(trial.Generations))
		evaluations = append(evaluations, float64(trial.Evaluations))
		elapsed = append(elapsed, float64(trial.ElapsedMS))
	}
	summary.Generations = Summarize(generations)
	summary.Evaluations = Summarize(evaluations)
	summary.ElapsedMS = Summarize(elapsed)
	return summary
}
