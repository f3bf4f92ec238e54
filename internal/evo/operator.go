package evo

import (
	"fmt"
	"math"
	"math/rand"
)

// Mutator derives a new candidate from an existing one.
type Mutator interface {
	Name() string
	Mutate(rng *rand.Rand, candidate Candidate) Candidate
}

// PointMutation redraws each character independently with probability Rate.
type PointMutation struct {
	Alphabet Alphabet
	Rate     float64
}

func NewPointMutation(alphabet Alphabet, rate float64) (PointMutation, error) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return PointMutation{}, fmt.Errorf("mutation rate must be in [0, 1], got %g", rate)
	}
	if alphabet.Len() == 0 {
		return PointMutation{}, fmt.Errorf("alphabet is required")
	}
	return PointMutation{Alphabet: alphabet, Rate: rate}, nil
}

func (PointMutation) Name() string {
	return "point"
}

func (m PointMutation) Mutate(rng *rand.Rand, candidate Candidate) Candidate {
	out := []rune(string(candidate))
	for i := range out {
		if rng.Float64() < m.Rate {
			out[i] = m.Alphabet.Random(rng)
		}
	}
	return Candidate(out)
}
