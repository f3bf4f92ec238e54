package evo

import (
	"fmt"
	"math/rand"
)

const (
	RecombinationUniform = "uniform"
	RecombinationNone    = "none"
)

// Recombiner produces one child from the current parent set.
type Recombiner interface {
	Name() string
	Recombine(rng *rand.Rand, parents []Candidate) (Candidate, error)
}

// UniformCrossover picks two parents with replacement and then, per position,
// takes the character of either one with equal probability.
type UniformCrossover struct{}

func (UniformCrossover) Name() string {
	return RecombinationUniform
}

func (UniformCrossover) Recombine(rng *rand.Rand, parents []Candidate) (Candidate, error) {
	if len(parents) == 0 {
		return "", fmt.Errorf("recombination requires at least one parent")
	}
	a := []rune(string(parents[rng.Intn(len(parents))]))
	b := []rune(string(parents[rng.Intn(len(parents))]))
	if len(a) != len(b) {
		return "", fmt.Errorf("%w: parent lengths %d and %d differ", ErrInvariantViolation, len(a), len(b))
	}
	out := make([]rune, len(a))
	for i := range out {
		if rng.Intn(2) == 0 {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return Candidate(out), nil
}

// CloneParent copies a uniformly chosen parent.
type CloneParent struct{}

func (CloneParent) Name() string {
	return RecombinationNone
}

func (CloneParent) Recombine(rng *rand.Rand, parents []Candidate) (Candidate, error) {
	if len(parents) == 0 {
		return "", fmt.Errorf("recombination requires at least one parent")
	}
	if len(parents) == 1 {
		return parents[0], nil
	}
	return parents[rng.Intn(len(parents))], nil
}

func RecombinerFromName(name string) (Recombiner, error) {
	switch name {
	case "", RecombinationUniform:
		return UniformCrossover{}, nil
	case RecombinationNone:
		return CloneParent{}, nil
	default:
		return nil, fmt.Errorf("unsupported recombination strategy: %s", name)
	}
}
