package evo

import (
	"math/rand"
	"unicode/utf8"
)

// Candidate is one trial string. Operators never modify a candidate in place.
type Candidate string

func (c Candidate) Len() int {
	return utf8.RuneCountInString(string(c))
}

func (c Candidate) String() string {
	return string(c)
}

type ScoredCandidate struct {
	Candidate Candidate
	Fitness   int
	// Index is the position in the generation batch and breaks fitness ties.
	Index int
}

// RandomCandidate draws length characters independently and uniformly.
func RandomCandidate(rng *rand.Rand, alphabet Alphabet, length int) Candidate {
	out := make([]rune, length)
	for i := range out {
		out[i] = alphabet.Random(rng)
	}
	return Candidate(out)
}

// SeedPopulation builds the initial parent set of count random candidates.
func SeedPopulation(rng *rand.Rand, alphabet Alphabet, length, count int) []Candidate {
	population := make([]Candidate, count)
	for i := range population {
		population[i] = RandomCandidate(rng, alphabet, length)
	}
	return population
}
