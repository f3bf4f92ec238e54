package evo

import (
	"math"
	"math/rand"
	"testing"
)

func TestPointMutationRateZeroIsIdentity(t *testing.T) {
	m, err := NewPointMutation(DefaultAlphabet, 0)
	if err != nil {
		t.Fatalf("new mutation: %v", err)
	}
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		if got := m.Mutate(rng, DefaultTarget); got != DefaultTarget {
			t.Fatalf("expected unchanged candidate, got %q", got)
		}
	}
}

func TestPointMutationRateOneRedrawsUniformly(t *testing.T) {
	m, err := NewPointMutation(DefaultAlphabet, 1)
	if err != nil {
		t.Fatalf("new mutation: %v", err)
	}
	rng := rand.New(rand.NewSource(9))
	const trials = 27000
	counts := map[rune]int{}
	for i := 0; i < trials; i++ {
		out := []rune(string(m.Mutate(rng, "AA")))
		counts[out[0]]++
		counts[out[1]]++
	}
	if len(counts) != DefaultAlphabet.Len() {
		t.Fatalf("expected every character to appear, got %d distinct", len(counts))
	}
	expected := 2 * trials / DefaultAlphabet.Len()
	for c, n := range counts {
		if n < expected*85/100 || n > expected*115/100 {
			t.Fatalf("character %q drawn %d times, expected about %d", c, n, expected)
		}
	}
}

func TestPointMutationIsDeterministicForSeed(t *testing.T) {
	m, err := NewPointMutation(DefaultAlphabet, 0.3)
	if err != nil {
		t.Fatalf("new mutation: %v", err)
	}
	a := m.Mutate(rand.New(rand.NewSource(42)), DefaultTarget)
	b := m.Mutate(rand.New(rand.NewSource(42)), DefaultTarget)
	if a != b {
		t.Fatalf("expected identical mutations, got %q and %q", a, b)
	}
	if a.Len() != Candidate(DefaultTarget).Len() {
		t.Fatalf("mutation changed length: %q", a)
	}
}

func TestNewPointMutationRejectsRateOutOfRange(t *testing.T) {
	for _, rate := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := NewPointMutation(DefaultAlphabet, rate); err == nil {
			t.Fatalf("expected error for rate %g", rate)
		}
	}
}
