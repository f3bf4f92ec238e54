package evo

import (
	"errors"
	"math/rand"
	"testing"
)

func TestDefaultAlphabet(t *testing.T) {
	if DefaultAlphabet.Len() != 27 {
		t.Fatalf("expected 27 characters, got %d", DefaultAlphabet.Len())
	}
	if DefaultAlphabet.String() != "ABCDEFGHIJKLMNOPQRSTUVWXYZ " {
		t.Fatalf("unexpected alphabet: %q", DefaultAlphabet.String())
	}
	if !DefaultAlphabet.Contains(' ') || DefaultAlphabet.Contains('a') {
		t.Fatal("unexpected membership")
	}
}

func TestAlphabetValidateReportsFirstBadCharacter(t *testing.T) {
	err := DefaultAlphabet.Validate("CAt x")
	if !errors.Is(err, ErrInvalidCharacter) {
		t.Fatalf("expected ErrInvalidCharacter, got %v", err)
	}
	var invalid *InvalidCharacterError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCharacterError, got %T", err)
	}
	if invalid.Char != 't' || invalid.Position != 2 {
		t.Fatalf("unexpected offending character: %+v", invalid)
	}
	want := "Bad character: t, permissable characters: ABCDEFGHIJKLMNOPQRSTUVWXYZ "
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestAlphabetValidateAcceptsEmptyAndValid(t *testing.T) {
	if err := DefaultAlphabet.Validate(""); err != nil {
		t.Fatalf("empty target: %v", err)
	}
	if err := DefaultAlphabet.Validate(DefaultTarget); err != nil {
		t.Fatalf("default target: %v", err)
	}
}

func TestNewAlphabetValidation(t *testing.T) {
	if _, err := NewAlphabet(""); err == nil {
		t.Fatal("expected empty alphabet error")
	}
	if _, err := NewAlphabet("ABA"); err == nil {
		t.Fatal("expected duplicate character error")
	}
	a, err := NewAlphabet("01")
	if err != nil {
		t.Fatalf("new alphabet: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		if c := a.Random(rng); c != '0' && c != '1' {
			t.Fatalf("random character outside alphabet: %q", c)
		}
	}
}

func TestSeedPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	population := SeedPopulation(rng, DefaultAlphabet, 12, 3)
	if len(population) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(population))
	}
	for _, c := range population {
		if c.Len() != 12 {
			t.Fatalf("expected length 12, got %d", c.Len())
		}
		if err := DefaultAlphabet.Validate(string(c)); err != nil {
			t.Fatalf("seeded candidate outside alphabet: %v", err)
		}
	}
}
