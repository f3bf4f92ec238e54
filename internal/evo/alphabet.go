package evo

import (
	"fmt"
	"math/rand"
)

// DefaultAlphabetChars are the characters a target may be built from unless a
// custom alphabet is configured.
const DefaultAlphabetChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ "

// DefaultAlphabet is the 26 uppercase letters plus space.
var DefaultAlphabet = MustAlphabet(DefaultAlphabetChars)

// Alphabet is an immutable ordered set of permissible characters.
type Alphabet struct {
	chars []rune
	index map[rune]struct{}
}

func NewAlphabet(chars string) (Alphabet, error) {
	runes := []rune(chars)
	if len(runes) == 0 {
		return Alphabet{}, fmt.Errorf("alphabet must not be empty")
	}
	index := make(map[rune]struct{}, len(runes))
	for _, c := range runes {
		if _, ok := index[c]; ok {
			return Alphabet{}, fmt.Errorf("alphabet has duplicate character %q", c)
		}
		index[c] = struct{}{}
	}
	return Alphabet{chars: runes, index: index}, nil
}

func MustAlphabet(chars string) Alphabet {
	a, err := NewAlphabet(chars)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Alphabet) Len() int {
	return len(a.chars)
}

func (a Alphabet) Contains(c rune) bool {
	_, ok := a.index[c]
	return ok
}

func (a Alphabet) String() string {
	return string(a.chars)
}

// Random draws one character uniformly.
func (a Alphabet) Random(rng *rand.Rand) rune {
	return a.chars[rng.Intn(len(a.chars))]
}

// Validate reports the first character of s outside the alphabet.
func (a Alphabet) Validate(s string) error {
	pos := 0
	for _, c := range s {
		if !a.Contains(c) {
			return &InvalidCharacterError{Char: c, Position: pos, Alphabet: a.String()}
		}
		pos++
	}
	return nil
}
