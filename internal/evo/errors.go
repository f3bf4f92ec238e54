package evo

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCharacter   = errors.New("invalid character")
	ErrInvariantViolation = errors.New("internal invariant violation")
)

// InvalidCharacterError is returned when a target holds a character that is
// not part of the configured alphabet.
type InvalidCharacterError struct {
	Char     rune
	Position int
	Alphabet string
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("Bad character: %c, permissable characters: %s", e.Char, e.Alphabet)
}

func (e *InvalidCharacterError) Is(target error) bool {
	return target == ErrInvalidCharacter
}

func lengthMismatch(got, want int) error {
	return fmt.Errorf("%w: candidate length %d does not match target length %d", ErrInvariantViolation, got, want)
}
