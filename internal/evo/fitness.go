package evo

// Fitness counts the positions where candidate and target differ. Lower is
// better and zero is an exact match.
func Fitness(candidate, target Candidate) (int, error) {
	return NewScorer(target).Score(candidate)
}

// Scorer evaluates candidates against a fixed target.
type Scorer struct {
	target []rune
}

func NewScorer(target Candidate) Scorer {
	return Scorer{target: []rune(string(target))}
}

func (s Scorer) TargetLen() int {
	return len(s.target)
}

func (s Scorer) Score(candidate Candidate) (int, error) {
	mismatches := 0
	i := 0
	for _, c := range string(candidate) {
		if i >= len(s.target) {
			return 0, lengthMismatch(candidate.Len(), len(s.target))
		}
		if c != s.target[i] {
			mismatches++
		}
		i++
	}
	if i != len(s.target) {
		return 0, lengthMismatch(i, len(s.target))
	}
	return mismatches, nil
}
