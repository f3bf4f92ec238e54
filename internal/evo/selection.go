package evo

import (
	"fmt"
	"sort"
)

// Selector chooses the next parent set from a scored generation.
type Selector interface {
	Name() string
	Select(scored []ScoredCandidate, count int) ([]ScoredCandidate, error)
}

// TruncationSelector keeps the count lowest-fitness children. Equal fitness
// keeps batch order.
type TruncationSelector struct{}

func (TruncationSelector) Name() string {
	return "truncation"
}

func (TruncationSelector) Select(scored []ScoredCandidate, count int) ([]ScoredCandidate, error) {
	if count <= 0 || count > len(scored) {
		return nil, fmt.Errorf("invalid selection count: %d of %d", count, len(scored))
	}
	ranked := RankScored(scored)
	return ranked[:count], nil
}

// RankScored returns a copy of scored sorted by ascending fitness, then index.
func RankScored(scored []ScoredCandidate) []ScoredCandidate {
	ranked := make([]ScoredCandidate, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Fitness != ranked[j].Fitness {
			return ranked[i].Fitness < ranked[j].Fitness
		}
		return ranked[i].Index < ranked[j].Index
	})
	return ranked
}
