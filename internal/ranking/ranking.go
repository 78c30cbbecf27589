// Package ranking orders scored candidates.
package ranking

import (
	"sort"

	"github.com/spigell/alumni-referrer/internal/alumni"
)

// Rank returns the candidates sorted by score descending, ties in their original order,
// truncated to topK. A topK of zero or less keeps every candidate.
// The input slice is not reordered.
func Rank(candidates []*alumni.Candidate, topK int) []*alumni.Candidate {
	ranked := make([]*alumni.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate != nil {
			ranked = append(ranked, candidate)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}
