// Package merge deduplicates the similarity and database candidate streams.
package merge

import (
	"strings"

	"github.com/spigell/alumni-referrer/internal/alumni"
)

// DefaultNeutralSimilarity is assigned to candidates known only from the database stream.
const DefaultNeutralSimilarity = 0.5

// Option applies a configuration option to a merge.
type Option func(*merger)

// WithNeutralSimilarity overrides the similarity given to database-only candidates.
func WithNeutralSimilarity(v float64) Option {
	return func(m *merger) {
		m.neutral = v
	}
}

type merger struct {
	neutral float64
}

// Result is the merged candidate list.
type Result struct {
	Candidates []*alumni.Candidate
	// Duplicates counts entries collapsed into an earlier identifier.
	Duplicates int
	// DroppedEmptyID counts entries without an identifier.
	DroppedEmptyID int
}

// Merge returns every identifier from primary then secondary exactly once, in first-seen order.
// On a collision the variant carrying similarity wins and keeps the first-seen position.
// Inputs are never modified; merged entries are copies.
func Merge(primary, secondary []*alumni.Candidate, opts ...Option) Result {
	m := &merger{neutral: DefaultNeutralSimilarity}
	for _, opt := range opts {
		opt(m)
	}

	var result Result
	merged := make([]*alumni.Candidate, 0, len(primary)+len(secondary))
	position := make(map[string]int, len(primary)+len(secondary))

	add := func(candidate *alumni.Candidate) {
		if candidate == nil || strings.TrimSpace(candidate.ID) == "" {
			result.DroppedEmptyID++
			return
		}
		idx, seen := position[candidate.ID]
		if !seen {
			position[candidate.ID] = len(merged)
			merged = append(merged, candidate.Clone())
			return
		}
		result.Duplicates++
		if candidate.HasSimilarity && !merged[idx].HasSimilarity {
			merged[idx] = candidate.Clone()
		}
	}

	for _, candidate := range primary {
		add(candidate)
	}
	for _, candidate := range secondary {
		add(candidate)
	}

	for _, candidate := range merged {
		if candidate.HasSimilarity {
			if candidate.Source == "" {
				candidate.Source = alumni.SourceSimilarity
			}
			continue
		}
		candidate.Similarity = m.neutral
		candidate.Source = alumni.SourceDatabase
	}

	result.Candidates = merged
	return result
}
