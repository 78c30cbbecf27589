package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/filtering"
	"github.com/spigell/alumni-referrer/internal/similarity"
)

// Memory keeps alumni records in process memory.
type Memory struct {
	source similarity.Source

	mu    sync.RWMutex
	items map[string]*alumni.Candidate
	order []string
}

func NewMemory(source similarity.Source) *Memory {
	if source == nil {
		source = similarity.NewTFIDF()
	}
	return &Memory{
		source: source,
		items:  make(map[string]*alumni.Candidate),
	}
}

// Add inserts or replaces records. Invalid records are rejected before anything is stored.
func (m *Memory) Add(ctx context.Context, candidates []*alumni.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, candidate := range candidates {
		if _, exists := m.items[candidate.ID]; !exists {
			m.order = append(m.order, candidate.ID)
		}
		stored := candidate.Clone()
		stored.Normalize()
		m.items[candidate.ID] = stored
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, text string, criteria *filtering.Criteria, topK int) ([]Hit, error) {
	matching := m.matching(criteria)
	if len(matching) == 0 {
		return []Hit{}, nil
	}

	docs := make([]similarity.Document, 0, len(matching))
	byID := make(map[string]*alumni.Candidate, len(matching))
	for _, candidate := range matching {
		docs = append(docs, similarity.Document{ID: candidate.ID, Text: candidate.Document()})
		byID[candidate.ID] = candidate
	}

	scores, err := m.source.Similarities(ctx, text, docs)
	if err != nil {
		return nil, fmt.Errorf("query %s similarity: %w", m.source.Method(), err)
	}

	hits := make([]Hit, 0, len(scores))
	for _, score := range scores {
		hits = append(hits, Hit{
			ID:         score.ID,
			Similarity: score.Similarity,
			Metadata:   alumni.ToMetadata(byID[score.ID]),
		})
	}
	sortHits(hits)
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *Memory) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Count: len(m.items), Method: m.source.Method(), Driver: DriverMemory}, nil
}

func (m *Memory) GetByID(ctx context.Context, id string) (*alumni.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	candidate, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return candidate.Clone(), nil
}

// Search returns records matching criteria. Records sharing more of the criteria skills come first,
// the rest keep insertion order.
func (m *Memory) Search(ctx context.Context, criteria *filtering.Criteria, limit int) ([]*alumni.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matching := m.matching(criteria)

	if criteria != nil && len(criteria.Skills) > 0 {
		shared := make(map[string]int, len(matching))
		for _, candidate := range matching {
			shared[candidate.ID] = len(candidate.SharedSkills(criteria.Skills))
		}
		sort.SliceStable(matching, func(i, j int) bool {
			return shared[matching[i].ID] > shared[matching[j].ID]
		})
	}

	if limit > 0 && len(matching) > limit {
		matching = matching[:limit]
	}
	return matching, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.items, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Close() {}

// matching returns copies of the records satisfying criteria in insertion order.
func (m *Memory) matching(criteria *filtering.Criteria) []*alumni.Candidate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*alumni.Candidate, 0, len(m.order))
	for _, id := range m.order {
		candidate := m.items[id]
		if criteria.Match(candidate) {
			out = append(out, candidate.Clone())
		}
	}
	return out
}
