// Package store persists alumni records and answers similarity and structured queries over them.
package store

import (
	"context"
	"sort"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/filtering"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Hit is one similarity match returned by a corpus store.
type Hit struct {
	ID         string
	Similarity float64
	Metadata   map[string]any
}

// Stats describes a corpus store.
type Stats struct {
	Count  int    `json:"count"`
	Method string `json:"method"`
	Driver string `json:"driver"`
}

// CorpusStore answers similarity queries. Criteria are applied before scoring.
type CorpusStore interface {
	Add(ctx context.Context, candidates []*alumni.Candidate) error
	Query(ctx context.Context, text string, criteria *filtering.Criteria, topK int) ([]Hit, error)
	Stats(ctx context.Context) (Stats, error)
}

// ProfileStore answers direct lookups and structured searches.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*alumni.Candidate, error)
	Search(ctx context.Context, criteria *filtering.Criteria, limit int) ([]*alumni.Candidate, error)
	Delete(ctx context.Context, id string) error
}

// Store is implemented by backends serving both roles.
type Store interface {
	CorpusStore
	ProfileStore
	Close()
}

// sortHits orders hits by similarity descending, then identifier ascending.
func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID < hits[j].ID
	})
}
