package similarity

import (
	"context"
	"math"
)

const (
	MethodTFIDF     = "tfidf"
	MethodEmbedding = "embedding"
)

// Document is a piece of text identified by a candidate id.
type Document struct {
	ID   string
	Text string
}

// Score is the similarity of one document to the query; higher is more similar.
type Score struct {
	ID         string
	Similarity float64
}

// Source scores documents against a query.
// Documents that cannot be vectorized are skipped; a query that cannot be vectorized
// yields ErrRetrievalUnavailable.
type Source interface {
	Similarities(ctx context.Context, query string, docs []Document) ([]Score, error)
	Method() string
}

// Cosine returns the cosine similarity of a and b, or 0 when they are empty,
// of different length or have zero norm.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
