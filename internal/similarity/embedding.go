package similarity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type vectorizer interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Embedding scores documents by cosine similarity of dense vectors.
// Document vectors are cached by the SHA-256 of their text.
type Embedding struct {
	embedder vectorizer
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[string][]float64
}

func NewEmbedding(embedder vectorizer, logger *zap.Logger) *Embedding {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedding{
		embedder: embedder,
		logger:   logger,
		cache:    make(map[string][]float64),
	}
}

func (e *Embedding) Method() string {
	return MethodEmbedding
}

func (e *Embedding) Similarities(ctx context.Context, query string, docs []Document) ([]Score, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, ErrEmptyQuery)
	}
	if len(docs) == 0 {
		return []Score{}, nil
	}

	queryVecs, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: embed query: %w", ErrRetrievalUnavailable, err)
	}
	if len(queryVecs) != 1 || len(queryVecs[0]) == 0 || !finite(queryVecs[0]) {
		return nil, fmt.Errorf("%w: invalid query embedding", ErrRetrievalUnavailable)
	}
	queryVec := queryVecs[0]

	vectors, err := e.documentVectors(ctx, docs)
	if err != nil {
		return nil, err
	}

	scores := make([]Score, 0, len(docs))
	for _, doc := range docs {
		vec, ok := vectors[doc.ID]
		if !ok {
			continue
		}
		if len(vec) != len(queryVec) || !finite(vec) {
			e.logger.Warn("skipping document with unusable embedding",
				zap.String("candidate_id", doc.ID),
				zap.Int("dimensions", len(vec)),
				zap.Int("expected_dimensions", len(queryVec)),
			)
			continue
		}
		scores = append(scores, Score{ID: doc.ID, Similarity: Cosine(queryVec, vec)})
	}
	return scores, nil
}

// documentVectors returns the vectors of every document that could be embedded, keyed by id.
// Embedding failures of documents are logged, never returned; only cancellation is.
func (e *Embedding) documentVectors(ctx context.Context, docs []Document) (map[string][]float64, error) {
	vectors := make(map[string][]float64, len(docs))
	var missingTexts []string
	missingKeys := make(map[string][]string)

	e.mu.RLock()
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			e.logger.Debug("skipping document without text", zap.String("candidate_id", doc.ID))
			continue
		}
		key := textKey(doc.Text)
		if vec, ok := e.cache[key]; ok {
			vectors[doc.ID] = vec
			continue
		}
		if _, pending := missingKeys[key]; !pending {
			missingTexts = append(missingTexts, doc.Text)
		}
		missingKeys[key] = append(missingKeys[key], doc.ID)
	}
	e.mu.RUnlock()

	if len(missingTexts) == 0 {
		return vectors, nil
	}

	embedded, err := e.embedder.Embed(ctx, missingTexts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("document embedding failed",
			zap.Int("documents", len(missingTexts)),
			zap.Error(err),
		)
		return vectors, nil
	}
	if len(embedded) != len(missingTexts) {
		e.logger.Warn("document embedding count mismatch",
			zap.Int("requested", len(missingTexts)),
			zap.Int("returned", len(embedded)),
		)
		return vectors, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, text := range missingTexts {
		vec := embedded[i]
		key := textKey(text)
		if len(vec) == 0 || !finite(vec) {
			e.logger.Warn("skipping document with unusable embedding", zap.Strings("candidate_ids", missingKeys[key]))
			continue
		}
		e.cache[key] = vec
		for _, id := range missingKeys[key] {
			vectors[id] = vec
		}
	}
	return vectors, nil
}

// CacheSize returns the number of cached document vectors.
func (e *Embedding) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func textKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
