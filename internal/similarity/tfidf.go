package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// DefaultMaxFeatures caps the TF-IDF vocabulary.
const DefaultMaxFeatures = 1000

// TFIDF scores documents by cosine similarity of TF-IDF vectors fit on the documents of each call.
type TFIDF struct {
	maxFeatures int
	logger      *zap.Logger
}

type TFIDFOption func(*TFIDF)

func WithMaxFeatures(n int) TFIDFOption {
	return func(t *TFIDF) {
		if n > 0 {
			t.maxFeatures = n
		}
	}
}

func WithTFIDFLogger(logger *zap.Logger) TFIDFOption {
	return func(t *TFIDF) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func NewTFIDF(opts ...TFIDFOption) *TFIDF {
	t := &TFIDF{
		maxFeatures: DefaultMaxFeatures,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TFIDF) Method() string {
	return MethodTFIDF
}

// sparseVector holds non-zero weights ordered by vocabulary index.
type sparseVector []sparseEntry

type sparseEntry struct {
	idx    int
	weight float64
}

func (t *TFIDF) Similarities(ctx context.Context, query string, docs []Document) ([]Score, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, ErrEmptyQuery)
	}
	if len(docs) == 0 {
		return []Score{}, nil
	}

	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		tokenized[i] = Tokenize(doc.Text)
	}

	vocab, idf := t.fit(tokenized)
	queryVec := vectorize(Tokenize(query), vocab, idf)
	if len(queryVec) == 0 {
		t.logger.Debug("query shares no terms with corpus", zap.Int("documents", len(docs)))
	}

	scores := make([]Score, 0, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(tokenized[i]) == 0 {
			t.logger.Debug("skipping document without terms", zap.String("candidate_id", doc.ID))
			continue
		}
		scores = append(scores, Score{
			ID:         doc.ID,
			Similarity: sparseCosine(queryVec, vectorize(tokenized[i], vocab, idf)),
		})
	}

	return scores, nil
}

// fit builds the vocabulary from the most frequent terms (ties alphabetical) and
// their smoothed inverse document frequencies.
func (t *TFIDF) fit(docs [][]string) (map[string]int, []float64) {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for _, tokens := range docs {
		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			termFreq[token]++
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			docFreq[token]++
		}
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termFreq[terms[i]] != termFreq[terms[j]] {
			return termFreq[terms[i]] > termFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > t.maxFeatures {
		terms = terms[:t.maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return vocab, idf
}

func vectorize(tokens []string, vocab map[string]int, idf []float64) sparseVector {
	counts := make(map[int]float64)
	for _, token := range tokens {
		if idx, ok := vocab[token]; ok {
			counts[idx]++
		}
	}

	vec := make(sparseVector, 0, len(counts))
	for idx, tf := range counts {
		vec = append(vec, sparseEntry{idx: idx, weight: tf * idf[idx]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].idx < vec[j].idx })

	var norm float64
	for _, e := range vec {
		norm += e.weight * e.weight
	}
	if norm == 0 {
		return sparseVector{}
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i].weight /= norm
	}
	return vec
}

// sparseCosine expects L2-normalized vectors sorted by index.
func sparseCosine(a, b sparseVector) float64 {
	var dot float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].idx < b[j].idx:
			i++
		case a[i].idx > b[j].idx:
			j++
		default:
			dot += a[i].weight * b[j].weight
			i++
			j++
		}
	}
	return dot
}

// Tokenize lowercases text, splits it on anything that is not a letter or digit
// and drops English stop words and single characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, field := range fields {
		if len([]rune(field)) < 2 {
			continue
		}
		if _, stop := stopWords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}
