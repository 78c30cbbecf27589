package similarity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noWait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func TestEmbedderTextsProtocol(t *testing.T) {
	t.Parallel()

	var received embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float64{{1, 0}, {0, 1}},
		})
	}))
	defer server.Close()

	embedder := NewEmbedder(EmbedderConfig{Endpoint: server.URL}, nil)
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, vectors)
	assert.Equal(t, []string{"a", "b"}, received.Texts)
	assert.Equal(t, DefaultEmbeddingMaxLength, received.MaxLength)
	assert.Empty(t, received.Input)
}

func TestEmbedderOpenAIProtocolSortsByIndex(t *testing.T) {
	t.Parallel()

	var received embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"data": [
			{"index": 1, "embedding": [0, 1]},
			{"index": 0, "embedding": [1, 0]}
		]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(EmbedderConfig{Endpoint: server.URL + "/v1/embeddings"}, nil)
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, vectors)
	assert.Equal(t, []string{"a", "b"}, received.Input)
	assert.Empty(t, received.Texts)
}

func TestEmbedderBatches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		vectors := make([][]float64, len(req.Texts))
		for i := range vectors {
			vectors[i] = []float64{float64(len(req.Texts))}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": vectors})
	}))
	defer server.Close()

	embedder := NewEmbedder(EmbedderConfig{Endpoint: server.URL, BatchSize: 2}, nil)
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vectors, 3)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []float64{1}, vectors[2])
}

func TestEmbedderRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings": [[0.5, 0.5]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(EmbedderConfig{Endpoint: server.URL, MaxRetries: 2}, nil)
	embedder.wait = noWait

	vectors, err := embedder.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, 0.5}}, vectors)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedderDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer server.Close()

	embedder := NewEmbedder(EmbedderConfig{Endpoint: server.URL, MaxRetries: 3}, nil)
	embedder.wait = noWait

	_, err := embedder.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedderMissingVectors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewEmbedder(EmbedderConfig{Endpoint: server.URL}, nil).Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing vectors")
}

func TestNormalizeEmbeddingEndpoint(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                 DefaultEmbeddingEndpoint,
		"http://embed.local":               "http://embed.local/embed",
		"http://embed.local/":              "http://embed.local/embed",
		"http://embed.local/v1/embeddings": "http://embed.local/v1/embeddings",
	}
	for input, want := range cases {
		assert.Equal(t, want, normalizeEmbeddingEndpoint(input), "input %q", input)
	}
}

func TestNormalizeEmbedderConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := normalizeEmbedderConfig(EmbedderConfig{MaxRetries: -1})
	assert.Equal(t, DefaultEmbeddingBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultEmbeddingMaxLength, cfg.MaxLength)
	assert.Equal(t, DefaultEmbeddingRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.MaxRetries)
}
