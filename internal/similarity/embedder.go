package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spigell/alumni-referrer/internal/utils"
	"go.uber.org/zap"
)

const (
	DefaultEmbeddingEndpoint       = "http://127.0.0.1:8844/embed"
	DefaultEmbeddingBatchSize      = 32
	DefaultEmbeddingMaxLength      = 512
	DefaultEmbeddingRequestTimeout = 45 * time.Second
	DefaultEmbeddingMaxRetries     = 2

	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
	maxLoggedBody  = 200
)

// EmbedderConfig configures the HTTP embedding client.
type EmbedderConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	MaxLength      int           `mapstructure:"max-length"`
	BatchSize      int           `mapstructure:"batch-size"`
	RequestTimeout time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max-retries"`
}

// Embedder turns texts into vectors through an HTTP embedding service.
// It speaks both the {texts, max_length} protocol and the OpenAI-style {input} one.
type Embedder struct {
	HTTPClient *http.Client

	cfg    EmbedderConfig
	logger *zap.Logger
	wait   func(context.Context, time.Duration) error
}

type embedRequest struct {
	Texts     []string `json:"texts,omitempty"`
	Input     []string `json:"input,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Data       []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// statusError is a non-2xx answer from the embedding service.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("embedding service status %d: %s", e.code, e.body)
}

func NewEmbedder(cfg EmbedderConfig, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		HTTPClient: http.DefaultClient,
		cfg:        normalizeEmbedderConfig(cfg),
		logger:     logger,
		wait:       utils.WaitFor,
	}
}

// Config returns the effective configuration after defaults are applied.
func (e *Embedder) Config() EmbedderConfig {
	return e.cfg
}

// Embed returns one vector per text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(texts))
		batch, err := e.embedWithRetry(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding response count mismatch: requested=%d returned=%d", end-start, len(batch))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *Embedder) embedWithRetry(ctx context.Context, texts []string) ([][]float64, error) {
	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := utils.Backoff(attempt, retryBaseDelay, retryMaxDelay)
			e.logger.Warn("retrying embedding request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := e.wait(ctx, delay); err != nil {
				return nil, err
			}
		}

		vectors, err := e.request(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (e *Embedder) request(ctx context.Context, texts []string) ([][]float64, error) {
	payload := embedRequest{
		Texts:     texts,
		MaxLength: e.cfg.MaxLength,
	}

	parsedEndpoint, err := url.Parse(e.cfg.Endpoint)
	if err == nil && strings.HasSuffix(parsedEndpoint.Path, "/v1/embeddings") {
		payload = embedRequest{
			Input: texts,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	requestCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	e.logger.Debug("make embedding request", zap.String("url", e.cfg.Endpoint), zap.Int("texts", len(texts)))
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{
			code: resp.StatusCode,
			body: utils.TruncateForLog(strings.TrimSpace(string(respBody)), maxLoggedBody),
		}
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}

	vectors := parsed.Embeddings
	if len(vectors) == 0 && len(parsed.Data) > 0 {
		sort.Slice(parsed.Data, func(i, j int) bool {
			return parsed.Data[i].Index < parsed.Data[j].Index
		})
		vectors = make([][]float64, 0, len(parsed.Data))
		for _, row := range parsed.Data {
			vectors = append(vectors, row.Embedding)
		}
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding response missing vectors")
	}

	return vectors, nil
}

// retryable reports whether err is a transport failure or a 5xx/429 answer.
func retryable(err error) bool {
	var status *statusError
	if errors.As(err, &status) {
		return status.code >= 500 || status.code == http.StatusTooManyRequests
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func normalizeEmbedderConfig(cfg EmbedderConfig) EmbedderConfig {
	cfg.Endpoint = normalizeEmbeddingEndpoint(cfg.Endpoint)
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultEmbeddingMaxLength
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultEmbeddingBatchSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultEmbeddingRequestTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return cfg
}

func normalizeEmbeddingEndpoint(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultEmbeddingEndpoint
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = "/embed"
	}
	return parsed.String()
}
