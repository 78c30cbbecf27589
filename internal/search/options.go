package search

import (
	"time"

	"go.uber.org/zap"

	"github.com/spigell/alumni-referrer/internal/filtering"
	"github.com/spigell/alumni-referrer/internal/scoring"
	"github.com/spigell/alumni-referrer/internal/store"
)

const (
	DefaultTopK              = 10
	DefaultPoolMultiplier    = 3
	DefaultEnrichConcurrency = 8
	DefaultEnrichTimeout     = 2 * time.Second
)

// Config holds the tunables of a search service.
type Config struct {
	TopK              int           `mapstructure:"top-k"`
	PoolMultiplier    int           `mapstructure:"pool-multiplier"`
	EnrichConcurrency int           `mapstructure:"enrich-concurrency"`
	EnrichTimeout     time.Duration `mapstructure:"enrich-timeout"`
	DisabledFilters   []string      `mapstructure:"disabled-filters"`
}

// Option applies a configuration option to the Service.
type Option func(*Service)

func WithCorpusStore(corpus store.CorpusStore) Option {
	return func(s *Service) {
		s.corpus = corpus
	}
}

func WithProfileStore(profiles store.ProfileStore) Option {
	return func(s *Service) {
		s.profiles = profiles
	}
}

func WithScorer(scorer *scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(recorder Recorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithConfig applies every positive value of cfg.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.TopK > 0 {
			s.topK = cfg.TopK
		}
		if cfg.PoolMultiplier > 0 {
			s.poolMultiplier = cfg.PoolMultiplier
		}
		if cfg.EnrichConcurrency > 0 {
			s.enrichConcurrency = cfg.EnrichConcurrency
		}
		if cfg.EnrichTimeout > 0 {
			s.enrichTimeout = cfg.EnrichTimeout
		}
		s.disabledFilters = append(s.disabledFilters, cfg.DisabledFilters...)
	}
}

// WithEnrichment bounds the concurrent profile store lookups of similarity hits.
func WithEnrichment(concurrency int, timeout time.Duration) Option {
	return func(s *Service) {
		if concurrency > 0 {
			s.enrichConcurrency = concurrency
		}
		if timeout > 0 {
			s.enrichTimeout = timeout
		}
	}
}

func WithNeutralSimilarity(v float64) Option {
	return func(s *Service) {
		s.neutralSimilarity = &v
	}
}

// WithFilters replaces the filter chain factory. It is called once per search.
func WithFilters(factory func() []filtering.Filter) Option {
	return func(s *Service) {
		if factory != nil {
			s.filters = factory
		}
	}
}
