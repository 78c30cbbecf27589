package cmd

import (
	"context"
	"fmt"
	stdlog "log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/alumni-referrer/internal/ai/gemini"
	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/logger"
	"github.com/spigell/alumni-referrer/internal/outreach"
	"github.com/spigell/alumni-referrer/internal/scoring"
	"github.com/spigell/alumni-referrer/internal/search"
	"github.com/spigell/alumni-referrer/internal/secrets"
	"github.com/spigell/alumni-referrer/internal/similarity"
	"github.com/spigell/alumni-referrer/internal/store"
)

func newSource(cfg *SimilarityConfig, log *zap.Logger) (similarity.Source, error) {
	switch method := strings.ToLower(strings.TrimSpace(cfg.Method)); method {
	case "", similarity.MethodTFIDF:
		return similarity.NewTFIDF(similarity.WithTFIDFLogger(log)), nil
	case similarity.MethodEmbedding:
		if strings.TrimSpace(cfg.Embedding.Endpoint) == "" {
			return nil, fmt.Errorf("similarity.embedding.endpoint is required for the %s method", method)
		}
		embedder := similarity.NewEmbedder(cfg.Embedding, log)
		return similarity.NewEmbedding(embedder, log), nil
	default:
		return nil, fmt.Errorf("unsupported similarity method: %s", cfg.Method)
	}
}

// newStore opens the configured store. The memory store is seeded from corpus-file.
func newStore(ctx context.Context, config *Config, log *zap.Logger) (store.Store, error) {
	source, err := newSource(config.Similarity, log)
	if err != nil {
		return nil, err
	}

	driver := strings.ToLower(strings.TrimSpace(config.Store.Driver))
	log = logger.WithSearchFields(log, source.Method(), driver)

	switch driver {
	case "", store.DriverMemory:
		mem := store.NewMemory(source)
		if config.CorpusFile != "" {
			if _, err := ingest(ctx, mem, config.CorpusFile, log); err != nil {
				return nil, err
			}
		}
		return mem, nil
	case store.DriverPostgres:
		dsn, err := secrets.Load(secrets.Source{
			Name:  "postgres dsn",
			Value: config.Store.DSN,
			File:  config.Store.DSNFile,
			Env:   "DATABASE_URL",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set store.dsn, store.dsn-file or DATABASE_URL)", err)
		}
		pool, err := store.NewPostgresPool(ctx, dsn)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(pool, source, log)
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", config.Store.Driver)
	}
}

// ingest loads a corpus file into st, logging every rejected record.
func ingest(ctx context.Context, st store.CorpusStore, path string, log *zap.Logger) (int, error) {
	batch, err := alumni.LoadFile(path)
	if err != nil {
		return 0, err
	}

	for _, rejected := range batch.Rejected {
		log.Warn("skipping alumni record",
			zap.Int("index", rejected.Index),
			zap.String(logger.FieldCandidateID, rejected.ID),
			zap.Error(rejected.Err),
		)
	}

	if err := st.Add(ctx, batch.Candidates); err != nil {
		return 0, fmt.Errorf("add alumni: %w", err)
	}

	log.Info("alumni indexed",
		zap.String("file", path),
		zap.Int("count", len(batch.Candidates)),
		zap.Int("rejected", len(batch.Rejected)),
	)
	return len(batch.Candidates), nil
}

func newSearchService(config *Config, st store.Store, recorder search.Recorder, log *zap.Logger) (*search.Service, error) {
	opts := []search.Option{
		search.WithCorpusStore(st),
		search.WithProfileStore(st),
		search.WithScorer(scoring.NewScorer(scoring.WithWeights(*config.Scoring))),
		search.WithConfig(*config.Search),
		search.WithLogger(log),
	}
	if recorder != nil {
		opts = append(opts, search.WithMetrics(recorder))
	}
	return search.New(opts...)
}

// newComposer builds the outreach composer. AI problems degrade to templates.
func newComposer(ctx context.Context, config *Config, recorder outreach.Recorder, log *zap.Logger) *outreach.Composer {
	opts := []outreach.Option{
		outreach.WithSenderName(config.Outreach.SenderName),
		outreach.WithMaxLogLength(config.AI.Gemini.MaxLogLength),
	}
	if recorder != nil {
		opts = append(opts, outreach.WithRecorder(recorder))
	}

	if !config.AI.Enabled {
		return outreach.NewComposer(nil, log, opts...)
	}

	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		log.Warn("using template outreach only", zap.Error(err))
		return outreach.NewComposer(nil, log, opts...)
	}
	return outreach.NewComposer(generator, log, opts...)
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*gemini.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	geminiCfg := *cfg.Gemini
	geminiCfg.APIKey = apiKey
	return gemini.NewGenerator(ctx, geminiCfg, log)
}

func newLogger() *zap.Logger {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		stdlog.Fatalf("creating a logger: %s", err)
	}
	return log
}

// mustConfig loads the configuration or exits through log.
func mustConfig(log *zap.Logger) *Config {
	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}
	return config
}
