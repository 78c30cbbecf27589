// Package search runs the hybrid alumni retrieval pipeline.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/filtering"
	"github.com/spigell/alumni-referrer/internal/logger"
	"github.com/spigell/alumni-referrer/internal/merge"
	"github.com/spigell/alumni-referrer/internal/ranking"
	"github.com/spigell/alumni-referrer/internal/scoring"
	"github.com/spigell/alumni-referrer/internal/store"
)

const (
	MethodHybrid     = "hybrid"
	MethodSimilarity = "similarity"
	MethodDatabase   = "database"

	StatusSuccess = "success"
	StatusReduced = "success with reduced results"
	StatusError   = "error"
)

// Request is one search.
type Request struct {
	Profile *alumni.QueryProfile `json:"profile"`
	Filters map[string]any       `json:"filters,omitempty"`
	// TopK overrides the service default when positive.
	TopK int `json:"top_k,omitempty"`
}

// Result is the outcome of one search. It never outlives the call that produced it.
type Result struct {
	Candidates       []*alumni.Candidate `json:"candidates"`
	TotalFound       int                 `json:"total_found"`
	TotalAfterFilter int                 `json:"total_after_filter"`
	SearchMethod     string              `json:"search_method"`
	Status           string              `json:"status"`
	Message          string              `json:"message,omitempty"`
	Query            string              `json:"query"`
	Filters          []filtering.Status  `json:"filters,omitempty"`
	InvalidFilters   []string            `json:"invalid_filters,omitempty"`
	Skipped          int                 `json:"skipped"`
	TimedOut         int                 `json:"timed_out"`
}

// Service ranks alumni for a query profile. It keeps no state between searches.
type Service struct {
	corpus   store.CorpusStore
	profiles store.ProfileStore
	scorer   *scoring.Scorer
	logger   *zap.Logger
	metrics  Recorder
	filters  func() []filtering.Filter

	topK              int
	poolMultiplier    int
	enrichConcurrency int
	enrichTimeout     time.Duration
	neutralSimilarity *float64
	disabledFilters   []string
}

func New(opts ...Option) (*Service, error) {
	s := &Service{
		scorer:            scoring.NewScorer(),
		logger:            zap.NewNop(),
		metrics:           nopRecorder{},
		filters:           filtering.Default,
		topK:              DefaultTopK,
		poolMultiplier:    DefaultPoolMultiplier,
		enrichConcurrency: DefaultEnrichConcurrency,
		enrichTimeout:     DefaultEnrichTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.corpus == nil && s.profiles == nil {
		return nil, ErrNoStores
	}
	return s, nil
}

// searchState collects the per-search bookkeeping.
type searchState struct {
	corpusFailed  bool
	profileFailed bool
	skipped       int
	timedOut      int
	notes         []string
}

func (st *searchState) note(format string, args ...any) {
	st.notes = append(st.notes, fmt.Sprintf(format, args...))
}

// Search runs the pipeline. It only returns an error when ctx is done; every other
// failure degrades the result and is reported through its status.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	profile := &alumni.QueryProfile{}
	if req.Profile != nil {
		copied := *req.Profile
		profile = &copied
	}
	profile.Normalize()

	criteria, invalid := filtering.ParseCriteria(req.Filters)
	if len(criteria.Skills) == 0 {
		criteria.Skills = profile.Skills
	}

	topK := s.topK
	if req.TopK > 0 {
		topK = req.TopK
	}
	pool := topK * s.poolMultiplier

	result := &Result{Query: profile.QueryText()}
	for _, err := range invalid {
		result.InvalidFilters = append(result.InvalidFilters, err.Error())
	}

	st := &searchState{}
	if len(invalid) > 0 {
		st.note("%d filter(s) ignored", len(invalid))
	}

	s.logger.Debug("search started", zap.String("query", result.Query), zap.Int("top_k", topK))

	hits, err := s.similarityStream(ctx, result.Query, &criteria, pool, st)
	if err != nil {
		return nil, err
	}
	fromDatabase, err := s.databaseStream(ctx, &criteria, pool, st)
	if err != nil {
		return nil, err
	}

	result.SearchMethod = s.method(st)
	log := logger.WithSearchFields(s.logger, result.SearchMethod, "")

	if (s.corpus == nil || st.corpusFailed) && (s.profiles == nil || st.profileFailed) {
		result.Status = StatusError
		result.Message = "no store could answer the search"
		result.Candidates = []*alumni.Candidate{}
		log.Error("search failed", zap.Strings("notes", st.notes))
		s.metrics.RecordSearch(result.SearchMethod, result.Status, time.Since(started))
		return result, nil
	}

	fromSimilarity, err := s.enrich(ctx, hits, st)
	if err != nil {
		return nil, err
	}
	fromDatabase = s.validated(fromDatabase, st)

	merged := merge.Merge(fromSimilarity, fromDatabase, s.mergeOptions()...)
	if merged.DroppedEmptyID > 0 {
		st.skipped += merged.DroppedEmptyID
		s.metrics.RecordSkipped(skipMalformed)
	}
	candidates := alumni.NewCandidates(merged.Candidates)
	result.TotalFound = candidates.Len()

	stageStarted := time.Now()
	steps := s.filters()
	for _, name := range s.disabledFilters {
		filtering.DisableByName(steps, name, "disabled by configuration")
	}
	candidates, err = filtering.Run(ctx, &criteria, filtering.Deps{Logger: log}, steps, candidates)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// A failing chain leaves the merged candidates unfiltered.
		log.Error("filter chain failed", zap.Error(err))
		st.note("filters could not be applied")
		candidates = alumni.NewCandidates(merged.Candidates)
	}
	result.Filters = filtering.Describe(steps)
	s.metrics.RecordStage(stageFilter, time.Since(stageStarted))

	stageStarted = time.Now()
	kept, dropped := s.scorer.Apply(profile, candidates)
	s.metrics.RecordStage(stageScore, time.Since(stageStarted))
	log.Debug("scoring completed",
		zap.Int("kept", kept),
		zap.Int("dropped", dropped),
		zap.Float64("threshold", s.scorer.Weights().Threshold),
	)

	result.TotalAfterFilter = kept
	result.Candidates = ranking.Rank(candidates.Items, topK)
	result.Skipped = st.skipped
	result.TimedOut = st.timedOut
	result.Status, result.Message = s.status(result, st)

	log.Info("search completed",
		zap.String("status", result.Status),
		zap.Int("total_found", result.TotalFound),
		zap.Int("total_after_filter", result.TotalAfterFilter),
		zap.Int("returned", len(result.Candidates)),
		zap.Int("skipped", result.Skipped),
		zap.Duration("elapsed", time.Since(started)),
	)
	s.metrics.RecordSearch(result.SearchMethod, result.Status, time.Since(started))

	return result, nil
}

func (s *Service) similarityStream(ctx context.Context, query string, criteria *filtering.Criteria, pool int, st *searchState) ([]store.Hit, error) {
	if s.corpus == nil {
		return nil, nil
	}
	started := time.Now()
	hits, err := s.corpus.Query(ctx, query, criteria, pool)
	s.metrics.RecordStage(stageSimilarity, time.Since(started))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		st.corpusFailed = true
		st.note("similarity search unavailable, using database search only")
		s.logger.Warn("similarity stream failed", zap.Error(err))
		return nil, nil
	}
	return hits, nil
}

func (s *Service) databaseStream(ctx context.Context, criteria *filtering.Criteria, pool int, st *searchState) ([]*alumni.Candidate, error) {
	if s.profiles == nil {
		return nil, nil
	}
	started := time.Now()
	candidates, err := s.profiles.Search(ctx, criteria, pool)
	s.metrics.RecordStage(stageDatabase, time.Since(started))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		st.profileFailed = true
		st.note("database search unavailable")
		s.logger.Warn("database stream failed", zap.Error(err))
		return nil, nil
	}
	return candidates, nil
}

// enrich hydrates similarity hits from the profile store concurrently, keeping hit order.
func (s *Service) enrich(ctx context.Context, hits []store.Hit, st *searchState) ([]*alumni.Candidate, error) {
	if len(hits) == 0 {
		return nil, nil
	}
	started := time.Now()
	defer func() { s.metrics.RecordStage(stageEnrich, time.Since(started)) }()

	type slot struct {
		candidate *alumni.Candidate
		timedOut  bool
		err       error
	}
	slots := make([]slot, len(hits))

	var g errgroup.Group
	g.SetLimit(s.enrichConcurrency)
	for i, hit := range hits {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			candidate, timedOut, err := s.hydrate(ctx, hit)
			slots[i] = slot{candidate: candidate, timedOut: timedOut, err: err}
			return ctx.Err()
		})
	}
	// Per-hit failures live in the slots; Wait only reports caller cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]*alumni.Candidate, 0, len(hits))
	for i, sl := range slots {
		id := hits[i].ID
		switch {
		case sl.timedOut:
			st.timedOut++
			s.metrics.RecordEnrichmentTimeout()
			s.metrics.RecordSkipped(skipTimeout)
			s.logger.Warn("enrichment timed out, excluding candidate",
				zap.String(logger.FieldCandidateID, id),
				zap.Duration("timeout", s.enrichTimeout),
			)
		case sl.err != nil:
			st.skipped++
			s.metrics.RecordSkipped(skipMalformed)
			s.logger.Warn("skipping malformed candidate",
				zap.String(logger.FieldCandidateID, id),
				zap.Error(sl.err),
			)
		default:
			sl.candidate.Similarity = hits[i].Similarity
			sl.candidate.HasSimilarity = true
			sl.candidate.Source = alumni.SourceSimilarity
			candidates = append(candidates, sl.candidate)
		}
	}
	if st.timedOut > 0 {
		st.note("%d candidate(s) excluded after enrichment timeout", st.timedOut)
	}
	return candidates, nil
}

// hydrate resolves one hit. A record missing from the profile store falls back to the hit metadata.
func (s *Service) hydrate(ctx context.Context, hit store.Hit) (*alumni.Candidate, bool, error) {
	if s.profiles != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
		candidate, err := s.profiles.GetByID(lookupCtx, hit.ID)
		timedOut := errors.Is(lookupCtx.Err(), context.DeadlineExceeded)
		cancel()

		switch {
		case err == nil && candidate != nil:
			if candidate.ID == "" {
				candidate.ID = hit.ID
			}
			if vErr := candidate.Validate(); vErr != nil {
				return nil, false, vErr
			}
			return candidate, false, nil
		case ctx.Err() != nil:
			return nil, false, ctx.Err()
		case timedOut || errors.Is(err, context.DeadlineExceeded):
			return nil, true, nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			s.logger.Debug("profile lookup failed, using hit metadata",
				zap.String(logger.FieldCandidateID, hit.ID),
				zap.Error(err),
			)
		}
	}

	candidate, dropped := alumni.FromMetadata(hit.Metadata)
	if len(dropped) > 0 {
		s.logger.Debug("ignored malformed metadata fields",
			zap.String(logger.FieldCandidateID, hit.ID),
			zap.Strings("fields", dropped),
		)
	}
	if candidate.ID == "" {
		candidate.ID = hit.ID
	}
	if err := candidate.Validate(); err != nil {
		return nil, false, err
	}
	return candidate, false, nil
}

func (s *Service) validated(candidates []*alumni.Candidate, st *searchState) []*alumni.Candidate {
	out := make([]*alumni.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			st.skipped++
			s.metrics.RecordSkipped(skipMalformed)
			id := ""
			if candidate != nil {
				id = candidate.ID
			}
			s.logger.Warn("skipping malformed candidate", zap.String(logger.FieldCandidateID, id), zap.Error(err))
			continue
		}
		candidate.HasSimilarity = false
		out = append(out, candidate)
	}
	return out
}

func (s *Service) mergeOptions() []merge.Option {
	if s.neutralSimilarity == nil {
		return nil
	}
	return []merge.Option{merge.WithNeutralSimilarity(*s.neutralSimilarity)}
}

func (s *Service) method(st *searchState) string {
	similarityOK := s.corpus != nil && !st.corpusFailed
	databaseOK := s.profiles != nil && !st.profileFailed
	switch {
	case similarityOK && databaseOK:
		return MethodHybrid
	case similarityOK:
		return MethodSimilarity
	default:
		return MethodDatabase
	}
}

func (s *Service) status(result *Result, st *searchState) (string, string) {
	if st.skipped > 0 {
		st.note("%d malformed candidate(s) skipped", st.skipped)
	}

	reduced := st.corpusFailed || st.profileFailed || st.skipped > 0 || st.timedOut > 0 || len(result.InvalidFilters) > 0
	status := StatusSuccess
	if reduced {
		status = StatusReduced
	}

	var message string
	switch {
	case len(result.Candidates) == 0:
		message = "no alumni matched the search"
	default:
		message = fmt.Sprintf("found %d matching alumni", len(result.Candidates))
	}
	if len(st.notes) > 0 {
		message += "; " + strings.Join(st.notes, "; ")
	}
	return status, message
}
