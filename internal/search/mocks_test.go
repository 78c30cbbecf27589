package search

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/filtering"
	"github.com/spigell/alumni-referrer/internal/store"
)

type mockCorpus struct {
	mock.Mock
}

func (m *mockCorpus) Add(ctx context.Context, candidates []*alumni.Candidate) error {
	args := m.Called(ctx, candidates)
	return args.Error(0)
}

func (m *mockCorpus) Query(ctx context.Context, text string, criteria *filtering.Criteria, topK int) ([]store.Hit, error) {
	args := m.Called(ctx, text, criteria, topK)
	hits, _ := args.Get(0).([]store.Hit)
	return hits, args.Error(1)
}

func (m *mockCorpus) Stats(ctx context.Context) (store.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(store.Stats), args.Error(1)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetByID(ctx context.Context, id string) (*alumni.Candidate, error) {
	args := m.Called(ctx, id)
	candidate, _ := args.Get(0).(*alumni.Candidate)
	return candidate, args.Error(1)
}

func (m *mockProfiles) Search(ctx context.Context, criteria *filtering.Criteria, limit int) ([]*alumni.Candidate, error) {
	args := m.Called(ctx, criteria, limit)
	candidates, _ := args.Get(0).([]*alumni.Candidate)
	return candidates, args.Error(1)
}

func (m *mockProfiles) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type fakeRecorder struct {
	mu       sync.Mutex
	searches []string
	timeouts int
	skipped  map[string]int
}

func (f *fakeRecorder) RecordSearch(method, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, method+"/"+status)
}

func (f *fakeRecorder) RecordStage(string, time.Duration) {}

func (f *fakeRecorder) RecordEnrichmentTimeout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeouts++
}

func (f *fakeRecorder) RecordSkipped(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.skipped == nil {
		f.skipped = map[string]int{}
	}
	f.skipped[reason]++
}
