package search

import "time"

// Recorder receives pipeline measurements.
type Recorder interface {
	RecordSearch(method, status string, duration time.Duration)
	RecordStage(stage string, duration time.Duration)
	RecordEnrichmentTimeout()
	RecordSkipped(reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSearch(string, string, time.Duration) {}
func (nopRecorder) RecordStage(string, time.Duration) {}
func (nopRecorder) RecordEnrichmentTimeout() {}
func (nopRecorder) RecordSkipped(string) {}

const (
	stageSimilarity = "similarity"
	stageDatabase   = "database"
	stageEnrich     = "enrich"
	stageFilter     = "filter"
	stageScore      = "score"

	skipMalformed = "malformed"
	skipTimeout   = "enrich_timeout"
)
