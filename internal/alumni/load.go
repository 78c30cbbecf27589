package alumni

import (
	"encoding/json"
	"fmt"
	"os"
)

// Rejected describes a corpus record that could not be turned into a candidate.
type Rejected struct {
	Index int
	ID    string
	Err   error
}

// Batch is the outcome of loading a corpus file.
type Batch struct {
	Candidates []*Candidate
	Rejected   []Rejected
}

// LoadFile reads alumni records from a JSON file holding either an array of records
// or an object with an "alumni" array.
func LoadFile(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	return Parse(data)
}

// Parse decodes alumni records from JSON. Invalid records are collected in Rejected.
func Parse(data []byte) (*Batch, error) {
	records, err := splitRecords(data)
	if err != nil {
		return nil, err
	}

	batch := &Batch{}
	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		candidate, _ := FromMetadata(record)
		if err := candidate.Validate(); err != nil {
			batch.Rejected = append(batch.Rejected, Rejected{Index: i, ID: candidate.ID, Err: err})
			continue
		}
		if _, dup := seen[candidate.ID]; dup {
			batch.Rejected = append(batch.Rejected, Rejected{
				Index: i,
				ID:    candidate.ID,
				Err:   fmt.Errorf("%w: duplicate id %q", ErrMalformedCandidate, candidate.ID),
			})
			continue
		}
		seen[candidate.ID] = struct{}{}
		batch.Candidates = append(batch.Candidates, candidate)
	}

	return batch, nil
}

func splitRecords(data []byte) ([]map[string]any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["alumni"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected an \"alumni\" array", ErrInvalidCorpus)
		}
		items = list
	default:
		return nil, fmt.Errorf("%w: unexpected top-level JSON type %T", ErrInvalidCorpus, raw)
	}

	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			record = map[string]any{}
		}
		records = append(records, record)
	}
	return records, nil
}
