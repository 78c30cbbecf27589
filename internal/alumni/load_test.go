package alumni

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseArray(t *testing.T) {
	t.Parallel()

	data := []byte(`[
		{"id": "a1", "name": "Ann", "current_company": "Google LLC"},
		{"id": "a2"},
		{"id": "a1", "name": "Ann again"},
		"not an object"
	]`)

	batch, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Candidates) != 1 || batch.Candidates[0].ID != "a1" {
		t.Fatalf("unexpected candidates: %+v", batch.Candidates)
	}
	if len(batch.Rejected) != 3 {
		t.Fatalf("expected 3 rejected records, got %d", len(batch.Rejected))
	}
	for _, rejected := range batch.Rejected {
		if !errors.Is(rejected.Err, ErrMalformedCandidate) {
			t.Fatalf("record %d: expected ErrMalformedCandidate, got %v", rejected.Index, rejected.Err)
		}
	}
	if batch.Rejected[1].Index != 2 {
		t.Fatalf("expected duplicate at index 2, got %d", batch.Rejected[1].Index)
	}
}

func TestParseWrappedObject(t *testing.T) {
	t.Parallel()

	batch, err := Parse([]byte(`{"alumni": [{"id": "a1", "name": "Ann"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(batch.Candidates))
	}
}

func TestParseRejectsUnexpectedShapes(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`42`, `{"people": []}`, `{`} {
		if _, err := Parse([]byte(input)); err == nil {
			t.Fatalf("expected error for %s", input)
		}
	}

	if _, err := Parse([]byte(`{"people": []}`)); !errors.Is(err, ErrInvalidCorpus) {
		t.Fatalf("expected ErrInvalidCorpus, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "alumni.json")
	if err := os.WriteFile(path, []byte(`[{"id": "a1", "name": "Ann"}]`), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	batch, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(batch.Candidates))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
