package alumni

import (
	"encoding/json"
	"os"
	"reflect"
	"testing"
)

func sampleCandidates() *Candidates {
	return NewCandidates([]*Candidate{
		{ID: "1", Name: "Ann", Organization: "Acme", Title: "Engineer", Score: 0.91},
		{ID: "2", Name: "Bob", Organization: "Globex"},
		{ID: "3", Name: "Cid", Organization: "Acme"},
		{ID: "4", Name: "Dee"},
	})
}

func TestCandidatesFilterAndExclude(t *testing.T) {
	t.Parallel()

	c := sampleCandidates()
	removed := c.Filter(func(candidate *Candidate) bool { return candidate.Organization == "Acme" })
	if !reflect.DeepEqual(removed, []string{"2", "4"}) {
		t.Fatalf("unexpected removed ids: %v", removed)
	}
	if !reflect.DeepEqual(c.IDs(), []string{"1", "3"}) {
		t.Fatalf("unexpected kept ids: %v", c.IDs())
	}

	removed = c.Exclude([]string{"3", "missing"})
	if !reflect.DeepEqual(removed, []string{"3"}) {
		t.Fatalf("unexpected excluded ids: %v", removed)
	}
	if c.Len() != 1 || c.FindByID("1") == nil || c.FindByID("3") != nil {
		t.Fatalf("unexpected state after exclude: %v", c.IDs())
	}
}

func TestCandidatesNilSafe(t *testing.T) {
	t.Parallel()

	var c *Candidates
	if c.Len() != 0 || c.FindByID("1") != nil || len(c.IDs()) != 0 {
		t.Fatalf("nil collection should behave as empty")
	}
	if removed := c.Filter(func(*Candidate) bool { return false }); removed != nil {
		t.Fatalf("expected nothing removed, got %v", removed)
	}
}

func TestCandidatesCoverageAndOrganizations(t *testing.T) {
	t.Parallel()

	c := sampleCandidates()
	coverage := c.Coverage()
	want := map[string]int{"Acme": 2, "Globex": 1, "unknown": 1}
	if !reflect.DeepEqual(coverage, want) {
		t.Fatalf("unexpected coverage: %v", coverage)
	}

	if got := c.Organizations(); !reflect.DeepEqual(got, []string{"Acme", "Globex", "unknown"}) {
		t.Fatalf("unexpected organization order: %v", got)
	}
}

func TestReportByOrganization(t *testing.T) {
	t.Parallel()

	report := sampleCandidates().ReportByOrganization()
	entries, ok := report["Acme"]
	if !ok {
		t.Fatalf("expected organization key in report")
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["match score"] != "0.91" {
		t.Fatalf("unexpected match score: %q", entries[0]["match score"])
	}
	if entries[0]["role"] != "Engineer" {
		t.Fatalf("unexpected role: %q", entries[0]["role"])
	}
}

func TestDumpToTmpFile(t *testing.T) {
	c := sampleCandidates()

	path, err := c.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var decoded Candidates
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if !reflect.DeepEqual(decoded.IDs(), []string{"1", "2", "3", "4"}) {
		t.Fatalf("unexpected dumped ids: %v", decoded.IDs())
	}
}
