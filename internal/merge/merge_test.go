package merge

import (
	"testing"

	"github.com/spigell/alumni-referrer/internal/alumni"
)

func sim(id string, similarity float64) *alumni.Candidate {
	return &alumni.Candidate{ID: id, Name: id, Similarity: similarity, HasSimilarity: true, Source: alumni.SourceSimilarity}
}

func db(id string) *alumni.Candidate {
	return &alumni.Candidate{ID: id, Name: id}
}

func ids(candidates []*alumni.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.ID)
	}
	return out
}

func TestMerge(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		primary    []*alumni.Candidate
		secondary  []*alumni.Candidate
		wantIDs    []string
		wantDup    int
		wantDrop   int
		similarity map[string]float64
		source     map[string]string
	}{
		{
			name:    "empty",
			wantIDs: []string{},
		},
		{
			name:       "database only gets neutral similarity",
			secondary:  []*alumni.Candidate{db("a"), db("b")},
			wantIDs:    []string{"a", "b"},
			similarity: map[string]float64{"a": DefaultNeutralSimilarity, "b": DefaultNeutralSimilarity},
			source:     map[string]string{"a": alumni.SourceDatabase},
		},
		{
			name:       "collision keeps similarity variant",
			primary:    []*alumni.Candidate{sim("a", 0.9), sim("b", 0.8)},
			secondary:  []*alumni.Candidate{db("b"), db("c")},
			wantIDs:    []string{"a", "b", "c"},
			wantDup:    1,
			similarity: map[string]float64{"b": 0.8, "c": DefaultNeutralSimilarity},
			source:     map[string]string{"b": alumni.SourceSimilarity, "c": alumni.SourceDatabase},
		},
		{
			name:       "similarity variant replaces earlier database entry in place",
			primary:    []*alumni.Candidate{db("x"), sim("y", 0.1)},
			secondary:  []*alumni.Candidate{sim("x", 0.7)},
			wantIDs:    []string{"x", "y"},
			wantDup:    1,
			similarity: map[string]float64{"x": 0.7},
		},
		{
			name:      "empty ids dropped",
			primary:   []*alumni.Candidate{{ID: "", Name: "ghost"}, nil, sim("a", 0.3)},
			secondary: []*alumni.Candidate{{ID: "  "}},
			wantIDs:   []string{"a"},
			wantDrop:  3,
		},
		{
			name:       "duplicates within one stream",
			primary:    []*alumni.Candidate{sim("a", 0.3), sim("a", 0.9)},
			wantIDs:    []string{"a"},
			wantDup:    1,
			similarity: map[string]float64{"a": 0.3},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := Merge(tc.primary, tc.secondary)
			got := ids(result.Candidates)
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("expected ids %v, got %v", tc.wantIDs, got)
			}
			for i := range got {
				if got[i] != tc.wantIDs[i] {
					t.Fatalf("expected ids %v, got %v", tc.wantIDs, got)
				}
			}
			if len(got) > len(tc.primary)+len(tc.secondary) {
				t.Fatalf("merged list larger than inputs")
			}
			if result.Duplicates != tc.wantDup {
				t.Fatalf("expected %d duplicates, got %d", tc.wantDup, result.Duplicates)
			}
			if result.DroppedEmptyID != tc.wantDrop {
				t.Fatalf("expected %d dropped, got %d", tc.wantDrop, result.DroppedEmptyID)
			}

			byID := make(map[string]*alumni.Candidate, len(result.Candidates))
			for _, c := range result.Candidates {
				byID[c.ID] = c
			}
			for id, want := range tc.similarity {
				if byID[id].Similarity != want {
					t.Fatalf("%s: expected similarity %v, got %v", id, want, byID[id].Similarity)
				}
			}
			for id, want := range tc.source {
				if byID[id].Source != want {
					t.Fatalf("%s: expected source %q, got %q", id, want, byID[id].Source)
				}
			}
		})
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	t.Parallel()

	secondary := []*alumni.Candidate{db("a")}
	result := Merge(nil, secondary, WithNeutralSimilarity(0.25))

	if result.Candidates[0].Similarity != 0.25 {
		t.Fatalf("expected custom neutral similarity, got %v", result.Candidates[0].Similarity)
	}
	if secondary[0].Similarity != 0 || secondary[0].Source != "" {
		t.Fatalf("input candidate was modified: %+v", secondary[0])
	}
}
