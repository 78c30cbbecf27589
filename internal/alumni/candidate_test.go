package alumni

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCandidateValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		candidate *Candidate
		wantErr   bool
	}{
		{name: "valid", candidate: &Candidate{ID: "a1", Name: "Ann"}},
		{name: "nil", candidate: nil, wantErr: true},
		{name: "missing id", candidate: &Candidate{Name: "Ann"}, wantErr: true},
		{name: "missing name", candidate: &Candidate{ID: "a1"}, wantErr: true},
		{name: "response rate above one", candidate: &Candidate{ID: "a1", Name: "Ann", ResponseRate: 1.5}, wantErr: true},
		{name: "bad email", candidate: &Candidate{ID: "a1", Name: "Ann", Email: "not-an-email"}, wantErr: true},
		{name: "graduation year out of range", candidate: &Candidate{ID: "a1", Name: "Ann", GraduationYear: 42}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.candidate.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedCandidate) {
					t.Fatalf("expected ErrMalformedCandidate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCandidateNormalize(t *testing.T) {
	t.Parallel()

	c := &Candidate{
		ID:        " a1 ",
		Name:      " Ann ",
		Seniority: " Senior ",
		Skills:    []string{"Go", " go ", "", "Python"},
	}
	c.Normalize()

	if c.ID != "a1" || c.Name != "Ann" {
		t.Fatalf("identity not trimmed: %q %q", c.ID, c.Name)
	}
	if c.Seniority != "senior" {
		t.Fatalf("expected lowercase seniority, got %q", c.Seniority)
	}
	if !reflect.DeepEqual(c.Skills, []string{"Go", "Python"}) {
		t.Fatalf("unexpected skills: %v", c.Skills)
	}
}

func TestCandidateCloneIsIndependent(t *testing.T) {
	t.Parallel()

	original := &Candidate{ID: "a1", Name: "Ann", Skills: []string{"Go"}, Components: map[string]float64{"role": 0.15}}
	clone := original.Clone()
	clone.Skills[0] = "Rust"
	clone.Components["role"] = 0

	if original.Skills[0] != "Go" {
		t.Fatalf("clone shares skills with original")
	}
	if original.Components["role"] != 0.15 {
		t.Fatalf("clone shares components with original")
	}
}

func TestCandidateDocument(t *testing.T) {
	t.Parallel()

	c := &Candidate{
		ID:              "a1",
		Name:            "Ann Lee",
		Organization:    "Google LLC",
		Title:           "Software Engineer",
		Domain:          "Machine Learning",
		Skills:          []string{"Go", "Python"},
		ExperienceYears: 6,
		Degree:          "B.Tech",
		GraduationYear:  2018,
	}

	doc := c.Document()
	for _, want := range []string{
		"Alumni Name: Ann Lee",
		"Currently working as Software Engineer at Google LLC",
		"Specialization domain: Machine Learning",
		"Technical skills: Go, Python",
		"Professional experience: 6 years",
		"Educational background: B.Tech graduate from 2018",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document %q does not contain %q", doc, want)
		}
	}

	if (&Candidate{}).Document() != "" {
		t.Fatalf("expected empty document for empty candidate")
	}
}

func TestSharedSkills(t *testing.T) {
	t.Parallel()

	c := &Candidate{Skills: []string{"Go", "Kubernetes", "go", "SQL"}}
	got := c.SharedSkills([]string{"GO", "sql", "Rust", " "})
	if !reflect.DeepEqual(got, []string{"Go", "SQL"}) {
		t.Fatalf("unexpected shared skills: %v", got)
	}

	if got := (&Candidate{}).SharedSkills([]string{"Go"}); len(got) != 0 {
		t.Fatalf("expected no shared skills for candidate without skills, got %v", got)
	}
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	cases := []struct {
		haystack, needle string
		want             bool
	}{
		{"Google LLC", "google", true},
		{"Google LLC", "GOOGLE LLC", true},
		{"Google", "Google LLC", false},
		{"", "google", false},
		{"Google", "  ", false},
	}

	for _, tc := range cases {
		if got := ContainsFold(tc.haystack, tc.needle); got != tc.want {
			t.Fatalf("ContainsFold(%q, %q) = %v, want %v", tc.haystack, tc.needle, got, tc.want)
		}
	}
}
