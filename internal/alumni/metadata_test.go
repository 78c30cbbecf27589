package alumni

import (
	"reflect"
	"testing"
)

func TestFromMetadataAliasesAndWeakTypes(t *testing.T) {
	t.Parallel()

	md := map[string]any{
		"id":               "a1",
		"name":             "Ann",
		"company":          "Google LLC",
		"role":             "Engineer",
		"skills":           "Go, Python",
		"graduation_year":  "2019",
		"experience_years": 7.0,
		"hiring_authority": "true",
		"response_rate":    "0.8",
		"unknown_key":      "ignored",
	}

	c, dropped := FromMetadata(md)
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped keys: %v", dropped)
	}
	if c.Organization != "Google LLC" || c.Title != "Engineer" {
		t.Fatalf("aliases not applied: %+v", c)
	}
	if !reflect.DeepEqual(c.Skills, []string{"Go", "Python"}) {
		t.Fatalf("unexpected skills: %v", c.Skills)
	}
	if c.GraduationYear != 2019 || c.ExperienceYears != 7 {
		t.Fatalf("unexpected numeric fields: %d %d", c.GraduationYear, c.ExperienceYears)
	}
	if !c.HiringAuthority || c.ResponseRate != 0.8 {
		t.Fatalf("unexpected referral fields: %v %v", c.HiringAuthority, c.ResponseRate)
	}
}

func TestFromMetadataCanonicalKeyWins(t *testing.T) {
	t.Parallel()

	c, _ := FromMetadata(map[string]any{
		"id":              "a1",
		"name":            "Ann",
		"current_company": "Stripe",
		"company":         "Google LLC",
	})
	if c.Organization != "Stripe" {
		t.Fatalf("expected canonical key to win, got %q", c.Organization)
	}
}

func TestFromMetadataDropsBadValues(t *testing.T) {
	t.Parallel()

	c, dropped := FromMetadata(map[string]any{
		"id":              "a1",
		"name":            "Ann",
		"graduation_year": "unknown",
		"skills":          []any{"Go"},
	})

	if !reflect.DeepEqual(dropped, []string{"graduation_year"}) {
		t.Fatalf("unexpected dropped keys: %v", dropped)
	}
	if c.ID != "a1" || c.Name != "Ann" {
		t.Fatalf("valid fields lost: %+v", c)
	}
	if c.GraduationYear != 0 {
		t.Fatalf("expected zero graduation year, got %d", c.GraduationYear)
	}
	if !reflect.DeepEqual(c.Skills, []string{"Go"}) {
		t.Fatalf("unexpected skills: %v", c.Skills)
	}
}

func TestFromMetadataEmpty(t *testing.T) {
	t.Parallel()

	c, dropped := FromMetadata(nil)
	if c == nil || dropped != nil {
		t.Fatalf("expected empty candidate, got %+v %v", c, dropped)
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected empty candidate to be malformed")
	}
}

func TestToMetadataRoundTripsThroughFromMetadata(t *testing.T) {
	t.Parallel()

	original := &Candidate{
		ID:              "a1",
		Name:            "Ann",
		Organization:    "Google LLC",
		Title:           "Engineer",
		GraduationYear:  2020,
		Skills:          []string{"Go"},
		HiringAuthority: true,
		ResponseRate:    0.5,
	}

	decoded, dropped := FromMetadata(ToMetadata(original))
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped keys: %v", dropped)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}
