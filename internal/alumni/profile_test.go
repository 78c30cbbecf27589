package alumni

import (
	"strings"
	"testing"
)

func TestQueryTextFallback(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		profile *QueryProfile
	}{
		{name: "nil", profile: nil},
		{name: "empty", profile: &QueryProfile{}},
		{name: "blank lists", profile: &QueryProfile{Skills: []string{" ", ""}, Interests: []string{"\t"}}},
		{name: "identity only", profile: &QueryProfile{Name: "Sam", CurrentYear: 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.profile.QueryText(); got != FallbackQuery {
				t.Fatalf("expected fallback query, got %q", got)
			}
		})
	}
}

func TestQueryTextLimitsEachList(t *testing.T) {
	t.Parallel()

	profile := &QueryProfile{
		Skills:              []string{"skill1", "skill2", "skill3", "skill4", "skill5", "skill6"},
		Interests:           []string{"interest1", "interest2", "interest3", "interest4"},
		TargetOrganizations: []string{"org1", "org2", "org3", "org4"},
		TargetRoles:         []string{"role1", "role2", "role3"},
		Domains:             []string{"fintech"},
		Department:          "Computer Science",
	}

	query := profile.QueryText()
	for _, want := range []string{"skill5", "interest3", "org3", "role2", "fintech", "Computer Science"} {
		if !strings.Contains(query, want) {
			t.Fatalf("query %q missing %q", query, want)
		}
	}
	for _, unwanted := range []string{"skill6", "interest4", "org4", "role3"} {
		if strings.Contains(query, unwanted) {
			t.Fatalf("query %q should not contain %q", query, unwanted)
		}
	}
}

func TestDomainTargets(t *testing.T) {
	t.Parallel()

	profile := &QueryProfile{Domains: []string{"AI"}, Interests: []string{"ai", "Robotics"}}
	got := profile.DomainTargets()
	if len(got) != 2 || got[0] != "AI" || got[1] != "Robotics" {
		t.Fatalf("unexpected domain targets: %v", got)
	}
}
