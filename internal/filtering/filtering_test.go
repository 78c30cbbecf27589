package filtering

import (
	"context"
	"reflect"
	"testing"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleCandidates() *alumni.Candidates {
	return alumni.NewCandidates([]*alumni.Candidate{
		{ID: "1", Name: "Ann", Organization: "Google LLC", Title: "Engineer", GraduationYear: 2018},
		{ID: "2", Name: "Bob", Organization: "Google LLC", Title: "Manager", GraduationYear: 2010},
		{ID: "3", Name: "Cid", Organization: "Stripe", Title: "Engineer", GraduationYear: 2019},
	})
}

func TestRunAppliesRequestedSteps(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	criteria := &Criteria{Organizations: []string{"google"}, Role: "engineer"}
	steps := Default()

	got, err := Run(context.Background(), criteria, Deps{Logger: zap.New(core)}, steps, sampleCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.IDs(), []string{"1"}) {
		t.Fatalf("unexpected survivors: %v", got.IDs())
	}

	entries := logs.FilterMessage("filter step").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 executed steps, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["name"] != OrganizationsFilterName || first["dropped"] != int64(1) || first["left"] != int64(2) {
		t.Fatalf("unexpected first step log: %v", first)
	}

	statuses := Describe(steps)
	if len(statuses) != len(steps) {
		t.Fatalf("expected %d statuses, got %d", len(steps), len(statuses))
	}
	for _, status := range statuses {
		switch status.Name {
		case OrganizationsFilterName, RoleFilterName:
			if !status.Enabled || status.Step == nil {
				t.Fatalf("expected %s to be enabled with step info: %+v", status.Name, status)
			}
		default:
			if status.Enabled || status.Reason != notRequestedReason {
				t.Fatalf("expected %s to be disabled as not requested: %+v", status.Name, status)
			}
		}
	}
	if statuses[0].Details["companies"] != "google" {
		t.Fatalf("unexpected organization details: %v", statuses[0].Details)
	}
}

func TestRunNoMatchIsEmptyNotError(t *testing.T) {
	t.Parallel()

	got, err := Run(context.Background(), &Criteria{Domain: "quantum"}, Deps{}, Default(), sampleCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected no candidates, got %v", got.IDs())
	}
}

func TestRunWithoutCriteriaKeepsEverything(t *testing.T) {
	t.Parallel()

	got, err := Run(context.Background(), nil, Deps{}, Default(), sampleCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected all candidates, got %v", got.IDs())
	}
}

func TestDisableByName(t *testing.T) {
	t.Parallel()

	steps := Default()
	DisableByName(steps, RoleFilterName, "disabled by operator")

	got, err := Run(context.Background(), &Criteria{Role: "manager"}, Deps{}, steps, sampleCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("disabled role filter should not drop candidates, got %v", got.IDs())
	}

	for _, status := range Describe(steps) {
		if status.Name == RoleFilterName && status.Reason != "disabled by operator" {
			t.Fatalf("unexpected role status: %+v", status)
		}
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, &Criteria{Role: "x"}, Deps{}, Default(), sampleCandidates()); err == nil {
		t.Fatalf("expected context error")
	}
}
