package outreach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	calls      int
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastPrompt = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) RecordOutreach(messageType, method string) {
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[messageType+"/"+method]++
}

func sampleRequest(messageType string) Request {
	return Request{
		Profile: &alumni.QueryProfile{
			Name:        "Sam Lee",
			CurrentYear: 2,
			Degree:      "Data Science",
			Interests:   []string{"machine learning", "search", "robotics"},
			Skills:      []string{"Python", "Go"},
			TargetRoles: []string{"ML Engineer"},
		},
		Candidate: &alumni.Candidate{
			ID:             "a1",
			Name:           "Ana Ruiz",
			Organization:   "Google LLC",
			Title:          "Staff Engineer",
			Domain:         "Engineering",
			GraduationYear: 2015,
			Skills:         []string{"go", "Kubernetes"},
		},
		MessageType: messageType,
	}
}

func TestComposeTemplateFallbackWithoutGenerator(t *testing.T) {
	t.Parallel()

	recorder := &countingRecorder{}
	composer := NewComposer(nil, zap.NewNop(), WithRecorder(recorder))

	result, err := composer.Compose(context.Background(), sampleRequest(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MessageType != TypeLinkedIn {
		t.Fatalf("expected linkedin message type, got %q", result.MessageType)
	}
	if result.Method != MethodTemplate {
		t.Fatalf("expected template method, got %q", result.Method)
	}
	if len(result.Messages) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(result.Messages))
	}
	if result.SubjectLines != nil {
		t.Fatalf("expected no subject lines for linkedin")
	}
	if len(result.Tips) != 5 {
		t.Fatalf("expected 5 tips, got %d", len(result.Tips))
	}
	if recorder.counts["linkedin/template"] != 3 {
		t.Fatalf("expected 3 recorded template messages, got %v", recorder.counts)
	}

	professional := result.Messages[0].Content
	for _, want := range []string{"Hi Ana Ruiz,", "Sam Lee", "2nd year Data Science", "ML Engineer opportunities at Google LLC", "machine learning, search"} {
		if !strings.Contains(professional, want) {
			t.Fatalf("professional message missing %q:\n%s", want, professional)
		}
	}
	if strings.Contains(professional, "{") {
		t.Fatalf("unrendered placeholder in message:\n%s", professional)
	}

	friendly := result.Messages[1].Content
	if !strings.Contains(friendly, "I hope you're doing well and enjoying your role!") {
		t.Fatalf("expected friendly greeting:\n%s", friendly)
	}
	if !strings.Contains(friendly, "Looking forward to hearing from you!\n\nBest,") {
		t.Fatalf("expected friendly closing:\n%s", friendly)
	}

	brief := result.Messages[2]
	if brief.Length >= result.Messages[0].Length {
		t.Fatalf("expected brief variant to be shorter: %d >= %d", brief.Length, result.Messages[0].Length)
	}
	if !strings.HasSuffix(brief.Content, "Sam Lee") {
		t.Fatalf("expected brief variant to keep the signature:\n%s", brief.Content)
	}
	if brief.RecommendedUse != "Perfect for busy professionals or follow-up messages" {
		t.Fatalf("unexpected recommendation: %q", brief.RecommendedUse)
	}
}

func TestComposeUsesGenerator(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "```text\nHello Ana, could you refer me?\n```"}
	composer := NewComposer(stub, zap.NewNop())

	result, err := composer.Compose(context.Background(), sampleRequest(TypeEmail))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.calls != 3 {
		t.Fatalf("expected one generation per variant, got %d", stub.calls)
	}
	if result.Method != MethodAI {
		t.Fatalf("expected ai method, got %q", result.Method)
	}
	if got := result.Messages[0].Content; got != "Hello Ana, could you refer me?" {
		t.Fatalf("expected fences stripped, got %q", got)
	}
	if stub.lastSystem != systemInstruction {
		t.Fatalf("unexpected system instruction: %q", stub.lastSystem)
	}
	for _, want := range []string{"Variant style: brief", "Alumni: Ana Ruiz, 2015 graduate", "Shared Skills: go", "Subject: Fellow Alumni"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, stub.lastPrompt)
		}
	}
	if len(result.SubjectLines) != 5 {
		t.Fatalf("expected 5 subject lines, got %d", len(result.SubjectLines))
	}
	if result.SubjectLines[1] != "Class of 2015 Connection - Sam Lee" {
		t.Fatalf("unexpected subject line: %q", result.SubjectLines[1])
	}
}

func TestComposeFallsBackWhenGeneratorFails(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	stub := &stubGenerator{err: errors.New("quota exhausted")}
	composer := NewComposer(stub, zap.New(core))

	result, err := composer.Compose(context.Background(), sampleRequest(TypeFollowUp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.calls != 1 {
		t.Fatalf("expected generator to be skipped after the first failure, got %d calls", stub.calls)
	}
	if result.Method != MethodTemplate {
		t.Fatalf("expected template method, got %q", result.Method)
	}
	if !strings.Contains(result.Messages[0].Content, "follow up on my message") {
		t.Fatalf("expected follow up template:\n%s", result.Messages[0].Content)
	}

	entries := logs.FilterMessage("falling back to template message").All()
	if len(entries) != 1 {
		t.Fatalf("expected one fallback warning, got %d", len(entries))
	}
	if errField, ok := entries[0].ContextMap()["error"].(string); !ok || !strings.Contains(errField, ErrGenerationUnavailable.Error()) {
		t.Fatalf("expected generation unavailable error in log, got %v", entries[0].ContextMap())
	}
}

func TestComposeMixedMethods(t *testing.T) {
	t.Parallel()

	messages := []Message{{Method: MethodAI}, {Method: MethodTemplate}}
	if got := aggregateMethod(messages); got != MethodMixed {
		t.Fatalf("expected mixed, got %q", got)
	}
}

func TestComposeValidation(t *testing.T) {
	t.Parallel()

	composer := NewComposer(nil, nil)

	_, err := composer.Compose(context.Background(), Request{})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request for missing alumni, got %v", err)
	}

	_, err = composer.Compose(context.Background(), sampleRequest("fax"))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request for unknown type, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := composer.Compose(ctx, sampleRequest(TypeEmail)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":          TypeLinkedIn,
		"LinkedIn":  TypeLinkedIn,
		" email ":   TypeEmail,
		"follow_up": TypeFollowUp,
		"follow-up": TypeFollowUp,
	}
	for input, want := range cases {
		got, err := ParseType(input)
		if err != nil || got != want {
			t.Fatalf("ParseType(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
}

func TestOrdinal(t *testing.T) {
	t.Parallel()

	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd"}
	for n, want := range cases {
		if got := ordinal(n); got != want {
			t.Fatalf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestTipsReturnsCopy(t *testing.T) {
	t.Parallel()

	first := Tips(TypeEmail)
	first[0] = "changed"
	if Tips(TypeEmail)[0] == "changed" {
		t.Fatal("expected Tips to return a copy")
	}
	if Tips("unknown")[0] != Tips(TypeLinkedIn)[0] {
		t.Fatal("expected unknown type to use linkedin tips")
	}
}
