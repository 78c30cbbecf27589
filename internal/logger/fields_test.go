package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  store  ", Value: "  memory  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "store" || fields[0].String != "memory" {
		t.Fatalf("unexpected store field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("candidate_id", "alu-1"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if got := entries[0].ContextMap()["candidate_id"]; got != "alu-1" {
		t.Fatalf("expected candidate_id alu-1, got %q", got)
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestAIFields(t *testing.T) {
	fields := AIFields("  gemini  ", "gemini-2.5-flash")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldProvider || fields[0].String != "gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if fields[1].Key != FieldModel || fields[1].String != "gemini-2.5-flash" {
		t.Fatalf("unexpected model field: %+v", fields[1])
	}

	if empty := AIFields("", ""); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithSearchFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithSearchFields(zap.New(core), "tfidf", "").Info("search")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldSearchMethod] != "tfidf" {
		t.Fatalf("expected search method tfidf, got %v", ctx[FieldSearchMethod])
	}
	if _, ok := ctx[FieldStore]; ok {
		t.Fatalf("expected empty store field to be omitted")
	}
}

func TestLevel(t *testing.T) {
	if Level(true) != zapcore.DebugLevel {
		t.Fatalf("expected debug level")
	}
	if Level(false) != zapcore.InfoLevel {
		t.Fatalf("expected info level")
	}
}
