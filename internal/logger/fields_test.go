package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  job_id  ", Value: "  j-1  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "job_id" || fields[0].String != "j-1" {
		t.Fatalf("unexpected job field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestPairFields(t *testing.T) {
	fields := PairFields("  c-7  ", "j-3")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldCandidateID || fields[0].String != "c-7" {
		t.Fatalf("unexpected candidate field: %+v", fields[0])
	}

	if fields[1].Key != FieldJobID || fields[1].String != "j-3" {
		t.Fatalf("unexpected job field: %+v", fields[1])
	}

	if empty := PairFields("", ""); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithPair(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithPair(zap.New(core), "c-1", "j-1").Info("scored")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldCandidateID] != "c-1" {
		t.Fatalf("expected candidate field to be c-1, got %q", ctx[FieldCandidateID])
	}
	if ctx[FieldJobID] != "j-1" {
		t.Fatalf("expected job field to be j-1, got %q", ctx[FieldJobID])
	}

	WithPair(nil, "c-1", "j-1").Info("no panic on nil logger")
}

func TestNewBuildsLevels(t *testing.T) {
	log, err := New(true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}

	log, err = New(false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be disabled")
	}
}
