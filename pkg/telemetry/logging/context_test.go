package logging

import (
	"context"
	"testing"
)

func TestContextAccessors(t *testing.T) {
	tests := []struct {
		name string
		set  func(context.Context, string) context.Context
		get  func(context.Context) string
	}{
		{"run ID", WithRunID, GetRunID},
		{"genome", WithGenome, GetGenome},
		{"datatype", WithDatatype, GetDatatype},
		{"phase", WithPhase, GetPhase},
		{"adapter", WithAdapter, GetAdapter},
		{"spec revision", WithSpecRevision, GetSpecRevision},
		{"trace ID", WithTraceID, GetTraceID},
		{"span ID", WithSpanID, GetSpanID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			// Empty context returns empty string
			if got := tt.get(ctx); got != "" {
				t.Errorf("expected empty value from fresh context, got %q", got)
			}

			// Value round-trips
			ctx = tt.set(ctx, "value-123")
			if got := tt.get(ctx); got != "value-123" {
				t.Errorf("expected %q, got %q", "value-123", got)
			}
		})
	}
}

func TestExtractContextFields(t *testing.T) {
	ctx := context.Background()
	ctx = WithRunID(ctx, "run-1")
	ctx = WithGenome(ctx, "GRCm39")
	ctx = WithDatatype(ctx, "models")
	ctx = WithPhase(ctx, "import")

	fields := extractContextFields(ctx)

	if len(fields) != 8 {
		t.Fatalf("expected 8 field elements, got %d: %v", len(fields), fields)
	}

	// Fields come in key-value pairs in a fixed order
	want := []any{
		"run_id", "run-1",
		"genome", "GRCm39",
		"datatype", "models",
		"phase", "import",
	}

	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("fields[%d] = %v, want %v", i, fields[i], want[i])
		}
	}
}

func TestExtractContextFields_Empty(t *testing.T) {
	fields := extractContextFields(context.Background())

	if len(fields) != 0 {
		t.Errorf("expected no fields from empty context, got %v", fields)
	}
}

func TestContextLogger(t *testing.T) {
	logger, err := New(Config{
		Level:  "debug",
		Format: "json",
		Writer: &discardWriter{},
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Shutdown()

	ctx := WithRunID(context.Background(), "run-ctx")
	cl := NewContextLogger(logger, ctx)

	if cl == nil {
		t.Fatal("expected non-nil context logger")
	}

	// None of these should panic
	cl.Debug("debug message")
	cl.Info("info message")
	cl.Warn("warn message")
	cl.Error("error message")

	child := cl.With("genome", "GRCm39")
	if child == nil {
		t.Fatal("expected non-nil child logger")
	}
	child.Info("child message")
}

// discardWriter swallows log output for tests that only exercise control flow.
type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}
