package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for resolution run identifiers.
	RunIDKey contextKey = "run_id"

	// GenomeKey is the context key for genome (entry) names.
	GenomeKey contextKey = "genome"

	// DatatypeKey is the context key for data type names.
	DatatypeKey contextKey = "datatype"

	// PhaseKey is the context key for pipeline phase names.
	PhaseKey contextKey = "phase"

	// AdapterKey is the context key for pipeline adapter names.
	AdapterKey contextKey = "adapter"

	// SpecRevisionKey is the context key for spec revisions.
	SpecRevisionKey contextKey = "spec_rev"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRunID adds a resolution run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the resolution run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithGenome adds a genome name to the context.
func WithGenome(ctx context.Context, genome string) context.Context {
	return context.WithValue(ctx, GenomeKey, genome)
}

// GetGenome retrieves the genome name from the context.
func GetGenome(ctx context.Context) string {
	if genome, ok := ctx.Value(GenomeKey).(string); ok {
		return genome
	}
	return ""
}

// WithDatatype adds a data type name to the context.
func WithDatatype(ctx context.Context, datatype string) context.Context {
	return context.WithValue(ctx, DatatypeKey, datatype)
}

// GetDatatype retrieves the data type name from the context.
func GetDatatype(ctx context.Context) string {
	if datatype, ok := ctx.Value(DatatypeKey).(string); ok {
		return datatype
	}
	return ""
}

// WithPhase adds a pipeline phase name to the context.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, PhaseKey, phase)
}

// GetPhase retrieves the pipeline phase name from the context.
func GetPhase(ctx context.Context) string {
	if phase, ok := ctx.Value(PhaseKey).(string); ok {
		return phase
	}
	return ""
}

// WithAdapter adds a pipeline adapter name to the context.
func WithAdapter(ctx context.Context, adapter string) context.Context {
	return context.WithValue(ctx, AdapterKey, adapter)
}

// GetAdapter retrieves the pipeline adapter name from the context.
func GetAdapter(ctx context.Context) string {
	if adapter, ok := ctx.Value(AdapterKey).(string); ok {
		return adapter
	}
	return ""
}

// WithSpecRevision adds a spec revision to the context.
func WithSpecRevision(ctx context.Context, revision string) context.Context {
	return context.WithValue(ctx, SpecRevisionKey, revision)
}

// GetSpecRevision retrieves the spec revision from the context.
func GetSpecRevision(ctx context.Context) string {
	if revision, ok := ctx.Value(SpecRevisionKey).(string); ok {
		return revision
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	// Extract run ID
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}

	// Extract genome
	if genome := GetGenome(ctx); genome != "" {
		fields = append(fields, "genome", genome)
	}

	// Extract data type
	if datatype := GetDatatype(ctx); datatype != "" {
		fields = append(fields, "datatype", datatype)
	}

	// Extract phase
	if phase := GetPhase(ctx); phase != "" {
		fields = append(fields, "phase", phase)
	}

	// Extract adapter
	if adapter := GetAdapter(ctx); adapter != "" {
		fields = append(fields, "adapter", adapter)
	}

	// Extract spec revision
	if revision := GetSpecRevision(ctx); revision != "" {
		fields = append(fields, "spec_rev", revision)
	}

	// Extract trace ID
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	// Extract span ID
	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
