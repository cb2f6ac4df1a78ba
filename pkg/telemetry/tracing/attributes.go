package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans
// and ensure consistent attribute naming across the codebase.
//
// Custom attribute keys use the "ganymede.*" namespace:
//   - ganymede.genome: Genome (entry) name
//   - ganymede.datatype: Data type being processed
//   - ganymede.phase: Pipeline phase
//   - ganymede.run_id: Resolution run identifier

// Common attribute keys used throughout the system
const (
	// Resolution attributes
	AttrRunID       = "ganymede.run_id"
	AttrSpecPath    = "ganymede.spec_path"
	AttrSpecRev     = "ganymede.spec_rev"
	AttrPlanVersion = "ganymede.plan_version"
	AttrEntry       = "ganymede.entry"

	// Pipeline task attributes
	AttrGenome   = "ganymede.genome"
	AttrDatatype = "ganymede.datatype"
	AttrPhase    = "ganymede.phase"
	AttrAdapter  = "ganymede.adapter"
	AttrDryRun   = "ganymede.dry_run"

	// Fetch attributes
	AttrSourceHost = "ganymede.source.host"
	AttrBytes      = "ganymede.bytes"

	// Error attributes
	AttrErrorCode    = "ganymede.error.code"
	AttrErrorMessage = "error.message"
)

// SetRunAttributes sets resolution run attributes on a span.
//
// Example:
//
//	SetRunAttributes(span, runID, specPath, revision)
func SetRunAttributes(span trace.Span, runID, specPath, revision string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrSpecPath, specPath),
	}

	if revision != "" {
		attrs = append(attrs, attribute.String(AttrSpecRev, revision))
	}

	span.SetAttributes(attrs...)
}

// SetEntryAttributes sets entry resolution attributes on a span.
func SetEntryAttributes(span trace.Span, entry string) {
	span.SetAttributes(
		attribute.String(AttrEntry, entry),
	)
}

// SetTaskAttributes sets pipeline task attributes on a span.
//
// Example:
//
//	SetTaskAttributes(span, "GRCm39", "assembly", "download", "UrlDownloader")
func SetTaskAttributes(span trace.Span, genome, datatype, phase, adapter string) {
	span.SetAttributes(
		attribute.String(AttrGenome, genome),
		attribute.String(AttrDatatype, datatype),
		attribute.String(AttrPhase, phase),
		attribute.String(AttrAdapter, adapter),
	)
}

// SetPlanAttributes sets plan emission attributes on a span.
func SetPlanAttributes(span trace.Span, version string, active, disabled int) {
	span.SetAttributes(
		attribute.String(AttrPlanVersion, version),
		attribute.Int("ganymede.plan.active", active),
		attribute.Int("ganymede.plan.disabled", disabled),
	)
}

// SetFetchAttributes sets download attributes on a span. Only the source
// host is recorded; full URLs can embed credentials and stay out of spans.
func SetFetchAttributes(span trace.Span, host string, bytes int64) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrSourceHost, host),
	}

	if bytes > 0 {
		attrs = append(attrs, attribute.Int64(AttrBytes, bytes))
	}

	span.SetAttributes(attrs...)
}

// SetErrorCode sets a resolution error code attribute on a span.
func SetErrorCode(span trace.Span, code string) {
	span.SetAttributes(
		attribute.String(AttrErrorCode, code),
	)
}

// SetDryRun marks a span as belonging to a dry-run task.
func SetDryRun(span trace.Span, dryRun bool) {
	if dryRun {
		span.SetAttributes(attribute.Bool(AttrDryRun, true))
	}
}
