// Package pipeline orchestrates the build: it expands a resolved plan
// into per-(genome, datatype, phase) tasks and drives them through
// source adapters under a bounded worker pool.
//
// # Model
//
// A plan entry yields one task group per data type it declares
// (assembly, models, orthology). A group holds that type's phases in
// run order: download, import, deploy. Groups run concurrently; phases
// within a group run sequentially, and a failed phase skips the rest of
// its group.
//
// Adapters are selected by the section's source discriminator, looked
// up in a Registry (default key "UrlDownloader"). The real fetch and
// transform implementations register from outside this module; in-tree
// only LogAdapter ships, which the runner substitutes on dry runs.
//
// # Usage
//
//	registry := pipeline.NewRegistry()
//	registry.Register(myDownloader)
//
//	runner := pipeline.NewRunner(cfg, registry).
//		WithRecorder(rec).
//		WithMetrics(collector).
//		WithState(state)
//
//	result, err := runner.Run(ctx, plan)
//	if err != nil {
//		// run-level failure: bad selection filters or cancellation
//	}
//	if err := result.Err(); err != nil {
//		// one or more tasks failed; details in result.Errors
//	}
//
// # Completion tracking
//
// With a StateStore attached, finished tasks are recorded under the
// entry's resolved-content fingerprint. A re-run skips tasks whose
// fingerprint still matches and re-runs anything whose entry changed in
// the spec. Force in the pipeline configuration bypasses the check; dry
// runs never read or write completion state.
//
// # Politeness
//
// Download-phase tasks pass through a per-host token bucket limiter so
// a wide parallel run does not hammer any single provider. The limit is
// configured by requests per second and burst; a zero rate disables it.
//
// # Audit trail
//
// With a ledger recorder attached, every task books exactly one build
// record: ok, failed, or skipped (already complete, phase aborted, or
// run cancelled), with plan provenance, duration, bytes fetched, and
// the source host.
package pipeline
