// Package metrics provides Prometheus instrumentation for the build system.
//
// The Collector owns a Prometheus registry and three metric subsystems:
//
//   - ResolutionMetrics: resolution runs, per-entry outcomes, error codes,
//     and gauges describing the current plan (active/disabled counts and a
//     version info series).
//   - PipelineMetrics: task counts and durations by phase, bytes fetched
//     per genome, and in-flight task gauges.
//   - LedgerMetrics: ledger write attempts, retention pruning, archive
//     attempts, and history exports.
//
// All metrics share a configurable namespace and subsystem, defaulting to
// mgv_ganymede_*.
//
// # Usage
//
//	cfg := &config.MetricsConfig{Enabled: true}
//	collector := metrics.NewCollector(cfg, nil)
//
//	collector.RecordResolutionRun("ok", elapsed)
//	collector.UpdatePlan(plan.RunID, len(plan.Active), len(plan.Disabled))
//
//	mux.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// Genome names come from the spec and are unbounded, so genome-labelled
// series pass through a CardinalityLimiter. Once the limit is reached, new
// genomes aggregate into an "other" label instead of creating fresh series.
//
// When metrics are disabled in configuration, all Record* methods are
// no-ops, so callers never need to guard instrumentation sites.
package metrics
