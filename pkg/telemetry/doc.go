// Package telemetry provides observability for the MGV build system.
//
// # Overview
//
// The telemetry subpackages implement structured logging, Prometheus
// metrics, OpenTelemetry distributed tracing, and health check endpoints.
// They give operators visibility into spec resolution, plan emission, and
// pipeline runs without adding meaningful overhead to the build itself.
//
// # Components
//
//   - logging: Structured logging with secret redaction
//   - metrics: Prometheus metrics collection
//   - tracing: OpenTelemetry distributed tracing
//   - health: Health check endpoints for the daemon
//
// # Usage
//
//	// Structured logging
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	logger.Info("plan emitted", "genomes", 12, "version", p.Fingerprint())
//
//	// Pipeline metrics
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordTask("download", "models", "ok", elapsed)
//
//	// Spans around pipeline phases
//	ctx, span := tracer.Start(ctx, "pipeline.task")
//	defer span.End()
//
// # Secret Protection
//
// Log output redacts credential-shaped values by default: access tokens,
// basic-auth userinfo embedded in URLs, and anything under a key that
// looks like a secret. Download URLs appear in the ledger as host names
// only.
package telemetry
