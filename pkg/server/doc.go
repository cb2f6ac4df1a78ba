// Package server provides the daemon's HTTP surface.
//
// This package ties the plan registry, health checker, and metrics
// collector into one HTTP server with lifecycle management: start,
// graceful shutdown, and OS signal handling (SIGTERM, SIGINT).
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "mgv-hq/ganymede/pkg/config"
//	    "mgv-hq/ganymede/pkg/plan"
//	    "mgv-hq/ganymede/pkg/server"
//	)
//
//	cfg := config.GetConfig()
//	registry := plan.NewRegistry()
//
//	srv := server.NewServer(&cfg.Server, registry).
//	    WithVersion("1.0.0", commit, buildTime)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - GET /healthz - Liveness probe (always returns 200)
//   - GET /readyz - Readiness probe (runs the registered health checks)
//   - GET /version - Build information
//   - GET /metrics - Prometheus metrics (path configurable)
//   - GET /plan - Current build plan as JSON; ?include_disabled=1 adds
//     disabled entries
//   - GET /plan/{genome} - One resolved entry
//
// # Health Checks
//
// Readiness aggregates named checks registered on the health checker. The
// daemon wires the well-known ones at startup:
//
//	checker := health.New(0)
//	checker.RegisterCheck(health.CheckSpecSource, server.SpecSourceCheck(source))
//	checker.RegisterCheck(health.CheckLedger, server.LedgerCheck(storage))
//	checker.RegisterCheck(health.CheckRegistry, server.RegistryCheck(registry))
//	srv := server.NewServer(&cfg.Server, registry).WithHealth(checker)
//
// # Middleware Chain
//
// Requests pass through recovery, then request ID assignment, then
// request logging, so panics never kill the daemon and every log line
// carries the request's ID.
//
// # Graceful Shutdown
//
// Start blocks until the context is cancelled, SIGTERM/SIGINT arrives, or
// Stop is called, then drains in-flight requests for up to the configured
// shutdown timeout.
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently
// from multiple goroutines.
package server
