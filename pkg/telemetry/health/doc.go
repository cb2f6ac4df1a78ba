// Package health provides health checking for the daemon.
//
// The Checker manages named component checks and aggregates them into
// liveness and readiness statuses suitable for Kubernetes probes. The
// daemon registers three checks at startup:
//
//   - spec_source: the spec file or git clone is readable
//   - ledger: the ledger storage backend answers a ping
//   - registry: a plan has been emitted since startup
//
// # Endpoints
//
// Three HTTP endpoints are exposed:
//
//   - /healthz: liveness. Always 200 while the process runs.
//   - /readyz: readiness. Runs all registered checks concurrently, each
//     bounded by the check timeout. Returns 503 when any check fails.
//   - /version: build information (version, commit, build time, Go version).
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck(health.CheckSpecSource, func(ctx context.Context) error {
//		_, err := os.Stat(specPath)
//		return err
//	})
//
//	mux := http.NewServeMux()
//	health.HTTPMiddleware(mux, checker, version, commit, buildTime)
//
// A check that runs past the configured timeout is reported unhealthy with
// a "health check timeout" message; the readiness response then degrades to
// 503 without waiting on the slow component.
package health
