// MGV Ganymede resolves genome build specs and orchestrates data builds.
//
// It turns a layered YAML build spec into a fully resolved build plan,
// providing:
//   - Variable, dynamic value, alias, and merge-template resolution
//   - Plan emission with full error accumulation and cycle detection
//   - Pipeline orchestration with per-host politeness limits
//   - A build ledger for audit trails and provenance
//   - A daemon serving the current plan over HTTP with spec watching
//
// Usage:
//
//	# Resolve the spec and print the build plan
//	mgv plan --file genomes.yaml
//
//	# Validate spec files
//	mgv lint --file genomes.yaml
//
//	# Run the build pipeline once
//	mgv build --genome 'mus_.*' --dry-run
//
//	# Start the daemon with default configuration
//	mgv run
//
//	# Query the build ledger
//	mgv history --genome mus_musculus --status failed
//
//	# Show version information
//	mgv version
//
// For complete documentation, see: https://github.com/mgv-hq/ganymede
package main

func main() {
	Execute()
}
