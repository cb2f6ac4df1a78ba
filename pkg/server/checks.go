package server

import (
	"context"
	"fmt"

	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/plan"
	"mgv-hq/ganymede/pkg/telemetry/health"
)

// SpecSourceCheck returns a readiness check that verifies the spec source
// is fetchable. Register it under health.CheckSpecSource.
func SpecSourceCheck(source plan.Source) health.CheckFunc {
	return func(ctx context.Context) error {
		if source == nil {
			return fmt.Errorf("no spec source configured")
		}
		if _, _, err := source.Fetch(ctx); err != nil {
			return fmt.Errorf("spec source %s: %w", source.Describe(), err)
		}
		return nil
	}
}

// LedgerCheck returns a readiness check that pings the ledger storage
// backend. Register it under health.CheckLedger.
func LedgerCheck(storage ledger.Storage) health.CheckFunc {
	return func(ctx context.Context) error {
		if storage == nil {
			return fmt.Errorf("no ledger storage configured")
		}
		if _, err := storage.Query(ctx, &ledger.Query{Limit: 1}); err != nil {
			return fmt.Errorf("ledger storage: %w", err)
		}
		return nil
	}
}

// RegistryCheck returns a readiness check that fails until a plan has
// been emitted. Register it under health.CheckRegistry.
func RegistryCheck(registry *plan.Registry) health.CheckFunc {
	return func(ctx context.Context) error {
		if registry == nil || registry.Get() == nil {
			return fmt.Errorf("no plan emitted yet")
		}
		return nil
	}
}
