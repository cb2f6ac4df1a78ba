// Package tracing provides OpenTelemetry distributed tracing for the build
// system.
//
// Spans cover resolution runs, per-entry resolution, plan emission, and
// pipeline tasks. Traces export over OTLP gRPC to a collector endpoint;
// when tracing is disabled (the default), a noop tracer is returned and
// span operations cost almost nothing.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "emit_plan")
//	defer span.End()
//	tracing.SetRunAttributes(span, runID, specPath, revision)
//
// # Sampling
//
// Three strategies are supported: always, never, and ratio
// (TraceIDRatioBased). All are wrapped in ParentBased samplers so child
// spans follow their parent's decision. Resolution runs are infrequent, so
// ratio 1.0 is the default.
//
// # Attributes
//
// Custom attributes live under the "ganymede." namespace (genome, datatype,
// phase, adapter, run_id, plan_version). Download spans record only the
// source host, never the full URL, since URLs can embed credentials.
package tracing
