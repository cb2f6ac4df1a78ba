// Package resolver expands the indirection in a GBS spec document into
// fully concrete values.
//
// A spec document carries four indirection forms:
//
//   - "@name"  — variable reference, looked up in the vars table
//   - "@@name" — dynamic reference, produced by a registered provider
//   - "=name"  — entry alias, the same-named field on another entry
//   - a mapping with the reserved "base" key — merge template: the
//     resolved base mapping with sibling keys overriding one level deep
//
// # Basic Usage
//
//	r := resolver.New(doc)
//	run := r.NewRun()
//
//	models, err := run.ResolveField("mus_musculus", "models")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Runs
//
// All resolution happens inside a Run. The run memoizes two things:
// dynamic provider results, so every "@@today" in one run is the same
// date, and per (entry, field) resolutions, so an alias targeting an
// already resolved field reuses its value. Discard the run when done;
// nothing leaks into the next one.
//
// # Cycles
//
// Reference chains are tracked on an explicit visitation stack. A chain
// that revisits an in-flight reference fails with a circular reference
// error reporting the full chain, e.g.
//
//	Circular reference: @rel_a -> @rel_b -> @rel_a
//
// # Dynamic Values
//
// Providers are registered by name and invoked lazily, at most once per
// run. The builtin "today" provider produces the plan generation date;
// pin it in tests with a fixed clock:
//
//	reg := resolver.NewRegistry().WithClock(func() time.Time {
//	    return time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
//	})
//	r := resolver.New(doc).WithRegistry(reg)
package resolver
