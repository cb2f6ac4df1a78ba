// Package plan turns a parsed spec document into the concrete build plan
// the pipeline consumes, and keeps that plan current while a daemon runs.
//
// The Emitter drives the resolver across the spec's entry list in document
// order and produces a Plan: the active resolved entries, plus the disabled
// ones kept on a separate list so they remain inspectable (and, during
// resolution, targetable by aliases). Errors from every entry are collected
// before the run fails, so one emission reports every misconfiguration.
//
// # Core Components
//
// Emitter resolves every entry of a document and produces a Plan, with a
// configurable continue-on-error policy for partial plans.
//
// Registry is the thread-safe holder of the current plan. Its version is a
// content fingerprint, so re-emitting an unchanged spec keeps the version
// stable.
//
// Source abstracts where spec bytes come from: FileSource reads a file,
// GitSource clones and pulls a repository and reports the commit SHA, so
// every plan is traceable to a revision.
//
// SpecWatcher watches the spec path with fsnotify and triggers debounced
// rebuilds, for daemon mode.
//
// Planner ties these together: fetch, parse, lint, emit, install. On
// failure the registry keeps the last good plan.
//
// # Basic Usage
//
//	planner := plan.NewPlanner(plan.NewFileSource("genomes.yaml", nil))
//	built, err := planner.Rebuild(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, entry := range built.Active {
//	    models, ok := entry.Section("models")
//	    if ok {
//	        fmt.Println(entry.Name, models.Source, models.ChunkSize)
//	    }
//	}
//
// # Watching for Changes
//
//	watcher, err := plan.NewSpecWatcher("genomes.yaml", 0, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go func() {
//	    _ = watcher.Watch(ctx, func() error {
//	        _, err := planner.Rebuild(ctx)
//	        return err
//	    })
//	}()
package plan
