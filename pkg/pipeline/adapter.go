package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// DefaultAdapterName is the adapter key used when a section declares no
// source discriminator.
const DefaultAdapterName = "UrlDownloader"

// Adapter executes pipeline tasks for one source family. The runner
// dispatches every phase of a section to the adapter named by the
// section's source discriminator: Fetch pulls the remote artifact into
// the downloads dir, Import transforms it into the output dir, Deploy
// publishes it under the web dir.
//
// Implementations receive the fully resolved task and must not block
// past ctx. The real fetch and transform implementations live outside
// this module; in-tree only the LogAdapter ships.
type Adapter interface {
	// Name returns the registry key the adapter registers under.
	Name() string

	// Fetch runs a download-phase task.
	Fetch(ctx context.Context, task *Task) error

	// Import runs an import-phase task.
	Import(ctx context.Context, task *Task) error

	// Deploy runs a deploy-phase task.
	Deploy(ctx context.Context, task *Task) error
}

// Registry maps source discriminator names to adapters. The zero key is
// never stored; lookups with an empty name fall back to
// DefaultAdapterName.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter under its own name. Registering a second
// adapter with the same name replaces the first.
func (r *Registry) Register(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[adapter.Name()] = adapter
}

// Lookup returns the adapter registered under name. An empty name looks
// up DefaultAdapterName.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	if name == "" {
		name = DefaultAdapterName
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names returns the registered adapter names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogAdapter logs each task instead of running it. The runner substitutes
// it for the configured adapter on dry runs; it can also be registered
// under its own name so a spec section can select it directly.
type LogAdapter struct {
	logger *slog.Logger
}

// NewLogAdapter creates a logging adapter.
func NewLogAdapter() *LogAdapter {
	return &LogAdapter{
		logger: slog.Default().With("component", "pipeline.log_adapter"),
	}
}

// Name returns "LogAdapter".
func (a *LogAdapter) Name() string { return "LogAdapter" }

// Fetch logs the download that would have run.
func (a *LogAdapter) Fetch(ctx context.Context, task *Task) error {
	a.logger.InfoContext(ctx, "would download",
		"genome", task.Genome,
		"datatype", task.Datatype,
		"adapter", task.Adapter,
		"source_host", task.SourceHost(),
		"release", sectionRelease(task),
		"downloads_dir", task.Paths.DownloadsDir,
	)
	return nil
}

// Import logs the import that would have run.
func (a *LogAdapter) Import(ctx context.Context, task *Task) error {
	a.logger.InfoContext(ctx, "would import",
		"genome", task.Genome,
		"datatype", task.Datatype,
		"adapter", task.Adapter,
		"chunk_size", sectionChunkSize(task),
		"output_dir", task.Paths.OutputDir,
	)
	return nil
}

// Deploy logs the deploy that would have run.
func (a *LogAdapter) Deploy(ctx context.Context, task *Task) error {
	a.logger.InfoContext(ctx, "would deploy",
		"genome", task.Genome,
		"datatype", task.Datatype,
		"adapter", task.Adapter,
		"web_dir", task.Paths.WebDir,
	)
	return nil
}

func sectionRelease(task *Task) string {
	if task.Section == nil {
		return ""
	}
	return task.Section.Release
}

func sectionChunkSize(task *Task) int64 {
	if task.Section == nil {
		return 0
	}
	return task.Section.ChunkSize
}
