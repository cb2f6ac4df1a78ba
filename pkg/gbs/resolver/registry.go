package resolver

import (
	"sort"
	"sync"
	"time"

	"mgv-hq/ganymede/pkg/gbs/ast"
)

// DynamicToday is the builtin provider producing the date the build plan
// was generated, formatted YYYY-MM-DD. Model sources use it as a release
// identifier when no fixed release string is pinned.
const DynamicToday = "today"

// ProviderFunc produces the value for one dynamic reference. Providers
// take no arguments and must not fail; anything fallible belongs in the
// pipeline, not in spec resolution.
type ProviderFunc func() *ast.Value

// Registry maps dynamic value names to their providers. It is safe for
// concurrent use. Providers are invoked lazily, at most once per
// resolution run; the memoization lives in the run, not here.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFunc
	clock     func() time.Time
}

// NewRegistry creates a registry with the builtin providers registered.
func NewRegistry() *Registry {
	r := &Registry{
		providers: make(map[string]ProviderFunc),
		clock:     time.Now,
	}
	r.Register(DynamicToday, r.todayProvider)
	return r
}

// WithClock replaces the time source used by the builtin date provider.
// Tests use this to pin "today" to a fixed date.
func (r *Registry) WithClock(clock func() time.Time) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = clock
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(name string, fn ProviderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = fn
}

// Lookup returns the provider for name.
func (r *Registry) Lookup(name string) (ProviderFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.providers[name]
	return fn, ok
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) todayProvider() *ast.Value {
	r.mu.RLock()
	clock := r.clock
	r.mu.RUnlock()
	return ast.NewString(clock().Format("2006-01-02"), ast.Location{})
}
