package plan

import (
	"fmt"
	"sync"
	"time"
)

// Registry is the thread-safe holder of the current build plan. Updates
// swap the whole plan atomically; readers always see a complete plan or
// none. The registry version is the plan's content fingerprint, so
// re-emitting an unchanged spec keeps the version stable.
type Registry struct {
	mu       sync.RWMutex
	plan     *Plan
	version  string
	loadTime time.Time
}

// NewRegistry creates an empty plan registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Update atomically replaces the current plan.
func (r *Registry) Update(p *Plan) error {
	if p == nil {
		return fmt.Errorf("plan cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.plan = p
	r.version = p.Fingerprint()
	r.loadTime = time.Now()
	return nil
}

// Get returns the current plan, or nil if none has been loaded yet.
func (r *Registry) Get() *Plan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.plan
}

// GetEntry returns the named resolved entry from the current plan,
// searching active entries first and then disabled ones.
func (r *Registry) GetEntry(name string) (*ResolvedEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.plan == nil {
		return nil, false
	}
	e := r.plan.Entry(name)
	return e, e != nil
}

// GetVersion returns the current plan's content fingerprint, or the empty
// string before the first update.
func (r *Registry) GetVersion() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// GetLoadTime returns when the current plan was installed.
func (r *Registry) GetLoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// GetStats returns a snapshot of the registry state.
func (r *Registry) GetStats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		Version:  r.version,
		LoadTime: r.loadTime,
	}
	if r.plan != nil {
		stats.ActiveCount = len(r.plan.Active)
		stats.DisabledCount = len(r.plan.Disabled)
		stats.RunID = r.plan.RunID
	}
	return stats
}

// RegistryStats is a point-in-time summary of the registry.
type RegistryStats struct {
	ActiveCount   int
	DisabledCount int
	RunID         string
	Version       string
	LoadTime      time.Time
}
