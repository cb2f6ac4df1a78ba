package metrics

import (
	"fmt"
	"sync"
	"time"

	"mgv-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in the build
// system. It manages metric registration and provides a unified interface for
// recording metrics across resolution, pipeline, and ledger components.
//
// The collector is designed for low overhead on the hot resolution path:
//   - Pre-allocated metric instances
//   - Cardinality limits on genome-labelled series
//   - Histogram buckets sized for long-running download/import tasks
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Resolution and plan metrics
	resolutionMetrics *ResolutionMetrics

	// Pipeline task metrics
	pipelineMetrics *PipelineMetrics

	// Ledger write metrics
	ledgerMetrics *LedgerMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "mgv",
//		Subsystem: "ganymede",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "mgv"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "ganymede"
	}
	if len(cfg.TaskDurationBuckets) == 0 {
		// Sized for pipeline tasks, from quick deploys to multi-hour imports
		cfg.TaskDurationBuckets = []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000), // Max 1K unique label sets
	}

	// Initialize metric subsystems
	c.resolutionMetrics = NewResolutionMetrics(cfg, registry)
	c.pipelineMetrics = NewPipelineMetrics(cfg, registry)
	c.ledgerMetrics = NewLedgerMetrics(cfg, registry)

	return c
}

// RecordResolutionRun records metrics for a completed resolution run.
//
// Parameters:
//   - outcome: Run outcome ("ok", "failed")
//   - duration: Total run duration
func (c *Collector) RecordResolutionRun(outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.resolutionMetrics.RecordRun(outcome, duration)
}

// RecordEntryResolution records the outcome for a single entry.
//
// Parameters:
//   - status: Entry status ("resolved", "failed", "disabled")
func (c *Collector) RecordEntryResolution(status string) {
	if !c.config.Enabled {
		return
	}

	c.resolutionMetrics.RecordEntry(status)
}

// RecordResolutionError records a resolution error by its error code.
//
// Parameters:
//   - code: Error code (e.g., "unresolved_reference", "circular_reference")
func (c *Collector) RecordResolutionError(code string) {
	if !c.config.Enabled {
		return
	}

	c.resolutionMetrics.RecordError(code)
}

// UpdatePlan updates the plan gauges after a successful emission.
//
// Parameters:
//   - version: Plan version identifier
//   - active: Number of active entries in the plan
//   - disabled: Number of disabled entries excluded from the plan
func (c *Collector) UpdatePlan(version string, active, disabled int) {
	if !c.config.Enabled {
		return
	}

	c.resolutionMetrics.UpdatePlan(version, active, disabled)
}

// RecordTask records metrics for a completed pipeline task.
//
// Parameters:
//   - phase: Pipeline phase ("download", "import", "deploy")
//   - datatype: Data type ("assembly", "models", "orthology")
//   - status: Task status ("success", "failed", "skipped")
//   - duration: Task duration
func (c *Collector) RecordTask(phase, datatype, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.pipelineMetrics.RecordTask(phase, datatype, status, duration)
}

// RecordTaskBytes records bytes fetched for a genome during download tasks.
//
// Genome names are free-form and spec-controlled, so the label is guarded by
// the cardinality limiter. Overflow genomes aggregate into "other".
func (c *Collector) RecordTaskBytes(genome string, bytes int64) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("bytes:%s", genome)
	if !c.cardinalityLimiter.Allow(labelSet) {
		genome = "other"
	}

	c.pipelineMetrics.RecordBytes(genome, bytes)
}

// TaskStarted increments the in-flight gauge for a phase.
func (c *Collector) TaskStarted(phase string) {
	if !c.config.Enabled {
		return
	}

	c.pipelineMetrics.TaskStarted(phase)
}

// TaskDone decrements the in-flight gauge for a phase.
func (c *Collector) TaskDone(phase string) {
	if !c.config.Enabled {
		return
	}

	c.pipelineMetrics.TaskDone(phase)
}

// RecordLedgerWrite records a ledger write attempt.
//
// Parameters:
//   - status: Write status ("ok", "error", "dropped")
//   - duration: Write duration
func (c *Collector) RecordLedgerWrite(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.ledgerMetrics.RecordWrite(status, duration)
}

// RecordLedgerPruned records records removed by retention pruning.
func (c *Collector) RecordLedgerPruned(count int) {
	if !c.config.Enabled {
		return
	}

	c.ledgerMetrics.RecordPruned(count)
}

// RecordLedgerArchive records an archive attempt before pruning.
//
// Parameters:
//   - backend: Archive backend ("fs", "s3")
//   - status: Archive status ("ok", "error")
func (c *Collector) RecordLedgerArchive(backend, status string) {
	if !c.config.Enabled {
		return
	}

	c.ledgerMetrics.RecordArchive(backend, status)
}

// RecordLedgerExport records a history export.
//
// Parameters:
//   - format: Export format ("json", "csv")
func (c *Collector) RecordLedgerExport(format string) {
	if !c.config.Enabled {
		return
	}

	c.ledgerMetrics.RecordExport(format)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
