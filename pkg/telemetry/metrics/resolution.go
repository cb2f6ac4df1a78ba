package metrics

import (
	"time"

	"mgv-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ResolutionMetrics tracks metrics for spec resolution and plan emission.
//
// Metrics:
//   - mgv_ganymede_resolution_runs_total: Resolution run count by outcome
//   - mgv_ganymede_resolution_entries_total: Per-entry outcomes
//   - mgv_ganymede_resolution_duration_seconds: Run duration histogram
//   - mgv_ganymede_resolution_errors_total: Errors by code
//   - mgv_ganymede_plan_active_entries: Entries in the current plan
//   - mgv_ganymede_plan_disabled_entries: Disabled entries excluded from it
//   - mgv_ganymede_plan_info: Info gauge carrying the plan version label
type ResolutionMetrics struct {
	// Resolution run count by outcome
	runsTotal *prometheus.CounterVec

	// Per-entry resolution outcomes
	entriesTotal *prometheus.CounterVec

	// Run duration histogram
	runDuration prometheus.Histogram

	// Errors by code
	errorsTotal *prometheus.CounterVec

	// Current plan gauges
	activeEntries   prometheus.Gauge
	disabledEntries prometheus.Gauge

	// Plan version info gauge (always 1 for the current version)
	planInfo *prometheus.GaugeVec
}

// NewResolutionMetrics creates and registers resolution metrics with the
// provided registry.
func NewResolutionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResolutionMetrics {
	rm := &ResolutionMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolution_runs_total",
				Help:      "Total number of resolution runs by outcome",
			},
			[]string{"outcome"},
		),

		entriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolution_entries_total",
				Help:      "Total number of entry resolutions by status",
			},
			[]string{"status"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolution_duration_seconds",
				Help:      "Duration of resolution runs in seconds",
				// Resolution is in-memory work, well under a second even
				// for large specs
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolution_errors_total",
				Help:      "Total number of resolution errors by code",
			},
			[]string{"code"},
		),

		activeEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plan_active_entries",
				Help:      "Number of entries in the current plan",
			},
		),

		disabledEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plan_disabled_entries",
				Help:      "Number of disabled entries excluded from the current plan",
			},
		),

		planInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plan_info",
				Help:      "Info gauge set to 1 for the current plan version",
			},
			[]string{"version"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.runsTotal,
		rm.entriesTotal,
		rm.runDuration,
		rm.errorsTotal,
		rm.activeEntries,
		rm.disabledEntries,
		rm.planInfo,
	)

	return rm
}

// RecordRun records a completed resolution run.
//
// Parameters:
//   - outcome: Run outcome ("ok", "failed")
//   - duration: Run duration
func (rm *ResolutionMetrics) RecordRun(outcome string, duration time.Duration) {
	rm.runsTotal.WithLabelValues(outcome).Inc()
	rm.runDuration.Observe(duration.Seconds())
}

// RecordEntry records the outcome of a single entry resolution.
func (rm *ResolutionMetrics) RecordEntry(status string) {
	rm.entriesTotal.WithLabelValues(status).Inc()
}

// RecordError records a resolution error by code.
func (rm *ResolutionMetrics) RecordError(code string) {
	rm.errorsTotal.WithLabelValues(code).Inc()
}

// UpdatePlan updates the plan gauges for a newly emitted plan. The previous
// version's info series is dropped so only the current version reports 1.
func (rm *ResolutionMetrics) UpdatePlan(version string, active, disabled int) {
	rm.activeEntries.Set(float64(active))
	rm.disabledEntries.Set(float64(disabled))

	rm.planInfo.Reset()
	rm.planInfo.WithLabelValues(version).Set(1)
}
