package metrics

import (
	"time"

	"mgv-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks metrics for build ledger writes and retention.
//
// Metrics:
//   - mgv_ganymede_ledger_writes_total: Write attempts by status
//   - mgv_ganymede_ledger_write_duration_seconds: Write duration histogram
//   - mgv_ganymede_ledger_records_pruned_total: Records removed by retention
//   - mgv_ganymede_ledger_archives_total: Archive attempts by backend, status
//   - mgv_ganymede_ledger_exports_total: History exports by format
type LedgerMetrics struct {
	// Write attempts by status
	writesTotal *prometheus.CounterVec

	// Write duration histogram
	writeDuration prometheus.Histogram

	// Records removed by retention pruning
	prunedTotal prometheus.Counter

	// Archive attempts by backend and status
	archivesTotal *prometheus.CounterVec

	// History exports by format
	exportsTotal *prometheus.CounterVec
}

// NewLedgerMetrics creates and registers ledger metrics with the provided
// registry.
func NewLedgerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LedgerMetrics {
	lm := &LedgerMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ledger_writes_total",
				Help:      "Total number of ledger write attempts by status",
			},
			[]string{"status"},
		),

		writeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ledger_write_duration_seconds",
				Help:      "Duration of ledger writes in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ledger_records_pruned_total",
				Help:      "Total number of ledger records removed by retention pruning",
			},
		),

		archivesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ledger_archives_total",
				Help:      "Total number of retention archive attempts by backend and status",
			},
			[]string{"backend", "status"},
		),

		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ledger_exports_total",
				Help:      "Total number of history exports by format",
			},
			[]string{"format"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		lm.writesTotal,
		lm.writeDuration,
		lm.prunedTotal,
		lm.archivesTotal,
		lm.exportsTotal,
	)

	return lm
}

// RecordWrite records a ledger write attempt.
//
// Parameters:
//   - status: Write status ("ok", "error", "dropped")
//   - duration: Write duration
func (lm *LedgerMetrics) RecordWrite(status string, duration time.Duration) {
	lm.writesTotal.WithLabelValues(status).Inc()
	lm.writeDuration.Observe(duration.Seconds())
}

// RecordPruned records records removed by retention pruning.
func (lm *LedgerMetrics) RecordPruned(count int) {
	if count > 0 {
		lm.prunedTotal.Add(float64(count))
	}
}

// RecordArchive records an archive attempt.
func (lm *LedgerMetrics) RecordArchive(backend, status string) {
	lm.archivesTotal.WithLabelValues(backend, status).Inc()
}

// RecordExport records a history export.
func (lm *LedgerMetrics) RecordExport(format string) {
	lm.exportsTotal.WithLabelValues(format).Inc()
}
