package metrics

import (
	"time"

	"mgv-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks metrics for pipeline task execution.
//
// Metrics:
//   - mgv_ganymede_pipeline_tasks_total: Task count by phase, datatype, status
//   - mgv_ganymede_pipeline_task_duration_seconds: Task duration histogram
//   - mgv_ganymede_pipeline_bytes_fetched_total: Bytes fetched by genome
//   - mgv_ganymede_pipeline_tasks_in_flight: Currently running tasks by phase
type PipelineMetrics struct {
	// Task count by phase, datatype, status
	tasksTotal *prometheus.CounterVec

	// Task duration histogram by phase
	taskDuration *prometheus.HistogramVec

	// Bytes fetched during download tasks
	bytesFetched *prometheus.CounterVec

	// Currently running tasks
	tasksInFlight *prometheus.GaugeVec
}

// NewPipelineMetrics creates and registers pipeline metrics with the provided
// registry.
func NewPipelineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PipelineMetrics {
	pm := &PipelineMetrics{
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_tasks_total",
				Help:      "Total number of pipeline tasks by phase, datatype, and status",
			},
			[]string{"phase", "datatype", "status"},
		),

		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_task_duration_seconds",
				Help:      "Duration of pipeline tasks in seconds",
				Buckets:   cfg.TaskDurationBuckets,
			},
			[]string{"phase"},
		),

		bytesFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_bytes_fetched_total",
				Help:      "Total bytes fetched during download tasks by genome",
			},
			[]string{"genome"},
		),

		tasksInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_tasks_in_flight",
				Help:      "Number of pipeline tasks currently running by phase",
			},
			[]string{"phase"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		pm.tasksTotal,
		pm.taskDuration,
		pm.bytesFetched,
		pm.tasksInFlight,
	)

	return pm
}

// RecordTask records a completed pipeline task.
//
// Parameters:
//   - phase: Pipeline phase ("download", "import", "deploy")
//   - datatype: Data type ("assembly", "models", "orthology")
//   - status: Task status ("success", "failed", "skipped")
//   - duration: Task duration
func (pm *PipelineMetrics) RecordTask(phase, datatype, status string, duration time.Duration) {
	pm.tasksTotal.WithLabelValues(phase, datatype, status).Inc()
	pm.taskDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordBytes records bytes fetched for a genome.
func (pm *PipelineMetrics) RecordBytes(genome string, bytes int64) {
	if bytes > 0 {
		pm.bytesFetched.WithLabelValues(genome).Add(float64(bytes))
	}
}

// TaskStarted increments the in-flight gauge for a phase.
func (pm *PipelineMetrics) TaskStarted(phase string) {
	pm.tasksInFlight.WithLabelValues(phase).Inc()
}

// TaskDone decrements the in-flight gauge for a phase.
func (pm *PipelineMetrics) TaskDone(phase string) {
	pm.tasksInFlight.WithLabelValues(phase).Dec()
}
