package metrics

import (
	"testing"
	"time"

	"mgv-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:             true,
		Namespace:           "test",
		Subsystem:           "metrics",
		TaskDurationBuckets: []float64{0.1, 1, 60, 1800},
	}
}

// TestCollector_NewCollector tests collector creation
func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.registry != registry {
		t.Error("Collector registry not set correctly")
	}
}

// TestCollector_NewCollector_Defaults tests namespace and bucket defaulting
func TestCollector_NewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}

	collector := NewCollector(cfg, nil)

	if collector.registry == nil {
		t.Error("Expected collector to create its own registry")
	}
	if cfg.Namespace != "mgv" {
		t.Errorf("Expected default namespace 'mgv', got %q", cfg.Namespace)
	}
	if cfg.Subsystem != "ganymede" {
		t.Errorf("Expected default subsystem 'ganymede', got %q", cfg.Subsystem)
	}
	if len(cfg.TaskDurationBuckets) == 0 {
		t.Error("Expected default task duration buckets")
	}
}

// TestCollector_RecordResolutionRun tests resolution run recording
func TestCollector_RecordResolutionRun(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	tests := []struct {
		name     string
		outcome  string
		duration time.Duration
	}{
		{
			name:     "successful run",
			outcome:  "ok",
			duration: 12 * time.Millisecond,
		},
		{
			name:     "failed run",
			outcome:  "failed",
			duration: 5 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordResolutionRun(tt.outcome, tt.duration)

			count := testutil.ToFloat64(collector.resolutionMetrics.runsTotal.WithLabelValues(tt.outcome))
			if count < 1 {
				t.Errorf("Expected run counter >= 1, got %f", count)
			}
		})
	}
}

// TestCollector_ResolutionEntryAndErrors tests per-entry and error recording
func TestCollector_ResolutionEntryAndErrors(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("record entry statuses", func(t *testing.T) {
		collector.RecordEntryResolution("resolved")
		collector.RecordEntryResolution("resolved")
		collector.RecordEntryResolution("failed")

		resolved := testutil.ToFloat64(collector.resolutionMetrics.entriesTotal.WithLabelValues("resolved"))
		if resolved != 2 {
			t.Errorf("Expected 2 resolved entries, got %f", resolved)
		}

		failed := testutil.ToFloat64(collector.resolutionMetrics.entriesTotal.WithLabelValues("failed"))
		if failed != 1 {
			t.Errorf("Expected 1 failed entry, got %f", failed)
		}
	})

	t.Run("record error codes", func(t *testing.T) {
		collector.RecordResolutionError("unresolved_reference")
		collector.RecordResolutionError("circular_reference")

		count := testutil.ToFloat64(collector.resolutionMetrics.errorsTotal.WithLabelValues("circular_reference"))
		if count < 1 {
			t.Errorf("Expected error count >= 1, got %f", count)
		}
	})
}

// TestCollector_UpdatePlan tests plan gauge updates
func TestCollector_UpdatePlan(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	collector.UpdatePlan("abc123def456", 10, 2)

	active := testutil.ToFloat64(collector.resolutionMetrics.activeEntries)
	if active != 10 {
		t.Errorf("Expected active=10, got %f", active)
	}

	disabled := testutil.ToFloat64(collector.resolutionMetrics.disabledEntries)
	if disabled != 2 {
		t.Errorf("Expected disabled=2, got %f", disabled)
	}

	info := testutil.ToFloat64(collector.resolutionMetrics.planInfo.WithLabelValues("abc123def456"))
	if info != 1 {
		t.Errorf("Expected plan info=1, got %f", info)
	}

	// A new version replaces the old info series
	collector.UpdatePlan("fresh0000beef", 11, 1)

	if got := testutil.ToFloat64(collector.resolutionMetrics.planInfo.WithLabelValues("fresh0000beef")); got != 1 {
		t.Errorf("Expected new plan info=1, got %f", got)
	}

	// Old series should be gone after Reset; a fresh lookup reads 0
	if got := testutil.ToFloat64(collector.resolutionMetrics.planInfo.WithLabelValues("abc123def456")); got != 0 {
		t.Errorf("Expected old plan info=0 after update, got %f", got)
	}
}

// TestCollector_RecordTask tests pipeline task recording
func TestCollector_RecordTask(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	tests := []struct {
		name     string
		phase    string
		datatype string
		status   string
		duration time.Duration
	}{
		{
			name:     "successful download",
			phase:    "download",
			datatype: "assembly",
			status:   "success",
			duration: 90 * time.Second,
		},
		{
			name:     "failed import",
			phase:    "import",
			datatype: "models",
			status:   "failed",
			duration: 4 * time.Second,
		},
		{
			name:     "skipped deploy",
			phase:    "deploy",
			datatype: "orthology",
			status:   "skipped",
			duration: 2 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordTask(tt.phase, tt.datatype, tt.status, tt.duration)

			count := testutil.ToFloat64(collector.pipelineMetrics.tasksTotal.WithLabelValues(tt.phase, tt.datatype, tt.status))
			if count < 1 {
				t.Errorf("Expected task counter >= 1, got %f", count)
			}
		})
	}
}

// TestCollector_TaskInFlight tests the in-flight gauge
func TestCollector_TaskInFlight(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	collector.TaskStarted("download")
	collector.TaskStarted("download")

	inFlight := testutil.ToFloat64(collector.pipelineMetrics.tasksInFlight.WithLabelValues("download"))
	if inFlight != 2 {
		t.Errorf("Expected 2 in-flight tasks, got %f", inFlight)
	}

	collector.TaskDone("download")

	inFlight = testutil.ToFloat64(collector.pipelineMetrics.tasksInFlight.WithLabelValues("download"))
	if inFlight != 1 {
		t.Errorf("Expected 1 in-flight task, got %f", inFlight)
	}
}

// TestCollector_RecordTaskBytes tests byte recording with cardinality limiting
func TestCollector_RecordTaskBytes(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	collector.RecordTaskBytes("GRCm39", 1024)
	collector.RecordTaskBytes("GRCm39", 2048)

	got := testutil.ToFloat64(collector.pipelineMetrics.bytesFetched.WithLabelValues("GRCm39"))
	if got != 3072 {
		t.Errorf("Expected 3072 bytes, got %f", got)
	}

	// Zero-byte records are ignored
	collector.RecordTaskBytes("GRCm39", 0)
	got = testutil.ToFloat64(collector.pipelineMetrics.bytesFetched.WithLabelValues("GRCm39"))
	if got != 3072 {
		t.Errorf("Expected bytes unchanged at 3072, got %f", got)
	}
}

// TestCollector_LedgerMetrics tests ledger metric recording
func TestCollector_LedgerMetrics(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	t.Run("record write", func(t *testing.T) {
		collector.RecordLedgerWrite("ok", 2*time.Millisecond)
		count := testutil.ToFloat64(collector.ledgerMetrics.writesTotal.WithLabelValues("ok"))
		if count < 1 {
			t.Errorf("Expected write count >= 1, got %f", count)
		}
	})

	t.Run("record pruned", func(t *testing.T) {
		collector.RecordLedgerPruned(17)
		count := testutil.ToFloat64(collector.ledgerMetrics.prunedTotal)
		if count != 17 {
			t.Errorf("Expected 17 pruned records, got %f", count)
		}
	})

	t.Run("record archive", func(t *testing.T) {
		collector.RecordLedgerArchive("s3", "ok")
		count := testutil.ToFloat64(collector.ledgerMetrics.archivesTotal.WithLabelValues("s3", "ok"))
		if count < 1 {
			t.Errorf("Expected archive count >= 1, got %f", count)
		}
	})

	t.Run("record export", func(t *testing.T) {
		collector.RecordLedgerExport("csv")
		count := testutil.ToFloat64(collector.ledgerMetrics.exportsTotal.WithLabelValues("csv"))
		if count < 1 {
			t.Errorf("Expected export count >= 1, got %f", count)
		}
	})
}

// TestCollector_Disabled tests that metrics are not recorded when disabled
func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	// These should not panic
	collector.RecordResolutionRun("ok", time.Millisecond)
	collector.RecordEntryResolution("resolved")
	collector.RecordResolutionError("unresolved_reference")
	collector.UpdatePlan("v1", 5, 0)
	collector.RecordTask("download", "assembly", "success", time.Second)
	collector.RecordTaskBytes("GRCm39", 1024)
	collector.RecordLedgerWrite("ok", time.Millisecond)

	// Nothing should have been recorded
	count := testutil.ToFloat64(collector.resolutionMetrics.runsTotal.WithLabelValues("ok"))
	if count != 0 {
		t.Errorf("Expected no runs recorded when disabled, got %f", count)
	}
}

// TestCardinalityLimiter tests cardinality limiting
func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(3)

	// First 3 should be allowed
	if !limiter.Allow("label1") {
		t.Error("Expected first label to be allowed")
	}
	if !limiter.Allow("label2") {
		t.Error("Expected second label to be allowed")
	}
	if !limiter.Allow("label3") {
		t.Error("Expected third label to be allowed")
	}

	// Fourth should be rejected
	if limiter.Allow("label4") {
		t.Error("Expected fourth label to be rejected")
	}

	// Existing labels should still be allowed
	if !limiter.Allow("label1") {
		t.Error("Expected existing label to be allowed")
	}

	// Check count
	if limiter.Count() != 3 {
		t.Errorf("Expected count=3, got %d", limiter.Count())
	}
}

// TestCollector_BytesCardinalityOverflow tests genome label aggregation
func TestCollector_BytesCardinalityOverflow(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)
	collector.cardinalityLimiter = NewCardinalityLimiter(2)

	collector.RecordTaskBytes("genome-a", 100)
	collector.RecordTaskBytes("genome-b", 100)
	collector.RecordTaskBytes("genome-c", 100) // over the limit

	other := testutil.ToFloat64(collector.pipelineMetrics.bytesFetched.WithLabelValues("other"))
	if other != 100 {
		t.Errorf("Expected overflow genome to aggregate into 'other', got %f", other)
	}
}

// TestCollector_ConcurrentRecording tests thread-safety
func TestCollector_ConcurrentRecording(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	done := make(chan bool)

	// Spawn multiple goroutines recording metrics
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				collector.RecordTask("download", "assembly", "success", time.Second)
				collector.RecordEntryResolution("resolved")
				collector.RecordLedgerWrite("ok", time.Millisecond)
			}
			done <- true
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}

	// Verify we got all tasks recorded
	count := testutil.ToFloat64(collector.pipelineMetrics.tasksTotal.WithLabelValues("download", "assembly", "success"))
	if count != 1000 {
		t.Errorf("Expected 1000 tasks, got %f", count)
	}
}
