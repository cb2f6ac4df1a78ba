package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/telemetry/metrics"
)

// Config contains configuration for the build record recorder.
type Config struct {
	// Enabled enables build record recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes build records to storage asynchronously so pipeline
// workers never block on ledger writes. Records are enqueued on a buffered
// channel and drained by a background worker.
type Recorder struct {
	storage    ledger.Storage
	config     *Config
	metrics    *metrics.Collector
	recordChan chan *ledger.BuildRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates a new recorder with the provided storage backend and
// configuration and starts its background writer.
func NewRecorder(storage ledger.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *ledger.BuildRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "ledger.recorder"),
	}

	// Start background worker to drain channel
	r.wg.Add(1)
	go r.worker()

	r.logger.Info("build record recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// WithMetrics attaches a metrics collector so ledger writes show up in
// Prometheus. Call it before the first Record; the worker reads the
// collector without locking.
func (r *Recorder) WithMetrics(collector *metrics.Collector) *Recorder {
	r.metrics = collector
	return r
}

// Record enqueues a finished build record for asynchronous writing.
//
// This method returns immediately and does not block on storage writes.
// If the channel stays full past the write timeout the record is dropped
// and an error returned; a dropped audit row must never stall the build.
func (r *Recorder) Record(record *ledger.BuildRecord) error {
	if !r.config.Enabled {
		return nil
	}

	record.RecordedAt = time.Now()

	select {
	case r.recordChan <- record:
		r.logger.Debug("build record enqueued for writing",
			"record_id", record.ID,
			"genome", record.Genome,
			"phase", record.Phase,
		)

	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("build record channel full, dropping record",
			"record_id", record.ID,
			"genome", record.Genome,
			"phase", record.Phase,
			"channel_capacity", r.config.AsyncBuffer,
		)
		if r.metrics != nil {
			r.metrics.RecordLedgerWrite("dropped", 0)
		}
		return ledger.NewRecorderError(record.ID, context.DeadlineExceeded)

	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"genome", record.Genome,
			"phase", record.Phase,
		)
		return ledger.NewRecorderError(record.ID, context.Canceled)
	}

	return nil
}

// Close gracefully shuts down the recorder by draining the async channel
// and waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down build record recorder")

	// Signal shutdown
	close(r.done)

	// Wait for worker to finish draining channel
	r.wg.Wait()

	r.logger.Info("build record recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the record channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records from channel before exit
			r.logger.Info("draining record channel before shutdown",
				"pending_count", len(r.recordChan),
			)

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					// Channel is empty, we can exit
					r.logger.Info("record channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single build record to storage.
func (r *Recorder) writeRecord(record *ledger.BuildRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	err := r.storage.Store(ctx, record)
	duration := time.Since(start)

	if r.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.metrics.RecordLedgerWrite(status, duration)
	}

	if err != nil {
		r.logger.Error("failed to store build record",
			"record_id", record.ID,
			"genome", record.Genome,
			"phase", record.Phase,
			"error", err,
		)
		return
	}

	r.logger.Debug("build record written",
		"record_id", record.ID,
		"genome", record.Genome,
		"datatype", record.Datatype,
		"phase", record.Phase,
		"status", record.Status,
		"duration_ms", duration.Milliseconds(),
	)

	// Warn if write was slow
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow ledger write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
