package ledger

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Task status values recorded in the ledger.
const (
	// StatusPending marks a record created before its task ran.
	StatusPending = "pending"

	// StatusOK marks a task that completed successfully.
	StatusOK = "ok"

	// StatusFailed marks a task that returned an error.
	StatusFailed = "failed"

	// StatusSkipped marks a task the runner skipped, either because the
	// state store already recorded it complete or because its genome was
	// filtered out of the run.
	StatusSkipped = "skipped"
)

// BuildRecord is the audit trail for a single pipeline task: one
// (genome, datatype, phase) unit of work in one build run. Records capture
// plan provenance so any output file can be traced back to the exact spec
// revision that produced it.
type BuildRecord struct {
	// Identity
	ID    string `json:"id"`     // UUID v4
	RunID string `json:"run_id"` // Plan emission run

	// Plan provenance
	SpecPath    string `json:"spec_path"`
	SpecHash    string `json:"spec_hash"`    // SHA-256 of the raw spec bytes
	PlanVersion string `json:"plan_version"` // Plan fingerprint

	// Task identity
	Genome   string `json:"genome"`
	Datatype string `json:"datatype"` // assembly, models, orthology
	Phase    string `json:"phase"`    // download, import, deploy
	Adapter  string `json:"adapter"`  // Adapter that ran the task

	// Outcome
	Status string `json:"status"`

	// Timing
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`

	// Transfer. SourceHost is the remote host only, never the full URL,
	// since download URLs can embed credentials.
	BytesFetched int64  `json:"bytes_fetched"`
	SourceHost   string `json:"source_host"`

	// Error info
	Error string `json:"error"`

	// Mode
	DryRun bool `json:"dry_run"`

	// RecordedAt is when the record was handed to the recorder.
	RecordedAt time.Time `json:"recorded_at"`
}

// NewRecord creates a pending build record for one pipeline task with a
// fresh UUID and the start clock running.
func NewRecord(runID, genome, datatype, phase string) *BuildRecord {
	return &BuildRecord{
		ID:        uuid.New().String(),
		RunID:     runID,
		Genome:    genome,
		Datatype:  datatype,
		Phase:     phase,
		Status:    StatusPending,
		StartedAt: time.Now(),
	}
}

// Finish stamps the record with its terminal status, finish time, and
// duration. A non-nil err is captured as the record's error text.
func (r *BuildRecord) Finish(status string, err error) {
	r.Status = status
	r.FinishedAt = time.Now()
	if !r.StartedAt.IsZero() {
		r.Duration = r.FinishedAt.Sub(r.StartedAt)
	}
	if err != nil {
		r.Error = err.Error()
	}
}

// Query defines filter parameters for querying build records.
type Query struct {
	// Time range (on StartedAt)
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	RunID    string `json:"run_id,omitempty"`
	Genome   string `json:"genome,omitempty"`
	Datatype string `json:"datatype,omitempty"`
	Phase    string `json:"phase,omitempty"`
	Adapter  string `json:"adapter,omitempty"`
	Status   string `json:"status,omitempty"`

	// DryRun filters on the dry-run flag when set.
	DryRun *bool `json:"dry_run,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "started_at", "duration", "bytes_fetched"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for ledger storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists a build record.
	// Returns an error if the record cannot be written.
	Store(ctx context.Context, record *BuildRecord) error

	// Query retrieves build records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*BuildRecord, error)

	// QueryStream returns a channel of build records for memory-efficient
	// streaming. Use this for large result sets to avoid loading
	// everything in memory.
	//
	// The channels are closed when the query completes or errors. Callers
	// should read from both channels until they are closed.
	QueryStream(ctx context.Context, query *Query) (<-chan *BuildRecord, <-chan error, error)

	// Count returns the number of build records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes build records matching the query filters and returns
	// the number of records deleted. Used for retention enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}

// Exporter defines the interface for exporting build records to various formats.
type Exporter interface {
	// Export writes build records to the provided writer in the exporter's
	// format. Returns an error if the export fails.
	Export(ctx context.Context, records []*BuildRecord, w io.Writer) error
}
