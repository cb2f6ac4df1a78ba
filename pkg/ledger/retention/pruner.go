package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/telemetry/metrics"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain build records.
	// 0 means keep records forever (no age-based pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchiveBeforeDelete enables archiving records before deletion.
	// Requires an archiver attached with WithArchiver.
	ArchiveBeforeDelete bool

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       90,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		MaxRecords:          0,
	}
}

// Pruner enforces retention policies on build records.
type Pruner struct {
	storage   ledger.Storage
	config    *Config
	archiver  Archiver
	metrics   *metrics.Collector
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage ledger.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "ledger.retention"),
	}

	// Create scheduler
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// WithArchiver attaches an archive backend used when ArchiveBeforeDelete
// is set. Call it before Start.
func (p *Pruner) WithArchiver(archiver Archiver) *Pruner {
	p.archiver = archiver
	return p
}

// WithMetrics attaches a metrics collector so pruning and archiving show
// up in Prometheus. Call it before Start.
func (p *Pruner) WithMetrics(collector *metrics.Collector) *Pruner {
	p.metrics = collector
	return p
}

// Prune deletes build records older than the retention period or
// exceeding the max record count.
//
// Pruning happens in two phases:
//  1. Age-based: Delete records older than retention_days
//  2. Count-based: If total records > max_records, delete oldest
//
// Both can run together (e.g., delete old records AND limit total count).
// Returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.ArchiveBeforeDelete && p.archiver == nil {
		p.logger.Warn("archive before delete requested but no archiver configured")
	}

	// Phase 1: Prune by retention period
	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned records by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	// Phase 2: Prune by max record count
	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if p.metrics != nil && totalDeleted > 0 {
		p.metrics.RecordLedgerPruned(int(totalDeleted))
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("ledger pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	// Query for records that started before the cutoff
	query := &ledger.Query{
		EndTime: &cutoff,
	}

	// Archive before delete if configured
	if p.config.ArchiveBeforeDelete && p.archiver != nil {
		if err := p.archiveByQuery(ctx, query); err != nil {
			return 0, ledger.NewRetentionError(p.config.RetentionDays, err)
		}
	}

	// Delete old records
	deleted, err := p.storage.Delete(ctx, query)
	if err != nil {
		return 0, ledger.NewRetentionError(p.config.RetentionDays, err)
	}

	return deleted, nil
}

// pruneByCount deletes oldest records if total count exceeds max_records.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	// Count total records
	count, err := p.storage.Count(ctx, &ledger.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	if count <= p.config.MaxRecords {
		p.logger.Debug("record count within limit",
			"current", count,
			"max", p.config.MaxRecords,
		)
		return 0, nil
	}

	toDelete := count - p.config.MaxRecords

	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", toDelete,
	)

	// Fetch exactly the oldest records past the limit. Every storage
	// backend sorts, so there is no need to load the whole ledger.
	oldest, err := p.storage.Query(ctx, &ledger.Query{
		SortBy:    "started_at",
		SortOrder: "asc",
		Limit:     int(toDelete),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query oldest records: %w", err)
	}

	if len(oldest) == 0 {
		p.logger.Debug("no records found to delete")
		return 0, nil
	}

	// Cutoff is the start time of the newest record slated for deletion.
	// Records sharing that exact start time are pruned together.
	cutoff := oldest[len(oldest)-1].StartedAt

	p.logger.Debug("calculated cutoff time for count-based pruning",
		"cutoff_time", cutoff,
		"records_to_delete", len(oldest),
	)

	// Archive if configured
	if p.config.ArchiveBeforeDelete && p.archiver != nil {
		if err := p.archiveRecords(ctx, oldest); err != nil {
			return 0, fmt.Errorf("archive failed: %w", err)
		}
	}

	deleteQuery := &ledger.Query{
		EndTime: &cutoff,
	}

	deleted, err := p.storage.Delete(ctx, deleteQuery)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}

	return deleted, nil
}

// archiveByQuery archives every record matching the query.
func (p *Pruner) archiveByQuery(ctx context.Context, query *ledger.Query) error {
	count, err := p.storage.Count(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to count records for archiving: %w", err)
	}
	if count == 0 {
		p.logger.Debug("no records to archive")
		return nil
	}

	// Re-issue the query with an explicit limit so no matching record is
	// left out of the archive.
	full := *query
	full.Limit = int(count)

	records, err := p.storage.Query(ctx, &full)
	if err != nil {
		return fmt.Errorf("failed to query records for archiving: %w", err)
	}

	return p.archiveRecords(ctx, records)
}

// archiveRecords hands records to the configured archiver.
func (p *Pruner) archiveRecords(ctx context.Context, records []*ledger.BuildRecord) error {
	if len(records) == 0 {
		return nil
	}

	p.logger.Info("archiving build records before deletion",
		"backend", p.archiver.Name(),
		"record_count", len(records),
	)

	destination, err := p.archiver.Archive(ctx, records)

	if p.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		p.metrics.RecordLedgerArchive(p.archiver.Name(), status)
	}

	if err != nil {
		return ledger.NewArchiveError(p.archiver.Name(), err)
	}

	p.logger.Info("build records archived before deletion",
		"destination", destination,
		"record_count", len(records),
	)

	return nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the daemon.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
