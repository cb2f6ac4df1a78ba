// Package retention provides retention policy enforcement for build
// records.
//
// # Retention Policy
//
// The retention package automatically prunes old build records:
//
//   - Configurable retention period (days)
//   - Scheduled pruning (cron expression)
//   - Optional archiving before deletion (filesystem or S3)
//   - Configurable max record count
//
// # Basic Usage
//
//	// Create retention pruner with filesystem archiving
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	    ArchiveBeforeDelete: true,
//	}).WithArchiver(retention.NewFSArchiver("data/archives"))
//
//	// Start background pruning
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
//
//	// Check next scheduled pruning time
//	if next := pruner.NextPruning(); next != nil {
//	    log.Printf("Next pruning scheduled for: %s", next)
//	}
//
// # Manual Pruning
//
// You can also trigger pruning manually:
//
//	deleted, err := pruner.Prune(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("Deleted %d old build records", deleted)
//
// # Archiving
//
// If archiving is enabled, build records are exported to JSON before
// deletion through an Archiver backend:
//
//   - FSArchiver writes timestamped files to a local directory
//   - S3Archiver uploads to any S3-compatible object store
//
// # Retention Period
//
// The retention period is specified in days:
//
//   - 0 days: Keep records forever (no age-based pruning)
//   - 90 days: Delete records older than 90 days (default)
//
// # Scheduling
//
// The pruner runs on a cron schedule:
//
//   - "0 3 * * *": Daily at 3 AM (default)
//   - "0 0 * * 0": Weekly on Sunday at midnight
//   - "0 */6 * * *": Every 6 hours
//
// If no schedule is configured (empty PruneSchedule), the scheduler does
// nothing and Start() returns immediately without error.
package retention
