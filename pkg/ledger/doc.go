// Package ledger provides the build audit trail for pipeline runs. Every
// (genome, datatype, phase) task a run executes is recorded as an immutable
// build record, so any published file can be traced back to the spec
// revision, plan version, and adapter that produced it.
//
// # Architecture
//
// The ledger consists of three layers:
//
//  1. Recorder - accepts records from the pipeline without blocking it
//  2. Storage Backend - persists records (SQLite, PostgreSQL, memory)
//  3. Retention - prunes old records on a schedule, optionally archiving
//     them first
//
// # Build Records
//
// Each record captures:
//   - Plan provenance (spec path, spec SHA-256, plan fingerprint, run id)
//   - Task identity (genome, datatype, phase, adapter)
//   - Outcome (status, error text, dry-run flag)
//   - Timing (started, finished, duration)
//   - Transfer volume (bytes fetched, remote host)
//
// # Recording Flow
//
// Records are written asynchronously so the pipeline never waits on the
// database:
//
//	Runner task completes
//	     ↓
//	Recorder.Record (buffered channel, non-blocking)
//	     ↓
//	Background worker
//	     ↓
//	Storage Backend (WAL mode)
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:    "data/ledger.db",
//	    WALMode: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, recorder.DefaultConfig())
//	defer rec.Close()
//
//	record := ledger.NewRecord(runID, "mus_musculus_grcm39", "models", "download")
//	record.Adapter = "UrlDownloader"
//	record.Finish(ledger.StatusOK, nil)
//	rec.Record(record)
//
// # Querying
//
//	query := &ledger.Query{
//	    Genome: "mus_musculus_grcm39",
//	    Status: ledger.StatusFailed,
//	    Limit:  100,
//	}
//	records, err := store.Query(ctx, query)
//
// # Retention
//
// Old records are pruned by age or total count:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *",
//	})
//	pruner.Start(ctx)
//	defer pruner.Stop()
//
// With archiving enabled, records are exported to the filesystem or an
// S3-compatible bucket before deletion.
//
// # Thread Safety
//
// All ledger types are safe for concurrent use. The recorder serializes
// writes through a single worker; storage backends take their own locks.
package ledger
