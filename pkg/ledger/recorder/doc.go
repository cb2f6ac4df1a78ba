// Package recorder provides asynchronous build record recording for the
// pipeline. Workers hand finished records to the recorder and continue;
// the recorder owns the storage writes.
//
// # Recording Flow
//
//  1. Pipeline runner creates a pending record before a task runs
//  2. Task executes through its adapter
//  3. Runner stamps the record with status, duration, and transfer totals
//  4. Runner enqueues the record with Record() (non-blocking)
//  5. Background goroutine drains the channel and writes to storage
//
// # Basic Usage
//
//	rec := recorder.NewRecorder(store, &recorder.Config{
//	    Enabled: true,
//	    AsyncBuffer: 1000,
//	    WriteTimeout: 5 * time.Second,
//	})
//	defer rec.Close()
//
//	record := ledger.NewRecord(runID, "mus_musculus_grcm39", "assembly", "download")
//	// ... task runs ...
//	record.Finish(ledger.StatusOK, nil)
//	rec.Record(record)
//
// # Async Recording
//
// The recorder uses a buffered channel and background goroutine:
//
//   - Record() enqueues to the channel (non-blocking)
//   - Background goroutine drains the channel and writes to storage
//   - Graceful shutdown drains the channel before exit (zero data loss)
//   - If the channel stays full past the write timeout the record is
//     dropped; ledger writes never stall the build
//
// # Thread Safety
//
// The recorder is thread-safe: Record() can be called from any number of
// pipeline workers, and the background goroutine is the only writer to
// storage.
package recorder
