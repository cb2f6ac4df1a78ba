package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"mgv-hq/ganymede/pkg/ledger"
)

// CSVExporter exports build records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes build records to the provided writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*ledger.BuildRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header row if configured
	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return ledger.NewExportError("csv", len(records), err)
		}
	}

	// Write data rows
	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return ledger.NewExportError("csv", len(records), err)
		}
	}

	return nil
}

// ExportStream exports build records from a channel to CSV format.
// This is memory-efficient for large result sets as it streams records
// one at a time instead of loading all records in memory.
//
// The CSV writer flushes periodically to provide progress feedback
// for long-running exports.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *ledger.BuildRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header if configured
	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return ledger.NewExportError("csv", 0, err)
		}
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				// Channel closed - flush and return
				writer.Flush()
				if err := writer.Error(); err != nil {
					return ledger.NewExportError("csv", recordCount, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return ledger.NewExportError("csv", recordCount, err)
			}

			recordCount++

			// Flush periodically (every 100 records)
			// This provides progress feedback for long exports
			if recordCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return ledger.NewExportError("csv", recordCount, err)
				}
			}
		}
	}
}

// headerRow returns the CSV header row. Column order matches the storage
// schema.
func headerRow() []string {
	return []string{
		"id", "run_id",
		"spec_path", "spec_hash", "plan_version",
		"genome", "datatype", "phase", "adapter",
		"status",
		"started_at", "finished_at", "duration_ms",
		"bytes_fetched", "source_host",
		"error",
		"dry_run",
		"recorded_at",
	}
}

// recordToRow converts a build record to a CSV row.
func recordToRow(record *ledger.BuildRecord) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}

	return []string{
		record.ID,
		record.RunID,
		record.SpecPath,
		record.SpecHash,
		record.PlanVersion,
		record.Genome,
		record.Datatype,
		record.Phase,
		record.Adapter,
		record.Status,
		formatTime(record.StartedAt),
		formatTime(record.FinishedAt),
		fmt.Sprintf("%d", record.Duration.Milliseconds()),
		fmt.Sprintf("%d", record.BytesFetched),
		record.SourceHost,
		record.Error,
		fmt.Sprintf("%t", record.DryRun),
		formatTime(record.RecordedAt),
	}
}
