package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mgv-hq/ganymede/pkg/cli"
	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/ledger/export"
)

var historyFlags struct {
	backend  string
	run      string
	genome   string
	datatype string
	phase    string
	status   string
	since    string
	until    string
	limit    int
	offset   int
	format   string
	output   string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the build ledger",
	Long: `Query the build ledger for past pipeline tasks.

Every task a build run executes leaves one record in the ledger: which
genome and datatype, which phase and adapter, how long it took, how many
bytes it fetched, and how it ended. Records carry the spec hash and plan
version that produced them, so any output file can be traced back to the
exact spec revision it came from.

Examples:
  # Last 100 records
  mgv history

  # Failures for one genome
  mgv history --genome mouse --status failed

  # Everything from a single run
  mgv history --run 9f3c2a1e-8b4d-4f6a-9c7e-2d5b8a1f0e3c

  # A date window, exported as CSV
  mgv history --since 2025-06-01 --until 2025-06-30 --format csv -o june.csv`,
	RunE: queryHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.backend, "backend", "", "Ledger backend override (sqlite, postgres, memory)")
	historyCmd.Flags().StringVar(&historyFlags.run, "run", "", "Filter by run ID")
	historyCmd.Flags().StringVar(&historyFlags.genome, "genome", "", "Filter by genome name")
	historyCmd.Flags().StringVar(&historyFlags.datatype, "datatype", "", "Filter by datatype (assembly, models, orthology)")
	historyCmd.Flags().StringVar(&historyFlags.phase, "phase", "", "Filter by phase (download, import, deploy)")
	historyCmd.Flags().StringVar(&historyFlags.status, "status", "", "Filter by status (ok, failed, skipped)")
	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "Records started at or after this time (RFC3339 or YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&historyFlags.until, "until", "", "Records started at or before this time (RFC3339 or YYYY-MM-DD)")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 100, "Maximum records to return")
	historyCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "Records to skip (for pagination)")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "Output format (text, json, csv)")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "", "Write output to file instead of stdout")
}

func queryHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}

	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}

	// Keep stdout clean for the records.
	if !verbose {
		cfg.Telemetry.Logging.Level = "warn"
	}
	if err := initSlog(cfg); err != nil {
		return err
	}

	store, err := openLedgerStorage(cfg, historyFlags.backend)
	if err != nil {
		return err
	}
	defer store.Close()

	query := &ledger.Query{
		RunID:    historyFlags.run,
		Genome:   historyFlags.genome,
		Datatype: historyFlags.datatype,
		Phase:    historyFlags.phase,
		Status:   historyFlags.status,
		Limit:    historyFlags.limit,
		Offset:   historyFlags.offset,
	}

	if historyFlags.since != "" {
		t, err := parseTimeFlag(historyFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		query.StartTime = &t
	}
	if historyFlags.until != "" {
		t, err := parseTimeFlag(historyFlags.until)
		if err != nil {
			return fmt.Errorf("invalid --until value: %w", err)
		}
		query.EndTime = &t
	}

	// Storage enforces the same cap, but clamping here keeps the
	// pagination hint honest.
	if max := cfg.Ledger.Export.MaxExportSize; max > 0 && query.Limit > max {
		query.Limit = max
	}

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if historyFlags.output != "" {
		output, err = os.Create(historyFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch format {
	case cli.FormatJSON:
		exporter := export.NewJSONExporter(cfg.Ledger.Export.JSONPretty)
		if err := exporter.Export(ctx, records, output); err != nil {
			return cli.NewCommandError("history", fmt.Errorf("export failed: %w", err))
		}
	case cli.FormatCSV:
		exporter := export.NewCSVExporter(cfg.Ledger.Export.CSVIncludeHeader)
		if err := exporter.Export(ctx, records, output); err != nil {
			return cli.NewCommandError("history", fmt.Errorf("export failed: %w", err))
		}
	case cli.FormatText:
		printHistoryText(output, records, query)
	default:
		return fmt.Errorf("unsupported format for history: %s", format)
	}

	if historyFlags.output != "" {
		fmt.Printf("✓ %d records written to %s\n", len(records), historyFlags.output)
	}
	return nil
}

// parseTimeFlag accepts RFC3339 timestamps and bare dates. A bare date
// means midnight UTC of that day.
func parseTimeFlag(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want RFC3339 or YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

func printHistoryText(output *os.File, records []*ledger.BuildRecord, query *ledger.Query) {
	if query.StartTime != nil || query.EndTime != nil {
		start, end := "beginning", "now"
		if query.StartTime != nil {
			start = query.StartTime.Format(time.RFC3339)
		}
		if query.EndTime != nil {
			end = query.EndTime.Format(time.RFC3339)
		}
		fmt.Fprintf(output, "Time range: %s to %s\n", start, end)
	}
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Run: %s\n", record.RunID)
		fmt.Fprintf(output, "Started: %s\n", record.StartedAt.Format(time.RFC3339))
		fmt.Fprintf(output, "Task: %s/%s %s\n", record.Genome, record.Datatype, record.Phase)
		if record.Adapter != "" {
			fmt.Fprintf(output, "Adapter: %s\n", record.Adapter)
		}
		fmt.Fprintf(output, "Status: %s\n", formatStatus(record.Status))
		if record.Duration > 0 {
			fmt.Fprintf(output, "Duration: %s\n", record.Duration.Round(time.Millisecond))
		}
		if record.BytesFetched > 0 {
			fmt.Fprintf(output, "Fetched: %s", formatBytes(record.BytesFetched))
			if record.SourceHost != "" {
				fmt.Fprintf(output, " from %s", record.SourceHost)
			}
			fmt.Fprintln(output)
		}
		if record.Error != "" {
			fmt.Fprintf(output, "Error: %s\n", record.Error)
		}
		if record.DryRun {
			fmt.Fprintln(output, "Dry run: yes")
		}

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}
}

func formatStatus(status string) string {
	switch status {
	case ledger.StatusOK:
		return "✓ " + status
	case ledger.StatusFailed:
		return "✗ " + status
	case ledger.StatusSkipped:
		return "⚠ " + status
	default:
		return status
	}
}

// formatBytes renders a byte count in the largest sensible unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
