/*
Package cli provides command-line interface utilities for the mgv command.

The cli package includes output formatters, progress reporters, error
types with exit-code mapping, and signal handling helpers shared by the
mgv subcommands.

Output Formatting:

Command results can be rendered as text, JSON, YAML, or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

For long-running operations, use the progress reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(totalTasks)
	for i := 0; i < totalTasks; i++ {
		// Do work
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
