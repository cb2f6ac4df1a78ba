package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"mgv-hq/ganymede/pkg/cli"
	"mgv-hq/ganymede/pkg/ledger/recorder"
	"mgv-hq/ganymede/pkg/pipeline"
	"mgv-hq/ganymede/pkg/telemetry/tracing"
)

var buildFlags struct {
	genome string
	phases []string
	types  []string
	dryRun bool
	force  bool
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Resolve the spec and run the build pipeline",
	Long: `Resolve the configured build spec and run the pipeline over the plan.

Each selected genome runs download, import, and deploy per declared data
type (assembly, models, orthology). Phases within one (genome, datatype)
group run in order; groups run concurrently up to pipeline.workers.

The stock binary registers only the logging adapter; site builds register
their real source adapters. Dry runs route every task through the logging
adapter, so they work everywhere.

Every task lands in the build ledger (when enabled), and completed tasks
are skipped on re-runs unless --force is given.

Examples:
  # Dry-run the full pipeline
  mgv build --dry-run

  # Build one genome
  mgv build --genome mus_musculus

  # Re-download assemblies for all mouse strains
  mgv build --genome 'mus_.*' --types assembly --phases download --force`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildFlags.genome, "genome", "", "regular expression selecting genomes to build")
	buildCmd.Flags().StringSliceVar(&buildFlags.phases, "phases", nil, "phases to run (download, import, deploy)")
	buildCmd.Flags().StringSliceVar(&buildFlags.types, "types", nil, "data types to build (assembly, models, orthology)")
	buildCmd.Flags().BoolVar(&buildFlags.dryRun, "dry-run", false, "log tasks instead of running them")
	buildCmd.Flags().BoolVar(&buildFlags.force, "force", false, "re-run tasks already marked complete")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}

	if buildFlags.genome != "" {
		cfg.Pipeline.Genome = buildFlags.genome
	}
	if len(buildFlags.phases) > 0 {
		cfg.Pipeline.Phases = buildFlags.phases
	}
	if len(buildFlags.types) > 0 {
		cfg.Pipeline.Types = buildFlags.types
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Pipeline.DryRun = buildFlags.dryRun
	}
	if cmd.Flags().Changed("force") {
		cfg.Pipeline.Force = buildFlags.force
	}

	if err := initSlog(cfg); err != nil {
		return err
	}

	ctx := cli.SetupSignalHandler()

	// Resolve the spec into the plan the pipeline consumes.
	source, err := newSpecSource(cfg)
	if err != nil {
		return err
	}
	planner, err := newPlanner(cfg, source)
	if err != nil {
		return err
	}
	p, err := planner.Rebuild(ctx)
	if p == nil {
		return cli.NewCommandError("build", err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠  Building from a partial plan:\n%v\n", err)
	}

	logger, err := newStructuredLogger(cfg)
	if err != nil {
		return err
	}

	registry := pipeline.NewRegistry()
	registry.Register(pipeline.NewLogAdapter())

	runner := pipeline.NewRunner(cfg, registry).WithLogger(logger)

	if cfg.Ledger.Enabled {
		store, err := openLedgerStorage(cfg, "")
		if err != nil {
			return err
		}
		defer store.Close()
		rec := recorder.NewRecorder(store, &recorder.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Ledger.Recorder.Buffer,
			WriteTimeout: cfg.Ledger.Recorder.WriteTimeout,
		})
		// LIFO: the recorder drains before the storage closes.
		defer rec.Close()
		runner.WithRecorder(rec)
	}

	if !cfg.Pipeline.DryRun {
		state, err := pipeline.NewStateStore(cfg.Pipeline.StatePath)
		if err != nil {
			return fmt.Errorf("failed to open pipeline state store: %w", err)
		}
		defer state.Close()
		runner.WithState(state)
	}

	if cfg.Telemetry.Tracing.Enabled {
		tracer, err := tracing.New(&cfg.Telemetry.Tracing)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			if err := tracer.Shutdown(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "⚠  Tracer shutdown: %v\n", err)
			}
		}()
		runner.WithTracer(tracer)
	}

	result, err := runner.Run(ctx, p)
	if err != nil {
		return cli.NewCommandError("build", err)
	}

	printBuildResult(result)

	if rerr := result.Err(); rerr != nil {
		return cli.NewCommandError("build", rerr)
	}
	return nil
}

func printBuildResult(result *pipeline.Result) {
	fmt.Println()
	if result.DryRun {
		fmt.Println("Dry run (no tasks executed).")
	}
	fmt.Printf("Run ID: %s\n", result.RunID)
	if result.PlanVersion != "" {
		fmt.Printf("Plan version: %s\n", result.PlanVersion)
	}
	fmt.Printf("Duration: %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Tasks: %d total, %d succeeded, %d failed, %d skipped\n",
		result.Total, result.Succeeded, result.Failed, result.Skipped)
	if result.GenomesSkipped > 0 {
		fmt.Printf("Genomes excluded by selection: %d\n", result.GenomesSkipped)
	}

	if len(result.Errors) > 0 {
		fmt.Println("\nFailures:")
		display := result.Errors
		if len(display) > 10 {
			display = display[:10]
		}
		for _, err := range display {
			fmt.Printf("  ✗ %v\n", err)
		}
		if len(result.Errors) > 10 {
			fmt.Printf("  ... and %d more failures\n", len(result.Errors)-10)
		}
	}

	if result.Failed == 0 {
		fmt.Println("✓ Build complete")
	}
}
