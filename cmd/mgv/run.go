package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"mgv-hq/ganymede/pkg/cli"
	"mgv-hq/ganymede/pkg/config"
	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/ledger/retention"
	"mgv-hq/ganymede/pkg/plan"
	"mgv-hq/ganymede/pkg/server"
	"mgv-hq/ganymede/pkg/telemetry/health"
	"mgv-hq/ganymede/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ganymede daemon",
	Long: `Start the Ganymede daemon with the specified configuration.

The daemon emits the build plan from the configured spec source, serves it
over HTTP (/plan), and keeps it fresh: a file watcher re-emits the plan
when the spec changes, and an optional cron schedule re-emits it
periodically so dynamic values like @@today roll over.

The daemon only resolves; it never runs the build pipeline. Use
'mgv build' for that.

Examples:
  # Start with default config
  mgv run

  # Start with custom config
  mgv run --config /etc/mgv/config.yaml

  # Override listen address
  mgv run --listen 0.0.0.0:8799

  # Validate config and spec without starting the daemon
  mgv run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and spec without starting the daemon")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if err := initSlog(cfg); err != nil {
		return err
	}

	source, err := newSpecSource(cfg)
	if err != nil {
		return err
	}
	planner, err := newPlanner(cfg, source)
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		p, err := planner.Rebuild(context.Background())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Printf("✓ Spec resolves: %d genomes active, %d disabled\n",
			len(p.Active), len(p.Disabled))
		return nil
	}

	printBanner(cfg)

	logger, err := newStructuredLogger(cfg)
	if err != nil {
		return err
	}

	registry := planner.Registry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Emit the initial plan. A bad spec at startup is not fatal: the
	// daemon keeps running so the watcher or schedule can pick up a fix,
	// and readiness stays degraded until a plan lands in the registry.
	if p, err := planner.Rebuild(ctx); err != nil {
		slog.Error("initial plan rebuild failed", "error", err)
		fmt.Printf("⚠  Initial plan rebuild failed: %v\n", err)
	} else {
		fmt.Printf("✓ Plan emitted (%d genomes, version %s)\n",
			len(p.Active), registry.GetVersion())
	}

	// The daemon holds the ledger for retention pruning and the readiness
	// probe; build records are written by 'mgv build', not here.
	var store ledger.Storage
	var pruner *retention.Pruner
	if cfg.Ledger.Enabled {
		store, err = openLedgerStorage(cfg, "")
		if err != nil {
			return err
		}
		defer store.Close()

		if cfg.Ledger.Retention.Schedule != "" {
			pruner = retention.NewPruner(store, &retention.Config{
				RetentionDays:       cfg.Ledger.Retention.Days,
				PruneSchedule:       cfg.Ledger.Retention.Schedule,
				ArchiveBeforeDelete: cfg.Ledger.Retention.Archive.Enabled,
				MaxRecords:          cfg.Ledger.Retention.MaxRecords,
			})
			if cfg.Ledger.Retention.Archive.Enabled {
				archiver, err := newArchiver(cfg)
				if err != nil {
					return err
				}
				pruner.WithArchiver(archiver)
			}
		}

		fmt.Printf("✓ Ledger initialized (%s)\n", cfg.Ledger.Backend)
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		if pruner != nil {
			pruner.WithMetrics(collector)
		}
	}

	if pruner != nil {
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				slog.Debug("ledger retention scheduler started", "next_pruning", next)
			}
		}
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	if cfg.Telemetry.Health.Enabled {
		checker.RegisterCheck(health.CheckSpecSource, server.SpecSourceCheck(source))
		checker.RegisterCheck(health.CheckRegistry, server.RegistryCheck(registry))
		if store != nil {
			checker.RegisterCheck(health.CheckLedger, server.LedgerCheck(store))
		}
	}

	srv := server.NewServer(&cfg.Server, registry).
		WithHealth(checker).
		WithVersion(Version, GitCommit, BuildDate).
		WithLogger(logger)
	if collector != nil {
		srv.WithMetrics(collector, cfg.Telemetry.Metrics.Path)
	}

	// Watch the spec file for changes. Git sources have no local file to
	// watch; the schedule covers them.
	if cfg.Spec.Watch && !cfg.Spec.Git.Enabled {
		watcher, err := plan.NewSpecWatcher(cfg.Spec.Path, cfg.Spec.DebounceInterval, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to create spec watcher: %w", err)
		}
		defer watcher.Stop()
		go func() {
			if err := watcher.Watch(ctx, func() error {
				_, err := planner.Rebuild(ctx)
				return err
			}); err != nil {
				slog.Error("spec watcher stopped", "error", err)
			}
		}()
		fmt.Printf("✓ Watching %s for changes\n", cfg.Spec.Path)
	}

	if cfg.Schedule.Enabled {
		c := cron.New()
		_, err := c.AddFunc(cfg.Schedule.Rebuild, func() {
			if _, err := planner.Rebuild(ctx); err != nil {
				slog.Error("scheduled plan rebuild failed", "error", err)
			}
		})
		if err != nil {
			return cli.NewConfigError("schedule.rebuild",
				fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule.Rebuild, err))
		}
		c.Start()
		defer c.Stop()
		fmt.Printf("✓ Scheduled rebuild: %s\n", cfg.Schedule.Rebuild)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	if err := waitForServerReady(srv, errChan, 5*time.Second); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Plan endpoint: http://%s/plan\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoints: http://%s/healthz http://%s/readyz\n",
		cfg.Server.ListenAddress, cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n",
			cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// The server handles SIGINT/SIGTERM itself; this select also catches
	// them so the daemon's own components shut down in order.
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Println("✓ Daemon stopped")
		return nil
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Daemon stopped")
		return nil
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("MGV Ganymede v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	if cfg.Spec.Git.Enabled {
		slog.Debug("spec source",
			"repository", cfg.Spec.Git.Repository,
			"branch", cfg.Spec.Git.Branch,
			"path", cfg.Spec.Git.Path,
		)
	} else {
		slog.Debug("spec source", "path", cfg.Spec.Path, "watch", cfg.Spec.Watch)
	}
	if cfg.Ledger.Enabled {
		slog.Debug("ledger enabled", "backend", cfg.Ledger.Backend)
	}
	if cfg.Schedule.Enabled {
		slog.Debug("scheduled rebuilds", "cron", cfg.Schedule.Rebuild)
	}
}

// newArchiver builds the archive destination for pruned ledger records.
func newArchiver(cfg *config.Config) (retention.Archiver, error) {
	switch cfg.Ledger.Retention.Archive.Backend {
	case "fs", "":
		return retention.NewFSArchiver(cfg.Ledger.Retention.Archive.Path), nil
	case "s3":
		archiver, err := retention.NewS3Archiver(&retention.S3Config{
			Endpoint:  cfg.Ledger.Retention.Archive.S3.Endpoint,
			Bucket:    cfg.Ledger.Retention.Archive.S3.Bucket,
			Prefix:    cfg.Ledger.Retention.Archive.S3.Prefix,
			Region:    cfg.Ledger.Retention.Archive.S3.Region,
			AccessKey: cfg.Ledger.Retention.Archive.S3.AccessKey,
			SecretKey: cfg.Ledger.Retention.Archive.S3.SecretKey,
			UseSSL:    cfg.Ledger.Retention.Archive.S3.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 archiver: %w", err)
		}
		return archiver, nil
	default:
		return nil, cli.NewConfigError("ledger.retention.archive.backend",
			fmt.Sprintf("unknown backend %q (want fs or s3)", cfg.Ledger.Retention.Archive.Backend))
	}
}

// waitForServerReady polls until the server reports running, bailing out
// early if the listener already failed.
func waitForServerReady(srv *server.Server, errChan <-chan error, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case err := <-errChan:
			if err != nil {
				return err
			}
			return fmt.Errorf("server exited before becoming ready")
		default:
		}
		if srv.IsRunning() {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server did not become ready within %s", timeout)
}
