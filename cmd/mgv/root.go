package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"mgv-hq/ganymede/pkg/cli"
	"mgv-hq/ganymede/pkg/config"
	"mgv-hq/ganymede/pkg/gbs/parser"
	"mgv-hq/ganymede/pkg/gbs/resolver"
	"mgv-hq/ganymede/pkg/gbs/validator"
	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/ledger/storage"
	"mgv-hq/ganymede/pkg/plan"
	"mgv-hq/ganymede/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mgv",
	Short: "MGV Ganymede - genome build-spec resolution engine",
	Long: `MGV Ganymede resolves layered genome build specs into concrete build
plans and orchestrates the download/import/deploy pipeline they drive.

A build spec is a YAML document of shared variables and per-genome entries.
Entries reference variables (@name), dynamic values (@@name), other entries
(=name), and merge templates; Ganymede expands all of it, in document order,
into a plan with zero remaining indirection:
  - Plan emission with full error accumulation and cycle detection
  - Pipeline orchestration with completion tracking and politeness limits
  - A build ledger recording every task for audit and provenance
  - A daemon serving the current plan over HTTP, rebuilding on spec change

For more information, visit: https://github.com/mgv-hq/ganymede`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

// loadConfig initializes the global configuration from --config and
// returns it. A configuration installed earlier with config.SetConfig
// (tests do this) wins over the file.
func loadConfig() (*config.Config, error) {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg, nil
	}
	if err := config.Initialize(cfgFile); err != nil {
		return nil, err
	}
	cfg := config.GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return cfg, nil
}

// loadConfigOrDefaults is loadConfig for commands that stay useful
// without an installed config file: a missing file falls back to the
// built-in defaults instead of failing. Any other load error still
// surfaces.
func loadConfigOrDefaults() (*config.Config, error) {
	cfg, err := loadConfig()
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg = config.DefaultConfig()
	config.ApplyDefaults(cfg)
	config.SetConfig(cfg)
	return cfg, nil
}

// initSlog installs the process-wide slog default from the logging
// config. Library packages pick their component loggers off this
// default.
func initSlog(cfg *config.Config) error {
	var level slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	w, err := logWriter(cfg)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}
	var handler slog.Handler
	if cfg.Telemetry.Logging.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// logWriter selects the diagnostic output. Diagnostics go to stderr (or
// the configured log file); stdout is reserved for command output.
func logWriter(cfg *config.Config) (io.Writer, error) {
	if cfg.Telemetry.Logging.File == "" {
		return os.Stderr, nil
	}
	f, err := os.OpenFile(cfg.Telemetry.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", cfg.Telemetry.Logging.File, err)
	}
	return f, nil
}

// newStructuredLogger builds the logger handed to components that take
// one directly (runner, server), matching the slog default installed by
// initSlog.
func newStructuredLogger(cfg *config.Config) (*logging.Logger, error) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	w, err := logWriter(cfg)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{
		Level:         level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: true,
		Writer:        w,
	})
}

// openLedgerStorage opens the configured ledger backend. A non-empty
// backend argument overrides the configured one.
func openLedgerStorage(cfg *config.Config, backend string) (ledger.Storage, error) {
	if backend == "" {
		backend = cfg.Ledger.Backend
	}
	switch backend {
	case "sqlite", "":
		store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Ledger.SQLite.Path,
			MaxOpenConns: cfg.Ledger.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Ledger.SQLite.MaxIdleConns,
			WALMode:      cfg.Ledger.SQLite.WALMode,
			BusyTimeout:  cfg.Ledger.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite ledger: %w", err)
		}
		return store, nil
	case "postgres":
		store, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.Ledger.Postgres.Host,
			Port:     cfg.Ledger.Postgres.Port,
			Database: cfg.Ledger.Postgres.Database,
			User:     cfg.Ledger.Postgres.User,
			Password: cfg.Ledger.Postgres.Password,
			SSLMode:  cfg.Ledger.Postgres.SSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres ledger: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, cli.NewConfigError("ledger.backend",
			fmt.Sprintf("unknown backend %q (want sqlite, postgres, or memory)", backend))
	}
}

// newSpecSource builds the spec source the config selects: a git clone
// when spec.git is enabled, the spec file otherwise.
func newSpecSource(cfg *config.Config) (plan.Source, error) {
	if cfg.Spec.Git.Enabled {
		return plan.NewGitSource(plan.GitSourceConfig{
			Repository: cfg.Spec.Git.Repository,
			Branch:     cfg.Spec.Git.Branch,
			Path:       cfg.Spec.Git.Path,
			LocalPath:  cfg.Spec.Git.LocalPath,
			Depth:      cfg.Spec.Git.Depth,
			Token:      cfg.Spec.Git.Token,
			Timeout:    cfg.Spec.Git.Timeout,
		}, slog.Default())
	}
	return plan.NewFileSource(cfg.Spec.Path, slog.Default()).
		WithMaxSize(cfg.Spec.MaxSize), nil
}

// resolutionRegistry builds the dynamic value registry, pinning @@today
// when the config asks for reproducible output.
func resolutionRegistry(cfg *config.Config) (*resolver.Registry, error) {
	reg := resolver.NewRegistry()
	if cfg.Resolution.PinToday != "" {
		pinned, err := time.Parse("2006-01-02", cfg.Resolution.PinToday)
		if err != nil {
			return nil, cli.NewConfigError("resolution.pin_today",
				fmt.Sprintf("must be a YYYY-MM-DD date: %v", err))
		}
		reg.WithClock(func() time.Time { return pinned })
	}
	return reg, nil
}

// newPlanner assembles the spec-to-plan machinery the config describes:
// parser limits, lint pass, resolution depth, and error policy.
func newPlanner(cfg *config.Config, source plan.Source) (*plan.Planner, error) {
	reg, err := resolutionRegistry(cfg)
	if err != nil {
		return nil, err
	}

	ps := parser.NewParser()
	if cfg.Spec.MaxSize > 0 {
		ps.WithMaxFileSize(cfg.Spec.MaxSize)
	}

	emitter := plan.NewEmitter().
		WithRegistry(reg).
		WithContinueOnError(cfg.Resolution.ContinueOnError)
	if cfg.Resolution.MaxDepth > 0 {
		emitter.WithMaxDepth(cfg.Resolution.MaxDepth)
	}

	return plan.NewPlanner(source).
		WithParser(ps).
		WithValidator(validator.NewValidator().WithRegistry(reg)).
		WithEmitter(emitter), nil
}
