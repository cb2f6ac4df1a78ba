package config

import "time"

// Default values for configuration fields.
const (
	// Spec defaults
	DefaultSpecPath       = "./genomes.yaml"
	DefaultSpecDebounce   = 250 * time.Millisecond
	DefaultSpecMaxSize    = int64(10 * 1024 * 1024)
	DefaultSpecGitBranch  = "main"
	DefaultSpecGitPath    = "genomes.yaml"
	DefaultSpecGitDepth   = 1
	DefaultSpecGitTimeout = 60 * time.Second

	// Resolution defaults
	DefaultResolutionMaxDepth = 100

	// Paths defaults
	DefaultDownloadsDir = "./downloads"
	DefaultOutputDir    = "./output"

	// Pipeline defaults
	DefaultPipelineWorkers   = 4
	DefaultPipelineRate      = 2.0
	DefaultPipelineBurst     = 4
	DefaultPipelineStatePath = "data/pipeline-state.db"

	// Ledger defaults
	DefaultLedgerEnabled              = true
	DefaultLedgerBackend              = "sqlite"
	DefaultLedgerSQLitePath           = "data/ledger.db"
	DefaultLedgerSQLiteMaxOpenConns   = 10
	DefaultLedgerSQLiteMaxIdleConns   = 5
	DefaultLedgerSQLiteWALMode        = true
	DefaultLedgerSQLiteBusyTimeout    = 5 * time.Second
	DefaultLedgerRecorderBuffer       = 1000
	DefaultLedgerRecorderWriteTimeout = 5 * time.Second
	DefaultLedgerRetentionDays        = 90
	DefaultLedgerRetentionSchedule    = "0 3 * * *"
	DefaultLedgerArchiveBackend       = "fs"
	DefaultLedgerArchivePath          = "data/archives"
	DefaultLedgerExportMaxSize        = 1000000
	DefaultPostgresPort               = 5432
	DefaultPostgresSSLMode            = "require"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "mgv"
	DefaultMetricsSubsystem   = "ganymede"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "mgv-ganymede"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultHealthCheckTimeout = 5 * time.Second

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8799"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Schedule defaults
	DefaultRebuildSchedule = "0 4 * * *"
)

// DefaultConfig returns a Config populated with every default, including
// the booleans whose default is true. LoadConfig unmarshals the file on top
// of this value so an explicit `false` in the file survives.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Ledger.Enabled = DefaultLedgerEnabled
	cfg.Ledger.SQLite.WALMode = DefaultLedgerSQLiteWALMode
	cfg.Ledger.Export.JSONPretty = true
	cfg.Ledger.Export.CSVIncludeHeader = true
	cfg.Ledger.Retention.Archive.S3.UseSSL = true
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Insecure = true
	cfg.Telemetry.Health.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with default values. Boolean fields
// are left alone; their defaults are seeded by DefaultConfig so that an
// explicit false in a config file is distinguishable from an unset field.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Spec defaults
	if cfg.Spec.Path == "" {
		cfg.Spec.Path = DefaultSpecPath
	}
	if cfg.Spec.DebounceInterval == 0 {
		cfg.Spec.DebounceInterval = DefaultSpecDebounce
	}
	if cfg.Spec.MaxSize == 0 {
		cfg.Spec.MaxSize = DefaultSpecMaxSize
	}
	if cfg.Spec.Git.Branch == "" {
		cfg.Spec.Git.Branch = DefaultSpecGitBranch
	}
	if cfg.Spec.Git.Path == "" {
		cfg.Spec.Git.Path = DefaultSpecGitPath
	}
	if cfg.Spec.Git.Depth == 0 {
		cfg.Spec.Git.Depth = DefaultSpecGitDepth
	}
	if cfg.Spec.Git.Timeout == 0 {
		cfg.Spec.Git.Timeout = DefaultSpecGitTimeout
	}

	// Resolution defaults
	if cfg.Resolution.MaxDepth == 0 {
		cfg.Resolution.MaxDepth = DefaultResolutionMaxDepth
	}

	// Paths defaults. WebDir falls back to OutputDir: deploys land next to
	// output unless the web root is somewhere else.
	if cfg.Paths.DownloadsDir == "" {
		cfg.Paths.DownloadsDir = DefaultDownloadsDir
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = DefaultOutputDir
	}
	if cfg.Paths.WebDir == "" {
		cfg.Paths.WebDir = cfg.Paths.OutputDir
	}

	// Pipeline defaults
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = DefaultPipelineWorkers
	}
	if cfg.Pipeline.Rate.RequestsPerSecond == 0 {
		cfg.Pipeline.Rate.RequestsPerSecond = DefaultPipelineRate
	}
	if cfg.Pipeline.Rate.Burst == 0 {
		cfg.Pipeline.Rate.Burst = DefaultPipelineBurst
	}
	if cfg.Pipeline.StatePath == "" {
		cfg.Pipeline.StatePath = DefaultPipelineStatePath
	}

	// Ledger defaults
	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = DefaultLedgerBackend
	}
	if cfg.Ledger.SQLite.Path == "" {
		cfg.Ledger.SQLite.Path = DefaultLedgerSQLitePath
	}
	if cfg.Ledger.SQLite.MaxOpenConns == 0 {
		cfg.Ledger.SQLite.MaxOpenConns = DefaultLedgerSQLiteMaxOpenConns
	}
	if cfg.Ledger.SQLite.MaxIdleConns == 0 {
		cfg.Ledger.SQLite.MaxIdleConns = DefaultLedgerSQLiteMaxIdleConns
	}
	if cfg.Ledger.SQLite.BusyTimeout == 0 {
		cfg.Ledger.SQLite.BusyTimeout = DefaultLedgerSQLiteBusyTimeout
	}
	if cfg.Ledger.Postgres.Port == 0 {
		cfg.Ledger.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Ledger.Postgres.SSLMode == "" {
		cfg.Ledger.Postgres.SSLMode = DefaultPostgresSSLMode
	}
	if cfg.Ledger.Recorder.Buffer == 0 {
		cfg.Ledger.Recorder.Buffer = DefaultLedgerRecorderBuffer
	}
	if cfg.Ledger.Recorder.WriteTimeout == 0 {
		cfg.Ledger.Recorder.WriteTimeout = DefaultLedgerRecorderWriteTimeout
	}
	if cfg.Ledger.Retention.Days == 0 {
		cfg.Ledger.Retention.Days = DefaultLedgerRetentionDays
	}
	if cfg.Ledger.Retention.Schedule == "" {
		cfg.Ledger.Retention.Schedule = DefaultLedgerRetentionSchedule
	}
	if cfg.Ledger.Retention.Archive.Backend == "" {
		cfg.Ledger.Retention.Archive.Backend = DefaultLedgerArchiveBackend
	}
	if cfg.Ledger.Retention.Archive.Path == "" {
		cfg.Ledger.Retention.Archive.Path = DefaultLedgerArchivePath
	}
	if cfg.Ledger.Export.MaxExportSize == 0 {
		cfg.Ledger.Export.MaxExportSize = DefaultLedgerExportMaxSize
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.TaskDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.TaskDurationBuckets = []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800}
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Schedule defaults
	if cfg.Schedule.Rebuild == "" {
		cfg.Schedule.Rebuild = DefaultRebuildSchedule
	}
}
