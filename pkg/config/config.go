package config

import "time"

// Config is the root configuration structure for Ganymede. It contains all
// configuration sections for spec loading, resolution, the build pipeline,
// the build ledger, telemetry, and the daemon HTTP server.
type Config struct {
	// Spec contains configuration for locating and loading the build spec:
	// local file path or git source, watch mode, and size limits.
	Spec SpecConfig `yaml:"spec"`

	// Resolution contains configuration for the resolution engine: error
	// policy, reference depth limits, and dynamic value pinning.
	Resolution ResolutionConfig `yaml:"resolution"`

	// Paths contains the filesystem and URL layout handed to pipeline
	// adapters: downloads dir, output dir, web dir, and the CGI base URL.
	Paths PathsConfig `yaml:"paths"`

	// Pipeline contains configuration for the build pipeline: worker count,
	// phase/type/genome selection, politeness limits, and completion state.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Ledger contains configuration for the build audit trail including
	// backend selection, async recording, retention, and export settings.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Server contains configuration for the daemon HTTP server.
	Server ServerConfig `yaml:"server"`

	// Schedule contains the daemon rebuild schedule.
	Schedule ScheduleConfig `yaml:"schedule"`
}

// SpecConfig controls where the build spec comes from and how it is parsed.
type SpecConfig struct {
	// Path is the path to the spec file when Git is not enabled.
	// Default: "./genomes.yaml"
	Path string `yaml:"path"`

	// Git contains git source configuration. When Git.Enabled is true the
	// spec is cloned/pulled from a repository instead of read from Path.
	Git GitSpecConfig `yaml:"git"`

	// Watch enables automatic plan rebuilds when the spec file changes.
	// Only meaningful for the daemon; one-shot commands ignore it.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is how long the watcher waits after the last file
	// event before rebuilding. Editors often produce event bursts.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxSize bounds the spec file size in bytes.
	// Default: 10485760 (10MB)
	MaxSize int64 `yaml:"max_size"`
}

// GitSpecConfig configures git-based spec loading.
type GitSpecConfig struct {
	// Enabled determines whether the spec is fetched from git.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository is the clone URL (HTTPS).
	// Example: "https://github.com/org/genome-specs.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to the spec file.
	// Default: "genomes.yaml"
	Path string `yaml:"path"`

	// LocalPath is where the repository is cloned.
	// Default: system temp directory
	LocalPath string `yaml:"local_path"`

	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// Token for HTTPS authentication. Empty means anonymous. Typically
	// loaded from the environment (MGV_SPEC_GIT_TOKEN).
	Token string `yaml:"token"`

	// Timeout for git operations.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`
}

// ResolutionConfig controls the resolution engine.
type ResolutionConfig struct {
	// ContinueOnError emits a partial plan from the entries that resolved
	// cleanly instead of aborting the run when any entry fails.
	// Default: false
	ContinueOnError bool `yaml:"continue_on_error"`

	// MaxDepth bounds the length of any reference chain during resolution.
	// Default: 100
	MaxDepth int `yaml:"max_depth"`

	// PinToday fixes the "@@today" dynamic value to the given date
	// (YYYY-MM-DD) instead of the wall clock. Intended for reproducible
	// builds and tests. Empty means use the current date.
	PinToday string `yaml:"pin_today"`
}

// PathsConfig is the filesystem and URL layout handed through to pipeline
// adapters. Resolution itself never touches these.
type PathsConfig struct {
	// DownloadsDir is where raw fetched files land.
	// Default: "./downloads"
	DownloadsDir string `yaml:"downloads_dir"`

	// OutputDir is where transformed output is written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// WebDir is the deployment root served to the frontend.
	// Default: OutputDir
	WebDir string `yaml:"web_dir"`

	// CGIURL is the base URL for the data-serving CGI endpoint, passed to
	// deploy-phase adapters.
	CGIURL string `yaml:"cgi_url"`
}

// PipelineConfig controls the build pipeline.
type PipelineConfig struct {
	// Workers is the number of concurrent task workers.
	// Default: 4
	Workers int `yaml:"workers"`

	// Phases restricts the run to the named phases, in canonical order
	// (download, import, deploy). Empty means all phases.
	Phases []string `yaml:"phases"`

	// Types restricts the run to the named data types (assembly, models,
	// orthology). Empty means all types.
	Types []string `yaml:"types"`

	// Genome is a regular expression selecting genomes by name. The match
	// is anchored at both ends. Empty means all genomes.
	Genome string `yaml:"genome"`

	// Rate contains the politeness rate limit applied per remote host.
	Rate RateConfig `yaml:"rate"`

	// StatePath is the SQLite database recording per-(genome,type,phase)
	// completion so re-runs skip finished work.
	// Default: "data/pipeline-state.db"
	StatePath string `yaml:"state_path"`

	// Force re-runs tasks even when the state store marks them complete.
	// Default: false
	Force bool `yaml:"force"`

	// DryRun routes every task through the logging adapter instead of the
	// configured one.
	// Default: false
	DryRun bool `yaml:"dry_run"`
}

// RateConfig is a token-bucket rate limit.
type RateConfig struct {
	// RequestsPerSecond is the sustained request rate. Zero disables
	// limiting.
	// Default: 2
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the bucket capacity.
	// Default: 4
	Burst int `yaml:"burst"`
}

// LedgerConfig controls the build audit trail.
type LedgerConfig struct {
	// Enabled controls whether build records are written at all.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "sqlite", "postgres", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Postgres contains PostgreSQL-specific configuration.
	Postgres PostgresConfig `yaml:"postgres"`

	// Recorder contains async recording configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains pruning and archiving configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Export contains export configuration.
	Export ExportConfig `yaml:"export"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/ledger.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a connection waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// PostgresConfig contains PostgreSQL-specific configuration.
type PostgresConfig struct {
	// Host is the PostgreSQL server hostname.
	Host string `yaml:"host"`

	// Port is the PostgreSQL server port.
	// Default: 5432
	Port int `yaml:"port"`

	// Database is the name of the database to use.
	Database string `yaml:"database"`

	// User is the PostgreSQL user for authentication.
	User string `yaml:"user"`

	// Password is the PostgreSQL password. This should typically be loaded
	// from the environment (MGV_LEDGER_POSTGRES_PASSWORD).
	Password string `yaml:"password"`

	// SSLMode controls SSL/TLS connection mode.
	// Options: "disable", "require", "verify-ca", "verify-full"
	// Default: "require"
	SSLMode string `yaml:"ssl_mode"`
}

// RecorderConfig contains async recording configuration.
type RecorderConfig struct {
	// Buffer is the size of the async record channel. Records are written
	// in the background so the pipeline never blocks on the ledger.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// WriteTimeout bounds a single storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains ledger pruning and archiving configuration.
type RetentionConfig struct {
	// Days is how long records are kept. Zero disables age-based pruning.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the total record count; oldest records are pruned
	// first. Zero disables count-based pruning.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// Schedule is the cron expression for the daemon's pruning job.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// Archive contains archive-before-delete configuration.
	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig controls archiving of pruned ledger records.
type ArchiveConfig struct {
	// Enabled archives records before deletion.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the archive destination.
	// Options: "fs", "s3"
	// Default: "fs"
	Backend string `yaml:"backend"`

	// Path is the archive directory for the "fs" backend.
	// Default: "data/archives"
	Path string `yaml:"path"`

	// S3 contains S3-compatible storage configuration for the "s3" backend.
	S3 S3Config `yaml:"s3"`
}

// S3Config contains S3-compatible object storage configuration.
type S3Config struct {
	// Endpoint is the object storage endpoint.
	// Example: "s3.amazonaws.com", "minio.internal:9000"
	Endpoint string `yaml:"endpoint"`

	// Bucket is the bucket name.
	Bucket string `yaml:"bucket"`

	// Prefix is an optional key prefix for all archived objects.
	Prefix string `yaml:"prefix"`

	// Region is the bucket region.
	Region string `yaml:"region"`

	// AccessKey is the access key id. Typically loaded from the environment
	// (MGV_LEDGER_S3_ACCESS_KEY).
	AccessKey string `yaml:"access_key"`

	// SecretKey is the secret access key. Typically loaded from the
	// environment (MGV_LEDGER_S3_SECRET_KEY).
	SecretKey string `yaml:"secret_key"`

	// UseSSL connects over TLS.
	// Default: true
	UseSSL bool `yaml:"use_ssl"`
}

// ExportConfig contains ledger export configuration.
type ExportConfig struct {
	// JSONPretty indents JSON export output.
	// Default: true
	JSONPretty bool `yaml:"json_pretty"`

	// CSVIncludeHeader writes a header row in CSV exports.
	// Default: true
	CSVIncludeHeader bool `yaml:"csv_include_header"`

	// MaxExportSize caps the number of records in a single export.
	// Default: 1000000
	MaxExportSize int `yaml:"max_export_size"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// File is an optional log file path. Empty logs to stderr.
	File string `yaml:"file"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "mgv"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "ganymede"
	Subsystem string `yaml:"subsystem"`

	// TaskDurationBuckets defines histogram buckets for pipeline task
	// durations in seconds.
	// Default: [0.1, 0.5, 1, 5, 15, 60, 300, 1800]
	TaskDurationBuckets []float64 `yaml:"task_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "mgv-ganymede"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check configuration. The daemon serves the
// probe endpoints at the standard paths (/healthz, /readyz, /version).
type HealthConfig struct {
	// Enabled registers the daemon's component readiness checks (spec
	// source, ledger, plan registry). When false the probe endpoints still
	// answer, with no component checks behind them.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// ServerConfig contains configuration for the daemon HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8799").
	// Default: "127.0.0.1:8799"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ScheduleConfig contains the daemon rebuild schedule.
type ScheduleConfig struct {
	// Enabled turns on scheduled rebuilds in the daemon.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Rebuild is the cron expression for periodic plan rebuilds.
	// Default: "0 4 * * *"
	Rebuild string `yaml:"rebuild"`
}
