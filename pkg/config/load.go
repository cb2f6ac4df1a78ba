package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path. It
// applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Unmarshal over a fully defaulted config so booleans that default to
	// true keep an explicit false from the file.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention MGV_SECTION_FIELD (e.g., MGV_SPEC_PATH). Environment
// variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML over defaults
//  2. Apply remaining default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format MGV_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Spec overrides
	if val := os.Getenv("MGV_SPEC_PATH"); val != "" {
		cfg.Spec.Path = val
	}
	if val := os.Getenv("MGV_SPEC_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Spec.Watch = b
		}
	}
	if val := os.Getenv("MGV_SPEC_GIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Spec.Git.Enabled = b
		}
	}
	if val := os.Getenv("MGV_SPEC_GIT_REPOSITORY"); val != "" {
		cfg.Spec.Git.Repository = val
	}
	if val := os.Getenv("MGV_SPEC_GIT_BRANCH"); val != "" {
		cfg.Spec.Git.Branch = val
	}
	if val := os.Getenv("MGV_SPEC_GIT_PATH"); val != "" {
		cfg.Spec.Git.Path = val
	}
	if val := os.Getenv("MGV_SPEC_GIT_TOKEN"); val != "" {
		cfg.Spec.Git.Token = val
	}

	// Resolution overrides
	if val := os.Getenv("MGV_RESOLUTION_CONTINUE_ON_ERROR"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Resolution.ContinueOnError = b
		}
	}
	if val := os.Getenv("MGV_RESOLUTION_MAX_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Resolution.MaxDepth = i
		}
	}
	if val := os.Getenv("MGV_RESOLUTION_PIN_TODAY"); val != "" {
		cfg.Resolution.PinToday = val
	}

	// Paths overrides
	if val := os.Getenv("MGV_PATHS_DOWNLOADS_DIR"); val != "" {
		cfg.Paths.DownloadsDir = val
	}
	if val := os.Getenv("MGV_PATHS_OUTPUT_DIR"); val != "" {
		cfg.Paths.OutputDir = val
	}
	if val := os.Getenv("MGV_PATHS_WEB_DIR"); val != "" {
		cfg.Paths.WebDir = val
	}
	if val := os.Getenv("MGV_PATHS_CGI_URL"); val != "" {
		cfg.Paths.CGIURL = val
	}

	// Pipeline overrides
	if val := os.Getenv("MGV_PIPELINE_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Pipeline.Workers = i
		}
	}
	if val := os.Getenv("MGV_PIPELINE_GENOME"); val != "" {
		cfg.Pipeline.Genome = val
	}
	if val := os.Getenv("MGV_PIPELINE_STATE_PATH"); val != "" {
		cfg.Pipeline.StatePath = val
	}
	if val := os.Getenv("MGV_PIPELINE_FORCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Pipeline.Force = b
		}
	}
	if val := os.Getenv("MGV_PIPELINE_DRY_RUN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Pipeline.DryRun = b
		}
	}

	// Ledger overrides
	if val := os.Getenv("MGV_LEDGER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Ledger.Enabled = b
		}
	}
	if val := os.Getenv("MGV_LEDGER_BACKEND"); val != "" {
		cfg.Ledger.Backend = val
	}
	if val := os.Getenv("MGV_LEDGER_SQLITE_PATH"); val != "" {
		cfg.Ledger.SQLite.Path = val
	}
	if val := os.Getenv("MGV_LEDGER_POSTGRES_HOST"); val != "" {
		cfg.Ledger.Postgres.Host = val
	}
	if val := os.Getenv("MGV_LEDGER_POSTGRES_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Ledger.Postgres.Port = i
		}
	}
	if val := os.Getenv("MGV_LEDGER_POSTGRES_DATABASE"); val != "" {
		cfg.Ledger.Postgres.Database = val
	}
	if val := os.Getenv("MGV_LEDGER_POSTGRES_USER"); val != "" {
		cfg.Ledger.Postgres.User = val
	}
	if val := os.Getenv("MGV_LEDGER_POSTGRES_PASSWORD"); val != "" {
		cfg.Ledger.Postgres.Password = val
	}
	if val := os.Getenv("MGV_LEDGER_POSTGRES_SSL_MODE"); val != "" {
		cfg.Ledger.Postgres.SSLMode = val
	}
	if val := os.Getenv("MGV_LEDGER_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Ledger.Retention.Days = i
		}
	}
	if val := os.Getenv("MGV_LEDGER_S3_ENDPOINT"); val != "" {
		cfg.Ledger.Retention.Archive.S3.Endpoint = val
	}
	if val := os.Getenv("MGV_LEDGER_S3_BUCKET"); val != "" {
		cfg.Ledger.Retention.Archive.S3.Bucket = val
	}
	if val := os.Getenv("MGV_LEDGER_S3_ACCESS_KEY"); val != "" {
		cfg.Ledger.Retention.Archive.S3.AccessKey = val
	}
	if val := os.Getenv("MGV_LEDGER_S3_SECRET_KEY"); val != "" {
		cfg.Ledger.Retention.Archive.S3.SecretKey = val
	}

	// Telemetry overrides
	if val := os.Getenv("MGV_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MGV_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MGV_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("MGV_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("MGV_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("MGV_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("MGV_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Server overrides
	if val := os.Getenv("MGV_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("MGV_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Schedule overrides
	if val := os.Getenv("MGV_SCHEDULE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Schedule.Enabled = b
		}
	}
	if val := os.Getenv("MGV_SCHEDULE_REBUILD"); val != "" {
		cfg.Schedule.Rebuild = val
	}
}
