package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "pipeline.workers").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

var (
	validPhases = map[string]bool{"download": true, "import": true, "deploy": true}
	validTypes  = map[string]bool{"assembly": true, "models": true, "orthology": true}
)

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is
// valid. All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSpec(&cfg.Spec)...)
	errs = append(errs, validateResolution(&cfg.Resolution)...)
	errs = append(errs, validatePipeline(&cfg.Pipeline)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateServer(&cfg.Server)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateSpec validates the spec source configuration.
func validateSpec(cfg *SpecConfig) []FieldError {
	var errs []FieldError

	if cfg.Git.Enabled {
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{
				Field:   "spec.git.repository",
				Message: "repository URL is required when git is enabled",
			})
		}
		if cfg.Git.Depth < 0 {
			errs = append(errs, FieldError{
				Field:   "spec.git.depth",
				Message: "clone depth must be non-negative",
			})
		}
	} else if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "spec.path",
			Message: "spec path is required",
		})
	}

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "spec.debounce_interval",
			Message: "debounce interval must be non-negative",
		})
	}
	if cfg.MaxSize < 0 {
		errs = append(errs, FieldError{
			Field:   "spec.max_size",
			Message: "max size must be non-negative",
		})
	}

	return errs
}

// validateResolution validates the resolution engine configuration.
func validateResolution(cfg *ResolutionConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxDepth < 1 {
		errs = append(errs, FieldError{
			Field:   "resolution.max_depth",
			Message: "max depth must be at least 1",
		})
	}
	if cfg.PinToday != "" {
		if _, err := time.Parse("2006-01-02", cfg.PinToday); err != nil {
			errs = append(errs, FieldError{
				Field:   "resolution.pin_today",
				Message: fmt.Sprintf("must be a YYYY-MM-DD date: %v", err),
			})
		}
	}

	return errs
}

// validatePipeline validates the pipeline configuration.
func validatePipeline(cfg *PipelineConfig) []FieldError {
	var errs []FieldError

	if cfg.Workers < 1 {
		errs = append(errs, FieldError{
			Field:   "pipeline.workers",
			Message: "worker count must be at least 1",
		})
	}
	for _, phase := range cfg.Phases {
		if !validPhases[phase] {
			errs = append(errs, FieldError{
				Field:   "pipeline.phases",
				Message: fmt.Sprintf("unknown phase %q (valid: download, import, deploy)", phase),
			})
		}
	}
	for _, typ := range cfg.Types {
		if !validTypes[typ] {
			errs = append(errs, FieldError{
				Field:   "pipeline.types",
				Message: fmt.Sprintf("unknown type %q (valid: assembly, models, orthology)", typ),
			})
		}
	}
	if cfg.Genome != "" {
		if _, err := regexp.Compile(cfg.Genome); err != nil {
			errs = append(errs, FieldError{
				Field:   "pipeline.genome",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}
	if cfg.Rate.RequestsPerSecond < 0 {
		errs = append(errs, FieldError{
			Field:   "pipeline.rate.requests_per_second",
			Message: "rate must be non-negative",
		})
	}
	if cfg.Rate.Burst < 0 {
		errs = append(errs, FieldError{
			Field:   "pipeline.rate.burst",
			Message: "burst must be non-negative",
		})
	}

	return errs
}

// validateLedger validates the ledger configuration.
func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "ledger.sqlite.path",
				Message: "database path is required for the sqlite backend",
			})
		}
	case "postgres":
		if cfg.Postgres.Host == "" {
			errs = append(errs, FieldError{
				Field:   "ledger.postgres.host",
				Message: "host is required for the postgres backend",
			})
		}
		if cfg.Postgres.Database == "" {
			errs = append(errs, FieldError{
				Field:   "ledger.postgres.database",
				Message: "database name is required for the postgres backend",
			})
		}
		if cfg.Postgres.Port < 1 || cfg.Postgres.Port > 65535 {
			errs = append(errs, FieldError{
				Field:   "ledger.postgres.port",
				Message: "port must be between 1 and 65535",
			})
		}
	case "memory":
		// No backend-specific settings.
	default:
		errs = append(errs, FieldError{
			Field:   "ledger.backend",
			Message: fmt.Sprintf("unknown backend %q (valid: sqlite, postgres, memory)", cfg.Backend),
		})
	}

	if cfg.Recorder.Buffer < 1 {
		errs = append(errs, FieldError{
			Field:   "ledger.recorder.buffer",
			Message: "buffer size must be at least 1",
		})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.retention.max_records",
			Message: "max records must be non-negative",
		})
	}

	if cfg.Retention.Archive.Enabled {
		switch cfg.Retention.Archive.Backend {
		case "fs":
			if cfg.Retention.Archive.Path == "" {
				errs = append(errs, FieldError{
					Field:   "ledger.retention.archive.path",
					Message: "archive path is required for the fs backend",
				})
			}
		case "s3":
			if cfg.Retention.Archive.S3.Endpoint == "" {
				errs = append(errs, FieldError{
					Field:   "ledger.retention.archive.s3.endpoint",
					Message: "endpoint is required for the s3 backend",
				})
			}
			if cfg.Retention.Archive.S3.Bucket == "" {
				errs = append(errs, FieldError{
					Field:   "ledger.retention.archive.s3.bucket",
					Message: "bucket is required for the s3 backend",
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   "ledger.retention.archive.backend",
				Message: fmt.Sprintf("unknown archive backend %q (valid: fs, s3)", cfg.Retention.Archive.Backend),
			})
		}
	}

	return errs
}

// validateTelemetry validates the telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (valid: debug, info, warn, error)", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (valid: json, text, console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("unknown sampler %q (valid: always, never, ratio)", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample ratio must be between 0.0 and 1.0",
			})
		}
	}

	return errs
}

// validateServer validates the daemon HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be non-negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be non-negative",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be non-negative",
		})
	}

	return errs
}
