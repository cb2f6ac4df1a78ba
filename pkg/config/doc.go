// Package config provides configuration management for Ganymede.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("mgv.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("mgv.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention MGV_SECTION_FIELD.
// For example:
//
//   - MGV_SPEC_PATH overrides spec.path
//   - MGV_LEDGER_POSTGRES_PASSWORD overrides ledger.postgres.password
//   - MGV_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based
// configuration, which makes them the natural place for secrets (git
// tokens, database passwords, object storage keys).
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("mgv.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Spec.Path)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	spec:
//	  path: "./genomes.yaml"
//	  watch: true
//
//	paths:
//	  downloads_dir: "/data/downloads"
//	  output_dir: "/data/output"
//
//	pipeline:
//	  workers: 8
//
//	ledger:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "/data/ledger.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton uses read-write
// locks to allow concurrent reads while protecting against concurrent
// writes during reload operations.
package config
