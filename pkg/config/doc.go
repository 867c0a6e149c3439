// Package config provides configuration management for orison, the
// model orchestration core.
//
// This package handles loading, validating, and managing configuration
// from YAML files with environment variable overrides. It provides a
// type-safe configuration system with comprehensive validation and
// sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ORISON_SECTION_FIELD.
// For example:
//
//   - ORISON_SELECTOR_COST_CEILING overrides selector.cost_ceiling
//   - ORISON_PROVIDERS_OPENAI_API_KEY overrides providers.openai.api_key
//   - ORISON_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
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
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Selector.CostCeiling)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., provider base URLs, sink paths)
//   - Range validation (e.g., scoring weights must sum to 1.0)
//   - Logical validation (e.g., tracing enabled requires an endpoint)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - providers.openai.base_url: must not be empty
//	  - consensus.default_n: must be at least 2
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	registry:
//	  manifest_path: "registry/models.yaml"
//
//	providers:
//	  openai:
//	    base_url: "https://api.openai.com/v1"
//	    # api_key is read verbatim; supply it through
//	    # ORISON_PROVIDERS_OPENAI_API_KEY with LoadConfigWithEnvOverrides
//
//	selector:
//	  cost_ceiling: 0.06
//
//	sinks:
//	  usage:
//	    backend: "sqlite"
//	    sqlite_path: "data/usage.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
