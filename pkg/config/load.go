package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns
// any errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention ORISON_SECTION_FIELD (e.g.,
// ORISON_SELECTOR_COST_CEILING) and always take precedence over the
// file.
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

// applyEnvOverrides applies environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("ORISON_REGISTRY_MANIFEST_PATH"); val != "" {
		cfg.Registry.ManifestPath = val
	}

	applyProviderEnvOverrides(cfg, "openai")
	applyProviderEnvOverrides(cfg, "anthropic")

	if val := os.Getenv("ORISON_SELECTOR_COST_CEILING"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Selector.CostCeiling = f
		}
	}
	if val := os.Getenv("ORISON_SELECTOR_FALLBACK_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Selector.FallbackDepth = i
		}
	}

	if val := os.Getenv("ORISON_EXECUTOR_ATTEMPT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Executor.AttemptTimeout = d
		}
	}
	if val := os.Getenv("ORISON_EXECUTOR_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Executor.MaxRetries = i
		}
	}

	if val := os.Getenv("ORISON_CONSENSUS_DEFAULT_N"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Consensus.DefaultN = i
		}
	}
	if val := os.Getenv("ORISON_CONSENSUS_ARBITER_MODEL_ID"); val != "" {
		cfg.Consensus.ArbiterModelID = val
	}

	if val := os.Getenv("ORISON_SINKS_USAGE_BACKEND"); val != "" {
		cfg.Sinks.Usage.Backend = val
	}
	if val := os.Getenv("ORISON_SINKS_USAGE_SQLITE_PATH"); val != "" {
		cfg.Sinks.Usage.SQLitePath = val
	}
	if val := os.Getenv("ORISON_SINKS_CHECKPOINTS_BACKEND"); val != "" {
		cfg.Sinks.Checkpoints.Backend = val
	}
	if val := os.Getenv("ORISON_SINKS_CHECKPOINTS_SQLITE_PATH"); val != "" {
		cfg.Sinks.Checkpoints.SQLitePath = val
	}

	if val := os.Getenv("ORISON_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ORISON_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ORISON_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("ORISON_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("ORISON_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// applyProviderEnvOverrides applies environment variable overrides for
// a single provider. Provider environment variables follow the format
// ORISON_PROVIDERS_<NAME>_<FIELD> where NAME is the uppercase provider
// name.
func applyProviderEnvOverrides(cfg *Config, providerName string) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	provider, exists := cfg.Providers[providerName]
	prefix := fmt.Sprintf("ORISON_PROVIDERS_%s_", strings.ToUpper(providerName))
	modified := false

	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		provider.BaseURL = val
		modified = true
	}
	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		provider.APIKey = val
		modified = true
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			provider.Timeout = d
			modified = true
		}
	}
	if val := os.Getenv(prefix + "MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			provider.MaxRetries = i
			modified = true
		}
	}

	if modified || exists {
		cfg.Providers[providerName] = provider
	}
}
