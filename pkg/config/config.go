package config

import "time"

// Config is the root configuration structure for orison, the model
// orchestration core. It contains the sections needed to build a
// Registry, Selector, Executor, Orchestrator, Consensus Engine, and
// Chain Orchestrator from a single file.
type Config struct {
	// Registry contains model registry configuration: where the model
	// capability manifest is loaded from and how often it is reloaded.
	Registry RegistryConfig `yaml:"registry"`

	// Providers contains configuration for all LLM provider integrations.
	// Keys are provider names (e.g., "openai", "anthropic").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Analyzer contains task analyzer configuration.
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Selector contains model selection and scoring configuration.
	Selector SelectorConfig `yaml:"selector"`

	// ClientPool contains per-provider connection pooling and circuit
	// breaker configuration.
	ClientPool ClientPoolConfig `yaml:"client_pool"`

	// Executor contains request execution, retry, and backoff configuration.
	Executor ExecutorConfig `yaml:"executor"`

	// Orchestrator contains route_request state machine configuration.
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// Consensus contains multi-model consensus engine configuration.
	Consensus ConsensusConfig `yaml:"consensus"`

	// Chain contains pipeline/chain orchestrator configuration.
	Chain ChainConfig `yaml:"chain"`

	// Sinks contains usage and checkpoint persistence configuration.
	Sinks SinksConfig `yaml:"sinks"`

	// Telemetry contains configuration for observability: logging and
	// distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RegistryConfig contains configuration for the model capability registry.
type RegistryConfig struct {
	// ManifestPath is the path to the YAML file describing available
	// models and their capabilities (spec §4.1).
	// Default: "registry/models.yaml"
	ManifestPath string `yaml:"manifest_path"`

	// Watch is parsed but not read by any component; the manifest is
	// reloaded only through an explicit Registry.Reload call.
	// Default: false
	Watch bool `yaml:"watch"`
}

// ProviderConfig contains configuration for a single LLM provider.
type ProviderConfig struct {
	// BaseURL is the base URL for the provider's API endpoint.
	// Example: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key for the provider.
	// This should typically be loaded from an environment variable.
	APIKey string `yaml:"api_key"`

	// Timeout is the maximum duration for requests to this provider.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is parsed but not passed to the provider adapters, which
	// make a single attempt per call; local retries are governed by
	// executor.max_retries.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`
}

// AnalyzerConfig contains task analyzer configuration (spec §4.2).
type AnalyzerConfig struct {
	// ConfidenceThreshold is the minimum heuristic confidence to accept
	// without falling back to an LLM classifier.
	// Default: 0.8
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// ClassifierModelID names a model for fallback classification when no
	// heuristic rule matches with sufficient confidence. cmd/orison does
	// not wire a classifier from it, so an unmatched prompt defaults
	// task_type to general.
	ClassifierModelID string `yaml:"classifier_model_id"`
}

// SelectorConfig contains model selection and scoring configuration
// (spec §4.3, §4.4).
type SelectorConfig struct {
	// CostCeiling is the effective_cost, in USD per 1K tokens, at or above
	// which a model's cost component of scoring is 0; models above it
	// stay selectable.
	// Default: 0.06
	CostCeiling float64 `yaml:"cost_ceiling"`

	// FallbackDepth is validated but not passed to the Selector; the
	// fallback limit route_request applies is orchestrator.fallback_depth.
	// Default: 3
	FallbackDepth int `yaml:"fallback_depth"`

	// Strategies overrides the built-in scoring weight presets
	// (quality, speed, cost, balanced) by priority name.
	Strategies map[string]WeightsConfig `yaml:"strategies"`
}

// WeightsConfig contains scoring component weights; the four fields
// must sum to 1.0 (spec §4.3).
type WeightsConfig struct {
	Task float64 `yaml:"task"`
	Perf float64 `yaml:"perf"`
	Acc  float64 `yaml:"acc"`
	Cost float64 `yaml:"cost"`
}

// ClientPoolConfig contains per-provider connection pooling and circuit
// breaker configuration (spec §4.6).
type ClientPoolConfig struct {
	// DefaultMaxInFlight is the default number of concurrent in-flight
	// requests permitted per provider, used when a provider has no
	// entry in PerProviderLimits.
	// Default: 8
	DefaultMaxInFlight int `yaml:"default_max_in_flight"`

	// PerProviderLimits overrides DefaultMaxInFlight for specific
	// providers by name.
	PerProviderLimits map[string]int `yaml:"per_provider_limits"`

	// FailureThreshold is the number of consecutive failures within
	// FailureWindow before a provider's pooled client is torn down.
	// Default: 5
	FailureThreshold int `yaml:"failure_threshold"`

	// FailureWindow is the rolling window over which consecutive
	// failures are counted.
	// Default: 60s
	FailureWindow time.Duration `yaml:"failure_window"`
}

// ExecutorConfig contains request execution, retry, and backoff
// configuration (spec §4.7).
type ExecutorConfig struct {
	// AttemptTimeout bounds a single provider call, independent of
	// retries.
	// Default: 60s
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`

	// MaxRetries is the maximum number of local retries for transient
	// errors before the Executor gives up on the current model.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// BackoffBase is the base delay for exponential backoff with full
	// jitter between retries.
	// Default: 250ms
	BackoffBase time.Duration `yaml:"backoff_base"`

	// BackoffCap is the maximum backoff delay.
	// Default: 4s
	BackoffCap time.Duration `yaml:"backoff_cap"`
}

// OrchestratorConfig contains route_request state machine configuration
// (spec §4.8).
type OrchestratorConfig struct {
	// FallbackDepth is the maximum number of fallback models to try
	// after the primary selection fails before returning
	// ExhaustedFallbacksError.
	// Default: 3
	FallbackDepth int `yaml:"fallback_depth"`
}

// ConsensusConfig contains multi-model consensus engine configuration
// (spec §4.9).
type ConsensusConfig struct {
	// DefaultN is the default number of participant models. It is
	// validated but not passed to the consensus engine, which falls back
	// to its own consensus.DefaultN.
	// Default: 3
	DefaultN int `yaml:"default_n"`

	// DefaultStrategy is the default aggregation strategy ("vote" or
	// "synthesis"). It is not passed to the consensus engine.
	// Default: "vote"
	DefaultStrategy string `yaml:"default_strategy"`

	// ArbiterModelID pins the synthesis arbiter to a specific model.
	// Empty selects the highest-reasoning-scored available model.
	ArbiterModelID string `yaml:"arbiter_model_id"`
}

// ChainConfig contains pipeline/chain orchestrator configuration
// (spec §4.10).
type ChainConfig struct {
	// DefaultScheduleTimezone names a timezone for ScheduleRecurring
	// schedules. It is parsed but not read by cmd/orison or the chain
	// orchestrator.
	// Default: "UTC"
	DefaultScheduleTimezone string `yaml:"default_schedule_timezone"`
}

// SinksConfig contains usage and checkpoint persistence configuration
// (spec §6).
type SinksConfig struct {
	// Usage configures where UsageRecords are persisted.
	Usage SinkBackendConfig `yaml:"usage"`

	// Checkpoints configures where chain Checkpoints are persisted.
	Checkpoints SinkBackendConfig `yaml:"checkpoints"`
}

// SinkBackendConfig selects and configures a single sink backend.
type SinkBackendConfig struct {
	// Backend selects the storage backend.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path when Backend is "sqlite".
	SQLitePath string `yaml:"sqlite_path"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP trace collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to every span.
	// Default: "orison"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}
