package config

import "time"

// Default values for configuration fields.
const (
	DefaultManifestPath = "registry/models.yaml"

	DefaultProviderTimeout    = 60 * time.Second
	DefaultProviderMaxRetries = 3

	DefaultAnalyzerConfidenceThreshold = 0.8

	DefaultSelectorCostCeiling   = 0.06
	DefaultSelectorFallbackDepth = 3

	DefaultClientPoolMaxInFlight   = 8
	DefaultClientPoolFailThreshold = 5
	DefaultClientPoolFailureWindow = 60 * time.Second

	DefaultExecutorAttemptTimeout = 60 * time.Second
	DefaultExecutorMaxRetries     = 2
	DefaultExecutorBackoffBase    = 250 * time.Millisecond
	DefaultExecutorBackoffCap     = 4 * time.Second

	DefaultOrchestratorFallbackDepth = 3

	DefaultConsensusN        = 3
	DefaultConsensusStrategy = "vote"

	DefaultChainScheduleTimezone = "UTC"

	DefaultSinkBackend = "memory"

	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	DefaultTracingServiceName = "orison"
	DefaultTracingSampleRatio = 1.0
)

// ApplyDefaults applies default values to a Config struct. It sets
// defaults for any fields that have zero values and is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Registry.ManifestPath == "" {
		cfg.Registry.ManifestPath = DefaultManifestPath
	}

	for name, provider := range cfg.Providers {
		if provider.Timeout == 0 {
			provider.Timeout = DefaultProviderTimeout
		}
		if provider.MaxRetries == 0 {
			provider.MaxRetries = DefaultProviderMaxRetries
		}
		cfg.Providers[name] = provider
	}

	if cfg.Analyzer.ConfidenceThreshold == 0 {
		cfg.Analyzer.ConfidenceThreshold = DefaultAnalyzerConfidenceThreshold
	}

	if cfg.Selector.CostCeiling == 0 {
		cfg.Selector.CostCeiling = DefaultSelectorCostCeiling
	}
	if cfg.Selector.FallbackDepth == 0 {
		cfg.Selector.FallbackDepth = DefaultSelectorFallbackDepth
	}

	if cfg.ClientPool.DefaultMaxInFlight == 0 {
		cfg.ClientPool.DefaultMaxInFlight = DefaultClientPoolMaxInFlight
	}
	if cfg.ClientPool.FailureThreshold == 0 {
		cfg.ClientPool.FailureThreshold = DefaultClientPoolFailThreshold
	}
	if cfg.ClientPool.FailureWindow == 0 {
		cfg.ClientPool.FailureWindow = DefaultClientPoolFailureWindow
	}

	if cfg.Executor.AttemptTimeout == 0 {
		cfg.Executor.AttemptTimeout = DefaultExecutorAttemptTimeout
	}
	if cfg.Executor.MaxRetries == 0 {
		cfg.Executor.MaxRetries = DefaultExecutorMaxRetries
	}
	if cfg.Executor.BackoffBase == 0 {
		cfg.Executor.BackoffBase = DefaultExecutorBackoffBase
	}
	if cfg.Executor.BackoffCap == 0 {
		cfg.Executor.BackoffCap = DefaultExecutorBackoffCap
	}

	if cfg.Orchestrator.FallbackDepth == 0 {
		cfg.Orchestrator.FallbackDepth = DefaultOrchestratorFallbackDepth
	}

	if cfg.Consensus.DefaultN == 0 {
		cfg.Consensus.DefaultN = DefaultConsensusN
	}
	if cfg.Consensus.DefaultStrategy == "" {
		cfg.Consensus.DefaultStrategy = DefaultConsensusStrategy
	}

	if cfg.Chain.DefaultScheduleTimezone == "" {
		cfg.Chain.DefaultScheduleTimezone = DefaultChainScheduleTimezone
	}

	if cfg.Sinks.Usage.Backend == "" {
		cfg.Sinks.Usage.Backend = DefaultSinkBackend
	}
	if cfg.Sinks.Checkpoints.Backend == "" {
		cfg.Sinks.Checkpoints.Backend = DefaultSinkBackend
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
}
