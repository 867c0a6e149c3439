package config

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{
		Providers: make(map[string]ProviderConfig),
	}
	ApplyDefaults(&cfg)

	cfg.Providers["openai"] = ProviderConfig{
		BaseURL:    "https://api.openai.com/v1",
		APIKey:     "test-key",
		Timeout:    DefaultProviderTimeout,
		MaxRetries: DefaultProviderMaxRetries,
	}

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithManifestPath sets the registry manifest path.
func (b *ConfigBuilder) WithManifestPath(path string) *ConfigBuilder {
	b.cfg.Registry.ManifestPath = path
	return b
}

// WithProvider adds or updates a provider configuration.
func (b *ConfigBuilder) WithProvider(name string, provider ProviderConfig) *ConfigBuilder {
	if b.cfg.Providers == nil {
		b.cfg.Providers = make(map[string]ProviderConfig)
	}
	b.cfg.Providers[name] = provider
	return b
}

// WithCostCeiling sets the selector's cost ceiling.
func (b *ConfigBuilder) WithCostCeiling(ceiling float64) *ConfigBuilder {
	b.cfg.Selector.CostCeiling = ceiling
	return b
}

// WithUsageSink configures the usage sink backend.
func (b *ConfigBuilder) WithUsageSink(backend, sqlitePath string) *ConfigBuilder {
	b.cfg.Sinks.Usage = SinkBackendConfig{Backend: backend, SQLitePath: sqlitePath}
	return b
}

// WithCheckpointSink configures the checkpoint sink backend.
func (b *ConfigBuilder) WithCheckpointSink(backend, sqlitePath string) *ConfigBuilder {
	b.cfg.Sinks.Checkpoints = SinkBackendConfig{Backend: backend, SQLitePath: sqlitePath}
	return b
}

// WithConsensus sets the default consensus participant count and strategy.
func (b *ConfigBuilder) WithConsensus(n int, strategy string) *ConfigBuilder {
	b.cfg.Consensus.DefaultN = n
	b.cfg.Consensus.DefaultStrategy = strategy
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithTracingEnabled sets whether tracing is enabled.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	if b.cfg.Telemetry.Tracing.SampleRatio == 0 {
		b.cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
