package config

import (
	"fmt"
	"math"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "selector.cost_ceiling").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
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

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. All validation errors
// are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateSelector(&cfg.Selector)...)
	errs = append(errs, validateClientPool(&cfg.ClientPool)...)
	errs = append(errs, validateExecutor(&cfg.Executor)...)
	errs = append(errs, validateConsensus(&cfg.Consensus)...)
	errs = append(errs, validateSinks(&cfg.Sinks)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError
	for name, p := range providers {
		field := fmt.Sprintf("providers.%s", name)
		if p.BaseURL == "" {
			errs = append(errs, FieldError{Field: field + ".base_url", Message: "must not be empty"})
		}
		if p.MaxRetries < 0 {
			errs = append(errs, FieldError{Field: field + ".max_retries", Message: "must be non-negative"})
		}
	}
	return errs
}

func validateSelector(s *SelectorConfig) []FieldError {
	var errs []FieldError
	if s.CostCeiling <= 0 {
		errs = append(errs, FieldError{Field: "selector.cost_ceiling", Message: "must be positive"})
	}
	if s.FallbackDepth < 0 {
		errs = append(errs, FieldError{Field: "selector.fallback_depth", Message: "must be non-negative"})
	}
	for name, w := range s.Strategies {
		if w.Task < 0 || w.Perf < 0 || w.Acc < 0 || w.Cost < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("selector.strategies.%s", name),
				Message: "weights must be non-negative",
			})
		}
		sum := w.Task + w.Perf + w.Acc + w.Cost
		if math.Abs(sum-1) > 1e-6 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("selector.strategies.%s", name),
				Message: fmt.Sprintf("weights must sum to 1.0, got %.4f", sum),
			})
		}
	}
	return errs
}

func validateClientPool(c *ClientPoolConfig) []FieldError {
	var errs []FieldError
	if c.DefaultMaxInFlight <= 0 {
		errs = append(errs, FieldError{Field: "client_pool.default_max_in_flight", Message: "must be positive"})
	}
	if c.FailureThreshold <= 0 {
		errs = append(errs, FieldError{Field: "client_pool.failure_threshold", Message: "must be positive"})
	}
	return errs
}

func validateExecutor(e *ExecutorConfig) []FieldError {
	var errs []FieldError
	if e.AttemptTimeout <= 0 {
		errs = append(errs, FieldError{Field: "executor.attempt_timeout", Message: "must be positive"})
	}
	if e.MaxRetries < 0 {
		errs = append(errs, FieldError{Field: "executor.max_retries", Message: "must be non-negative"})
	}
	if e.BackoffBase <= 0 {
		errs = append(errs, FieldError{Field: "executor.backoff_base", Message: "must be positive"})
	}
	if e.BackoffCap < e.BackoffBase {
		errs = append(errs, FieldError{Field: "executor.backoff_cap", Message: "must be >= backoff_base"})
	}
	return errs
}

func validateConsensus(c *ConsensusConfig) []FieldError {
	var errs []FieldError
	if c.DefaultN < 2 {
		errs = append(errs, FieldError{Field: "consensus.default_n", Message: "must be at least 2"})
	}
	switch c.DefaultStrategy {
	case "vote", "synthesis":
	default:
		errs = append(errs, FieldError{Field: "consensus.default_strategy", Message: `must be "vote" or "synthesis"`})
	}
	return errs
}

func validateSinks(s *SinksConfig) []FieldError {
	var errs []FieldError
	errs = append(errs, validateSinkBackend("sinks.usage", s.Usage)...)
	errs = append(errs, validateSinkBackend("sinks.checkpoints", s.Checkpoints)...)
	return errs
}

func validateSinkBackend(field string, b SinkBackendConfig) []FieldError {
	var errs []FieldError
	switch b.Backend {
	case "memory":
	case "sqlite":
		if b.SQLitePath == "" {
			errs = append(errs, FieldError{Field: field + ".sqlite_path", Message: "required when backend is sqlite"})
		}
	default:
		errs = append(errs, FieldError{Field: field + ".backend", Message: `must be "memory" or "sqlite"`})
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError
	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{Field: "telemetry.logging.level", Message: "must be one of debug, info, warn, error"})
	}
	if t.Tracing.Enabled && t.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "required when tracing is enabled"})
	}
	if t.Tracing.SampleRatio < 0 || t.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0 and 1"})
	}
	return errs
}
