package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mercator-hq/orison/pkg/executor"
)

// Attempt records one tried model and how it ended, for aggregation
// into an ExhaustedFallbacksError (spec §7).
type Attempt struct {
	ModelID   string
	ErrorKind string
	Message   string
}

// ExhaustedFallbacksError is returned when every candidate in the
// fallback chain has failed.
type ExhaustedFallbacksError struct {
	TraceID  string
	Attempts []Attempt
}

func (e *ExhaustedFallbacksError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s (%s)", a.ModelID, a.ErrorKind, a.Message)
	}
	return fmt.Sprintf("orchestrator: exhausted fallbacks for trace %s: %s", e.TraceID, strings.Join(parts, "; "))
}

// ConfigurationError signals a registry/strategy/secret misconfiguration
// that makes route_request impossible to even attempt.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "orchestrator: configuration error: " + e.Reason
}

// ValidationError signals a malformed request or unresolvable model hint.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "orchestrator: validation error: " + e.Reason
}

// CancelledError wraps a caller-deadline/explicit-cancellation exit.
type CancelledError struct {
	TraceID string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("orchestrator: request %s cancelled", e.TraceID)
}

// FeatureDisabledError is returned when a disabled_features entry
// blocks an operation (spec §6.5).
type FeatureDisabledError struct {
	Feature string
}

func (e *FeatureDisabledError) Error() string {
	return fmt.Sprintf("orchestrator: feature %q is disabled", e.Feature)
}

func attemptFromExecutorError(modelID string, err error) Attempt {
	var execErr *executor.Error
	if errors.As(err, &execErr) {
		return Attempt{ModelID: modelID, ErrorKind: string(execErr.Kind), Message: execErr.Message}
	}
	return Attempt{ModelID: modelID, ErrorKind: "Unknown", Message: err.Error()}
}
