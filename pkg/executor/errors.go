package executor

import "fmt"

// Kind classifies an error the Executor surfaces, per the taxonomy the
// Orchestrator switches on to decide retry vs. fallback.
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindConfiguration     Kind = "ConfigurationError"
	KindProviderUnavailable Kind = "ProviderUnavailable"
	KindRateLimited       Kind = "RateLimited"
	KindTimeout           Kind = "Timeout"
	KindNetworkTransient  Kind = "NetworkTransient"
	KindContentPolicy     Kind = "ContentPolicy"
	KindCancelled         Kind = "Cancelled"
)

// transientKinds retry locally inside the Executor; everything else is
// permanent for this attempt and bubbles to the Orchestrator.
var transientKinds = map[Kind]bool{
	KindRateLimited:      true,
	KindTimeout:          true,
	KindNetworkTransient: true,
}

// IsTransient reports whether k should be retried with backoff.
func (k Kind) IsTransient() bool { return transientKinds[k] }

// Error is the structured error an Executor attempt returns.
type Error struct {
	Kind     Kind
	Message  string
	ModelID  string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("executor: %s on model %q: %s", e.Kind, e.ModelID, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }
