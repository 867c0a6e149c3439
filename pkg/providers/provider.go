package providers

import "context"

// Provider is the uniform contract every backend adapter satisfies: health,
// generate, optional stream, and cost-per-token metadata. Adapters embed
// HTTPProvider for connection pooling and health polling and implement the
// provider-specific request framing, auth header injection and response
// parsing on top of it.
//
// A Provider MUST NOT retry internally. Retry with backoff is the
// Executor's responsibility (see pkg/executor); a Provider performs exactly
// one attempt per Generate/Stream call.
type Provider interface {
	// Generate sends one completion request and returns the normalized
	// response, or a classified error (see pkg/providers errors).
	Generate(ctx context.Context, call *CompletionRequest) (*CompletionResponse, error)

	// Stream sends a streaming completion request. The returned channel
	// yields incremental chunks and is closed when the stream ends; the
	// final chunk carries cumulative usage totals when the provider
	// reports them. A provider that does not support streaming returns
	// ErrStreamingUnsupported.
	Stream(ctx context.Context, call *CompletionRequest) (<-chan *StreamChunk, error)

	// Health returns the provider's cached health status. The cache is
	// refreshed on its own schedule (see pkg/providers/health.go); callers
	// never block on a live health probe here.
	Health() Health

	// Cost computes cost_usd for a completed call given raw token counts.
	// Adapters without a built-in price table return 0; callers should
	// prefer a registry ModelCapability's cost fields when available.
	Cost(inputTokens, outputTokens int, modelID string) float64

	// GetName returns the provider's configured name.
	GetName() string

	// GetType returns the provider's type tag (openai, anthropic, generic, ...).
	GetType() string

	// GetConfig returns the provider's configuration.
	GetConfig() ProviderConfig

	// Close releases resources (HTTP connections, health poller). After
	// Close the provider must not be used.
	Close() error
}

// Health is the cheap, cached health signal exposed by a Provider.
type Health struct {
	Available           bool
	Reason              string
	LastCheck           int64 // unix millis
	ConsecutiveFailures int
}

// StreamReader abstracts the underlying SSE/streaming protocol used by a
// provider adapter.
type StreamReader interface {
	// Read returns the next chunk, or io.EOF when the stream ends
	// normally, or a non-nil error.
	Read(ctx context.Context) (*StreamChunk, error)

	// Close releases stream resources.
	Close() error
}
