package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute helpers give route_request, the Consensus Engine, and
// the Chain Orchestrator a consistent attribute vocabulary under the
// "orison.*" namespace, alongside OpenTelemetry's own semantic
// conventions (http.*, rpc.*, ...).
const (
	AttrProvider = "orison.provider"
	AttrModel    = "orison.model"

	AttrRequestID = "orison.request_id"
	AttrAPIKey    = "orison.api_key"
	AttrUser      = "orison.user"
	AttrTeam      = "orison.team"
	AttrSession   = "orison.session"

	AttrTokensPrompt     = "orison.tokens.prompt"
	AttrTokensCompletion = "orison.tokens.completion"
	AttrTokensTotal      = "orison.tokens.total"

	AttrCost         = "orison.cost.total"
	AttrCostCurrency = "orison.cost.currency"
	AttrCostPerToken = "orison.cost.per_token"

	AttrErrorType    = "orison.error.type"
	AttrErrorMessage = "error.message"

	AttrDuration   = "orison.duration_ms"
	AttrRetryCount = "orison.retry_count"
)

// SetProviderAttributes records which provider/model served the span.
func SetProviderAttributes(span trace.Span, provider, model string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
}

// SetRequestAttributes records request identity, redacting the API key
// to its first 4 characters.
func SetRequestAttributes(span trace.Span, requestID, apiKey, user string) {
	attrs := []attribute.KeyValue{attribute.String(AttrRequestID, requestID)}
	if apiKey != "" {
		redacted := apiKey
		if len(apiKey) > 4 {
			redacted = apiKey[:4] + "***"
		}
		attrs = append(attrs, attribute.String(AttrAPIKey, redacted))
	}
	if user != "" {
		attrs = append(attrs, attribute.String(AttrUser, user))
	}
	span.SetAttributes(attrs...)
}

// SetTokenAttributes records prompt/completion/total token counts.
func SetTokenAttributes(span trace.Span, promptTokens, completionTokens int) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
		attribute.Int(AttrTokensTotal, promptTokens+completionTokens),
	)
}

// SetCostAttributes records the request's USD cost.
func SetCostAttributes(span trace.Span, cost float64, currency string) {
	span.SetAttributes(
		attribute.Float64(AttrCost, cost),
		attribute.String(AttrCostCurrency, currency),
	)
}

// SetCostWithTokens records tokens, cost, and the derived cost-per-token.
func SetCostWithTokens(span trace.Span, promptTokens, completionTokens int, cost float64) {
	SetTokenAttributes(span, promptTokens, completionTokens)
	SetCostAttributes(span, cost, "USD")

	if total := promptTokens + completionTokens; total > 0 {
		span.SetAttributes(attribute.Float64(AttrCostPerToken, cost/float64(total)))
	}
}

// SetErrorAttributes records err on the span and sets its status to
// Error. A no-op when err is nil.
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute records elapsed time in milliseconds.
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// SetRetryAttribute records the fallback attempt index (spec §4.8).
func SetRetryAttribute(span trace.Span, retryCount int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, retryCount))
}

// SetTeamAttribute records the requesting team, when known.
func SetTeamAttribute(span trace.Span, team string) {
	if team != "" {
		span.SetAttributes(attribute.String(AttrTeam, team))
	}
}

// SetSessionAttribute records the chain/consensus session id.
func SetSessionAttribute(span trace.Span, session string) {
	if session != "" {
		span.SetAttributes(attribute.String(AttrSession, session))
	}
}

// AttributeBuilder provides a fluent interface for building span
// attributes incrementally before a span is started.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates an empty AttributeBuilder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{attrs: make([]attribute.KeyValue, 0, 8)}
}

func (ab *AttributeBuilder) WithProvider(provider, model string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
	return ab
}

func (ab *AttributeBuilder) WithRequest(requestID, user string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrRequestID, requestID))
	if user != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrUser, user))
	}
	return ab
}

func (ab *AttributeBuilder) WithTokens(promptTokens, completionTokens int) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
		attribute.Int(AttrTokensTotal, promptTokens+completionTokens),
	)
	return ab
}

func (ab *AttributeBuilder) WithCost(cost float64) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Float64(AttrCost, cost),
		attribute.String(AttrCostCurrency, "USD"),
	)
	return ab
}

func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to an already-started span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
