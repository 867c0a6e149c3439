// Package executor runs one attempt (and its local retries) against a
// single (ModelCapability, ProviderClient) pair, owning the
// timeout/backoff/cost-accounting contract of spec §4.7. It never
// chooses another model — that is the Orchestrator's job.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mercator-hq/orison/pkg/clientpool"
	"github.com/mercator-hq/orison/pkg/providers"
	"github.com/mercator-hq/orison/pkg/registry"
	"github.com/mercator-hq/orison/pkg/sink"
)

// DefaultAttemptTimeout is the per-attempt deadline (spec §4.7).
const DefaultAttemptTimeout = 60 * time.Second

// DefaultMaxRetries is the number of local retries on a transient
// error, not counting the initial attempt (spec §4.7).
const DefaultMaxRetries = 2

// Executor runs generate calls with retry, backoff, and cost/usage
// accounting.
type Executor struct {
	pool           *clientpool.Pool
	usage          sink.UsageSink
	attemptTimeout time.Duration
	maxRetries     int
	backoffBase    time.Duration
	backoffCap     time.Duration
	log            *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

func WithAttemptTimeout(d time.Duration) Option { return func(e *Executor) { e.attemptTimeout = d } }
func WithMaxRetries(n int) Option               { return func(e *Executor) { e.maxRetries = n } }
func WithBackoff(base, ceiling time.Duration) Option {
	return func(e *Executor) { e.backoffBase, e.backoffCap = base, ceiling }
}
func WithLogger(l *slog.Logger) Option { return func(e *Executor) { e.log = l } }

// New builds an Executor over pool, logging completed attempts to usage.
func New(pool *clientpool.Pool, usage sink.UsageSink, opts ...Option) *Executor {
	e := &Executor{
		pool:           pool,
		usage:          usage,
		attemptTimeout: DefaultAttemptTimeout,
		maxRetries:     DefaultMaxRetries,
		backoffBase:    defaultBackoffBase,
		backoffCap:     defaultBackoffCap,
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes req against model, retrying transient failures locally
// per spec §4.7, and returns a completed APIResponse or a classified
// *Error. attemptIndex is stamped on both the UsageRecord and the
// returned response so the Orchestrator can report which global
// attempt this was.
func (e *Executor) Run(ctx context.Context, req Request, model registry.ModelCapability, attemptIndex int) (*APIResponse, error) {
	var lastErr *Error
	outcome := sink.OutcomeOK

	for local := 0; local <= e.maxRetries; local++ {
		if local > 0 {
			delay := backoffDelay(local-1, e.backoffBase, e.backoffCap)
			if lastErr != nil {
				if rl, ok := asRateLimit(lastErr.Cause); ok && rl.RetryAfter > 0 {
					delay = rl.RetryAfter
				}
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &Error{Kind: KindCancelled, Message: ctx.Err().Error(), ModelID: model.ID, Cause: ctx.Err()}
			}
			outcome = sink.OutcomeRetried
		}

		resp, err := e.attempt(ctx, req, model)
		if err == nil {
			resp.AttemptIndex = attemptIndex
			e.emitUsage(req, model, resp, outcome, "", attemptIndex)
			return resp, nil
		}

		lastErr = classify(model.ID, err)
		if lastErr.Kind == KindCancelled || !lastErr.Kind.IsTransient() {
			break
		}
		e.log.Warn("executor: transient error, retrying", "model", model.ID, "kind", lastErr.Kind, "attempt", local)
	}

	e.emitUsage(req, model, nil, sink.OutcomeFailed, string(lastErr.Kind), attemptIndex)
	return nil, lastErr
}

func (e *Executor) attempt(ctx context.Context, req Request, model registry.ModelCapability) (*APIResponse, error) {
	lease, err := e.pool.Acquire(ctx, string(model.Provider))
	if err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	start := time.Now()
	call := &providers.CompletionRequest{
		Model:       model.APIName,
		Messages:    []providers.Message{{Role: providers.RoleUser, Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	result, genErr := lease.Client.Generate(attemptCtx, call)
	lease.Release(genErr == nil)
	if genErr != nil {
		return nil, genErr
	}

	cost := model.Cost(result.Usage.PromptTokens, result.Usage.CompletionTokens)
	return &APIResponse{
		Content:      result.Content,
		ModelID:      model.ID,
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
		LatencyMS:    time.Since(start).Milliseconds(),
		CostUSD:      cost,
		TraceID:      req.TraceID,
	}, nil
}

func (e *Executor) emitUsage(req Request, model registry.ModelCapability, resp *APIResponse, outcome sink.Outcome, errorKind string, attemptIndex int) {
	if e.usage == nil {
		return
	}
	rec := sink.UsageRecord{
		TraceID:      req.TraceID,
		ModelID:      model.ID,
		Provider:     string(model.Provider),
		StartedAt:    time.Now(),
		FinishedAt:   time.Now(),
		Outcome:      outcome,
		AttemptIndex: attemptIndex,
		ErrorKind:    errorKind,
	}
	if resp != nil {
		rec.InputTokens = resp.InputTokens
		rec.OutputTokens = resp.OutputTokens
		rec.CostUSD = resp.CostUSD
	}
	e.usage.Append(rec)
}

func asRateLimit(err error) (*providers.RateLimitError, bool) {
	var rl *providers.RateLimitError
	ok := errors.As(err, &rl)
	return rl, ok
}
