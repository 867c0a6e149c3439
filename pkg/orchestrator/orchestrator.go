// Package orchestrator is the core's top-level entry point: it
// composes the Analyzer, Selector, and Executor into route_request's
// ACCEPTED -> ANALYZED -> SELECTED -> EXECUTING -> (DONE | FALLBACK) ->
// (DONE | EXHAUSTED) state machine (spec §4.8), emitting OTel spans
// under a shared trace id: route_request, analyze, select, and one
// executing span per attempt.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mercator-hq/orison/pkg/analyzer"
	"github.com/mercator-hq/orison/pkg/executor"
	"github.com/mercator-hq/orison/pkg/registry"
	"github.com/mercator-hq/orison/pkg/scorer"
	"github.com/mercator-hq/orison/pkg/selector"
	"github.com/mercator-hq/orison/pkg/telemetry/tracing"
)

// DefaultFallbackDepth bounds how many fallback candidates route_request
// will try after the primary (spec §6.5).
const DefaultFallbackDepth = 3

var tracer = otel.Tracer("github.com/mercator-hq/orison/pkg/orchestrator")

// Orchestrator composes the core subsystems into route_request.
type Orchestrator struct {
	registry      *registry.Registry
	analyzer      *analyzer.Analyzer
	selector      *selector.Selector
	executor      *executor.Executor
	fallbackDepth int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFallbackDepth overrides DefaultFallbackDepth.
func WithFallbackDepth(n int) Option {
	return func(o *Orchestrator) { o.fallbackDepth = n }
}

// New builds an Orchestrator from its constituent subsystems.
func New(reg *registry.Registry, a *analyzer.Analyzer, s *selector.Selector, ex *executor.Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{registry: reg, analyzer: a, selector: s, executor: ex, fallbackDepth: DefaultFallbackDepth}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RouteRequest runs the full state machine for req and returns the
// final APIResponse, or a classified error (ValidationError,
// ConfigurationError, ExhaustedFallbacksError, CancelledError).
func (o *Orchestrator) RouteRequest(ctx context.Context, req executor.Request) (*executor.APIResponse, error) {
	if req.TraceID == "" {
		req.TraceID = uuid.NewString()
	}

	ctx, span := tracer.Start(ctx, "route_request", trace.WithAttributes(attribute.String("trace_id", req.TraceID)))
	defer span.End()

	if o.registry.Len() == 0 {
		return nil, &ConfigurationError{Reason: "model registry is empty"}
	}

	select {
	case <-ctx.Done():
		return nil, &CancelledError{TraceID: req.TraceID}
	default:
	}

	analyzeCtx, analyzeSpan := tracer.Start(ctx, "analyze", trace.WithAttributes(attribute.String("trace_id", req.TraceID)))
	taskReq := o.analyze(analyzeCtx, req)
	analyzeSpan.End()

	tried := make(map[string]bool)
	var attempts []Attempt
	var warnings []string

	selectCtx, selectSpan := tracer.Start(ctx, "select", trace.WithAttributes(attribute.String("trace_id", req.TraceID)))
	primary, err := o.selectPrimary(selectCtx, req, taskReq)
	selectSpan.End()
	if err != nil {
		return nil, err
	}
	if primary == "" {
		return nil, &ExhaustedFallbacksError{TraceID: req.TraceID, Attempts: []Attempt{
			{ErrorKind: "ValidationError", Message: "no model in the registry satisfies the task's requirements"},
		}}
	}

	candidate := primary
	attemptIndex := 0
	for {
		select {
		case <-ctx.Done():
			return nil, &CancelledError{TraceID: req.TraceID}
		default:
		}

		model, err := o.registry.Get(candidate)
		if err != nil {
			attempts = append(attempts, Attempt{ModelID: candidate, ErrorKind: "ValidationError", Message: err.Error()})
			tried[candidate] = true
		} else {
			_, execSpan := tracer.Start(ctx, "executing", trace.WithAttributes(
				attribute.String("trace_id", req.TraceID),
				attribute.String("model_id", candidate),
				attribute.Int("attempt_index", attemptIndex),
			))
			tracing.SetProviderAttributes(execSpan, string(model.Provider), candidate)
			tracing.SetRetryAttribute(execSpan, attemptIndex)
			resp, execErr := o.executor.Run(ctx, req, model, attemptIndex)
			tried[candidate] = true

			if execErr == nil {
				tracing.SetCostWithTokens(execSpan, resp.InputTokens, resp.OutputTokens, resp.CostUSD)
				tracing.SetStatus(execSpan, nil)
				execSpan.End()
				tracing.SetCostWithTokens(span, resp.InputTokens, resp.OutputTokens, resp.CostUSD)
				tracing.SetProviderAttributes(span, string(model.Provider), candidate)
				tracing.SetStatus(span, nil)
				resp.Warnings = warnings
				return resp, nil
			}

			tracing.SetErrorAttributes(execSpan, execErr, "ExecutorError")
			execSpan.End()

			var cancelled *executor.Error
			if errors.As(execErr, &cancelled) && cancelled.Kind == executor.KindCancelled {
				return nil, &CancelledError{TraceID: req.TraceID}
			}

			attempt := attemptFromExecutorError(candidate, execErr)
			attempts = append(attempts, attempt)
			warnings = append(warnings, fmt.Sprintf("skipped %s: %s", candidate, attempt.ErrorKind))
		}

		attemptIndex++

		excluded := make([]string, 0, len(tried))
		for id := range tried {
			excluded = append(excluded, id)
		}
		chain := o.selector.FallbackChainN(taskReq, excluded, o.fallbackDepth)
		if len(chain) == 0 || attemptIndex > o.fallbackDepth {
			exhausted := &ExhaustedFallbacksError{TraceID: req.TraceID, Attempts: attempts}
			tracing.SetErrorAttributes(span, exhausted, "ExhaustedFallbacksError")
			return nil, exhausted
		}
		candidate = chain[0]
	}
}

// analyze runs the Analyzer unless the request already carries an
// explicit model hint and task type (spec §4.8's ACCEPTED -> ANALYZED
// skip condition).
func (o *Orchestrator) analyze(ctx context.Context, req executor.Request) scorer.TaskRequirements {
	if req.ModelHint != "" && req.TaskType != "" {
		return scorer.TaskRequirements{
			TaskType:      req.TaskType,
			RequireVision: req.RequireVision,
			RequireTools:  req.RequireTools,
			RequireJSON:   req.RequireJSON,
			Priority:      req.Strategy,
			Confidence:    1,
		}
	}
	return o.analyzer.Analyze(ctx, req.Prompt, analyzer.Flags{
		RequireTools: req.RequireTools,
		RequireJSON:  req.RequireJSON,
		Priority:     req.Strategy,
	})
}

// selectPrimary resolves the model_hint if present and valid, else
// asks the Selector for its top pick.
func (o *Orchestrator) selectPrimary(ctx context.Context, req executor.Request, taskReq scorer.TaskRequirements) (string, error) {
	if req.ModelHint != "" {
		if _, err := o.registry.Get(req.ModelHint); err == nil {
			return req.ModelHint, nil
		}
		return "", &ValidationError{Reason: fmt.Sprintf("model_hint %q does not resolve to a usable model", req.ModelHint)}
	}

	top := o.selector.Select(taskReq, 1)
	if len(top) == 0 {
		return "", nil
	}
	return top[0], nil
}
