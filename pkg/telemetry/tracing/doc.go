// Package tracing provides OpenTelemetry distributed tracing for orison.
//
// # Overview
//
// The tracing package wires route_request's spans (created directly
// against otel.Tracer in pkg/orchestrator) to a real OTLP exporter,
// and provides attribute helpers for recording model, cost, and retry
// data on those spans.
//
// # Usage
//
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    Endpoint:    "localhost:4317",
//	    Insecure:    true,
//	    ServiceName: "orison",
//	    SampleRatio: 0.1,
//	}
//	tracer, err := tracing.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "route_request")
//	defer span.End()
//	tracing.SetProviderAttributes(span, "openai", "gpt-5")
//	tracing.SetCostAttributes(span, 0.015, "USD")
//
// # Sampling
//
// A single strategy is supported: TraceIDRatioBased wrapped in
// ParentBased, so a sampled parent always samples its children. Set
// SampleRatio to 1.0 to capture every trace, or lower for high-volume
// deployments.
//
// # Span Hierarchy
//
// route_request's spans mirror the state machine spec §6.1 describes:
//
//	route_request (full request)
//	├── analyze (the Analyzer is not run when a model hint and task type are both given)
//	├── select
//	└── executing (one per attempt, including fallback retries)
package tracing
