package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mercator-hq/orison/pkg/analyzer"
	"github.com/mercator-hq/orison/pkg/chain"
	"github.com/mercator-hq/orison/pkg/cli"
	"github.com/mercator-hq/orison/pkg/clientpool"
	"github.com/mercator-hq/orison/pkg/config"
	"github.com/mercator-hq/orison/pkg/consensus"
	"github.com/mercator-hq/orison/pkg/executor"
	"github.com/mercator-hq/orison/pkg/orchestrator"
	"github.com/mercator-hq/orison/pkg/providerfactory"
	"github.com/mercator-hq/orison/pkg/providers"
	"github.com/mercator-hq/orison/pkg/registry"
	"github.com/mercator-hq/orison/pkg/scorer"
	"github.com/mercator-hq/orison/pkg/selector"
	"github.com/mercator-hq/orison/pkg/sink"
	"github.com/mercator-hq/orison/pkg/telemetry/tracing"
)

// app bundles every component build assembles from a Config, shared by
// the route, consensus, chain, and validate-registry subcommands.
type app struct {
	cfg          *config.Config
	registry     *registry.Registry
	analyzer     *analyzer.Analyzer
	selector     *selector.Selector
	pool         *clientpool.Pool
	executor     *executor.Executor
	orchestrator *orchestrator.Orchestrator
	consensus    *consensus.Engine
	chain        *chain.Orchestrator
	usageSink    sink.UsageSink
	checkpoints  sink.CheckpointSink
}

func buildApp(cfg *config.Config) (*app, error) {
	models, err := registry.LoadManifest(cfg.Registry.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("loading registry manifest: %w", err)
	}
	reg, err := registry.NewFromModels(models)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}

	usageSink, err := buildUsageSink(cfg.Sinks.Usage)
	if err != nil {
		return nil, err
	}
	checkpointSink, err := buildCheckpointSink(cfg.Sinks.Checkpoints)
	if err != nil {
		return nil, err
	}

	factory := providerClientFactory(cfg)
	poolOpts := []clientpool.Option{
		clientpool.WithDefaultLimit(cfg.ClientPool.DefaultMaxInFlight),
		clientpool.WithFailureThreshold(cfg.ClientPool.FailureThreshold, cfg.ClientPool.FailureWindow),
	}
	for name, limit := range cfg.ClientPool.PerProviderLimits {
		poolOpts = append(poolOpts, clientpool.WithPerProviderLimit(name, limit))
	}
	pool := clientpool.New(factory, poolOpts...)

	exec := executor.New(pool, usageSink,
		executor.WithAttemptTimeout(cfg.Executor.AttemptTimeout),
		executor.WithMaxRetries(cfg.Executor.MaxRetries),
		executor.WithBackoff(cfg.Executor.BackoffBase, cfg.Executor.BackoffCap),
	)

	selOpts := []selector.Option{selector.WithCostCeiling(cfg.Selector.CostCeiling)}
	if len(cfg.Selector.Strategies) > 0 {
		strategies := scorer.DefaultStrategies()
		for name, w := range cfg.Selector.Strategies {
			strategies[scorer.Priority(name)] = scorer.Weights{Task: w.Task, Perf: w.Perf, Acc: w.Acc, Cost: w.Cost}
		}
		selOpts = append(selOpts, selector.WithStrategies(strategies))
	}
	sel := selector.New(reg, selOpts...)

	ana := analyzer.New(analyzer.WithConfidenceThreshold(cfg.Analyzer.ConfidenceThreshold))

	orch := orchestrator.New(reg, ana, sel, exec, orchestrator.WithFallbackDepth(cfg.Orchestrator.FallbackDepth))

	consensusEngine := consensus.New(orch, sel, reg)

	chainOrch := chain.New(orch, checkpointSink, chain.WithProgress(cli.NewProgressReporter(os.Stderr)))

	return &app{
		cfg:          cfg,
		registry:     reg,
		analyzer:     ana,
		selector:     sel,
		pool:         pool,
		executor:     exec,
		orchestrator: orch,
		consensus:    consensusEngine,
		chain:        chainOrch,
		usageSink:    usageSink,
		checkpoints:  checkpointSink,
	}, nil
}

func buildUsageSink(cfg config.SinkBackendConfig) (sink.UsageSink, error) {
	switch cfg.Backend {
	case "sqlite":
		return sink.NewSQLiteUsageSink(cfg.SQLitePath)
	default:
		return sink.NewMemoryUsageSink(), nil
	}
}

func buildCheckpointSink(cfg config.SinkBackendConfig) (sink.CheckpointSink, error) {
	switch cfg.Backend {
	case "sqlite":
		return sink.NewSQLiteCheckpointSink(cfg.SQLitePath)
	default:
		return sink.NewMemoryCheckpointSink(), nil
	}
}

// providerClientFactory adapts the configured provider map into a
// clientpool.Factory backed by providerfactory's adapter construction.
func providerClientFactory(cfg *config.Config) clientpool.Factory {
	return func(name string) (providers.Provider, error) {
		pc, ok := cfg.Providers[name]
		if !ok {
			return nil, fmt.Errorf("cmd/orison: no provider %q configured", name)
		}
		return providerfactory.NewProvider(providers.ProviderConfig{
			Name:    name,
			BaseURL: pc.BaseURL,
			APIKey:  pc.APIKey,
			Timeout: pc.Timeout,
		})
	}
}

// setupTracing initializes the global TracerProvider so spans the
// Orchestrator creates land on a real exporter.
func setupTracing(cfg config.TelemetryConfig) (*tracing.Tracer, error) {
	return tracing.New(&cfg.Tracing)
}

func configureLogging(cfg config.TelemetryConfig) {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.Logging.AddSource}
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
