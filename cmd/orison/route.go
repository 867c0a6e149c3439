package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mercator-hq/orison/pkg/cli"
	"github.com/mercator-hq/orison/pkg/config"
	"github.com/mercator-hq/orison/pkg/executor"
	"github.com/mercator-hq/orison/pkg/orchestrator"
	"github.com/mercator-hq/orison/pkg/scorer"
)

var routeFlags struct {
	prompt    string
	modelHint string
	taskType  string
	priority  string
	vision    bool
	tools     bool
	json      bool
	output    string
}

// routeResult is the JSON shape emitted by --output json.
type routeResult struct {
	ModelID      string   `json:"model_id"`
	CostUSD      float64  `json:"cost_usd"`
	InputTokens  int      `json:"input_tokens"`
	OutputTokens int      `json:"output_tokens"`
	Warnings     []string `json:"warnings,omitempty"`
	Content      string   `json:"content"`
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Route a single prompt through the orchestrator",
	Long: `Classify, select, and execute a single prompt against the best-fit
model, following the route_request state machine: analysis, selection,
execution, and fallback on transient failure.`,
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().StringVar(&routeFlags.prompt, "prompt", "", "prompt text (required)")
	routeCmd.Flags().StringVar(&routeFlags.modelHint, "model", "", "pin to a specific model id, skipping selection")
	routeCmd.Flags().StringVar(&routeFlags.taskType, "task-type", "", "explicit task type, skipping the analyzer")
	routeCmd.Flags().StringVar(&routeFlags.priority, "priority", "balanced", "scoring priority: quality, speed, cost, balanced")
	routeCmd.Flags().BoolVar(&routeFlags.vision, "vision", false, "require vision capability")
	routeCmd.Flags().BoolVar(&routeFlags.tools, "tools", false, "require tool-calling capability")
	routeCmd.Flags().BoolVar(&routeFlags.json, "json-mode", false, "require structured JSON output capability")
	routeCmd.Flags().StringVar(&routeFlags.output, "output", "text", "result format: text, json")
	routeCmd.MarkFlagRequired("prompt")
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	configureLogging(cfg.Telemetry)
	tracer, err := setupTracing(cfg.Telemetry)
	if err != nil {
		return cli.NewCommandError("route", fmt.Errorf("initializing tracing: %w", err))
	}
	defer tracer.Shutdown(context.Background())

	a, err := buildApp(cfg)
	if err != nil {
		return cli.NewCommandError("route", err)
	}

	req := executor.Request{
		Prompt:        routeFlags.prompt,
		ModelHint:     routeFlags.modelHint,
		TaskType:      scorer.TaskType(routeFlags.taskType),
		Strategy:      scorer.Priority(routeFlags.priority),
		RequireVision: routeFlags.vision,
		RequireTools:  routeFlags.tools,
		RequireJSON:   routeFlags.json,
	}

	ctx := cli.SetupSignalHandler()
	resp, err := a.orchestrator.RouteRequest(ctx, req)
	if err != nil {
		return cli.NewCommandError("route", describeRouteError(err))
	}

	if routeFlags.output == string(cli.FormatJSON) {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(cmd.OutOrStdout(), routeResult{
			ModelID:      resp.ModelID,
			CostUSD:      resp.CostUSD,
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
			Warnings:     resp.Warnings,
			Content:      resp.Content,
		})
	}

	fmt.Printf("model: %s\n", resp.ModelID)
	fmt.Printf("cost: $%.6f\n", resp.CostUSD)
	fmt.Printf("tokens: %d in / %d out\n", resp.InputTokens, resp.OutputTokens)
	if len(resp.Warnings) > 0 {
		fmt.Printf("warnings: %v\n", resp.Warnings)
	}
	fmt.Println()
	fmt.Println(resp.Content)
	return nil
}

// describeRouteError narrows orchestrator error kinds into messages worth
// printing at the CLI instead of a raw wrapped-error dump.
func describeRouteError(err error) error {
	var exhausted *orchestrator.ExhaustedFallbacksError
	if errors.As(err, &exhausted) {
		return fmt.Errorf("no model could serve this request after exhausting fallbacks: %w", exhausted)
	}
	var cfgErr *orchestrator.ConfigurationError
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("configuration problem: %w", cfgErr)
	}
	var valErr *orchestrator.ValidationError
	if errors.As(err, &valErr) {
		return fmt.Errorf("invalid request: %w", valErr)
	}
	var cancelled *orchestrator.CancelledError
	if errors.As(err, &cancelled) {
		return fmt.Errorf("request cancelled: %w", cancelled)
	}
	return err
}
