package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mercator-hq/orison/pkg/cli"
	"github.com/mercator-hq/orison/pkg/config"
	"github.com/mercator-hq/orison/pkg/consensus"
	"github.com/mercator-hq/orison/pkg/executor"
	"github.com/mercator-hq/orison/pkg/scorer"
)

var consensusFlags struct {
	prompt   string
	n        int
	strategy string
	taskType string
	priority string
}

var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Poll multiple models and aggregate their answers",
	Long: `Run the same prompt against N independently selected models and
aggregate the results by majority vote or arbiter synthesis, reporting
an agreement score and band.`,
	RunE: runConsensus,
}

func init() {
	rootCmd.AddCommand(consensusCmd)

	consensusCmd.Flags().StringVar(&consensusFlags.prompt, "prompt", "", "prompt text (required)")
	consensusCmd.Flags().IntVar(&consensusFlags.n, "n", consensus.DefaultN, "number of participant models")
	consensusCmd.Flags().StringVar(&consensusFlags.strategy, "strategy", "vote", "aggregation strategy: vote, synthesis")
	consensusCmd.Flags().StringVar(&consensusFlags.taskType, "task-type", string(scorer.TaskGeneral), "task type for selection")
	consensusCmd.Flags().StringVar(&consensusFlags.priority, "priority", string(scorer.PriorityBalanced), "scoring priority")
	consensusCmd.MarkFlagRequired("prompt")
}

func runConsensus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	configureLogging(cfg.Telemetry)
	tracer, err := setupTracing(cfg.Telemetry)
	if err != nil {
		return cli.NewCommandError("consensus", fmt.Errorf("initializing tracing: %w", err))
	}
	defer tracer.Shutdown(context.Background())

	a, err := buildApp(cfg)
	if err != nil {
		return cli.NewCommandError("consensus", err)
	}

	req := consensus.Request{
		Base: executor.Request{
			Prompt:   consensusFlags.prompt,
			TaskType: scorer.TaskType(consensusFlags.taskType),
			Strategy: scorer.Priority(consensusFlags.priority),
		},
		N:              consensusFlags.n,
		Strategy:       consensus.Strategy(consensusFlags.strategy),
		ArbiterModelID: cfg.Consensus.ArbiterModelID,
	}
	taskReq := scorer.TaskRequirements{
		TaskType: scorer.TaskType(consensusFlags.taskType),
		Priority: scorer.Priority(consensusFlags.priority),
	}

	ctx := cli.SetupSignalHandler()
	result, err := a.consensus.Run(ctx, req, taskReq)
	if err != nil {
		var lowQuorum *consensus.LowQuorumError
		if errors.As(err, &lowQuorum) {
			return cli.NewCommandError("consensus", fmt.Errorf("not enough participants succeeded: %w", lowQuorum))
		}
		return cli.NewCommandError("consensus", err)
	}

	fmt.Printf("strategy: %s\n", result.StrategyUsed)
	fmt.Printf("agreement: %.2f (%s)\n", result.AgreementScore, result.AgreementBand)
	for _, p := range result.Individual {
		fmt.Printf("  - [%.2f] %s\n", p.Score, truncate(p.Content, 80))
	}
	fmt.Println()
	fmt.Println(result.AggregatedContent)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
