package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mercator-hq/orison/pkg/chain"
	"github.com/mercator-hq/orison/pkg/cli"
	"github.com/mercator-hq/orison/pkg/config"
	"github.com/mercator-hq/orison/pkg/scorer"
)

var chainFlags struct {
	file       string
	resumeFrom string
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Run a multi-step pipeline",
	Long: `Execute an ordered pipeline of prompt steps read from a YAML file,
checkpointing the bound context after each step. With --resume-from, a
failed or interrupted pipeline continues from its last checkpoint
instead of re-running completed steps.`,
	RunE: runChain,
}

func init() {
	rootCmd.AddCommand(chainCmd)

	chainCmd.Flags().StringVar(&chainFlags.file, "file", "", "path to a pipeline definition YAML file (required)")
	chainCmd.Flags().StringVar(&chainFlags.resumeFrom, "resume-from", "", "checkpoint id to resume from")
	chainCmd.MarkFlagRequired("file")
}

// pipelineFile is the on-disk YAML shape for a chain.Pipeline.
type pipelineFile struct {
	ID     string            `yaml:"id"`
	Inputs map[string]string `yaml:"inputs"`
	Steps  []struct {
		Name           string `yaml:"name"`
		PromptTemplate string `yaml:"prompt_template"`
		ModelHint      string `yaml:"model_hint"`
		TaskType       string `yaml:"task_type"`
		RequireVision  bool   `yaml:"require_vision"`
		OutputKey      string `yaml:"output_key"`
	} `yaml:"steps"`
}

func loadPipeline(path string) (chain.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chain.Pipeline{}, fmt.Errorf("reading pipeline file: %w", err)
	}
	var pf pipelineFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return chain.Pipeline{}, fmt.Errorf("parsing pipeline file: %w", err)
	}

	pipeline := chain.Pipeline{ID: pf.ID, Inputs: pf.Inputs}
	for _, s := range pf.Steps {
		pipeline.Steps = append(pipeline.Steps, chain.Step{
			Name:           s.Name,
			PromptTemplate: s.PromptTemplate,
			ModelHint:      s.ModelHint,
			TaskType:       scorer.TaskType(s.TaskType),
			RequireVision:  s.RequireVision,
			OutputKey:      s.OutputKey,
		})
	}
	return pipeline, nil
}

func runChain(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	configureLogging(cfg.Telemetry)
	tracer, err := setupTracing(cfg.Telemetry)
	if err != nil {
		return cli.NewCommandError("chain", fmt.Errorf("initializing tracing: %w", err))
	}
	defer tracer.Shutdown(context.Background())

	a, err := buildApp(cfg)
	if err != nil {
		return cli.NewCommandError("chain", err)
	}

	pipeline, err := loadPipeline(chainFlags.file)
	if err != nil {
		return cli.NewCommandError("chain", err)
	}

	ctx := cli.SetupSignalHandler()

	var result *chain.Result
	if chainFlags.resumeFrom != "" {
		result, err = a.chain.Resume(ctx, pipeline, chainFlags.resumeFrom, nil)
	} else {
		result, err = a.chain.Run(ctx, pipeline)
	}
	if err != nil {
		if chainErr, ok := err.(*chain.Error); ok {
			return cli.NewCommandError("chain", fmt.Errorf(
				"pipeline %q failed at step %q (index %d): %w",
				chainErr.PipelineID, chainErr.StepName, chainErr.StepIndex, chainErr.Cause))
		}
		return cli.NewCommandError("chain", err)
	}

	fmt.Printf("pipeline: %s\n", result.PipelineID)
	fmt.Printf("steps run: %d\n", result.StepsRun)
	if len(result.Warnings) > 0 {
		fmt.Printf("warnings: %v\n", result.Warnings)
	}
	for k, v := range result.Context {
		fmt.Printf("  %s = %s\n", k, truncate(v, 120))
	}
	return nil
}
