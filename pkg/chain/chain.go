// Package chain executes an ordered pipeline of named steps whose
// prompts may reference prior outputs, persisting a Checkpoint after
// each step and supporting resume from any prior checkpoint (spec
// §4.10). Scheduled re-runs reuse robfig/cron/v3, the same cron
// engine pkg/evidence/retention's scheduler wraps.
package chain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/mercator-hq/orison/pkg/executor"
	"github.com/mercator-hq/orison/pkg/scorer"
	"github.com/mercator-hq/orison/pkg/sink"
)

// ProgressReporter receives step-by-step progress as a pipeline runs.
// Satisfied by pkg/cli's ProgressReporter.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

type noopProgress struct{}

func (noopProgress) Start(int64)  {}
func (noopProgress) Update(int64) {}
func (noopProgress) Finish()      {}
func (noopProgress) Error(error)  {}

// Router is the subset of Orchestrator chain depends on.
type Router interface {
	RouteRequest(ctx context.Context, req executor.Request) (*executor.APIResponse, error)
}

// Step is one named stage of a Pipeline (spec §3).
type Step struct {
	Name           string
	PromptTemplate string
	ModelHint      string
	TaskType       scorer.TaskType
	RequireVision  bool
	OutputKey      string
}

// Pipeline is the Chain's input: an ordered list of steps plus initial
// context (spec §3).
type Pipeline struct {
	ID     string
	Steps  []Step
	Inputs map[string]string
}

// Result is what run_pipeline/resume_pipeline return (spec §6.3).
type Result struct {
	PipelineID    string
	Context       map[string]string
	StepsRun      int
	Warnings      []string
	LastCheckpoint string
}

// Error wraps a terminal pipeline failure with the context recoverable
// up to (but not including) the failed step.
type Error struct {
	PipelineID string
	StepName   string
	StepIndex  int
	Cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("chain: pipeline %q failed at step %q (index %d): %v", e.PipelineID, e.StepName, e.StepIndex, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Orchestrator executes Pipelines sequentially, checkpointing after
// every successful step.
type Orchestrator struct {
	router      Router
	checkpoints sink.CheckpointSink
	log         *slog.Logger
	progress    ProgressReporter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProgress reports step completion through r as pipelines run.
func WithProgress(r ProgressReporter) Option {
	return func(o *Orchestrator) { o.progress = r }
}

// New builds a chain Orchestrator.
func New(router Router, checkpoints sink.CheckpointSink, opts ...Option) *Orchestrator {
	o := &Orchestrator{router: router, checkpoints: checkpoints, log: slog.Default(), progress: noopProgress{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes pipeline from step 0.
func (o *Orchestrator) Run(ctx context.Context, pipeline Pipeline) (*Result, error) {
	vars := make(map[string]string, len(pipeline.Inputs))
	for k, v := range pipeline.Inputs {
		vars[k] = v
	}
	return o.runFrom(ctx, pipeline, vars, 0, nil)
}

// Resume loads checkpointID, advances to step_index_completed+1, merges
// overrides into the loaded context, and continues execution. A
// pipeline whose downstream step names/order differ from the original
// run is allowed but emits a ResumeSchemaDrift warning (spec §4.10).
func (o *Orchestrator) Resume(ctx context.Context, pipeline Pipeline, checkpointID string, overrides map[string]string) (*Result, error) {
	cp, err := o.checkpoints.Load(checkpointID)
	if err != nil {
		return nil, fmt.Errorf("chain: resume: %w", err)
	}

	vars := make(map[string]string, len(cp.ContextSnapshot)+len(overrides))
	for k, v := range cp.ContextSnapshot {
		vars[k] = v
	}
	for k, v := range overrides {
		vars[k] = v
	}

	var warnings []string
	if drift := detectSchemaDrift(pipeline, cp.StepIndexCompleted); drift != "" {
		warnings = append(warnings, drift)
	}

	return o.runFrom(ctx, pipeline, vars, cp.StepIndexCompleted+1, warnings)
}

func (o *Orchestrator) runFrom(ctx context.Context, pipeline Pipeline, vars map[string]string, startIndex int, warnings []string) (*Result, error) {
	lastCheckpoint := ""
	stepsRun := 0

	total := int64(len(pipeline.Steps) - startIndex)
	o.progress.Start(total)

	for i := startIndex; i < len(pipeline.Steps); i++ {
		step := pipeline.Steps[i]

		prompt, err := render(step.Name, step.PromptTemplate, vars)
		if err != nil {
			o.progress.Error(err)
			return nil, &Error{PipelineID: pipeline.ID, StepName: step.Name, StepIndex: i, Cause: err}
		}

		req := executor.Request{
			Prompt:        prompt,
			ModelHint:     step.ModelHint,
			TaskType:      step.TaskType,
			RequireVision: step.RequireVision,
		}

		resp, err := o.router.RouteRequest(ctx, req)
		if err != nil {
			o.progress.Error(err)
			return nil, &Error{PipelineID: pipeline.ID, StepName: step.Name, StepIndex: i, Cause: err}
		}

		if step.OutputKey != "" {
			vars[step.OutputKey] = resp.Content
		}
		stepsRun++
		o.progress.Update(int64(stepsRun))

		snapshot := make(map[string]string, len(vars))
		for k, v := range vars {
			snapshot[k] = v
		}
		cpID, err := o.checkpoints.Save(sink.Checkpoint{
			ID:                 uuid.NewString(),
			PipelineID:         pipeline.ID,
			StepIndexCompleted: i,
			ContextSnapshot:    snapshot,
		})
		if err != nil {
			o.progress.Error(err)
			return nil, &Error{PipelineID: pipeline.ID, StepName: step.Name, StepIndex: i, Cause: fmt.Errorf("checkpoint save failed: %w", err)}
		}
		lastCheckpoint = cpID
	}

	o.progress.Finish()
	return &Result{
		PipelineID:     pipeline.ID,
		Context:        vars,
		StepsRun:       stepsRun,
		Warnings:       warnings,
		LastCheckpoint: lastCheckpoint,
	}, nil
}

// detectSchemaDrift warns when the steps after the resume point don't
// match what would be expected if nothing had changed — specifically,
// when a downstream step's placeholders can no longer be satisfied by
// the checkpointed context plus upstream output keys.
func detectSchemaDrift(pipeline Pipeline, resumeFromIndex int) string {
	if resumeFromIndex+1 >= len(pipeline.Steps) {
		return ""
	}
	available := make(map[string]bool)
	for k := range pipeline.Inputs {
		available[k] = true
	}
	for i := 0; i <= resumeFromIndex && i < len(pipeline.Steps); i++ {
		if pipeline.Steps[i].OutputKey != "" {
			available[pipeline.Steps[i].OutputKey] = true
		}
	}
	for i := resumeFromIndex + 1; i < len(pipeline.Steps); i++ {
		step := pipeline.Steps[i]
		for _, placeholder := range referencedPlaceholders(step.PromptTemplate) {
			if !available[placeholder] {
				return fmt.Sprintf("ResumeSchemaDrift: step %q references %q, not present in the resumed context or any step up to the checkpoint", step.Name, placeholder)
			}
		}
		if step.OutputKey != "" {
			available[step.OutputKey] = true
		}
	}
	return ""
}

// ScheduleRecurring registers a cron schedule that re-runs pipeline from
// the beginning on each tick, stopping when ctx is cancelled. Optional
// per spec §4.10's "optional scheduled re-runs".
func (o *Orchestrator) ScheduleRecurring(ctx context.Context, expr string, pipeline Pipeline) (*cron.Cron, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("chain: invalid cron expression %q: %w", expr, err)
	}

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		if _, err := o.Run(ctx, pipeline); err != nil {
			o.log.Error("chain: scheduled pipeline run failed", "pipeline_id", pipeline.ID, "error", err)
		}
	}))
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	return c, nil
}
