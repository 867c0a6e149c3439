// Package sink defines the append-only usage log and the
// checkpoint store the core writes to, plus in-memory and
// sqlite-backed implementations of both.
package sink

import "time"

// Outcome classifies how an executed attempt ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeRetried      Outcome = "retried"
	OutcomeFallbackUsed Outcome = "fallback_used"
	OutcomeFailed       Outcome = "failed"
)

// UsageRecord is emitted once per executed attempt (spec §3).
type UsageRecord struct {
	TraceID       string
	ModelID       string
	Provider      string
	StartedAt     time.Time
	FinishedAt    time.Time
	InputTokens   int
	OutputTokens  int
	CostUSD       float64
	Outcome       Outcome
	AttemptIndex  int
	ErrorKind     string
}

// Checkpoint is a persisted snapshot of chain context after a step
// succeeds (spec §4.10).
type Checkpoint struct {
	ID                 string
	PipelineID          string
	StepIndexCompleted int
	ContextSnapshot     map[string]string
	CreatedAt           time.Time
}

// UsageSink is the append-only cost/run log the core writes to.
// Failures are logged and never propagate upward (spec §6.4).
type UsageSink interface {
	Append(record UsageRecord)
}

// CheckpointSink persists and restores Chain progress. Unlike
// UsageSink, all three operations may fail and a Save failure is
// fatal to the Chain run (spec §6.4).
type CheckpointSink interface {
	Save(cp Checkpoint) (string, error)
	Load(checkpointID string) (Checkpoint, error)
	List(pipelineID string) ([]Checkpoint, error)
}
