package executor

import "github.com/mercator-hq/orison/pkg/scorer"

// Request is the Orchestrator's input (spec §3).
type Request struct {
	Prompt      string
	ImageRefs   []string
	ModelHint   string
	TaskType    scorer.TaskType
	Strategy    scorer.Priority
	RequireVision bool
	RequireTools  bool
	RequireJSON   bool
	MaxTokens   int
	Temperature float64
	TraceID     string
}

// APIResponse is the Orchestrator's output (spec §3).
type APIResponse struct {
	Content      string
	ModelID      string
	InputTokens  int
	OutputTokens int
	LatencyMS    int64
	CostUSD      float64
	AttemptIndex int
	TraceID      string
	Warnings     []string
}
