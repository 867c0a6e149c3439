// Package scorer implements the pure scoring function the Selector ranks
// models with: (TaskRequirements, ModelCapability, StrategyWeights) ->
// score in [0,1]. Nothing in this package performs I/O.
package scorer

// TaskType classifies what kind of work a prompt needs.
type TaskType string

const (
	TaskCodeGeneration TaskType = "CODE_GENERATION"
	TaskDebugging      TaskType = "DEBUGGING"
	TaskRefactor       TaskType = "REFACTOR"
	TaskReasoning      TaskType = "REASONING"
	TaskWriting        TaskType = "WRITING"
	TaskAnalysis       TaskType = "ANALYSIS"
	TaskTranslation    TaskType = "TRANSLATION"
	TaskVision         TaskType = "VISION"
	TaskGeneral        TaskType = "GENERAL"
)

// Priority names an operator-facing scoring preference.
type Priority string

const (
	PriorityQuality  Priority = "quality"
	PrioritySpeed    Priority = "speed"
	PriorityCost     Priority = "cost"
	PriorityBalanced Priority = "balanced"
)

// TaskRequirements is the Analyzer's output and the Scorer/Selector's
// input.
type TaskRequirements struct {
	TaskType      TaskType
	MinContext    int
	RequireVision bool
	RequireTools  bool
	RequireJSON   bool
	Priority      Priority
	Confidence    float64
}
