// Package analyzer classifies a prompt into a TaskRequirements record
// via a two-stage pipeline: an ordered set of heuristic rules, falling
// back to a designated cheap model when no rule clears the confidence
// threshold (spec §4.3). The heuristic stage's compiled-pattern,
// first-match-wins idiom is grounded on
// pkg/processing/content.Analyzer's PII/injection detectors.
package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/mercator-hq/orison/pkg/scorer"
)

// DefaultConfidenceThreshold is the minimum heuristic confidence that
// wins without falling back to the LLM classifier.
const DefaultConfidenceThreshold = 0.8

// tokensPerChar approximates prompt length -> token count for
// min_context sizing (spec §4.3: "prompt length × 4 + safety margin"
// is stated in characters-to-tokens terms the way most tokenizers
// average roughly 4 characters per token).
const tokensPerChar = 1.0 / 4.0

// contextSafetyMargin is added on top of the estimated prompt tokens
// to leave room for the model's response.
const contextSafetyMargin = 512

// rule is one ordered heuristic: if pattern matches prompt, propose
// taskType with confidence.
type rule struct {
	taskType   scorer.TaskType
	confidence float64
	pattern    *regexp.Regexp
}

var imageRefPattern = regexp.MustCompile(`(?i)(https?://\S+\.(?:png|jpe?g|gif|webp))|(\[image[^\]]*\])|(data:image/)`)

// Classifier is a cheap fallback model invocation the Analyzer calls
// when no heuristic rule clears the confidence threshold. It is
// implemented by pkg/orchestrator so the Analyzer never imports the
// Orchestrator directly (that would be a cycle) — the classifier is a
// dependency injected by whoever wires the two together.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (scorer.TaskType, float64, error)
}

// Analyzer implements the two-stage classification pipeline.
type Analyzer struct {
	rules      []rule
	threshold  float64
	classifier Classifier
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClassifier sets the LLM fallback classifier used when no
// heuristic rule crosses the confidence threshold.
func WithClassifier(c Classifier) Option {
	return func(a *Analyzer) { a.classifier = c }
}

// WithConfidenceThreshold overrides DefaultConfidenceThreshold.
func WithConfidenceThreshold(t float64) Option {
	return func(a *Analyzer) { a.threshold = t }
}

// New builds an Analyzer with the default ordered rule set.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{rules: defaultRules(), threshold: DefaultConfidenceThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func defaultRules() []rule {
	return []rule{
		{scorer.TaskDebugging, 0.9, regexp.MustCompile(`(?i)\b(stack trace|traceback|panic:|exception|why (is|does) (my|this) (code|function|test)|fix this (bug|error)|not working)\b`)},
		{scorer.TaskCodeGeneration, 0.88, regexp.MustCompile(`(?i)\b(write|implement|create) (a |an |the )?(function|class|method|script|program|api|endpoint)\b`)},
		{scorer.TaskRefactor, 0.85, regexp.MustCompile(`(?i)\b(refactor|clean up|simplify|restructure|rename|extract) (this |the )?(code|function|method|module)\b`)},
		{scorer.TaskTranslation, 0.9, regexp.MustCompile(`(?i)\btranslate\b.*\b(to|into)\b`)},
		{scorer.TaskVision, 0.9, imageRefPattern},
		{scorer.TaskReasoning, 0.82, regexp.MustCompile(`(?i)\b(prove|derive|solve|calculate|step by step|what is the logical)\b`)},
		{scorer.TaskAnalysis, 0.8, regexp.MustCompile(`(?i)\b(analyze|summarize|compare|evaluate) (this |the )?(data|report|document|results)\b`)},
		{scorer.TaskWriting, 0.8, regexp.MustCompile(`(?i)\b(write|draft|compose) (a |an |the )?(essay|email|story|poem|blog post|article)\b`)},
	}
}

// Flags carries the explicit request-level overrides the Analyzer
// passes through untouched (spec §4.3).
type Flags struct {
	RequireTools bool
	RequireJSON  bool
	Priority     scorer.Priority
}

// Analyze classifies prompt into a TaskRequirements. It never blocks on
// I/O unless every heuristic rule misses, in which case it invokes the
// configured Classifier (a single call through the Orchestrator,
// bypassing Consensus, per spec §4.3).
func (a *Analyzer) Analyze(ctx context.Context, prompt string, flags Flags) scorer.TaskRequirements {
	taskType, confidence := a.classifyHeuristic(prompt)
	if confidence < a.threshold {
		taskType, confidence = a.classifyFallback(ctx, prompt)
	}

	priority := flags.Priority
	if priority == "" {
		priority = scorer.PriorityBalanced
	}

	return scorer.TaskRequirements{
		TaskType:      taskType,
		MinContext:    estimateMinContext(prompt),
		RequireVision: imageRefPattern.MatchString(prompt),
		RequireTools:  flags.RequireTools,
		RequireJSON:   flags.RequireJSON,
		Priority:      priority,
		Confidence:    confidence,
	}
}

// classifyHeuristic returns the first rule whose pattern matches and
// whose confidence reaches the threshold; rule order encodes priority.
func (a *Analyzer) classifyHeuristic(prompt string) (scorer.TaskType, float64) {
	for _, r := range a.rules {
		if r.confidence >= a.threshold && r.pattern.MatchString(prompt) {
			return r.taskType, r.confidence
		}
	}
	return scorer.TaskGeneral, 0
}

// classifyFallback asks the configured Classifier; absent a classifier
// or on classification failure, it falls back to GENERAL with
// confidence 0 (spec §4.3).
func (a *Analyzer) classifyFallback(ctx context.Context, prompt string) (scorer.TaskType, float64) {
	if a.classifier == nil {
		return scorer.TaskGeneral, 0
	}
	taskType, confidence, err := a.classifier.Classify(ctx, prompt)
	if err != nil {
		return scorer.TaskGeneral, 0
	}
	return taskType, confidence
}

func estimateMinContext(prompt string) int {
	estimated := int(float64(len(strings.TrimSpace(prompt))) * tokensPerChar)
	return estimated + contextSafetyMargin
}
