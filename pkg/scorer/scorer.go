package scorer

import (
	"math"

	"github.com/mercator-hq/orison/pkg/registry"
)

// taskAffinity maps a TaskType to the registry.Scores field it weighs
// most heavily, and returns that field normalized to [0,1]. Unmapped
// task types (GENERAL) get a neutral 0.5 so they neither help nor hurt
// the ranking (spec §4.4).
func taskAffinity(t TaskType, s registry.Scores) float64 {
	switch t {
	case TaskCodeGeneration, TaskDebugging, TaskRefactor:
		return s.Coding / 100
	case TaskReasoning, TaskAnalysis:
		return s.Reasoning / 100
	case TaskWriting, TaskTranslation, TaskVision:
		return s.Accuracy / 100
	default:
		return 0.5
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score computes the Selector's ranking value for model against req,
// using weights and costCeiling (the $/1K-token price above which the
// cost component bottoms out at 0). It is a pure function: no I/O, no
// shared state, and equal inputs always produce equal outputs.
//
// Hard filters (spec §4.4) return 0 before any weighted computation
// runs:
//   - req.RequireVision/RequireTools/RequireJSON not satisfied
//   - model.ContextWindow < req.MinContext
//   - model unavailable
func Score(req TaskRequirements, model registry.ModelCapability, weights Weights, costCeiling float64) float64 {
	if !model.Available {
		return 0
	}
	if req.RequireVision && !model.HasCapability(registry.CapVision) {
		return 0
	}
	if req.RequireTools && !model.HasCapability(registry.CapTools) && !model.HasCapability(registry.CapFunctionCalling) {
		return 0
	}
	if req.RequireJSON && !model.HasCapability(registry.CapJSONMode) {
		return 0
	}
	if req.MinContext > 0 && model.ContextWindow < req.MinContext {
		return 0
	}

	task := taskAffinity(req.TaskType, model.Scores)
	perf := clamp01(model.Scores.Speed / 100)
	acc := clamp01(model.Scores.Accuracy / 100)

	cost := 1.0
	if costCeiling > 0 {
		cost = 1 - clamp01(model.EffectiveCost()/costCeiling)
	}

	score := weights.Task*task + weights.Perf*perf + weights.Acc*acc + weights.Cost*cost
	return clamp01(score)
}

// Compare orders two models for tie-breaking when they score equally:
// higher accuracy first, then lower effective cost, then lower
// maturity rank (stable before beta before alpha), then lexicographic
// id (spec §4.4's tie-break ladder). It returns <0 if a should sort
// before b, >0 if b should sort before a, 0 if truly equal.
func Compare(a, b registry.ModelCapability) int {
	if a.Scores.Accuracy != b.Scores.Accuracy {
		if a.Scores.Accuracy > b.Scores.Accuracy {
			return -1
		}
		return 1
	}

	ac, bc := a.EffectiveCost(), b.EffectiveCost()
	if math.Abs(ac-bc) > 1e-9 {
		if ac < bc {
			return -1
		}
		return 1
	}

	if ar, br := a.Maturity.Rank(), b.Maturity.Rank(); ar != br {
		if ar < br {
			return -1
		}
		return 1
	}

	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
