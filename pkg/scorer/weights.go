package scorer

import "fmt"

// Weights are the four scoring components, each normalized to [0,1] and
// required to sum to 1 (spec §6.2).
type Weights struct {
	Task float64
	Perf float64
	Acc  float64
	Cost float64
}

// weightSumTolerance is how far a strategy's weights may drift from 1.0
// before the loader rejects it (spec §6.2: "1 ± 1e-6").
const weightSumTolerance = 1e-6

// Validate rejects weights that don't sum to 1 or contain negatives.
func (w Weights) Validate() error {
	if w.Task < 0 || w.Perf < 0 || w.Acc < 0 || w.Cost < 0 {
		return fmt.Errorf("scorer: strategy weights must be non-negative")
	}
	sum := w.Task + w.Perf + w.Acc + w.Cost
	if diff := sum - 1.0; diff > weightSumTolerance || diff < -weightSumTolerance {
		return fmt.Errorf("scorer: strategy weights must sum to 1 (±%.0e), got %v", weightSumTolerance, sum)
	}
	return nil
}

// Built-in strategies, spec §4.4.
var (
	WeightsQuality  = Weights{Task: 0.40, Perf: 0.10, Acc: 0.40, Cost: 0.10}
	WeightsSpeed    = Weights{Task: 0.20, Perf: 0.60, Acc: 0.10, Cost: 0.10}
	WeightsCost     = Weights{Task: 0.20, Perf: 0.10, Acc: 0.10, Cost: 0.60}
	WeightsBalanced = Weights{Task: 0.30, Perf: 0.25, Acc: 0.25, Cost: 0.20}
)

// DefaultStrategies is the built-in name -> weights table, the seed for
// an operator-supplied strategy config (spec §6.2).
func DefaultStrategies() map[Priority]Weights {
	return map[Priority]Weights{
		PriorityQuality:  WeightsQuality,
		PrioritySpeed:    WeightsSpeed,
		PriorityCost:     WeightsCost,
		PriorityBalanced: WeightsBalanced,
	}
}
