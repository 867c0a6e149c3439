// Package selector ranks catalog models against a task's requirements.
// It composes pkg/registry (the catalog) with pkg/scorer (the pure
// scoring function) the way pkg/routing's provider selector composes a
// provider map with health/model filters — but over ModelCapability and
// TaskRequirements, not live provider connections.
package selector

import (
	"log/slog"
	"sort"

	"github.com/mercator-hq/orison/pkg/registry"
	"github.com/mercator-hq/orison/pkg/scorer"
)

// DefaultFallbackDepth bounds FallbackChain when the caller doesn't
// specify one (spec §4.5).
const DefaultFallbackDepth = 3

// Selector ranks registry.ModelCapability entries for a given task.
type Selector struct {
	reg        *registry.Registry
	strategies map[scorer.Priority]scorer.Weights
	costCeil   float64
	log        *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithStrategies overrides the built-in quality/speed/cost/balanced
// weight tables, e.g. with operator-supplied config.
func WithStrategies(strategies map[scorer.Priority]scorer.Weights) Option {
	return func(s *Selector) { s.strategies = strategies }
}

// WithCostCeiling sets the $/1K-token price above which the cost
// component of scoring bottoms out at 0.
func WithCostCeiling(ceiling float64) Option {
	return func(s *Selector) { s.costCeil = ceiling }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) { s.log = l }
}

// New builds a Selector over reg using the default strategy tables and
// a cost ceiling of 0.06 $/1K tokens (roughly top-of-market pricing
// across the catalog at time of writing).
func New(reg *registry.Registry, opts ...Option) *Selector {
	s := &Selector{
		reg:        reg,
		strategies: scorer.DefaultStrategies(),
		costCeil:   0.06,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scored struct {
	model registry.ModelCapability
	score float64
}

// rank scores every catalog model against req, excluding ids in
// exclude and any model that scores exactly 0 (a failed hard filter),
// and returns them best-first.
func (s *Selector) rank(req scorer.TaskRequirements, exclude map[string]bool) []scored {
	weights, ok := s.strategies[req.Priority]
	if !ok {
		weights = s.strategies[scorer.PriorityBalanced]
	}

	candidates := s.reg.List(registry.Filter{OnlyAvailable: true})
	out := make([]scored, 0, len(candidates))
	for _, m := range candidates {
		if exclude[m.ID] {
			continue
		}
		sc := scorer.Score(req, m, weights, s.costCeil)
		if sc <= 0 {
			continue
		}
		out = append(out, scored{model: m, score: sc})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return scorer.Compare(out[i].model, out[j].model) < 0
	})

	s.log.Debug("selector: ranked candidates", "requested", len(candidates), "scored", len(out))
	return out
}

// Select returns up to k model ids ranked best-first for req, excluding
// any model that fails a hard filter. Select(req, k) is always a prefix
// of Select(req, k+1) (spec §8): ranking never depends on k.
func (s *Selector) Select(req scorer.TaskRequirements, k int) []string {
	ranked := s.rank(req, nil)
	if k > len(ranked) {
		k = len(ranked)
	}
	ids := make([]string, k)
	for i := 0; i < k; i++ {
		ids[i] = ranked[i].model.ID
	}
	return ids
}

// FallbackChain returns up to DefaultFallbackDepth model ids ranked for
// req, excluding the ids already attempted. Orchestrator calls this
// after an executor failure to find the next candidate.
func (s *Selector) FallbackChain(req scorer.TaskRequirements, excluding []string) []string {
	return s.FallbackChainN(req, excluding, DefaultFallbackDepth)
}

// FallbackChainN is FallbackChain with an explicit depth.
func (s *Selector) FallbackChainN(req scorer.TaskRequirements, excluding []string, depth int) []string {
	exclude := make(map[string]bool, len(excluding))
	for _, id := range excluding {
		exclude[id] = true
	}
	ranked := s.rank(req, exclude)
	if depth > len(ranked) {
		depth = len(ranked)
	}
	ids := make([]string, depth)
	for i := 0; i < depth; i++ {
		ids[i] = ranked[i].model.ID
	}
	return ids
}
