// Package consensus runs N models in parallel through the Orchestrator
// and combines their answers by majority vote or by a synthesis round
// with a designated arbiter (spec §4.9). The parallel fan-out is
// grounded on golang.org/x/sync/errgroup's wait-all-or-first-error
// idiom, adapted here to wait-all-or-deadline since a single
// participant's failure must not abort the others.
package consensus

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mercator-hq/orison/pkg/executor"
	"github.com/mercator-hq/orison/pkg/registry"
	"github.com/mercator-hq/orison/pkg/scorer"
	"github.com/mercator-hq/orison/pkg/selector"
)

// Strategy selects how participant answers are combined.
type Strategy string

const (
	StrategyVote      Strategy = "vote"
	StrategySynthesis Strategy = "synthesis"
)

// Band names an agreement_score range (spec §4.9).
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

func bandFor(score float64) Band {
	switch {
	case score > 0.8:
		return BandHigh
	case score >= 0.5:
		return BandMedium
	default:
		return BandLow
	}
}

// Router is the subset of Orchestrator consensus depends on.
type Router interface {
	RouteRequest(ctx context.Context, req executor.Request) (*executor.APIResponse, error)
}

// Individual is one participant's contribution to a ConsensusResult.
type Individual struct {
	ModelID string
	Content string
	Score   float64
}

// Result is the Consensus Engine's output (spec §3).
type Result struct {
	AggregatedContent string
	Individual        []Individual
	AgreementScore    float64
	AgreementBand     Band
	StrategyUsed      Strategy
}

// LowQuorumError is returned when fewer than 2 participants succeed.
type LowQuorumError struct {
	Succeeded []Individual
	Failed    []string
}

func (e *LowQuorumError) Error() string {
	return fmt.Sprintf("consensus: only %d of the required 2+ participants succeeded", len(e.Succeeded))
}

// Request configures one consensus run.
type Request struct {
	Base           executor.Request
	N              int
	Strategy       Strategy
	ArbiterModelID string
	StanceSteering map[string]string
}

// minQuorum is the minimum number of successful participants below
// which the run fails with LowQuorumError (spec §4.9).
const minQuorum = 2

// DefaultN is the participant count used when Request.N is unset.
const DefaultN = 3

// Engine runs vote/synthesis consensus over an Orchestrator.
type Engine struct {
	router   Router
	selector *selector.Selector
	registry *registry.Registry
}

// New builds a consensus Engine.
func New(router Router, sel *selector.Selector, reg *registry.Registry) *Engine {
	return &Engine{router: router, selector: sel, registry: reg}
}

// Run executes req's strategy and returns the combined Result, or
// *LowQuorumError / a ValidationError if n < 2.
func (e *Engine) Run(ctx context.Context, req Request, taskReq scorer.TaskRequirements) (*Result, error) {
	n := req.N
	if n == 0 {
		n = DefaultN
	}
	if n < 2 {
		return nil, fmt.Errorf("consensus: ValidationError: n must be >= 2, got %d", n)
	}

	candidates := e.selector.Select(taskReq, n)
	participants, failed := e.runParticipants(ctx, req, candidates)

	if len(participants) < minQuorum {
		return nil, &LowQuorumError{Succeeded: participants, Failed: failed}
	}

	switch req.Strategy {
	case StrategySynthesis:
		return e.synthesize(ctx, req, participants)
	default:
		return vote(participants), nil
	}
}

// runParticipants fans candidates out concurrently via the
// Orchestrator (wait-all-or-deadline); results are reassembled in
// Selector-ranking order, not completion order (spec §5).
func (e *Engine) runParticipants(ctx context.Context, req Request, candidates []string) ([]Individual, []string) {
	results := make([]*Individual, len(candidates))
	failedFlags := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(context.Background())
	_ = gctx // participants must not abort each other on one failure

	var mu sync.Mutex
	for i, modelID := range candidates {
		i, modelID := i, modelID
		g.Go(func() error {
			participantReq := req.Base
			participantReq.ModelHint = modelID
			if stance, ok := req.StanceSteering[modelID]; ok {
				participantReq.Prompt = fmt.Sprintf("[stance: %s]\n%s", stance, participantReq.Prompt)
			}

			resp, err := e.router.RouteRequest(ctx, participantReq)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failedFlags[i] = true
				return nil
			}
			results[i] = &Individual{ModelID: modelID, Content: resp.Content}
			return nil
		})
	}
	_ = g.Wait()

	var ok []Individual
	var failed []string
	for i, r := range results {
		if r != nil {
			ok = append(ok, *r)
		} else if failedFlags[i] {
			failed = append(failed, candidates[i])
		}
	}
	return ok, failed
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// vote buckets normalized answers and picks the highest count, earlier
// rank winning ties (spec §4.9).
func vote(participants []Individual) *Result {
	buckets := make(map[string][]int) // normalized answer -> participant indices
	order := make([]string, 0)
	for i, p := range participants {
		key := normalize(p.Content)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	bestKey := order[0]
	for _, key := range order[1:] {
		if len(buckets[key]) > len(buckets[bestKey]) {
			bestKey = key
		}
	}

	winnerIdx := buckets[bestKey][0]
	agreement := float64(len(buckets[bestKey])) / float64(len(participants))

	scored := make([]Individual, len(participants))
	for i, p := range participants {
		p.Score = 0
		if normalize(p.Content) == bestKey {
			p.Score = 1
		}
		scored[i] = p
	}

	return &Result{
		AggregatedContent: participants[winnerIdx].Content,
		Individual:        scored,
		AgreementScore:    agreement,
		AgreementBand:     bandFor(agreement),
		StrategyUsed:      StrategyVote,
	}
}

// synthesize runs one final route_request to the arbiter model, whose
// prompt concatenates the original prompt, a fixed instruction, and
// the collected participant answers.
func (e *Engine) synthesize(ctx context.Context, req Request, participants []Individual) (*Result, error) {
	arbiter := req.ArbiterModelID
	if arbiter == "" {
		arbiter = e.highestReasoningModel()
	}

	var sb strings.Builder
	sb.WriteString(req.Base.Prompt)
	sb.WriteString("\n\nYou are the arbiter. Combine the following independent answers into one final answer")
	if len(req.StanceSteering) > 0 {
		sb.WriteString(" (participants were assigned stances, advisory only)")
	}
	sb.WriteString(":\n")
	for _, p := range participants {
		fmt.Fprintf(&sb, "\n[%s]: %s\n", p.ModelID, p.Content)
	}

	arbiterReq := req.Base
	arbiterReq.Prompt = sb.String()
	arbiterReq.ModelHint = arbiter

	resp, err := e.router.RouteRequest(ctx, arbiterReq)
	if err != nil {
		return nil, fmt.Errorf("consensus: arbiter call failed: %w", err)
	}

	total := 0.0
	scored := make([]Individual, len(participants))
	for i, p := range participants {
		sim := lexicalSimilarity(resp.Content, p.Content)
		p.Score = sim
		scored[i] = p
		total += sim
	}
	agreement := 0.0
	if len(participants) > 0 {
		agreement = total / float64(len(participants))
	}

	return &Result{
		AggregatedContent: resp.Content,
		Individual:        scored,
		AgreementScore:    agreement,
		AgreementBand:     bandFor(agreement),
		StrategyUsed:      StrategySynthesis,
	}, nil
}

// highestReasoningModel is the default arbiter per spec §4.9, with
// ties broken by the Scorer's standard ladder (spec §9 open question 3).
func (e *Engine) highestReasoningModel() string {
	models := e.registry.List(registry.Filter{OnlyAvailable: true})
	if len(models) == 0 {
		return ""
	}
	sort.SliceStable(models, func(i, j int) bool {
		if models[i].Scores.Reasoning != models[j].Scores.Reasoning {
			return models[i].Scores.Reasoning > models[j].Scores.Reasoning
		}
		return scorer.Compare(models[i], models[j]) < 0
	})
	return models[0].ID
}
