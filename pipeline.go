package redraft

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smhanov/redraft/metrics"
)

// Pipeline runs the fixed research → draft → review → refine chain.
// All pipeline state lives in the per-run State value, so a single Pipeline
// may serve many concurrent Run calls.
type Pipeline struct {
	searcher     SearchProvider
	drafter      LLMProvider
	reviewer     LLMProvider
	refiner      LLMProvider
	stageTimeout time.Duration
	searchCost   float64
	logger       *zap.Logger
	debug        bool
}

// New constructs a Pipeline with optional configuration. The reviewer and
// refiner models fall back to the drafter when not set separately.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		stageTimeout: defaultStageTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.reviewer == nil {
		p.reviewer = p.drafter
	}
	if p.refiner == nil {
		p.refiner = p.drafter
	}
	return p
}

// Run executes the four stages in order and returns the accumulated state.
// The returned error covers configuration problems only (empty query,
// missing providers). Upstream API failures are absorbed: each stage has a
// documented fallback value, so a completed Run always carries a non-empty
// FinalAnswer. Absorbed failures are recorded in State.Faults.
func (p *Pipeline) Run(ctx context.Context, query string) (State, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return State{}, errors.New("query is empty")
	}
	if p.searcher == nil {
		return State{}, errors.New("search provider is not configured")
	}
	if p.drafter == nil {
		return State{}, errors.New("drafter model is not configured")
	}

	st := NewState(query)
	log := p.logger.With(zap.String("run_id", st.RunID))
	log.Info("pipeline started", zap.String("query", st.Query))
	start := time.Now()

	// Research: a failed search degrades to an empty result set and the
	// drafter answers from general knowledge.
	results, err := p.stageResearch(ctx, st.Query)
	if err != nil {
		log.Warn("research degraded to empty results", zap.Error(err))
		st = st.withFault(StageResearch, err)
		results = nil
	} else {
		st = st.addCost(p.searchCost)
	}
	st = st.withResults(results)

	// Draft: a failed inference call degrades to a placeholder draft so the
	// review and refine stages still receive a string.
	draft, cost, err := p.stageDraft(ctx, st)
	st = st.addCost(cost)
	if err != nil {
		log.Warn("draft degraded to placeholder", zap.Error(err))
		st = st.withFault(StageDraft, err)
		draft = draftFallback
	}
	st = st.withDraft(draft)

	// Review: a failed review degrades to empty feedback and refinement
	// still runs.
	feedback, cost, err := p.stageReview(ctx, st)
	st = st.addCost(cost)
	if err != nil {
		log.Warn("review degraded to empty feedback", zap.Error(err))
		st = st.withFault(StageReview, err)
		feedback = ""
	}
	st = st.withFeedback(feedback)

	// Refine: the only stage whose fallback is a prior value. On failure the
	// draft is returned unchanged as the final answer.
	final, cost, err := p.stageRefine(ctx, st)
	st = st.addCost(cost)
	if err != nil {
		log.Warn("refine degraded to unmodified draft", zap.Error(err))
		st = st.withFault(StageRefine, err)
		final = st.DraftAnswer
	}
	st = st.withFinal(final)

	metrics.PipelinesCompleted.Inc()
	log.Info("pipeline finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("search_results", len(st.SearchResults)),
		zap.Int("degraded_stages", len(st.Faults)),
		zap.Float64("cost_usd", st.Cost),
	)
	return st, nil
}

// stageCtx bounds a single external call. A zero or negative timeout
// disables the bound and the provider's own client timeout applies.
func (p *Pipeline) stageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.stageTimeout)
}
