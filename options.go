package redraft

import (
	"time"

	"go.uber.org/zap"
)

// defaultStageTimeout bounds each external call. The upstream APIs document
// no timeout of their own, so the pipeline applies this one per stage.
const defaultStageTimeout = 60 * time.Second

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSearchProvider sets the search implementation used by the research stage.
func WithSearchProvider(searcher SearchProvider) Option {
	return func(p *Pipeline) { p.searcher = searcher }
}

// WithModel sets one model for all three inference stages. Per-stage
// overrides below take precedence.
func WithModel(m LLMProvider) Option {
	return func(p *Pipeline) { p.drafter = m }
}

// WithDrafterModel sets the model used to draft the answer.
func WithDrafterModel(m LLMProvider) Option {
	return func(p *Pipeline) { p.drafter = m }
}

// WithReviewerModel overrides the model used to critique the draft.
func WithReviewerModel(m LLMProvider) Option {
	return func(p *Pipeline) { p.reviewer = m }
}

// WithRefinerModel overrides the model used to produce the final answer.
func WithRefinerModel(m LLMProvider) Option {
	return func(p *Pipeline) { p.refiner = m }
}

// WithStageTimeout bounds each external call. Zero disables the bound.
func WithStageTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.stageTimeout = d }
}

// WithSearchCost sets the per-call cost charged for the research stage.
func WithSearchCost(cost float64) Option {
	return func(p *Pipeline) {
		if cost > 0 {
			p.searchCost = cost
		}
	}
}

// WithLogger sets the structured logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDebug enables debug printing of all LLM prompts and responses.
func WithDebug(enabled bool) Option {
	return func(p *Pipeline) { p.debug = enabled }
}
