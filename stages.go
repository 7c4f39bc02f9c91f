package redraft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smhanov/redraft/metrics"
)

// draftFallback is the placeholder substituted when the drafter fails so
// downstream stages still receive a draft string.
const draftFallback = "Unable to draft an answer because the language model was unavailable."

func (p *Pipeline) stageResearch(ctx context.Context, query string) ([]SearchResult, error) {
	sctx, cancel := p.stageCtx(ctx)
	defer cancel()
	done := observeStage(StageResearch)
	results, err := p.searcher.Search(sctx, query)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

func (p *Pipeline) stageDraft(ctx context.Context, st State) (string, float64, error) {
	return p.generate(ctx, p.drafter, StageDraft, drafterSystemPrompt, buildDrafterUserPrompt(st), "Drafter")
}

func (p *Pipeline) stageReview(ctx context.Context, st State) (string, float64, error) {
	return p.generate(ctx, p.reviewer, StageReview, reviewerSystemPrompt, buildReviewerUserPrompt(st), "Reviewer")
}

func (p *Pipeline) stageRefine(ctx context.Context, st State) (string, float64, error) {
	return p.generate(ctx, p.refiner, StageRefine, refinerSystemPrompt, buildRefinerUserPrompt(st), "Refiner")
}

// generate runs one inference call for a stage. An empty response counts as
// a failure so the orchestrator applies the stage's fallback.
func (p *Pipeline) generate(ctx context.Context, model LLMProvider, stage Stage, sys, user, label string) (string, float64, error) {
	sctx, cancel := p.stageCtx(ctx)
	defer cancel()
	if p.debug {
		fmt.Printf("[REDRAFT DEBUG] %s System Prompt:\n%s\n", label, sys)
		fmt.Printf("[REDRAFT DEBUG] %s User Prompt:\n%s\n", label, user)
	}
	done := observeStage(stage)
	resp, err := model.Generate(sctx, sys, user)
	done(err)
	if err != nil {
		return "", resp.Cost, fmt.Errorf("%s: %w", stage, err)
	}
	if p.debug {
		fmt.Printf("[REDRAFT DEBUG] %s Response:\n%s\n", label, resp.Text)
	}
	// Strip <think> blocks from models like qwen3; fall back to reasoning if text is empty.
	text := getContent(resp, p.debug, label)
	if strings.TrimSpace(text) == "" {
		return "", resp.Cost, errors.New(string(stage) + ": model returned empty text")
	}
	return text, resp.Cost, nil
}

// observeStage records the run, duration, and outcome of one stage call.
func observeStage(stage Stage) func(error) {
	start := time.Now()
	metrics.StagesRun.WithLabelValues(string(stage)).Inc()
	return func(err error) {
		metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.StageDegraded.WithLabelValues(string(stage)).Inc()
		}
	}
}
