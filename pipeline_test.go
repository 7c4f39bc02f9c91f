package redraft

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers each stage based on the system prompt it receives and
// can be told to fail a specific stage.
type scriptedLLM struct {
	mu sync.Mutex

	draft  string
	review string
	refine string

	failDraft  bool
	failReview bool
	failRefine bool

	costPerCall float64

	draftPrompts  []string
	refinePrompts []string
}

func (s *scriptedLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch systemPrompt {
	case drafterSystemPrompt:
		s.draftPrompts = append(s.draftPrompts, userPrompt)
		if s.failDraft {
			return LLMResponse{}, errors.New("inference unavailable")
		}
		return LLMResponse{Text: s.draft, Cost: s.costPerCall}, nil
	case reviewerSystemPrompt:
		if s.failReview {
			return LLMResponse{}, errors.New("inference unavailable")
		}
		return LLMResponse{Text: s.review, Cost: s.costPerCall}, nil
	case refinerSystemPrompt:
		s.refinePrompts = append(s.refinePrompts, userPrompt)
		if s.failRefine {
			return LLMResponse{}, errors.New("inference unavailable")
		}
		return LLMResponse{Text: s.refine, Cost: s.costPerCall}, nil
	default:
		return LLMResponse{}, errors.New("unknown system prompt")
	}
}

type fakeSearch struct {
	results []SearchResult
	err     error
}

func (f fakeSearch) Search(_ context.Context, _ string) ([]SearchResult, error) {
	return f.results, f.err
}

func fiveResults() []SearchResult {
	return []SearchResult{
		{Title: "AI and jobs", URL: "https://example.com/jobs", Snippet: "automation reshapes labor"},
		{Title: "AI in medicine", URL: "https://example.com/medicine", Snippet: "diagnostic accuracy improves"},
		{Title: "AI and energy", URL: "https://example.com/energy", Snippet: "data centers draw more power"},
		{Title: "AI in education", URL: "https://example.com/education", Snippet: "personalized tutoring at scale"},
		{Title: "AI governance", URL: "https://example.com/governance", Snippet: "regulation lags deployment"},
	}
}

func TestRunHappyPath(t *testing.T) {
	llm := &scriptedLLM{
		draft:  "## Impacts of AI\n\n- Jobs change (https://example.com/jobs)\n- Medicine improves (https://example.com/medicine)",
		review: "Tighten the introduction and keep all citations.",
		refine: "## Impacts of AI\n\nAI reshapes work (https://example.com/jobs) and medicine (https://example.com/medicine).",
	}

	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithModel(llm),
	)

	st, err := pipeline.Run(context.Background(), "What are the impacts of AI on the world")
	require.NoError(t, err)

	assert.Len(t, st.SearchResults, 5)
	assert.Equal(t, llm.draft, st.DraftAnswer)
	assert.Equal(t, llm.review, st.ReviewFeedback)
	assert.NotEmpty(t, st.FinalAnswer)
	assert.Contains(t, st.FinalAnswer, "https://example.com/jobs", "refined answer must keep original evidence")
	assert.Empty(t, st.Faults)
	assert.NotEmpty(t, st.RunID)

	// The drafter must have seen the provider's URLs.
	require.Len(t, llm.draftPrompts, 1)
	assert.Contains(t, llm.draftPrompts[0], "https://example.com/governance")
}

func TestSearchFailureDegradesToEmpty(t *testing.T) {
	llm := &scriptedLLM{
		draft:  "From general knowledge: AI affects labor, medicine, and energy.",
		review: "Looks reasonable.",
		refine: "AI affects labor, medicine, and energy in broad ways.",
	}

	pipeline := New(
		WithSearchProvider(fakeSearch{err: errors.New("timeout")}),
		WithModel(llm),
	)

	st, err := pipeline.Run(context.Background(), "What are the impacts of AI on the world")
	require.NoError(t, err)

	assert.Empty(t, st.SearchResults)
	assert.True(t, st.Degraded(StageResearch))

	// The drafter is still invoked and told there were no results.
	require.Len(t, llm.draftPrompts, 1)
	assert.Contains(t, llm.draftPrompts[0], "no results returned")
	assert.NotEmpty(t, st.DraftAnswer)
	assert.NotEmpty(t, st.FinalAnswer)
}

func TestDraftFailureUsesPlaceholder(t *testing.T) {
	llm := &scriptedLLM{
		failDraft: true,
		review:    "There is no substance to review.",
		refine:    "A refined placeholder.",
	}

	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithModel(llm),
	)

	st, err := pipeline.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, draftFallback, st.DraftAnswer)
	assert.True(t, st.Degraded(StageDraft))
	// Downstream stages still received a string and ran.
	assert.NotEmpty(t, st.ReviewFeedback)
	assert.NotEmpty(t, st.FinalAnswer)
}

func TestReviewFailureFallsThrough(t *testing.T) {
	llm := &scriptedLLM{
		draft:      "A solid draft (https://example.com/jobs).",
		failReview: true,
		refine:     "A polished draft (https://example.com/jobs).",
	}

	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithModel(llm),
	)

	st, err := pipeline.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Empty(t, st.ReviewFeedback)
	assert.True(t, st.Degraded(StageReview))

	// The refiner still runs and is told there was no feedback.
	require.Len(t, llm.refinePrompts, 1)
	assert.Contains(t, llm.refinePrompts[0], "(none")
	assert.Equal(t, llm.refine, st.FinalAnswer)
}

func TestRefineFailurePreservesDraft(t *testing.T) {
	llm := &scriptedLLM{
		draft:      "The draft that must survive (https://example.com/jobs).",
		review:     "Rewrite everything.",
		failRefine: true,
	}

	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithModel(llm),
	)

	st, err := pipeline.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.True(t, st.Degraded(StageRefine))
	assert.Equal(t, st.DraftAnswer, st.FinalAnswer, "refinement failure must return the draft unchanged")
}

func TestAllProvidersFailStillAnswers(t *testing.T) {
	llm := &scriptedLLM{failDraft: true, failReview: true, failRefine: true}

	pipeline := New(
		WithSearchProvider(fakeSearch{err: errors.New("quota exceeded")}),
		WithModel(llm),
	)

	st, err := pipeline.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Len(t, st.Faults, 4)
	assert.NotEmpty(t, st.FinalAnswer, "the chain always produces some final answer")
	assert.Equal(t, draftFallback, st.FinalAnswer)
}

func TestEmptyModelOutputCountsAsFailure(t *testing.T) {
	llm := &scriptedLLM{
		draft:  "   ",
		review: "r",
		refine: "f",
	}

	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithModel(llm),
	)

	st, err := pipeline.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, draftFallback, st.DraftAnswer)
	assert.True(t, st.Degraded(StageDraft))
}

func TestRunRejectsEmptyQuery(t *testing.T) {
	pipeline := New(
		WithSearchProvider(fakeSearch{}),
		WithModel(&scriptedLLM{}),
	)
	_, err := pipeline.Run(context.Background(), "   ")
	require.Error(t, err)
}

func TestRunRequiresProviders(t *testing.T) {
	_, err := New(WithModel(&scriptedLLM{})).Run(context.Background(), "q")
	require.Error(t, err)

	_, err = New(WithSearchProvider(fakeSearch{})).Run(context.Background(), "q")
	require.Error(t, err)
}

func TestCostAccumulation(t *testing.T) {
	llm := &scriptedLLM{draft: "d", review: "r", refine: "f", costPerCall: 0.01}

	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithModel(llm),
		WithSearchCost(0.005),
	)

	st, err := pipeline.Run(context.Background(), "q")
	require.NoError(t, err)
	// search(0.005) + draft(0.01) + review(0.01) + refine(0.01)
	assert.InDelta(t, 0.035, st.Cost, 1e-9)
}

func TestPerStageModelOverrides(t *testing.T) {
	drafter := &scriptedLLM{draft: "draft text"}
	reviewer := &scriptedLLM{review: "review text"}
	refiner := &scriptedLLM{refine: "final text"}

	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithDrafterModel(drafter),
		WithReviewerModel(reviewer),
		WithRefinerModel(refiner),
	)

	st, err := pipeline.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "draft text", st.DraftAnswer)
	assert.Equal(t, "review text", st.ReviewFeedback)
	assert.Equal(t, "final text", st.FinalAnswer)
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	llm := &scriptedLLM{draft: "d", review: "r", refine: "f"}
	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithModel(llm),
	)

	const n = 8
	states := make([]State, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i], errs[i] = pipeline.Run(context.Background(), "q")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, err := range errs {
		require.NoError(t, err)
	}
	for _, st := range states {
		assert.NotEmpty(t, st.FinalAnswer)
		assert.False(t, seen[st.RunID], "run IDs must be unique per invocation")
		seen[st.RunID] = true
	}
}

func TestRunIsNotIdempotentByContract(t *testing.T) {
	// Two runs of the same query may answer differently; only structure is
	// asserted: both terminate with a non-empty final answer.
	llm := &scriptedLLM{draft: "d", review: "r", refine: strings.Repeat("answer ", 3)}
	pipeline := New(
		WithSearchProvider(fakeSearch{results: fiveResults()}),
		WithModel(llm),
	)

	for i := 0; i < 2; i++ {
		st, err := pipeline.Run(context.Background(), "q")
		require.NoError(t, err)
		assert.NotEmpty(t, st.FinalAnswer)
	}
}
