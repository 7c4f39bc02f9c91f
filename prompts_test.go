package redraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDrafterUserPrompt(t *testing.T) {
	st := NewState("What are the impacts of AI on the world")
	st = st.withResults([]SearchResult{
		{Title: "AI and jobs", URL: "https://example.com/jobs", Snippet: "automation reshapes labor"},
		{Title: "AI in medicine", URL: "https://example.com/medicine", Snippet: "diagnostics improve"},
	})

	prompt := buildDrafterUserPrompt(st)
	assert.Contains(t, prompt, "What are the impacts of AI on the world")
	assert.Contains(t, prompt, "1. AI and jobs | https://example.com/jobs | automation reshapes labor")
	assert.Contains(t, prompt, "2. AI in medicine | https://example.com/medicine | diagnostics improve")
	assert.Contains(t, prompt, "citing source URLs")
	assert.NotContains(t, prompt, "no results returned")
}

func TestBuildDrafterUserPromptEmptyResults(t *testing.T) {
	prompt := buildDrafterUserPrompt(NewState("q"))
	assert.Contains(t, prompt, "no results returned")
	assert.Contains(t, prompt, "general knowledge")
}

func TestBuildReviewerUserPrompt(t *testing.T) {
	st := NewState("q").withDraft("the draft body")
	prompt := buildReviewerUserPrompt(st)
	assert.Contains(t, prompt, "the draft body")
	assert.Contains(t, prompt, "Clarity and coherence")
	assert.Contains(t, prompt, "Grammar and readability")
}

func TestBuildRefinerUserPrompt(t *testing.T) {
	st := NewState("q").withDraft("the draft body").withFeedback("tighten the intro")
	prompt := buildRefinerUserPrompt(st)
	assert.Contains(t, prompt, "the draft body")
	assert.Contains(t, prompt, "tighten the intro")
	assert.Contains(t, prompt, "Keep all source URLs")
}

func TestBuildRefinerUserPromptEmptyFeedback(t *testing.T) {
	st := NewState("q").withDraft("the draft body")
	prompt := buildRefinerUserPrompt(st)
	assert.Contains(t, prompt, "(none")
}

func TestStripThinkBlocks(t *testing.T) {
	in := "<think>internal musing\nover lines</think>\nThe actual answer."
	assert.Equal(t, "The actual answer.", StripThinkBlocks(in))
	assert.Equal(t, "plain", StripThinkBlocks("plain"))
}

func TestGetContentFallsBackToReasoning(t *testing.T) {
	resp := LLMResponse{Text: "<think>only thoughts</think>", Reasoning: "the reasoning text"}
	assert.Equal(t, "the reasoning text", getContent(resp, false, "Drafter"))

	resp = LLMResponse{Text: "real text", Reasoning: "ignored"}
	assert.Equal(t, "real text", getContent(resp, false, "Drafter"))
}
