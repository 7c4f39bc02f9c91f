package redraft

import (
	"fmt"
	"regexp"
	"strings"
)

const drafterSystemPrompt = "You are a research assistant. You write clear, well-organized answers grounded in the search results you are given. Cite the source URL next to every fact taken from a result. When no results are provided, answer from general knowledge and say so."

const reviewerSystemPrompt = "You are a careful reviewer. You critique drafted answers for clarity and coherence, accuracy of information, logical flow and structure, and grammar and readability. Respond with concrete, actionable feedback only — never rewrite the answer yourself."

const refinerSystemPrompt = "You revise drafted answers by applying reviewer feedback. Preserve every source URL cited in the draft; a revision that drops a citation is wrong even if it reads better."

func buildDrafterUserPrompt(st State) string {
	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(st.Query)
	b.WriteString("\n\nSearch Results (title | url | snippet):\n")
	if len(st.SearchResults) == 0 {
		b.WriteString("(no results returned — answer from general knowledge)\n")
	}
	for i, r := range st.SearchResults {
		b.WriteString(fmt.Sprintf("%d. %s | %s | %s\n", i+1, strings.TrimSpace(r.Title), strings.TrimSpace(r.URL), strings.TrimSpace(r.Snippet)))
	}
	b.WriteString("\nTask: Draft a comprehensive, well-structured answer to the question. Ensure the answer is:\n")
	b.WriteString("- Clear and concise\n")
	b.WriteString("- Organized with headings and bullet points where appropriate\n")
	b.WriteString("- Supported by evidence from the search results, citing source URLs\n")
	b.WriteString("- Free of jargon and accessible to a general audience\n")
	b.WriteString("Respond with only the drafted answer.")
	return b.String()
}

func buildReviewerUserPrompt(st State) string {
	var b strings.Builder
	b.WriteString("Drafted Answer:\n")
	b.WriteString(st.DraftAnswer)
	b.WriteString("\n\nTask: Review the drafted answer and provide feedback for improvement. Consider:\n")
	b.WriteString("- Clarity and coherence\n")
	b.WriteString("- Accuracy of information\n")
	b.WriteString("- Logical flow and structure\n")
	b.WriteString("- Grammar and readability\n")
	b.WriteString("Respond with only the feedback.")
	return b.String()
}

func buildRefinerUserPrompt(st State) string {
	var b strings.Builder
	b.WriteString("Drafted Answer:\n")
	b.WriteString(st.DraftAnswer)
	b.WriteString("\n\nFeedback:\n")
	if strings.TrimSpace(st.ReviewFeedback) == "" {
		b.WriteString("(none — polish lightly without changing substance)\n")
	} else {
		b.WriteString(st.ReviewFeedback)
		b.WriteString("\n")
	}
	b.WriteString("\nTask: Refine the drafted answer so it addresses every point in the feedback. Keep all source URLs cited in the draft. Respond with only the refined answer.")
	return b.String()
}

var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`) //nolint:gochecknoglobals

// StripThinkBlocks removes <think>...</think> blocks from LLM responses.
// Some models (like qwen3) output reasoning in these blocks.
func StripThinkBlocks(s string) string {
	return strings.TrimSpace(thinkRegex.ReplaceAllString(s, ""))
}

// getContent extracts usable text from an LLM response. It strips <think>
// blocks from Text first. If Text is empty (e.g. thinking models that put
// everything in reasoning tokens), falls back to the Reasoning field.
func getContent(resp LLMResponse, debug bool, label string) string {
	text := StripThinkBlocks(resp.Text)
	if strings.TrimSpace(text) != "" {
		return text
	}
	if strings.TrimSpace(resp.Reasoning) != "" {
		if debug {
			fmt.Printf("[REDRAFT DEBUG] %s: Text empty, using reasoning (%d chars)\n", label, len(resp.Reasoning))
		}
		return StripThinkBlocks(resp.Reasoning)
	}
	return ""
}
