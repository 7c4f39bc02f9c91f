package redraft

import "context"

// SearchResult is a single item returned by a SearchProvider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchProvider executes a query and returns results in the order the
// provider returned them. No deduplication or re-ranking is applied.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// LLMResponse is returned by LLMProvider.Generate and carries the generated
// text, the cost (in dollars) of the call, and any separate reasoning output
// the model produced.
type LLMResponse struct {
	Text      string
	Cost      float64
	Reasoning string
}

// LLMProvider is implemented by user-supplied language model clients.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (LLMResponse, error)
}
