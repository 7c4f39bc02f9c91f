// Package redraft turns a user query into a reviewed, refined,
// evidence-cited answer through a fixed four-stage pipeline: search the web,
// draft an answer, review the draft, refine it.
//
// # Architecture
//
// The pipeline is a strictly linear chain with no branching and no loops:
//
//  1. Research: the SearchProvider executes the query and returns
//     (title, url, snippet) results in provider order.
//  2. Draft: the drafter model writes an evidence-cited answer from the
//     query and results. It is still invoked when the search returned
//     nothing and answers from general knowledge.
//  3. Review: the reviewer model critiques the draft for clarity, accuracy,
//     flow, and readability.
//  4. Refine: the refiner model applies the feedback while preserving the
//     draft's source citations.
//
// State accumulates one field per stage and is never overwritten; Run
// returns the full State so callers can inspect intermediate output.
//
// # Degradation
//
// No upstream failure aborts the pipeline. Each stage has a documented
// fallback: a failed search yields an empty result set, a failed draft
// yields a placeholder string, a failed review yields empty feedback, and a
// failed refinement returns the draft unchanged. Absorbed failures are
// recorded in State.Faults and in the stage metrics.
//
// # Basic Usage
//
//	pipeline := redraft.New(
//	    redraft.WithSearchProvider(search.NewTavily(apiKey, "basic")),
//	    redraft.WithModel(llm.NewGroq(groqKey, "llama-3.3-70b-versatile")),
//	)
//
//	st, err := pipeline.Run(ctx, "What are the impacts of AI on the world")
//	fmt.Println(st.FinalAnswer)
//
// # Interfaces
//
// Implement LLMProvider to connect any language model:
//
//	type LLMProvider interface {
//	    Generate(ctx context.Context, systemPrompt, userPrompt string) (LLMResponse, error)
//	}
//
// Implement SearchProvider to use any search backend:
//
//	type SearchProvider interface {
//	    Search(ctx context.Context, query string) ([]SearchResult, error)
//	}
//
// A single Pipeline serves concurrent Run calls; each run carries its own
// State and the stages of one run never overlap.
package redraft
