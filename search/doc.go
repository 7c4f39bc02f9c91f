// Package search provides search provider implementations for the research
// stage of the pipeline.
//
// Available providers:
//
//   - Tavily: Requires API key, supports basic/advanced depth modes
//   - Brave: Requires API key via X-Subscription-Token header
//   - DuckDuckGo: Free, no API key required (uses HTML scraping of lite.duckduckgo.com)
//
// # Tavily Example
//
//	provider := search.NewTavily("your-api-key", "advanced")
//	results, err := provider.Search(ctx, "impacts of AI on the world")
//
// # Brave Example
//
//	provider := search.NewBrave("your-api-key")
//	results, err := provider.Search(ctx, "best practices for API design")
//
// # DuckDuckGo Example
//
//	provider := search.NewDuckDuckGo()
//	results, err := provider.Search(ctx, "golang web frameworks")
//
// # Custom Providers
//
// Implement the redraft.SearchProvider interface to add your own search
// backend:
//
//	type SearchProvider interface {
//	    Search(ctx context.Context, query string) ([]redraft.SearchResult, error)
//	}
package search
