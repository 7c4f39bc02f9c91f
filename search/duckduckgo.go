package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/smhanov/redraft"
)

// defaultMaxResults caps how many results a provider returns unless the
// caller raises the limit.
const defaultMaxResults = 5

const ddgEndpoint = "https://lite.duckduckgo.com/lite/"

// ddgLimiter enforces a global pace of 1 query per second across all
// DuckDuckGo instances and goroutines.
var ddgLimiter = rate.NewLimiter(rate.Every(time.Second), 1)

// DuckDuckGo implements a searcher using DuckDuckGo's HTML lite interface.
// It needs no API key.
type DuckDuckGo struct {
	// MaxResults caps the number of results kept from a response.
	MaxResults int
	client     *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo searcher with a modest timeout.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{MaxResults: defaultMaxResults, client: &http.Client{Timeout: 15 * time.Second}}
}

// Search scrapes the DuckDuckGo lite HTML page for results.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]redraft.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}

	if err := ddgLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	formData := url.Values{}
	formData.Set("q", query)

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ddgEndpoint, strings.NewReader(formData.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err = d.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		// Back off and retry on 429, doubling the delay each time up to 30 s.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	max := d.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	return parseLiteResults(string(body), max), nil
}

var (
	ddgLinkRegex    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>|<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	ddgSnippetRegex = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	anyLinkRegex    = regexp.MustCompile(`<a[^>]+href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	tagRegex        = regexp.MustCompile(`<[^>]+>`)
)

// parseLiteResults extracts search results from the DuckDuckGo lite HTML.
// The lite page pairs result-link anchors with result-snippet cells.
func parseLiteResults(html string, max int) []redraft.SearchResult {
	var results []redraft.SearchResult

	snippets := ddgSnippetRegex.FindAllStringSubmatch(html, -1)
	for i, match := range ddgLinkRegex.FindAllStringSubmatch(html, -1) {
		urlStr, title := match[1], match[2]
		if urlStr == "" {
			urlStr, title = match[3], match[4]
		}
		urlStr = strings.TrimSpace(urlStr)
		title = unescapeHTML(strings.TrimSpace(title))
		if urlStr == "" || title == "" {
			continue
		}

		snippet := ""
		if i < len(snippets) && len(snippets[i]) > 1 {
			snippet = unescapeHTML(snippets[i][1])
		}

		results = append(results, redraft.SearchResult{Title: title, URL: urlStr, Snippet: snippet})
		if len(results) >= max {
			break
		}
	}

	// The lite page layout shifts occasionally; fall back to harvesting any
	// external links when the primary pattern matched nothing.
	if len(results) == 0 {
		results = parseAnyLinks(html, max)
	}
	return results
}

func parseAnyLinks(html string, max int) []redraft.SearchResult {
	var results []redraft.SearchResult
	seen := make(map[string]bool)
	for _, match := range anyLinkRegex.FindAllStringSubmatch(html, -1) {
		urlStr := strings.TrimSpace(match[1])
		title := unescapeHTML(strings.TrimSpace(match[2]))

		if strings.Contains(urlStr, "duckduckgo.com") ||
			strings.HasPrefix(urlStr, "/") ||
			strings.HasPrefix(urlStr, "#") ||
			strings.HasPrefix(urlStr, "javascript:") {
			continue
		}
		if len(title) < 5 || seen[urlStr] {
			continue
		}
		seen[urlStr] = true

		results = append(results, redraft.SearchResult{Title: title, URL: urlStr})
		if len(results) >= max {
			break
		}
	}
	return results
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

// unescapeHTML strips tags and decodes the entities the lite page emits.
func unescapeHTML(s string) string {
	s = tagRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(entityReplacer.Replace(s))
}
