package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/smhanov/redraft"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey string
	// Depth controls Tavily's depth parameter (basic or advanced).
	Depth string
	// MaxResults caps the number of results kept from a response.
	MaxResults int
	// Endpoint overrides the API URL; empty means the production endpoint.
	Endpoint string
	client   *http.Client
}

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey string, depth string) *Tavily {
	if depth == "" {
		depth = "basic"
	}
	return &Tavily{
		APIKey:     apiKey,
		Depth:      depth,
		MaxResults: defaultMaxResults,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewTavilyWithClient constructs a Tavily search provider using the supplied
// HTTP client. This is useful for overriding the default timeout.
func NewTavilyWithClient(apiKey string, depth string, client *http.Client) *Tavily {
	t := NewTavily(apiKey, depth)
	t.client = client
	return t
}

type tavilyRequest struct {
	Query      string `json:"query"`
	APIKey     string `json:"api_key"`
	Depth      string `json:"depth"`
	MaxResults int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string) ([]redraft.SearchResult, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(tavilyRequest{
		Query:      query,
		APIKey:     t.APIKey,
		Depth:      t.Depth,
		MaxResults: t.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	endpoint := t.Endpoint
	if endpoint == "" {
		endpoint = tavilyEndpoint
	}

	resp, err := postWithBackoff(ctx, t.client, endpoint, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var response tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	max := t.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	results := make([]redraft.SearchResult, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, redraft.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
		if len(results) >= max {
			break
		}
	}
	return results, nil
}

// postWithBackoff issues a JSON POST, retrying on 429 with the delay
// doubling each time up to 30 s. Any other status is returned to the caller.
func postWithBackoff(ctx context.Context, client *http.Client, endpoint string, payload []byte) (*http.Response, error) {
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
}
