package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/smhanov/redraft"
)

// All Brave instances sharing an API key share one limiter so that only one
// request per second is issued for that key, matching the free-plan limit.
var (
	braveLimitersMu sync.Mutex
	braveLimiters   = map[string]*rate.Limiter{}
)

func braveLimiterFor(apiKey string) *rate.Limiter {
	braveLimitersMu.Lock()
	defer braveLimitersMu.Unlock()
	l, ok := braveLimiters[apiKey]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Second), 1)
		braveLimiters[apiKey] = l
	}
	return l
}

// Brave uses the Brave Search API. An API key is required via X-Subscription-Token.
type Brave struct {
	APIKey string
	// MaxResults caps the number of results kept from a response.
	MaxResults int
	// Endpoint overrides the API URL; empty means the production endpoint.
	Endpoint string
	client   *http.Client
}

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// NewBrave constructs a Brave search provider.
func NewBrave(apiKey string) *Brave {
	return &Brave{
		APIKey:     apiKey,
		MaxResults: defaultMaxResults,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Search executes a Brave query. Concurrent calls sharing the same API key
// are paced through a shared one-request-per-second limiter.
func (b *Brave) Search(ctx context.Context, query string) ([]redraft.SearchResult, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, errors.New("brave: API key is missing")
	}

	endpoint := b.Endpoint
	if endpoint == "" {
		endpoint = braveEndpoint
	}
	endpoint = fmt.Sprintf("%s?q=%s", endpoint, url.QueryEscape(query))

	limiter := braveLimiterFor(b.APIKey)

	var resp *http.Response
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", b.APIKey)

		resp, err = b.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		// 429 means we raced another consumer of the key; the limiter
		// already spaces the retry by a second.
		resp.Body.Close()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave http %d", resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	max := b.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	results := make([]redraft.SearchResult, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		results = append(results, redraft.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Description})
		if len(results) >= max {
			break
		}
	}
	return results, nil
}
