package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smhanov/redraft"
)

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// retryBaseDelay is the first backoff step; tests shrink it.
var retryBaseDelay = 1 * time.Second

// groqPricing maps a model name to its dollar price per million input and
// output tokens, used to fill LLMResponse.Cost. Unknown models cost zero.
var groqPricing = map[string]struct{ in, out float64 }{
	"llama-3.3-70b-versatile": {0.59, 0.79},
	"llama-3.1-8b-instant":    {0.05, 0.08},
	"mixtral-8x7b-32768":      {0.24, 0.24},
}

// Groq implements redraft.LLMProvider using the Groq chat completions API.
// The API is OpenAI-compatible, so Groq also works against any server that
// exposes /v1/chat/completions by overriding Endpoint.
type Groq struct {
	APIKey string
	Model  string
	// Endpoint overrides the API URL; empty means the Groq production endpoint.
	Endpoint string
	client   *http.Client
}

// NewGroq constructs a Groq client for the given model.
func NewGroq(apiKey, model string) *Groq {
	return &Groq{APIKey: apiKey, Model: model, client: &http.Client{Timeout: 2 * time.Minute}}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			Reasoning string `json:"reasoning,omitempty"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Generate sends a system+user chat completion request.
func (g *Groq) Generate(ctx context.Context, systemPrompt, userPrompt string) (redraft.LLMResponse, error) {
	if strings.TrimSpace(g.Model) == "" {
		return redraft.LLMResponse{}, errors.New("groq: model is not set")
	}

	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = groqEndpoint
	}

	body, err := postJSONWithRetries(ctx, g.client, endpoint, g.APIKey, chatRequest{
		Model: g.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}, "groq")
	if err != nil {
		return redraft.LLMResponse{}, err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return redraft.LLMResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return redraft.LLMResponse{}, errors.New("groq response contained no choices")
	}

	return redraft.LLMResponse{
		Text:      strings.TrimSpace(resp.Choices[0].Message.Content),
		Reasoning: resp.Choices[0].Message.Reasoning,
		Cost:      g.cost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}, nil
}

func (g *Groq) cost(promptTokens, completionTokens int) float64 {
	price, ok := groqPricing[g.Model]
	if !ok {
		return 0
	}
	return (float64(promptTokens)*price.in + float64(completionTokens)*price.out) / 1e6
}

// postJSONWithRetries issues a JSON POST with bearer auth, retrying on 429
// and 504 with exponential backoff. Other error statuses fail immediately.
func postJSONWithRetries(ctx context.Context, client *http.Client, url, apiKey string, reqBody any, label string) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	const maxRetries = 5
	baseDelay := retryBaseDelay

	for i := 0; ; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to read response: %w", err)
			}
			return body, nil
		}

		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusGatewayTimeout
		if !retryable || i == maxRetries {
			return nil, fmt.Errorf("%s API error: %s - %s", label, resp.Status, string(errBody))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(baseDelay * time.Duration(1<<i)):
		}
	}
}
