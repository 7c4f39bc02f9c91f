package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/smhanov/redraft"
)

// Ollama implements redraft.LLMProvider using the Ollama /api/generate
// endpoint. Useful for keyless local models; Cost is always zero.
type Ollama struct {
	Endpoint string // host or URL, e.g. localhost:11434
	Model    string
	client   *http.Client
}

// NewOllama constructs an Ollama client for the given endpoint and model.
func NewOllama(endpoint, model string) *Ollama {
	if endpoint == "" {
		endpoint = "localhost:11434"
	}
	// Local models can be slow to generate; allow a generous timeout.
	return &Ollama{Endpoint: endpoint, Model: model, client: &http.Client{Timeout: 10 * time.Minute}}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends a non-streaming generate request.
func (o *Ollama) Generate(ctx context.Context, systemPrompt, userPrompt string) (redraft.LLMResponse, error) {
	endpoint := o.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}
	url := strings.TrimRight(endpoint, "/") + "/api/generate"

	body, err := postJSONWithRetries(ctx, o.client, url, "", ollamaRequest{
		Model:  o.Model,
		Prompt: userPrompt,
		System: systemPrompt,
	}, "ollama")
	if err != nil {
		return redraft.LLMResponse{}, err
	}

	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return redraft.LLMResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return redraft.LLMResponse{Text: strings.TrimSpace(resp.Response)}, nil
}
