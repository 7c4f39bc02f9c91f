// Package llm provides language model clients for the inference stages of
// the pipeline.
//
// Available providers:
//
//   - Groq: OpenAI-compatible chat completions with per-model cost tracking.
//     Override Endpoint to target any /v1/chat/completions server
//     (OpenAI, vLLM, LiteLLM, Ollama's /v1, etc.).
//   - Ollama: local keyless models via the native /api/generate endpoint.
//
// Implement the redraft.LLMProvider interface to connect any other backend.
package llm
