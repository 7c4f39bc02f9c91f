package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/smhanov/redraft"
	"github.com/smhanov/redraft/config"
	"github.com/smhanov/redraft/llm"
	"github.com/smhanov/redraft/search"
)

// newLogger returns a development logger in verbose mode and a nop logger
// otherwise, so plain runs print nothing but the answer.
func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

// buildPipeline assembles providers from config. Provider API failures never
// abort a run; only a misconfigured provider selection errors here.
func buildPipeline(cfg *config.Config, logger *zap.Logger) (*redraft.Pipeline, error) {
	var searcher redraft.SearchProvider
	switch cfg.Search {
	case "tavily":
		searcher = search.NewTavily(cfg.TavilyAPIKey, cfg.TavilyDepth)
	case "brave":
		searcher = search.NewBrave(cfg.BraveAPIKey)
	case "duckduckgo":
		searcher = search.NewDuckDuckGo()
	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Search)
	}

	var model redraft.LLMProvider
	switch cfg.Backend {
	case "groq":
		model = llm.NewGroq(cfg.GroqAPIKey, cfg.Model)
	case "ollama":
		model = llm.NewOllama(cfg.OllamaHost, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}

	return redraft.New(
		redraft.WithSearchProvider(searcher),
		redraft.WithModel(model),
		redraft.WithStageTimeout(cfg.StageTimeout),
		redraft.WithSearchCost(cfg.SearchCostUSD),
		redraft.WithLogger(logger),
	), nil
}
