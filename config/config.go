// Package config loads pipeline settings from the environment and an
// optional YAML config file. A .env file in the working directory is
// applied first, so existing shell variables win over it.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config carries everything the CLI needs to assemble a pipeline.
type Config struct {
	TavilyAPIKey  string        `mapstructure:"tavily_api_key"`
	TavilyDepth   string        `mapstructure:"tavily_depth"`
	BraveAPIKey   string        `mapstructure:"brave_api_key"`
	GroqAPIKey    string        `mapstructure:"groq_api_key"`
	Search        string        `mapstructure:"search"`  // tavily | brave | duckduckgo
	Backend       string        `mapstructure:"backend"` // groq | ollama
	Model         string        `mapstructure:"model"`
	OllamaHost    string        `mapstructure:"ollama_host"`
	StageTimeout  time.Duration `mapstructure:"stage_timeout"`
	ListenAddr    string        `mapstructure:"listen_addr"`
	SearchCostUSD float64       `mapstructure:"search_cost_usd"`
}

// Load reads configuration. Precedence: environment variables, then the
// config file at path (when non-empty), then defaults.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("tavily_depth", "basic")
	v.SetDefault("search", "tavily")
	v.SetDefault("backend", "groq")
	v.SetDefault("model", "llama-3.3-70b-versatile")
	v.SetDefault("ollama_host", "localhost:11434")
	v.SetDefault("stage_timeout", time.Minute)
	v.SetDefault("listen_addr", ":8080")

	for key, env := range map[string]string{
		"tavily_api_key": "TAVILY_API_KEY",
		"brave_api_key":  "BRAVE_API_KEY",
		"groq_api_key":   "GROQ_API_KEY",
		"search":         "REDRAFT_SEARCH",
		"backend":        "REDRAFT_BACKEND",
		"model":          "REDRAFT_MODEL",
		"ollama_host":    "OLLAMA_HOST",
		"stage_timeout":  "REDRAFT_STAGE_TIMEOUT",
		"listen_addr":    "REDRAFT_LISTEN_ADDR",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
