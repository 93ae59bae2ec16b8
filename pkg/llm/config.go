package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshuarweaver/brieforge/pkg/config"
)

type Config struct {
	Provider  string
	Model     string
	APIKey    string
	APIURL    string
	MaxTokens int
}

// minRequestInterval spaces out calls so burst traffic does not trip
// provider-side rate limits.
const minRequestInterval = 500 * time.Millisecond

func LoadConfig() Config {
	return Config{
		Provider: config.GetEnv("LLM_PROVIDER", "anthropic"),
		Model:    config.GetEnv("LLM_MODEL", ""),
		APIKey:   config.GetEnv("LLM_API_KEY", ""),
		APIURL:   config.GetEnv("LLM_API_URL", ""),
	}
}

func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
