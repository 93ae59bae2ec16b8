package config

import (
	"github.com/joshuarweaver/brieforge/pkg/config"
)

// Config stores environment configuration for BrieForge.
type Config struct {
	Port            string
	DatabaseURL     string
	LLMProvider     string
	LLMModel        string
	LLMAPIKey       string
	LLMAPIURL       string
	LLMMaxTokens    int
	SearchAPIKey    string
	SearchAPIURL    string
	SignalLimit     int
	BlueprintUseLLM bool
	QueryGenUseLLM  bool
}

// LoadConfig loads the BrieForge configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port:            config.GetEnv("PORT", "18040"),
		DatabaseURL:     config.RequireEnv("DATABASE_URL"),
		LLMProvider:     config.GetEnv("LLM_PROVIDER", ""),
		LLMModel:        config.GetEnv("LLM_MODEL", ""),
		LLMAPIKey:       config.GetEnv("LLM_API_KEY", ""),
		LLMAPIURL:       config.GetEnv("LLM_API_URL", ""),
		LLMMaxTokens:    config.GetEnvInt("LLM_MAX_TOKENS", 4096),
		SearchAPIKey:    config.GetEnv("SEARCHAPI_KEY", ""),
		SearchAPIURL:    config.GetEnv("SEARCHAPI_URL", ""),
		SignalLimit:     config.GetEnvInt("BRIEFORGE_SIGNAL_LIMIT", 75),
		BlueprintUseLLM: config.GetEnvBool("BRIEFORGE_BLUEPRINT_USE_LLM", true),
		QueryGenUseLLM:  config.GetEnvBool("BRIEFORGE_QUERYGEN_USE_LLM", true),
	}
}
