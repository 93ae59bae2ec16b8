package searchapi

import (
	"github.com/joshuarweaver/brieforge/pkg/config"
)

// Config holds environment configuration for the search client.
type Config struct {
	APIKey  string
	BaseURL string
}

// LoadConfig loads search configuration from the environment.
func LoadConfig() Config {
	return Config{
		APIKey:  config.GetEnv("SEARCHAPI_KEY", ""),
		BaseURL: config.GetEnv("SEARCHAPI_URL", ""),
	}
}
