package genai

import "os"

const (
	// EnvAPIKey and EnvBaseURL override model endpoint credentials.
	EnvAPIKey  = "TYPEVAULT_MODEL_API_KEY"
	EnvBaseURL = "TYPEVAULT_MODEL_BASE_URL"
)

// Config holds model service connection parameters.
type Config struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// Finalize applies environment variable overrides. An empty API key is
// allowed: local model endpoints often run unauthenticated, and analysis
// can be disabled entirely by configuration.
func (c *Config) Finalize() error {
	c.loadEnv()
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
}

