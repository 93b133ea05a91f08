// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	// Provider credentials.
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// DefaultModel is the model identifier used when an agent definition
	// does not name one.
	DefaultModel string

	// Loop settings.
	MaxIterations int
	Temperature   float64

	// HTTPAddr is the studio server listen address.
	HTTPAddr string

	// DataDir is where agent definitions persist.
	DataDir string

	// Search tool settings.
	SearchAPIKey string
	SearchAPIURL string

	// Logging.
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first if present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is fine; it only serves local development.
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		DefaultModel:    getEnv("AGENTAPPS_MODEL", "gpt-4o-mini"),
		HTTPAddr:        getEnv("AGENTAPPS_HTTP_ADDR", ":8080"),
		DataDir:         getEnv("AGENTAPPS_DATA_DIR", "./data"),
		SearchAPIKey:    os.Getenv("SEARCH_API_KEY"),
		SearchAPIURL:    os.Getenv("SEARCH_API_URL"),
		LogLevel:        getEnv("AGENTAPPS_LOG_LEVEL", "info"),
		LogFormat:       getEnv("AGENTAPPS_LOG_FORMAT", "json"),
	}

	var err error
	if cfg.MaxIterations, err = getEnvInt("AGENTAPPS_MAX_ITERATIONS", 10); err != nil {
		return nil, err
	}
	if cfg.Temperature, err = getEnvFloat("AGENTAPPS_TEMPERATURE", 0); err != nil {
		return nil, err
	}
	if cfg.MaxIterations <= 0 {
		return nil, fmt.Errorf("AGENTAPPS_MAX_ITERATIONS must be positive, got %d", cfg.MaxIterations)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
