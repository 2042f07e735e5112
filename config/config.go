// Package config loads sleuth's settings from the environment, a .env
// file in the working directory, or ~/.sleuth/config.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID   string // GCP project the service runs in
	ServiceName string // Cloud Run service under investigation
	GCPKey      []byte // decoded service-account JSON key

	GitHubToken string
	GitHubRepo  string // owner/name

	LLMProvider   string // openai, anthropic, ollama
	OpenAIKey     string
	AnthropicKey  string
	LLMModel      string
	OllamaBaseURL string

	DatabasePath     string
	DiscordToken     string
	DiscordChannelID string
	WatchCron        string
}

type requiredVar struct {
	name        string
	description string
}

// Load reads the environment and validates it. Every missing required
// variable is reported in one error so a fresh setup can be fixed in a
// single pass.
func Load() (*Config, error) {
	loadEnvFiles()

	required := []requiredVar{
		{"GCP_PROJECT_ID", "GCP project ID"},
		{"GCP_FUNCTION_NAME", "name of the Cloud Run service to investigate"},
		{"GCP_SA_KEY_BASE64", "base64-encoded GCP service account JSON key"},
		{"GITHUB_TOKEN", "GitHub personal access token with repo scope"},
		{"GITHUB_REPO", "GitHub repo in owner/name format"},
	}

	provider := envOr("LLM_PROVIDER", "openai")
	switch provider {
	case "openai":
		required = append(required, requiredVar{"OPENAI_API_KEY", "OpenAI API key for the LLM"})
	case "anthropic":
		required = append(required, requiredVar{"ANTHROPIC_API_KEY", "Anthropic API key for the LLM"})
	}

	var missing []string
	for _, v := range required {
		if os.Getenv(v.name) == "" {
			missing = append(missing, fmt.Sprintf("  - %s: %s", v.name, v.description))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables:\n%s\nset them in .env or %s",
			strings.Join(missing, "\n"), ConfigFile())
	}

	key, err := base64.StdEncoding.DecodeString(os.Getenv("GCP_SA_KEY_BASE64"))
	if err != nil {
		return nil, fmt.Errorf("decoding GCP_SA_KEY_BASE64: %w", err)
	}

	return &Config{
		ProjectID:        os.Getenv("GCP_PROJECT_ID"),
		ServiceName:      os.Getenv("GCP_FUNCTION_NAME"),
		GCPKey:           key,
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		GitHubRepo:       os.Getenv("GITHUB_REPO"),
		LLMProvider:      provider,
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		OllamaBaseURL:    envOr("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		DatabasePath:     envOr("DATABASE_PATH", "./sleuth.db"),
		DiscordToken:     os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),
		WatchCron:        envOr("WATCH_CRON", "0 */6 * * *"),
	}, nil
}

// DatabasePath resolves the history database path without requiring a
// full configuration, so read-only commands work before setup.
func DatabasePath() string {
	loadEnvFiles()
	return envOr("DATABASE_PATH", "./sleuth.db")
}

// ConfigDir is ~/.sleuth.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sleuth")
}

// ConfigFile is ~/.sleuth/config, in .env format.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config")
}

// loadEnvFiles merges .env and ~/.sleuth/config into the environment.
// godotenv never overrides variables already set, so the precedence is
// environment, then .env, then the config file.
func loadEnvFiles() {
	_ = godotenv.Load()
	_ = godotenv.Load(ConfigFile())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
