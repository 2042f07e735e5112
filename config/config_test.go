package config

import (
	"encoding/base64"
	"strings"
	"testing"
)

const testKeyJSON = `{"type":"service_account","project_id":"acme-prod"}`

// setRequiredEnv points HOME at an empty directory so no real config
// file leaks in, clears the optional variables, and sets every
// required one.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"LLM_PROVIDER", "LLM_MODEL", "OLLAMA_BASE_URL", "DATABASE_PATH",
		"DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID", "WATCH_CRON", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("GCP_PROJECT_ID", "acme-prod")
	t.Setenv("GCP_FUNCTION_NAME", "checkout-api")
	t.Setenv("GCP_SA_KEY_BASE64", base64.StdEncoding.EncodeToString([]byte(testKeyJSON)))
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_REPO", "octo/widgets")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectID != "acme-prod" {
		t.Errorf("ProjectID = %q", cfg.ProjectID)
	}
	if cfg.ServiceName != "checkout-api" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if string(cfg.GCPKey) != testKeyJSON {
		t.Errorf("GCPKey = %q, want the decoded key JSON", cfg.GCPKey)
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %q, want openai", cfg.LLMProvider)
	}
	if cfg.DatabasePath != "./sleuth.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.WatchCron != "0 */6 * * *" {
		t.Errorf("WatchCron = %q", cfg.WatchCron)
	}
	if cfg.OllamaBaseURL != "http://localhost:11434/v1" {
		t.Errorf("OllamaBaseURL = %q", cfg.OllamaBaseURL)
	}
}

func TestLoad_MissingOneVariable(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GITHUB_TOKEN", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for a missing required variable")
	}
	if !strings.Contains(err.Error(), "GITHUB_TOKEN") {
		t.Errorf("error should name GITHUB_TOKEN, got %v", err)
	}
	if strings.Contains(err.Error(), "GCP_PROJECT_ID") {
		t.Errorf("error should not name variables that are set, got %v", err)
	}
}

func TestLoad_MissingAllListsEveryVariable(t *testing.T) {
	setRequiredEnv(t)
	for _, name := range []string{
		"GCP_PROJECT_ID", "GCP_FUNCTION_NAME", "GCP_SA_KEY_BASE64",
		"GITHUB_TOKEN", "GITHUB_REPO", "OPENAI_API_KEY",
	} {
		t.Setenv(name, "")
	}

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error when everything is missing")
	}
	for _, name := range []string{
		"GCP_PROJECT_ID", "GCP_FUNCTION_NAME", "GCP_SA_KEY_BASE64",
		"GITHUB_TOKEN", "GITHUB_REPO", "OPENAI_API_KEY",
	} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s, got %v", name, err)
		}
	}
}

func TestLoad_BadKeyEncoding(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GCP_SA_KEY_BASE64", "not!!base64")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for an undecodable key")
	}
	if !strings.Contains(err.Error(), "GCP_SA_KEY_BASE64") {
		t.Errorf("error should name the key variable, got %v", err)
	}
}

func TestLoad_AnthropicProviderRequiresItsKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error without ANTHROPIC_API_KEY")
	}
	if !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("error should name ANTHROPIC_API_KEY, got %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with anthropic key: %v", err)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
}

func TestLoad_OllamaNeedsNoKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLMProvider != "ollama" {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
}

func TestDatabasePath_Override(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_PATH", "/var/lib/sleuth/history.db")

	if got := DatabasePath(); got != "/var/lib/sleuth/history.db" {
		t.Errorf("DatabasePath() = %q", got)
	}
}

func TestConfigFile(t *testing.T) {
	t.Setenv("HOME", "/home/dev")

	if got := ConfigFile(); got != "/home/dev/.sleuth/config" {
		t.Errorf("ConfigFile() = %q", got)
	}
}
