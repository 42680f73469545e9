package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Topics) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(cfg.Topics))
	}
	if cfg.Topics[0].Name != "Mobile C-arm Imaging" {
		t.Errorf("expected first topic 'Mobile C-arm Imaging', got %q", cfg.Topics[0].Name)
	}
	if len(cfg.Topics[0].Keywords) == 0 {
		t.Error("expected keywords to be populated")
	}

	if cfg.Search.ResultsPerQuery != 15 {
		t.Errorf("expected results_per_query 15, got %d", cfg.Search.ResultsPerQuery)
	}
	if cfg.Search.Window != "week" {
		t.Errorf("expected window 'week', got %q", cfg.Search.Window)
	}

	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected model 'gpt-4o-mini', got %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxRetries != 3 {
		t.Errorf("expected max_retries 3, got %d", cfg.LLM.MaxRetries)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
topics:
  - name: Robotics
    keywords: ["surgical robot"]
llm:
  model: gpt-4o
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if len(cfg.Topics) != 1 || cfg.Topics[0].Name != "Robotics" {
		t.Errorf("unexpected topics: %+v", cfg.Topics)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected model 'gpt-4o', got %q", cfg.LLM.Model)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.LLM.BaseURL != "https://models.inference.ai.azure.com" {
		t.Errorf("expected default base_url, got %q", cfg.LLM.BaseURL)
	}
	if cfg.Search.CooldownSeconds != 1 {
		t.Errorf("expected default cooldown 1, got %d", cfg.Search.CooldownSeconds)
	}
	if cfg.Email.SMTPPort != 587 {
		t.Errorf("expected default smtp_port 587, got %d", cfg.Email.SMTPPort)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Topics) == 0 {
		t.Error("expected topics to be populated from file")
	}
}

func TestHasAIBackend(t *testing.T) {
	cfg, err := parse(nil)
	if err != nil {
		t.Fatalf("failed to parse empty config: %v", err)
	}
	cfg.LLM.TokenEnv = "MEDWATCH_TEST_TOKEN"

	os.Unsetenv("MEDWATCH_TEST_TOKEN")
	if cfg.HasAIBackend() {
		t.Error("expected no AI backend without token")
	}

	t.Setenv("MEDWATCH_TEST_TOKEN", "ghp_test")
	if !cfg.HasAIBackend() {
		t.Error("expected AI backend with token set")
	}
}

func TestCanSendEmail(t *testing.T) {
	cfg, err := parse(nil)
	if err != nil {
		t.Fatalf("failed to parse empty config: %v", err)
	}
	cfg.Email.PasswordEnv = "MEDWATCH_TEST_SMTP"

	if cfg.CanSendEmail() {
		t.Error("expected email to be unconfigured")
	}

	cfg.Email.Sender = "reports@example.com"
	cfg.Email.Recipients = []string{"exec@example.com"}
	t.Setenv("MEDWATCH_TEST_SMTP", "app-password")
	if !cfg.CanSendEmail() {
		t.Error("expected email to be configured")
	}
}
