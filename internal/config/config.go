package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Topics  []Topic `yaml:"topics"`
	Search  Search  `yaml:"search"`
	LLM     LLM     `yaml:"llm"`
	Fetch   Fetch   `yaml:"fetch"`
	Report  Report  `yaml:"report"`
	Email   Email   `yaml:"email"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Topic is one report category. Topics are a list, not a map, so the
// order in the config file is the order categories appear in the report.
type Topic struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Feeds    []string `yaml:"feeds"`
}

type Search struct {
	ResultsPerQuery int    `yaml:"results_per_query"`
	Window          string `yaml:"window"` // day, week, or month
	CooldownSeconds int    `yaml:"cooldown_seconds"`
}

type LLM struct {
	Model            string  `yaml:"model"`
	BaseURL          string  `yaml:"base_url"`
	TokenEnv         string  `yaml:"token_env"`
	MaxTokens        int     `yaml:"max_tokens"`
	Temperature      float64 `yaml:"temperature"`
	MaxRetries       int     `yaml:"max_retries"`
	BaseDelaySeconds int     `yaml:"base_delay_seconds"`
}

type Fetch struct {
	Enabled        bool `yaml:"enabled"`
	PerCategory    int  `yaml:"per_category"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

type Report struct {
	Title           string   `yaml:"title"`
	IncludeKeywords []string `yaml:"include_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

type Email struct {
	Sender          string   `yaml:"sender"`
	PasswordEnv     string   `yaml:"password_env"`
	Recipients      []string `yaml:"recipients"`
	SMTPHost        string   `yaml:"smtp_host"`
	SMTPPort        int      `yaml:"smtp_port"`
	SubjectTemplate string   `yaml:"subject_template"`
}

type Output struct {
	Dir string `yaml:"dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for medwatch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "medwatch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/medwatch/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'medwatch init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Search: Search{
			ResultsPerQuery: 15,
			Window:          "week",
			CooldownSeconds: 1,
		},
		LLM: LLM{
			Model:            "gpt-4o-mini",
			BaseURL:          "https://models.inference.ai.azure.com",
			TokenEnv:         "GITHUB_TOKEN",
			MaxTokens:        10000,
			Temperature:      0.3,
			MaxRetries:       3,
			BaseDelaySeconds: 5,
		},
		Fetch: Fetch{
			Enabled:        true,
			PerCategory:    5,
			TimeoutSeconds: 15,
		},
		Email: Email{
			SMTPHost:        "smtp.gmail.com",
			SMTPPort:        587,
			PasswordEnv:     "SMTP_APP_PASSWORD",
			SubjectTemplate: "Market Intelligence Report - {date}",
		},
		Output:  Output{Dir: "output"},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Token returns the completion backend token from the configured env var.
func (c *Config) Token() string {
	return os.Getenv(c.LLM.TokenEnv)
}

// HasAIBackend reports whether the completion backend token is set.
func (c *Config) HasAIBackend() bool {
	return c.Token() != ""
}

// CanSendEmail reports whether email delivery is fully configured.
func (c *Config) CanSendEmail() bool {
	return c.Email.Sender != "" && os.Getenv(c.Email.PasswordEnv) != "" && len(c.Email.Recipients) > 0
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
