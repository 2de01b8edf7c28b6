// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/diffwatch/reviewbot/internal/filter"
)

// Config holds all application configuration. It is built once at startup and
// read-only afterwards.
type Config struct {
	Host     string       `yaml:"host"`
	Port     int          `yaml:"port"`
	LogLevel string       `yaml:"log_level"`
	GitHub   GitHubConfig `yaml:"github"`
	Review   ReviewConfig `yaml:"review"`
	Filter   FilterConfig `yaml:"filter"`
	Verbose  bool         `yaml:"-"` // set via CLI only
}

// GitHubConfig holds host-platform credentials.
type GitHubConfig struct {
	Token         string `yaml:"token"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// ReviewConfig holds LLM review settings.
type ReviewConfig struct {
	Provider       string `yaml:"provider"` // openai, googleai
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`         // custom OpenAI-compatible endpoint
	APIKeyName     string `yaml:"api_key_name"`     // secret name resolved per invocation
	MaxPatchLength int    `yaml:"max_patch_length"` // bytes; <= 0 means unbounded
	TargetLabel    string `yaml:"target_label"`     // required PR label; empty disables the gate
}

// FilterConfig holds the file-filter rule sets.
type FilterConfig struct {
	IgnoreList      []string `yaml:"ignore_list"`
	IgnorePatterns  []string `yaml:"ignore_patterns"`
	IncludePatterns []string `yaml:"include_patterns"`
}

// Rules converts the configured lists into filter rules.
func (f FilterConfig) Rules() filter.Rules {
	return filter.Rules{
		IgnoreList:      f.IgnoreList,
		IgnorePatterns:  f.IgnorePatterns,
		IncludePatterns: f.IncludePatterns,
	}
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     8080,
		LogLevel: "info",
		Review: ReviewConfig{
			Provider:   "openai",
			APIKeyName: "OPENAI_API_KEY",
		},
	}
}

// Load reads configuration from an optional YAML file, then applies
// environment overrides. A missing file is not an error; the environment
// always wins. An optional .env file is loaded first without clobbering
// variables already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Host, "HOST")
	setString(&c.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}

	setString(&c.GitHub.Token, "GITHUB_TOKEN")
	setString(&c.GitHub.WebhookSecret, "GITHUB_WEBHOOK_SECRET")

	setString(&c.Review.Provider, "PROVIDER")
	setString(&c.Review.Model, "MODEL")
	setString(&c.Review.BaseURL, "OPENAI_API_ENDPOINT")
	setString(&c.Review.TargetLabel, "TARGET_LABEL")
	if v := os.Getenv("MAX_PATCH_LENGTH"); v != "" {
		max, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_PATCH_LENGTH %q: %w", v, err)
		}
		c.Review.MaxPatchLength = max
	}

	if v := os.Getenv("IGNORE"); v != "" {
		c.Filter.IgnoreList = splitList(v, "\n")
	}
	if v := os.Getenv("IGNORE_PATTERNS"); v != "" {
		c.Filter.IgnorePatterns = splitList(v, ",")
	}
	if v := os.Getenv("INCLUDE_PATTERNS"); v != "" {
		c.Filter.IncludePatterns = splitList(v, ",")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// splitList splits on sep, trims whitespace and drops empty entries.
func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr returns host:port for HTTP server binding.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Review.Provider {
	case "openai", "googleai":
	default:
		return fmt.Errorf("unknown review provider %q", c.Review.Provider)
	}
	return nil
}
