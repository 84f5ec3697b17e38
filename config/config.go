// Package config loads the panel configuration: the agent roster, the global
// discussion rules and the model backend settings. Configuration lives in a
// YAML file; the API credential comes from the environment and its absence
// is a fatal precondition checked before any round starts.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Ouuuuuuuuuuu/poli/core"
)

// EnvAPIKey is the primary environment variable holding the credential.
// Provider-conventional variables are consulted as fallbacks.
const EnvAPIKey = "POLI_API_KEY"

// Known provider identifiers for ModelConfig.Provider.
const (
	ProviderOpenAICompatible = "openai-compatible"
	ProviderOpenAI           = "openai"
	ProviderAnthropic        = "anthropic"
)

// envFallbacks maps providers to their conventional credential variables.
var envFallbacks = map[string]string{
	ProviderOpenAICompatible: "OPENAI_API_KEY",
	ProviderOpenAI:           "OPENAI_API_KEY",
	ProviderAnthropic:        "ANTHROPIC_API_KEY",
}

// AgentConfig declares one roster entry in the YAML file.
type AgentConfig struct {
	Key     string `yaml:"key"`
	Label   string `yaml:"label"`
	Persona string `yaml:"persona"`
}

// ModelConfig selects and tunes the generation backend.
type ModelConfig struct {
	Provider       string  `yaml:"provider"`
	Name           string  `yaml:"name"`
	BaseURL        string  `yaml:"base_url,omitempty"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int64   `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the per-session budget as a duration.
func (m ModelConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Config models the whole panel configuration file.
type Config struct {
	Rules  string        `yaml:"rules"`
	Agents []AgentConfig `yaml:"agents"`
	Model  ModelConfig   `yaml:"model"`
}

// Default returns the built-in configuration used when no file is supplied:
// a small demonstration panel against the hosted OpenAI-compatible endpoint.
func Default() *Config {
	return &Config{
		Rules: "You are a panelist in an informal roundtable discussion. Keep replies short and conversational. React to what other panelists said when it is relevant.",
		Agents: []AgentConfig{
			{Key: "optimist", Label: "Sunny", Persona: "You see the upside of everything and say so cheerfully."},
			{Key: "skeptic", Label: "Ray", Persona: "You question assumptions and ask for evidence."},
			{Key: "historian", Label: "Ines", Persona: "You relate every topic to something that happened before."},
			{Key: "pragmatist", Label: "Mo", Persona: "You care only about what can be done next week."},
		},
		Model: ModelConfig{
			Provider:       ProviderOpenAICompatible,
			Name:           "gpt-4o-mini",
			Temperature:    0.8,
			MaxTokens:      512,
			TimeoutSeconds: 60,
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the roster and model settings.
func (c *Config) Validate() error {
	if err := c.Roster().Validate(); err != nil {
		return err
	}
	switch c.Model.Provider {
	case ProviderOpenAICompatible, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q", c.Model.Provider)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if c.Model.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	return nil
}

// Roster converts the configured agents into the runtime roster.
func (c *Config) Roster() core.Roster {
	roster := make(core.Roster, len(c.Agents))
	for i, a := range c.Agents {
		label := a.Label
		if label == "" {
			label = a.Key
		}
		roster[i] = core.Agent{Key: a.Key, Label: label, Persona: a.Persona}
	}
	return roster
}

// APIKey resolves the credential for the configured provider. A missing
// credential is reported as core.ErrMissingAPIKey and must abort startup
// before any round begins.
func (c *Config) APIKey() (string, error) {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, nil
	}
	if fallback := envFallbacks[c.Model.Provider]; fallback != "" {
		if key := os.Getenv(fallback); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: set %s", core.ErrMissingAPIKey, EnvAPIKey)
}
