// Package config loads the assistant's YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Google holds the OAuth file locations for the Google backends.
type Google struct {
	// CredentialsPath points at the OAuth client-secrets JSON file.
	CredentialsPath string `yaml:"credentials_path"`

	// CalendarTokenPath stores the authorized calendar token.
	CalendarTokenPath string `yaml:"calendar_token_path"`

	// GmailTokenPath stores the authorized Gmail token.
	GmailTokenPath string `yaml:"gmail_token_path"`
}

// Store selects the conversation store backend.
type Store struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver"`

	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`
}

// Config is the assistant's runtime configuration.
type Config struct {
	// Model is the Ollama model name.
	Model string `yaml:"model"`

	// BaseURL is the Ollama server URL. Empty uses the client default.
	BaseURL string `yaml:"base_url"`

	// SystemPromptPath points at a text file with the system prompt.
	// Empty uses the built-in prompt.
	SystemPromptPath string `yaml:"system_prompt_path"`

	// TimeZone is the default calendar timezone.
	TimeZone string `yaml:"timezone"`

	// SenderAddress is the From address for outgoing mail.
	SenderAddress string `yaml:"sender_address"`

	Google Google `yaml:"google"`
	Store  Store  `yaml:"store"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Model:    "llama3.1",
		TimeZone: "Europe/Rome",
		Google: Google{
			CredentialsPath:   "credentials.json",
			CalendarTokenPath: "calendar_token.json",
			GmailTokenPath:    "gmail_token.json",
		},
		Store: Store{
			Driver: "memory",
			Path:   "eva.db",
		},
	}
}

// Load reads the configuration at path, layered over Default. A missing file
// is not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// SystemPrompt returns the configured system prompt text, or def when no
// prompt file is configured.
func (c Config) SystemPrompt(def string) (string, error) {
	if c.SystemPromptPath == "" {
		return def, nil
	}
	data, err := os.ReadFile(c.SystemPromptPath)
	if err != nil {
		return "", fmt.Errorf("config: reading system prompt %s: %w", c.SystemPromptPath, err)
	}
	return string(data), nil
}
