// Package config loads and saves the prompt-builder settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dhabedank/prompt-builder/internal/core"
	"github.com/dhabedank/prompt-builder/internal/llm"
)

// FileName is the settings file looked up in the working and home directories.
const FileName = ".prompt-builder.yaml"

// Environment variables that override the file.
const (
	EnvAPIKey = "OPENROUTER_API_KEY"
	EnvModel  = "PROMPT_BUILDER_MODEL"
)

// LegacyPremium is the legacy modelSelection value mapped to the premium model.
const LegacyPremium = "premium"

// Config is the persisted settings blob. JSON files are accepted too.
type Config struct {
	APIKey            string `yaml:"apiKey,omitempty"`
	Model             string `yaml:"model,omitempty"`
	Provider          string `yaml:"provider,omitempty"`
	BaseURL           string `yaml:"baseURL,omitempty"`
	MaxImageWidth     int    `yaml:"maxImageWidth,omitempty"`
	RequestsPerMinute int    `yaml:"requestsPerMinute,omitempty"`
}

// fileData is the on-disk shape, including the legacy selector.
type fileData struct {
	Config         `yaml:",inline"`
	ModelSelection string `yaml:"modelSelection,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	defaults := llm.DefaultConfig()
	return Config{
		Model:         core.FreeModelID,
		Provider:      defaults.Provider,
		BaseURL:       defaults.BaseURL,
		MaxImageWidth: defaults.MaxImageWidth,
	}
}

// String hides the API key.
func (c Config) String() string {
	return fmt.Sprintf("%s provider:%s baseURL:%s", c.APIConfig(), c.Provider, c.BaseURL)
}

// APIConfig returns the per-call credentials.
func (c Config) APIConfig() core.APIConfig {
	return core.APIConfig{APIKey: c.APIKey, Model: c.Model}
}

// LLMConfig returns the transport settings.
func (c Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	if c.Provider != "" {
		out.Provider = c.Provider
	}
	if c.BaseURL != "" {
		out.BaseURL = c.BaseURL
	}
	if c.MaxImageWidth != 0 {
		out.MaxImageWidth = c.MaxImageWidth
	}
	return out
}

// MigrateSelection maps a legacy modelSelection value to a model id.
func MigrateSelection(selection string) string {
	if selection == LegacyPremium {
		return core.PremiumModelID
	}
	return core.FreeModelID
}

// FindPath returns the settings file to use: explicit if set, else
// ./.prompt-builder.yaml when present, else ~/.prompt-builder.yaml.
func FindPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// IsFirstRun reports whether no settings file exists at path yet.
func IsFirstRun(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}

// Load reads the settings at path, falling back to Default for missing
// fields. A missing file is not an error. Legacy files holding
// modelSelection are migrated and written back; migrated reports that.
func Load(path string) (cfg Config, migrated bool, err error) {
	cfg = Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileData
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, false, fmt.Errorf("failed to parse config file: %w", err)
	}

	if file.ModelSelection != "" {
		file.Model = MigrateSelection(file.ModelSelection)
		if err := Save(path, file.Config); err != nil {
			return cfg, false, fmt.Errorf("failed to save migrated config: %w", err)
		}
		migrated = true
	}

	merge(&cfg, file.Config)
	return cfg, migrated, nil
}

// Save writes the settings file. It holds the API key, so it is only
// readable by the owner.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadDotEnv loads .env files into the environment without overriding
// variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides the key and model from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		c.Model = v
	}
}

// Validate checks the settings needed to call the API.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("no API key configured: run 'prompt-builder setup' or set %s", EnvAPIKey)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("no model configured")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requestsPerMinute must not be negative")
	}
	return nil
}

func merge(dst *Config, src Config) {
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.MaxImageWidth != 0 {
		dst.MaxImageWidth = src.MaxImageWidth
	}
	if src.RequestsPerMinute != 0 {
		dst.RequestsPerMinute = src.RequestsPerMinute
	}
}
