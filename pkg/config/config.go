package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/contentcompass/compass/pkg/models"
)

// Config holds all Compass configuration.
type Config struct {
	Mode      models.Mode     `yaml:"mode"`
	DataDir   string          `yaml:"data_dir"`
	Virlo     VirloConfig     `yaml:"virlo"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Endpoints map[string]bool `yaml:"endpoints"`
	Log       LogConfig       `yaml:"log"`
}

// VirloConfig defines the upstream trend API.
type VirloConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// GeminiConfig defines the text generation model used for plans and briefs.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Mode: models.ModeDemo,
		Virlo: VirloConfig{
			BaseURL: "https://api.virlo.ai",
			Timeout: 30 * time.Second,
		},
		Gemini: GeminiConfig{
			Model: "gemini-3-flash-preview",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("config: unknown mode %q", cfg.Mode)
	}

	return cfg, nil
}

// EndpointEnabled reports whether fetches for kind are switched on. Kinds
// absent from the endpoints map default to enabled.
func (c *Config) EndpointEnabled(kind models.ResourceKind) bool {
	enabled, ok := c.Endpoints[string(kind)]
	if !ok {
		return true
	}
	return enabled
}

// ResolveDataDir returns the directory state files live in, creating it
// when missing. An empty DataDir resolves to ~/.compass.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".compass")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}
