// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	GenAI   GenAIConfig   `yaml:"genai"`
	Gateway GatewayConfig `yaml:"gateway"`
	Chat    ChatConfig    `yaml:"chat"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080"`
}

// StorageConfig represents durable storage configuration.
type StorageConfig struct {
	Dir string `yaml:"dir" default:"data"`
}

// GenAIConfig represents the generation service connection.
type GenAIConfig struct {
	APIKey     string `yaml:"api_key" validate:"required"`
	BaseURL    string `yaml:"base_url" default:"https://generativelanguage.googleapis.com"`
	TimeoutSec int    `yaml:"timeout_sec" default:"30" validate:"gte=1,lte=300"`
}

// GatewayConfig represents the mood recommendation gateway configuration.
// Settings are provider-specific and decoded by the gateway itself.
type GatewayConfig struct {
	Settings map[string]any `yaml:"settings"`
}

// ChatConfig represents the chat assistant configuration.
type ChatConfig struct {
	Model string `yaml:"model" default:"gemini-3-pro-preview"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("GENAI_API_KEY"); v != "" {
		c.GenAI.APIKey = v
	}
	if v := os.Getenv("GENAI_BASE_URL"); v != "" {
		c.GenAI.BaseURL = v
	}
	if v := os.Getenv("MOODTUNES_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
