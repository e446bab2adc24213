/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ssargent/monologreader/pkg/codec"
	"github.com/ssargent/monologreader/pkg/logging"
	"github.com/ssargent/monologreader/pkg/source"
	"gopkg.in/yaml.v3"
)

// Config represents the monolog reader configuration
type Config struct {
	Grammar Grammar `yaml:"grammar"`
	Logging Logging `yaml:"logging"`
	Server  Server  `yaml:"server"`
	Source  Source  `yaml:"source"`
}

// Grammar overrides the record grammar. Empty fields keep the Monolog defaults.
type Grammar struct {
	MetaPattern   string `yaml:"meta_pattern,omitempty"`
	RecordPattern string `yaml:"record_pattern,omitempty"`
	DateLayout    string `yaml:"date_layout,omitempty"`
	Timezone      string `yaml:"timezone,omitempty"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Server contains HTTP API configuration
type Server struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Source contains line source tuning
type Source struct {
	CheckpointEvery int `yaml:"checkpoint_every"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Grammar: Grammar{
			DateLayout: codec.DefaultDateLayout,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Server: Server{
			Bind: "127.0.0.1",
			Port: 8080,
		},
		Source: Source{
			CheckpointEvery: source.DefaultCheckpointEvery,
		},
	}
}

// LoadConfig loads configuration from the specified path. Fields missing
// from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration to configPath unless a file
// already exists there, and returns the configuration in effect.
func BootstrapConfig(configPath string) (*Config, error) {
	if ConfigExists(configPath) {
		return LoadConfig(configPath)
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// Validate checks the fields that cannot be checked by YAML decoding alone.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Decoder(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}
	if c.Source.CheckpointEvery < 0 {
		errs = append(errs, fmt.Errorf("checkpoint_every must not be negative"))
	}

	return errors.Join(errs...)
}

// Decoder builds the record decoder described by the grammar section.
func (c *Config) Decoder() (*codec.Decoder, error) {
	opts := []codec.Option{
		codec.WithMetaPattern(c.Grammar.MetaPattern),
		codec.WithRecordPattern(c.Grammar.RecordPattern),
		codec.WithDateLayout(c.Grammar.DateLayout),
	}

	if c.Grammar.Timezone != "" {
		loc, err := time.LoadLocation(c.Grammar.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone: %w", err)
		}
		opts = append(opts, codec.WithLocation(loc))
	}

	return codec.NewDecoder(opts...)
}

// Addr returns the listen address of the HTTP API
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./monolog.yaml"
	}

	// For Linux/macOS, use ~/.config/monolog/config.yaml
	configDir := filepath.Join(homeDir, ".config", "monolog")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
