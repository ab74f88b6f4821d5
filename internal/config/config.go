// Package config loads the workbench configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rflorenc/distribution-workbench/internal/models"
)

// Config holds all configuration. Command-line flags are applied on top of
// the file by the caller.
type Config struct {
	Listen           string          `yaml:"listen"`
	Endpoint         models.Endpoint `yaml:"endpoint"`
	Workers          int             `yaml:"workers"`
	TaskHistory      int             `yaml:"task_history"`
	Placeholder      bool            `yaml:"placeholder"`
	SupersedeRefresh bool            `yaml:"supersede_refresh"`
	LogLevel         string          `yaml:"log_level"`
	Demo             bool            `yaml:"demo"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:           ":8080",
		Workers:          4,
		TaskHistory:      100,
		Placeholder:      true,
		SupersedeRefresh: true,
		LogLevel:         "info",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.TaskHistory < 0 {
		return fmt.Errorf("task_history must not be negative, got %d", c.TaskHistory)
	}
	if c.Endpoint.Scheme != "" && c.Endpoint.Scheme != "http" && c.Endpoint.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", c.Endpoint.Scheme)
	}
	return nil
}

// HasEndpoint reports whether a remote service is configured.
func (c *Config) HasEndpoint() bool {
	return c.Endpoint.Host != ""
}

// RemoteEndpoint returns a copy of the configured endpoint with defaults
// applied.
func (c *Config) RemoteEndpoint() *models.Endpoint {
	e := c.Endpoint
	e.ApplyDefaults()
	if e.Name == "" {
		e.Name = e.Host
	}
	return &e
}
