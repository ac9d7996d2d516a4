package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/QuantaIR/internal/log"
)

// Config represents the complete engine configuration.
type Config struct {
	// Logging configuration
	Log log.Config `json:"log" yaml:"log"`

	// Planner configuration
	Planner PlannerConfig `json:"planner" yaml:"planner"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Log:     log.DefaultConfig(),
		Planner: *DefaultPlannerConfig(),
	}
}

// LoadFromFile loads configuration from a JSON or YAML file, chosen by
// extension, on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from QUANTAIR_* environment variables.
func (c *Config) ApplyEnv() {
	if val := os.Getenv("QUANTAIR_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("QUANTAIR_LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	c.Planner.applyEnv()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return c.Planner.Validate()
}
