// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable read by [Load].
const EnvVar = "WIRECODEC_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local use: evolution enabled, info logging.
	Development Environment = "development"
	// Production is for services decoding stored data: warn logging.
	Production Environment = "production"
)

// Config is the configuration for wirecodec tools and services.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Types configures where live type definitions come from.
	Types TypesConfig `yaml:"types"`

	// Evolution configures schema evolution on decode.
	Evolution EvolutionConfig `yaml:"evolution"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Output configures human-facing output.
	Output OutputConfig `yaml:"output"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Types     *TypesConfig     `yaml:"types,omitempty"`
	Evolution *EvolutionConfig `yaml:"evolution,omitempty"`
	Log       *LogConfig       `yaml:"log,omitempty"`
	Output    *OutputConfig    `yaml:"output,omitempty"`
}

// TypesConfig configures type definition files.
type TypesConfig struct {
	// Files are YAML or JSONC type definition files. Relative paths
	// are resolved against the directory of the config file.
	Files []string `yaml:"files"`
}

// EvolutionConfig configures schema evolution.
type EvolutionConfig struct {
	// Enabled allows decoding data whose schema differs from the live
	// type. When false such data fails to decode.
	// Default: true
	Enabled bool `yaml:"enabled"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info (development), warn (production)
	Level string `yaml:"level"`
}

// OutputConfig configures output formatting.
type OutputConfig struct {
	// Color is one of auto, always, never.
	// Default: auto
	Color string `yaml:"color"`
}

// Default returns the default configuration, used as the base before
// a config file is loaded and as the whole configuration when no file
// is given.
func Default() *Config {
	return &Config{
		Environment: Development,
		Evolution:   EvolutionConfig{Enabled: true},
		Log:         LogConfig{Level: "info"},
		Output:      OutputConfig{Color: "auto"},
	}
}

// Load loads configuration from the file named by WIRECODEC_CONFIG.
// It fails if the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your wirecodec.yaml config file, or use --config flag", EnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The only expansion performed is ${HOME}, ${WIRECODEC_CONFIG_DIR},
// and ${VAR:-default} patterns in type file paths.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/production sections in the file).
	cfg.applyEnvironmentOverrides()

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	cfg.expandVariables(filepath.Dir(absolute))

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production defaults: quieter logging.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Types != nil && len(overrides.Types.Files) > 0 {
		c.Types.Files = overrides.Types.Files
	}

	if overrides.Evolution != nil {
		// Enabled is a bool, so we always apply it from overrides.
		c.Evolution.Enabled = overrides.Evolution.Enabled
	}

	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}

	if overrides.Output != nil && overrides.Output.Color != "" {
		c.Output.Color = overrides.Output.Color
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in type
// file paths and anchors relative paths at configDir.
func (c *Config) expandVariables(configDir string) {
	vars := map[string]string{
		"WIRECODEC_CONFIG_DIR": configDir,
		"HOME":                 os.Getenv("HOME"),
	}

	for i, file := range c.Types.Files {
		file = expandVars(file, vars)
		if !filepath.IsAbs(file) {
			file = filepath.Join(configDir, file)
		}
		c.Types.Files[i] = file
	}
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}

	colors := []string{"auto", "always", "never"}
	if !slices.Contains(colors, c.Output.Color) {
		errs = append(errs, fmt.Errorf("output.color must be one of: %v", colors))
	}

	for _, file := range c.Types.Files {
		if file == "" {
			errs = append(errs, fmt.Errorf("types.files contains an empty path"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LogLevel returns the slog level named by Log.Level, defaulting to
// info for unknown names.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
