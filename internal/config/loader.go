package config

import (
	"strconv"
	"time"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
	path   string
}

// NewLoader creates a loader reading the default configuration file
func NewLoader() *Loader {
	return NewLoaderWithPath(DefaultConfigPath())
}

// NewLoaderWithPath creates a loader reading the YAML file at path
func NewLoaderWithPath(path string) *Loader {
	return &Loader{
		config: NewConfig(),
		path:   path,
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML file, if present
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithOverrides(nil)
}

// LoadWithOverrides loads configuration and applies command line overrides.
// Validation runs once, after every layer has been applied.
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	if l.path != "" {
		if err := l.config.LoadFromFile(l.path); err != nil {
			return nil, err
		}
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(l.config, overrides)
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	BaseURL    *string
	Backend    *string
	SQLitePath *string
	Timezone   *string

	Timeout *time.Duration
	Verbose *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.BaseURL != nil {
		config.Remote.BaseURL = *overrides.BaseURL
	}
	if overrides.Backend != nil {
		config.Store.Backend = *overrides.Backend
	}
	if overrides.SQLitePath != nil {
		config.Store.SQLitePath = *overrides.SQLitePath
	}
	if overrides.Timezone != nil {
		config.Validation.Timezone = *overrides.Timezone
	}

	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}
