package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"task-tracker/internal/domain"
)

// Store backends.
const (
	BackendHTTP        = "http"
	BackendSQLite      = "sqlite"
	BackendGoogleTasks = "googletasks"
)

// ConfigPathEnvVar names an explicit configuration file.
const ConfigPathEnvVar = "TASKS_CONFIG"

// Config holds all configuration options for the tasks application
type Config struct {
	Remote      RemoteConfig      `yaml:"remote"`
	Store       StoreConfig       `yaml:"store"`
	Google      GoogleConfig      `yaml:"google"`
	Server      ServerConfig      `yaml:"server"`
	View        ViewConfig        `yaml:"view"`
	Validation  ValidationConfig  `yaml:"validation"`
	Application ApplicationConfig `yaml:"application"`
}

// RemoteConfig configures the HTTP task store client
type RemoteConfig struct {
	BaseURL            string        `yaml:"base_url" env:"TASKS_REMOTE_BASE_URL"`
	Timeout            time.Duration `yaml:"timeout" env:"TASKS_REMOTE_TIMEOUT"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" env:"TASKS_REMOTE_INSECURE"`
	Token              string        `yaml:"token" env:"TASKS_REMOTE_TOKEN"`
}

// StoreConfig selects the task store the client works against
type StoreConfig struct {
	Backend    string `yaml:"backend" env:"TASKS_STORE_BACKEND"`
	SQLitePath string `yaml:"sqlite_path" env:"TASKS_SQLITE_PATH"`
}

// GoogleConfig configures the Google Tasks store
type GoogleConfig struct {
	ConfigDir  string `yaml:"config_dir" env:"TASKS_GOOGLE_CONFIG_DIR"`
	TaskListID string `yaml:"task_list_id" env:"TASKS_GOOGLE_TASK_LIST"`
}

// ServerConfig configures `tasks serve`
type ServerConfig struct {
	Addr     string `yaml:"addr" env:"TASKS_SERVER_ADDR"`
	BasePath string `yaml:"base_path" env:"TASKS_SERVER_BASE_PATH"`
	Backend  string `yaml:"backend" env:"TASKS_SERVER_BACKEND"`
}

// ViewConfig holds the initial sort of the task view
type ViewConfig struct {
	SortBy    string `yaml:"sort_by" env:"TASKS_SORT_BY"`
	SortOrder string `yaml:"sort_order" env:"TASKS_SORT_ORDER"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	// Timezone decides what "today" is for deadline checks. Empty or
	// "Local" means the system zone.
	Timezone string `yaml:"timezone" env:"TASKS_TIMEZONE"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TASKS_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"TASKS_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	dir := DefaultConfigDir()

	return &Config{
		Remote: RemoteConfig{
			BaseURL: "https://localhost:7279/api/Task",
			Timeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend:    BackendHTTP,
			SQLitePath: filepath.Join(dir, "tasks.db"),
		},
		Google: GoogleConfig{
			ConfigDir:  dir,
			TaskListID: "@default",
		},
		Server: ServerConfig{
			Addr:     ":7279",
			BasePath: "/api/Task",
			Backend:  BackendSQLite,
		},
		View: ViewConfig{
			SortBy:    string(domain.SortByDateCreated),
			SortOrder: string(domain.SortDesc),
		},
		Validation: ValidationConfig{
			Timezone: "Local",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/tasks, falling back to ~/.tasks.
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tasks")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".tasks")
}

// DefaultConfigPath returns the configuration file used when TASKS_CONFIG is unset.
func DefaultConfigPath() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LoadFromFile overlays the YAML file at path. A missing file is not an error.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return &ConfigError{Field: path, Message: err.Error()}
	}
	return nil
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Remote store
	if url := os.Getenv("TASKS_REMOTE_BASE_URL"); url != "" {
		c.Remote.BaseURL = url
	}
	if timeout := os.Getenv("TASKS_REMOTE_TIMEOUT"); timeout != "" {
		c.Remote.Timeout = ParseDurationWithFallback(timeout, c.Remote.Timeout)
	}
	if insecure := os.Getenv("TASKS_REMOTE_INSECURE"); insecure != "" {
		c.Remote.InsecureSkipVerify = ParseBoolWithFallback(insecure, c.Remote.InsecureSkipVerify)
	}
	if token := os.Getenv("TASKS_REMOTE_TOKEN"); token != "" {
		c.Remote.Token = token
	}

	// Store selection
	if backend := os.Getenv("TASKS_STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}
	if path := os.Getenv("TASKS_SQLITE_PATH"); path != "" {
		c.Store.SQLitePath = path
	}

	// Google Tasks
	if dir := os.Getenv("TASKS_GOOGLE_CONFIG_DIR"); dir != "" {
		c.Google.ConfigDir = dir
	}
	if list := os.Getenv("TASKS_GOOGLE_TASK_LIST"); list != "" {
		c.Google.TaskListID = list
	}

	// Server
	if addr := os.Getenv("TASKS_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if basePath := os.Getenv("TASKS_SERVER_BASE_PATH"); basePath != "" {
		c.Server.BasePath = basePath
	}
	if backend := os.Getenv("TASKS_SERVER_BACKEND"); backend != "" {
		c.Server.Backend = backend
	}

	// View
	if sortBy := os.Getenv("TASKS_SORT_BY"); sortBy != "" {
		c.View.SortBy = sortBy
	}
	if order := os.Getenv("TASKS_SORT_ORDER"); order != "" {
		c.View.SortOrder = order
	}

	if tz := os.Getenv("TASKS_TIMEZONE"); tz != "" {
		c.Validation.Timezone = tz
	}

	// Application configuration
	if timeout := os.Getenv("TASKS_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TASKS_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Remote.Timeout <= 0 {
		return &ConfigError{Field: "remote.timeout", Message: "remote timeout must be positive"}
	}

	if err := validateBackend("store.backend", c.Store.Backend); err != nil {
		return err
	}
	if c.Store.Backend == BackendHTTP && c.Remote.BaseURL == "" {
		return &ConfigError{Field: "remote.base_url", Message: "base URL cannot be empty"}
	}
	if c.Store.Backend == BackendSQLite && c.Store.SQLitePath == "" {
		return &ConfigError{Field: "store.sqlite_path", Message: "database path cannot be empty"}
	}
	if c.Store.Backend == BackendGoogleTasks && c.Google.ConfigDir == "" {
		return &ConfigError{Field: "google.config_dir", Message: "config directory cannot be empty"}
	}

	if err := validateBackend("server.backend", c.Server.Backend); err != nil {
		return err
	}
	if c.Server.Backend == BackendHTTP {
		return &ConfigError{Field: "server.backend", Message: "the server cannot serve an http backend"}
	}
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}

	if _, ok := domain.ParseSortField(c.View.SortBy); !ok {
		return &ConfigError{Field: "view.sort_by", Message: fmt.Sprintf("unknown sort field %q", c.View.SortBy)}
	}
	if _, ok := domain.ParseSortOrder(c.View.SortOrder); !ok {
		return &ConfigError{Field: "view.sort_order", Message: "sort order must be asc or desc"}
	}

	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "validation.timezone", Message: err.Error()}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// SortSpec returns the configured initial sort.
func (c *Config) SortSpec() domain.SortSpec {
	field, _ := domain.ParseSortField(c.View.SortBy)
	order, _ := domain.ParseSortOrder(c.View.SortOrder)
	return domain.SortSpec{SortBy: field, Order: order}
}

// Location resolves the validation time zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Validation.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Validation.Timezone)
	}
}

func validateBackend(field, backend string) error {
	switch backend {
	case BackendHTTP, BackendSQLite, BackendGoogleTasks:
		return nil
	default:
		return &ConfigError{Field: field, Message: fmt.Sprintf("unknown backend %q", backend)}
	}
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
