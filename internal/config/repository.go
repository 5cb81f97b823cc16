package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"task-tracker/internal/repository"
	"task-tracker/internal/repository/googletasks"
	"task-tracker/internal/repository/httpclient"
	"task-tracker/internal/repository/sqlite"
)

// CreateRepository creates the task store named by backend. Callers release
// it with repository.Close.
func CreateRepository(ctx context.Context, config *Config, backend string) (repository.TaskRepository, error) {
	switch backend {
	case BackendHTTP:
		opts := []httpclient.Option{httpclient.WithTimeout(config.Remote.Timeout)}
		if config.Remote.InsecureSkipVerify {
			opts = append(opts, httpclient.WithInsecureSkipVerify())
		}
		if config.Remote.Token != "" {
			opts = append(opts, httpclient.WithBearerToken(config.Remote.Token))
		}
		return httpclient.New(config.Remote.BaseURL, opts...), nil

	case BackendSQLite:
		dbPath := config.Store.SQLitePath
		if dbPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		repo, err := sqlite.New(ctx, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil

	case BackendGoogleTasks:
		repo, err := googletasks.New(ctx, config.Google.ConfigDir, config.Google.TaskListID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Tasks: %w", err)
		}
		return repo, nil

	default:
		return nil, &ConfigError{Field: "backend", Message: fmt.Sprintf("unknown backend %q", backend)}
	}
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository(ctx context.Context) (repository.TaskRepository, error) {
	repo, err := sqlite.New(ctx, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return repo, nil
}
