package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/googletasks"
	"task-tracker/internal/repository/httpclient"
)

func TestCreateRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := NewConfig()
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "nested", "tasks.db")

	repo, err := CreateRepository(ctx, cfg, BackendSQLite)
	require.NoError(t, err)
	defer repository.Close(repo)

	deadline := time.Now().AddDate(0, 0, 1)
	created, err := repo.Create(ctx, domain.NewDraft("Test Task", deadline))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCreateRepository_HTTP(t *testing.T) {
	cfg := NewConfig()
	cfg.Remote.InsecureSkipVerify = true
	cfg.Remote.Token = "secret"

	repo, err := CreateRepository(context.Background(), cfg, BackendHTTP)
	require.NoError(t, err)
	assert.IsType(t, &httpclient.Client{}, repo)
}

func TestCreateRepository_GoogleTasksNeedsCredentials(t *testing.T) {
	cfg := NewConfig()
	cfg.Google.ConfigDir = t.TempDir()

	_, err := CreateRepository(context.Background(), cfg, BackendGoogleTasks)
	assert.ErrorContains(t, err, googletasks.OAuthClientFile)
}

func TestCreateRepository_UnknownBackend(t *testing.T) {
	_, err := CreateRepository(context.Background(), NewConfig(), "carrier-pigeon")
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCreateTestRepository(t *testing.T) {
	repo, err := CreateTestRepository(context.Background())
	require.NoError(t, err)
	defer repository.Close(repo)

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
