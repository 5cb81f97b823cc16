package server_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/controller"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository/httpclient"
	"task-tracker/internal/repository/sqlite"
	"task-tracker/internal/server"
)

// TestEndToEnd drives the controller through the HTTP client against a
// server backed by an in-memory SQLite store.
func TestEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(server.New(store, server.DefaultBasePath).Handler())
	t.Cleanup(srv.Close)

	client := httpclient.New(srv.URL + server.DefaultBasePath)
	c := controller.New(client)
	require.NoError(t, c.Load(ctx))
	require.Empty(t, c.Tasks())

	tomorrow := time.Now().AddDate(0, 0, 1)
	created, err := c.Create(ctx, domain.NewDraft("Pay rent", tomorrow))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.IsCompleted)
	assert.Len(t, c.Tasks(), 1)

	toggled, err := c.ToggleComplete(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)
	assert.Equal(t, created.ID, toggled.ID)
	assert.Equal(t, created.Name, toggled.Name)
	assert.Equal(t, created.Category, toggled.Category)
	assert.Equal(t, created.Priority, toggled.Priority)
	assert.True(t, created.Deadline.Equal(toggled.Deadline))
	assert.True(t, created.DateCreated.Equal(toggled.DateCreated))
	assert.False(t, toggled.DateUpdated.Before(created.DateUpdated))

	cached, ok := c.Get(created.ID)
	require.True(t, ok)
	assert.True(t, cached.IsCompleted)

	_, err = c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Tasks())

	_, err = client.Get(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, controller.StatusReady, c.Snapshot().Status)
}
