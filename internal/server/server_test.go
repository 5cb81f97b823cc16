package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *testutil.FakeRepository) {
	t.Helper()
	repo := testutil.NewFakeRepository()
	deadline := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	repo.AddTask(domain.Draft{Name: "Pay rent", Category: "Home", Priority: domain.PriorityHigh, Deadline: &deadline})
	return New(repo, ""), repo
}

func serve(s *Server, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestServer_List(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/api/Task", "")
	require.Equal(t, http.StatusOK, w.Code)

	tasks := decode[[]domain.WireTask](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, "Pay rent", tasks[0].Name)
	require.NotNil(t, tasks[0].Priority)
	assert.Equal(t, "High", *tasks[0].Priority)
	assert.Equal(t, "2026-11-01T00:00:00Z", tasks[0].Deadline)
}

func TestServer_Get(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/api/Task/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pay rent", decode[domain.WireTask](t, w).Name)

	w = serve(s, http.MethodGet, "/api/Task/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "task not found: 42", decode[map[string]string](t, w)["error"])
}

func TestServer_Create(t *testing.T) {
	s, repo := newTestServer(t)

	body := `{"id":"ignored","name":"Write report","category":"Work","priority":"Low",
		"deadline":"2026-11-02T00:00:00Z","isCompleted":false}`
	w := serve(s, http.MethodPost, "/api/Task", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[domain.WireTask](t, w)
	assert.Equal(t, "2", created.ID)
	assert.NotEmpty(t, created.DateCreated)
	assert.Len(t, repo.Tasks(), 2)
}

func TestServer_CreateRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"name":`},
		{name: "missing name", body: `{"name":"  "}`},
		{name: "bad deadline", body: `{"name":"x","deadline":"someday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo := newTestServer(t)
			w := serve(s, http.MethodPost, "/api/Task", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode[map[string]string](t, w), "error")
			assert.NotContains(t, repo.Calls, "create")
		})
	}
}

func TestServer_Update(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodPut, "/api/Task/1", `{"name":"Pay rent","priority":"High","isCompleted":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[domain.WireTask](t, w)
	assert.True(t, updated.IsCompleted)
	assert.Empty(t, updated.Deadline)

	w = serve(s, http.MethodPut, "/api/Task/9", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Delete(t *testing.T) {
	s, repo := newTestServer(t)

	w := serve(s, http.MethodDelete, "/api/Task/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", decode[domain.WireTask](t, w).ID)
	assert.Empty(t, repo.Tasks())

	w = serve(s, http.MethodDelete, "/api/Task/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "database", err: errors.NewDatabaseError("list tasks", fmt.Errorf("disk full")), expected: http.StatusInternalServerError},
		{name: "plain", err: fmt.Errorf("boom"), expected: http.StatusInternalServerError},
		{name: "invalid input", err: errors.NewInvalidInputError("name", "", "empty"), expected: http.StatusBadRequest},
		{name: "duplicate", err: errors.NewDuplicateIDError("task", "1"), expected: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo := newTestServer(t)
			repo.ListErr = tt.err
			w := serve(s, http.MethodGet, "/api/Task", "")
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestServer_CustomBasePath(t *testing.T) {
	repo := testutil.NewFakeRepository()
	s := New(repo, "/v2/tasks")

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/v2/tasks", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/api/Task", "").Code)
}
