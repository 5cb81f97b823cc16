package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// fakeAPI serves the subset of the Google Tasks API the client uses.
type fakeAPI struct {
	mu     sync.Mutex
	items  map[string]*tasks.Task
	order  []string
	nextID int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/tasks/v1/lists/list1/tasks"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, `{"error":{"code":404,"message":"no such list"}}`, http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case id == "" && r.Method == http.MethodGet:
		resp := &tasks.Tasks{}
		for _, key := range f.order {
			resp.Items = append(resp.Items, f.items[key])
		}
		_ = json.NewEncoder(w).Encode(resp)
	case id == "" && r.Method == http.MethodPost:
		var item tasks.Task
		_ = json.NewDecoder(r.Body).Decode(&item)
		f.nextID++
		item.Id = fmt.Sprintf("g%d", f.nextID)
		item.Updated = time.Date(2026, 10, 19, 9, f.nextID, 0, 0, time.UTC).Format(time.RFC3339)
		f.items[item.Id] = &item
		f.order = append(f.order, item.Id)
		_ = json.NewEncoder(w).Encode(&item)
	default:
		item, ok := f.items[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(item)
		case http.MethodPut:
			var next tasks.Task
			_ = json.NewDecoder(r.Body).Decode(&next)
			next.Id = id
			next.Updated = time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
			f.items[id] = &next
			_ = json.NewEncoder(w).Encode(&next)
		case http.MethodDelete:
			delete(f.items, id)
			for i, key := range f.order {
				if key == id {
					f.order = append(f.order[:i], f.order[i+1:]...)
					break
				}
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return newTestClientWith(t, &fakeAPI{items: make(map[string]*tasks.Task)})
}

func newTestClientWith(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(context.Background(), srv.Client(), "list1", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestClient_CRUD(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	deadline := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	created, err := c.Create(ctx, domain.Draft{Name: "Pay rent", Category: "Home", Priority: domain.PriorityLow, Deadline: &deadline})
	require.NoError(t, err)
	assert.Equal(t, "g1", created.ID)
	assert.Equal(t, "Home", created.Category)
	assert.False(t, created.DateCreated.IsZero())

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])

	updated, err := c.Update(ctx, created.ID, created.Draft().WithCompleted(true))
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.True(t, created.DateCreated.Equal(updated.DateCreated), "creation time survives updates")
	assert.True(t, updated.DateUpdated.After(created.DateUpdated))

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, deleted)

	_, err = c.Get(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Update(ctx, "nope", domain.Draft{Name: "x"})
	assert.True(t, errors.IsNotFound(err))

	_, err = c.Delete(ctx, "nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestClient_UpdateKeepsNotesText(t *testing.T) {
	api := &fakeAPI{
		items: map[string]*tasks.Task{
			"g9": {
				Id:      "g9",
				Title:   "Water plants",
				Notes:   "priority: High\nBring the watering can\nsee: balcony",
				Status:  "needsAction",
				Updated: "2026-10-18T08:00:00.000Z",
			},
		},
		order: []string{"g9"},
	}
	c := newTestClientWith(t, api)
	ctx := context.Background()

	current, err := c.Get(ctx, "g9")
	require.NoError(t, err)

	updated, err := c.Update(ctx, "g9", current.Draft().WithCompleted(true))
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)

	api.mu.Lock()
	notes := api.items["g9"].Notes
	api.mu.Unlock()
	assert.Equal(t, "priority: High\ncreated: 2026-10-18T08:00:00Z\nBring the watering can\nsee: balcony", notes)
}

func TestClient_RejectsMultilineCategory(t *testing.T) {
	c := newTestClient(t)
	deadline := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.Create(context.Background(), domain.Draft{Name: "Pay rent", Category: "Home\npriority: Low", Deadline: &deadline})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWrapError(t *testing.T) {
	err := wrapError("fetch tasks", "", fmt.Errorf("dial: %w", context.DeadlineExceeded))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout))

	err = wrapError("fetch tasks", "", fmt.Errorf("connection refused"))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTransport))
}
