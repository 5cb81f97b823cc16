package controller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/testutil"
	"task-tracker/internal/validation"
)

var today = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func tomorrow() *time.Time {
	t := today.AddDate(0, 0, 1)
	return &t
}

func newTestController(t *testing.T, repo *testutil.FakeRepository, opts ...Option) *Controller {
	t.Helper()
	v := validation.NewValidator(
		validation.WithClock(func() time.Time { return today }),
		validation.WithLocation(time.UTC),
	)
	return New(repo, append([]Option{WithValidator(v)}, opts...)...)
}

func seeded(t *testing.T) (*Controller, *testutil.FakeRepository) {
	t.Helper()
	repo := testutil.NewFakeRepository()
	repo.AddTask(domain.Draft{Name: "Pay rent", Category: "Home", Priority: domain.PriorityHigh, Deadline: tomorrow()})
	repo.AddTask(domain.Draft{Name: "Write report", Category: "Work", Priority: domain.PriorityLow, Deadline: tomorrow()})
	c := newTestController(t, repo)
	require.NoError(t, c.Load(context.Background()))
	return c, repo
}

func TestController_InitialState(t *testing.T) {
	c := newTestController(t, testutil.NewFakeRepository())
	snap := c.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.View)
	assert.Equal(t, domain.DefaultSortSpec(), snap.Sort)
}

func TestController_Load(t *testing.T) {
	c, _ := seeded(t)
	snap := c.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.False(t, snap.Loading)
	assert.Len(t, snap.View, 2)
	assert.Equal(t, []string{"Home", "Work"}, snap.Categories)
	assert.Equal(t, 2, snap.Stats.Total)
}

func TestController_LoadFailure(t *testing.T) {
	c, repo := seeded(t)
	repo.ListErr = errors.NewTransportError("list tasks", 503, nil)

	err := c.Load(context.Background())
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "Failed to load tasks. Please check if the API is running. Error: list tasks: HTTP error! status: 503", snap.Error)
	assert.Len(t, snap.View, 2, "collection keeps its previous contents")
}

func TestController_LoadingIsObserved(t *testing.T) {
	var statuses []Status
	repo := testutil.NewFakeRepository()
	c := newTestController(t, repo, WithObserver(func(s Snapshot) {
		statuses = append(statuses, s.Status)
	}))

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []Status{StatusLoading, StatusReady}, statuses)
}

func TestController_Create(t *testing.T) {
	c, repo := seeded(t)

	task, err := c.Create(context.Background(), domain.NewDraft("Buy milk", *tomorrow()))
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.IsCompleted)
	assert.False(t, task.DateCreated.IsZero())

	got, ok := c.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, task, got)
	assert.Len(t, c.Tasks(), 3)
	assert.Len(t, repo.Tasks(), 3)
}

func TestController_CreateValidation(t *testing.T) {
	c, repo := seeded(t)
	calls := len(repo.Calls)

	_, err := c.Create(context.Background(), domain.Draft{Name: "   "})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"name":     "Task name is required",
		"deadline": "Deadline is required",
	}, ve.FieldMessages())

	assert.Len(t, repo.Calls, calls, "repository must not be called")
	assert.Len(t, c.Tasks(), 2)
	assert.Empty(t, c.Snapshot().Error, "validation does not set the error state")
}

func TestController_CreateFailure(t *testing.T) {
	c, repo := seeded(t)
	repo.CreateErr = errors.NewTransportError("create task", 500, nil)

	_, err := c.Create(context.Background(), domain.NewDraft("Buy milk", *tomorrow()))
	require.Error(t, err)
	assert.Equal(t, MsgAddFailed, c.Snapshot().Error)
	assert.Len(t, c.Tasks(), 2)
}

func TestController_Update(t *testing.T) {
	c, _ := seeded(t)
	before, _ := c.Get("1")

	draft := before.Draft()
	draft.Name = "Pay rent early"
	updated, err := c.Update(context.Background(), "1", draft)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent early", updated.Name)
	assert.True(t, updated.DateUpdated.After(before.DateUpdated))

	got, _ := c.Get("1")
	assert.Equal(t, updated, got)
	assert.Len(t, c.Tasks(), 2, "update replaces in place")
}

func TestController_UpdateNotFound(t *testing.T) {
	c, _ := seeded(t)
	before := c.Tasks()

	_, err := c.Update(context.Background(), "999", domain.NewDraft("Ghost", *tomorrow()))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, before, c.Tasks())
	assert.Equal(t, MsgNotFound, c.Snapshot().Error)
	assert.Equal(t, StatusError, c.Snapshot().Status)
}

func TestController_UpdateFailure(t *testing.T) {
	c, repo := seeded(t)
	repo.UpdateErr = errors.NewTransportError("update task", 500, nil)

	_, err := c.Update(context.Background(), "1", domain.NewDraft("x", *tomorrow()))
	require.Error(t, err)
	assert.Equal(t, MsgUpdateFailed, c.Snapshot().Error)
}

func TestController_UpdateValidation(t *testing.T) {
	c, repo := seeded(t)
	calls := len(repo.Calls)
	past := today.AddDate(0, 0, -1)

	_, err := c.Update(context.Background(), "1", domain.Draft{Name: "x", Deadline: &past})
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, validation.ErrorTypePastDeadline, ve.Errors[0].Type)
	assert.Len(t, repo.Calls, calls)
}

func TestController_UpdateUncachedTask(t *testing.T) {
	c, repo := seeded(t)
	extra := repo.AddTask(domain.Draft{Name: "Book flights", Deadline: tomorrow()})

	draft := extra.Draft()
	draft.Name = "Book flights to Lisbon"
	updated, err := c.Update(context.Background(), extra.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, "Book flights to Lisbon", updated.Name)

	_, cached := c.Get(extra.ID)
	assert.False(t, cached)
	assert.Len(t, c.Tasks(), 2)
	assert.Empty(t, c.Snapshot().Error)
}

func TestController_ToggleComplete(t *testing.T) {
	c, _ := seeded(t)
	before, _ := c.Get("1")

	after, err := c.ToggleComplete(context.Background(), "1", true)
	require.NoError(t, err)
	assert.True(t, after.IsCompleted)

	expected := before
	expected.IsCompleted = true
	expected.DateUpdated = after.DateUpdated
	assert.Equal(t, expected, after, "only isCompleted and dateUpdated change")
	assert.Equal(t, 1, c.Snapshot().Stats.Completed)
}

func TestController_ToggleOverdueTask(t *testing.T) {
	repo := testutil.NewFakeRepository()
	past := today.AddDate(0, 0, -3)
	repo.AddTask(domain.Draft{Name: "Late", Deadline: &past})
	c := newTestController(t, repo)
	require.NoError(t, c.Load(context.Background()))

	task, err := c.ToggleComplete(context.Background(), "1", true)
	require.NoError(t, err)
	assert.True(t, task.IsCompleted)
}

func TestController_ToggleMissing(t *testing.T) {
	c, repo := seeded(t)
	calls := len(repo.Calls)

	_, err := c.ToggleComplete(context.Background(), "999", true)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, MsgNotFound, c.Snapshot().Error)
	assert.Len(t, repo.Calls, calls)
}

func TestController_Delete(t *testing.T) {
	c, repo := seeded(t)

	deleted, err := c.Delete(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Write report", deleted.Name)
	assert.Len(t, c.Tasks(), 1)

	_, err = repo.Get(context.Background(), "2")
	assert.True(t, errors.IsNotFound(err))

	_, err = c.Delete(context.Background(), "2")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, MsgNotFound, c.Snapshot().Error)
	assert.Len(t, c.Tasks(), 1)
}

func TestController_DeleteFailure(t *testing.T) {
	c, repo := seeded(t)
	repo.DeleteErr = fmt.Errorf("connection reset")

	_, err := c.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, MsgDeleteFailed, c.Snapshot().Error)
	assert.Len(t, c.Tasks(), 2)
}

func TestController_ErrorPersistsUntilDismissed(t *testing.T) {
	c, repo := seeded(t)
	repo.DeleteErr = fmt.Errorf("boom")
	_, _ = c.Delete(context.Background(), "1")
	repo.DeleteErr = nil

	_, err := c.Create(context.Background(), domain.NewDraft("Buy milk", *tomorrow()))
	require.NoError(t, err)
	assert.Equal(t, MsgDeleteFailed, c.Snapshot().Error, "a later success does not clear the message")

	calls := len(repo.Calls)
	c.DismissError()
	snap := c.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Equal(t, StatusReady, snap.Status)
	assert.Len(t, repo.Calls, calls, "dismissal never retries")
}

func TestController_FilterAndSort(t *testing.T) {
	c, _ := seeded(t)
	var last Snapshot
	c.OnChange(func(s Snapshot) { last = s })

	c.SetFilter(domain.FilterSpec{Category: "Work"})
	require.Len(t, last.View, 1)
	assert.Equal(t, "Write report", last.View[0].Name)
	assert.True(t, last.FilterActive)
	assert.Equal(t, []string{"Home", "Work"}, last.Categories)

	c.SetFilter(domain.FilterSpec{})
	c.SetSort(domain.SortSpec{SortBy: domain.SortByPriority, Order: domain.SortDesc})
	assert.Equal(t, []string{"Pay rent", "Write report"}, []string{last.View[0].Name, last.View[1].Name})
	assert.Equal(t, last, c.Snapshot())
}

func TestController_ConcurrentTogglesOnSameTask(t *testing.T) {
	c, repo := seeded(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(completed bool) {
			defer wg.Done()
			_, _ = c.ToggleComplete(context.Background(), "1", completed)
		}(i%2 == 0)
	}
	wg.Wait()

	cached, _ := c.Get("1")
	stored, err := repo.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, stored, cached, "cache matches the last write")
	assert.Equal(t, 0, c.locks.size())
}
