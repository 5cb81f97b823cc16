// Package controller runs user intents against the task repository and keeps
// the cached collection and its derived view in step with it.
package controller

import (
	"context"
	"fmt"
	"sync"

	"task-tracker/internal/collection"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/validation"
	"task-tracker/internal/view"
)

// Snapshot is the derived state handed to the presentation layer. Its
// slices are rebuilt on every change and must not be modified.
type Snapshot struct {
	View       []domain.Task
	Categories []string
	Priorities []domain.Priority
	Stats      view.Stats
	Filter     domain.FilterSpec
	Sort       domain.SortSpec
	// FilterActive tells "no tasks" apart from "no tasks match".
	FilterActive bool
	Loading      bool
	Status       Status
	// Error is the dismissible message of the last failure, or "".
	Error string
}

// Option configures a Controller.
type Option func(*Controller)

// WithValidator replaces the default validator.
func WithValidator(v *validation.Validator) Option {
	return func(c *Controller) {
		c.validator = v
	}
}

// WithSort sets the initial sort.
func WithSort(spec domain.SortSpec) Option {
	return func(c *Controller) {
		c.sort = spec
	}
}

// WithObserver registers fn to receive every new snapshot.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// Controller orchestrates load, create, update, delete and toggle intents.
//
// Intents on the same task id are serialized; intents on different ids run
// concurrently and are applied to the collection in completion order.
type Controller struct {
	repo      repository.TaskRepository
	validator *validation.Validator
	locks     *keyedMutex

	mu       sync.Mutex
	tasks    *collection.TaskCollection
	filter   domain.FilterSpec
	sort     domain.SortSpec
	loading  bool
	loaded   bool
	errMsg   string
	snapshot Snapshot
	observer func(Snapshot)
}

// New creates a controller over repo with an empty collection.
func New(repo repository.TaskRepository, opts ...Option) *Controller {
	c := &Controller{
		repo:      repo,
		validator: validation.NewValidator(),
		locks:     newKeyedMutex(),
		tasks:     collection.New(),
		sort:      domain.DefaultSortSpec(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snapshot = c.deriveLocked()
	return c
}

// OnChange replaces the snapshot observer. A nil fn removes it.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// Snapshot returns the most recently derived state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Get returns the cached task with the given id.
func (c *Controller) Get(id string) (domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks.Get(id)
}

// Tasks returns the unfiltered collection in insertion order.
func (c *Controller) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks.Tasks()
}

// SetFilter changes the filter and re-derives the view.
func (c *Controller) SetFilter(filter domain.FilterSpec) {
	c.mutate(func() {
		c.filter = filter
	})
}

// SetSort changes the sort and re-derives the view.
func (c *Controller) SetSort(spec domain.SortSpec) {
	c.mutate(func() {
		c.sort = spec
	})
}

// DismissError clears the current error message without retrying anything.
func (c *Controller) DismissError() {
	c.mutate(func() {
		c.errMsg = ""
	})
}

// Load replaces the collection with the repository's task list. On failure
// the collection keeps whatever it held before.
func (c *Controller) Load(ctx context.Context) error {
	c.mutate(func() {
		c.loading = true
		c.errMsg = ""
	})

	tasks, err := c.repo.List(ctx)
	if err != nil {
		logging.Debugf("Error loading tasks: %v\n", err)
		c.mutate(func() {
			c.loading = false
			c.errMsg = fmt.Sprintf(MsgLoadFailed, errors.GetUserMessage(err))
		})
		return err
	}

	var installErr error
	c.mutate(func() {
		c.loading = false
		if installErr = c.tasks.ReplaceAll(tasks); installErr != nil {
			c.errMsg = fmt.Sprintf(MsgLoadFailed, errors.GetUserMessage(installErr))
			return
		}
		c.loaded = true
	})
	logging.Debugf("Loaded %d tasks\n", len(tasks))
	return installErr
}

// Create validates draft and persists it. Validation failures come back
// as a validation AppError wrapping *validation.ValidationError and leave
// all state untouched.
func (c *Controller) Create(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	if err := c.validator.Validate(draft); err != nil {
		return domain.Task{}, errors.NewValidationError("invalid task", err)
	}

	task, err := c.repo.Create(ctx, draft)
	if err != nil {
		c.fail(MsgAddFailed, "adding task", err)
		return domain.Task{}, err
	}

	var insertErr error
	c.mutate(func() {
		if insertErr = c.tasks.Insert(task); insertErr != nil {
			c.errMsg = MsgAddFailed
		}
	})
	if insertErr != nil {
		logging.Debugf("Error adding task: %v\n", insertErr)
		return domain.Task{}, insertErr
	}
	return task, nil
}

// Update validates draft and replaces the task with the repository's
// returned representation.
func (c *Controller) Update(ctx context.Context, id string, draft domain.Draft) (domain.Task, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	if err := c.validator.Validate(draft); err != nil {
		return domain.Task{}, errors.NewValidationError("invalid task", err)
	}
	return c.commitUpdate(ctx, id, draft)
}

// ToggleComplete sets the completion flag of a cached task, keeping every
// other field. The form rules are not re-run, so overdue tasks can still
// be completed.
func (c *Controller) ToggleComplete(ctx context.Context, id string, completed bool) (domain.Task, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	task, ok := c.Get(id)
	if !ok {
		err := errors.NewNotFoundError("task", id)
		c.fail(MsgNotFound, "toggling task", err)
		return domain.Task{}, err
	}
	return c.commitUpdate(ctx, id, task.Draft().WithCompleted(completed))
}

// Delete removes the task from the repository and then from the collection.
func (c *Controller) Delete(ctx context.Context, id string) (domain.Task, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	deleted, err := c.repo.Delete(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			c.fail(MsgNotFound, "deleting task", err)
		} else {
			c.fail(MsgDeleteFailed, "deleting task", err)
		}
		return domain.Task{}, err
	}

	c.mutate(func() {
		// already gone from the cache is fine
		_ = c.tasks.Remove(id)
	})
	return deleted, nil
}

// commitUpdate must be called with the id lock held.
func (c *Controller) commitUpdate(ctx context.Context, id string, draft domain.Draft) (domain.Task, error) {
	updated, err := c.repo.Update(ctx, id, draft)
	if err != nil {
		if errors.IsNotFound(err) {
			c.fail(MsgNotFound, "updating task", err)
		} else {
			c.fail(MsgUpdateFailed, "updating task", err)
		}
		return domain.Task{}, err
	}

	var applyErr error
	c.mutate(func() {
		// an id missing from the cache stays missing until the next load
		if !c.tasks.Contains(id) {
			return
		}
		if applyErr = c.tasks.Replace(id, updated); applyErr != nil {
			c.errMsg = MsgUpdateFailed
		}
	})
	if applyErr != nil {
		logging.Debugf("Error updating task: %v\n", applyErr)
		return domain.Task{}, applyErr
	}
	return updated, nil
}

func (c *Controller) fail(message, action string, err error) {
	if errors.ShouldLogError(err) {
		logging.Debugf("Error %s: %v\n", action, err)
	}
	c.mutate(func() {
		c.errMsg = message
	})
}

// mutate applies fn under the state lock, re-derives the snapshot and
// notifies the observer outside the lock.
func (c *Controller) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.snapshot = c.deriveLocked()
	snap, observer := c.snapshot, c.observer
	c.mu.Unlock()

	if observer != nil {
		observer(snap)
	}
}

func (c *Controller) deriveLocked() Snapshot {
	all := c.tasks.Tasks()
	p := view.Project(all, c.filter, c.sort)
	return Snapshot{
		View:         p.View,
		Categories:   p.Categories,
		Priorities:   p.Priorities,
		Stats:        view.Summarize(all),
		Filter:       c.filter,
		Sort:         c.sort,
		FilterActive: c.filter.IsActive(),
		Loading:      c.loading,
		Status:       c.statusLocked(),
		Error:        c.errMsg,
	}
}

func (c *Controller) statusLocked() Status {
	switch {
	case c.loading:
		return StatusLoading
	case c.errMsg != "":
		return StatusError
	case c.loaded:
		return StatusReady
	default:
		return StatusIdle
	}
}
