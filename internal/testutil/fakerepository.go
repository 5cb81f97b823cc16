// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// FakeRepository is an in-memory implementation of repository.TaskRepository
// for testing. Ids are "1", "2", ... in creation order.
type FakeRepository struct {
	mu     sync.RWMutex
	tasks  []domain.Task
	nextID int
	now    func() time.Time

	// Error injection for testing
	ListErr   error
	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// Calls records the operations performed, e.g. "update:3".
	Calls []string
}

// NewFakeRepository creates an empty FakeRepository with a fixed clock.
func NewFakeRepository() *FakeRepository {
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tick := 0
	return &FakeRepository{
		nextID: 1,
		now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		},
	}
}

// AddTask seeds a task as if it had been created, returning it.
func (f *FakeRepository) AddTask(draft domain.Draft) domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(draft)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeRepository) Tasks() []domain.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// List implements repository.TaskRepository.
func (f *FakeRepository) List(ctx context.Context) ([]domain.Task, error) {
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Tasks(), nil
}

// Get implements repository.TaskRepository.
func (f *FakeRepository) Get(ctx context.Context, id string) (domain.Task, error) {
	f.record("get:" + id)
	if f.GetErr != nil {
		return domain.Task{}, f.GetErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.find(id)
	if i < 0 {
		return domain.Task{}, errors.NewNotFoundError("task", id)
	}
	return f.tasks[i], nil
}

// Create implements repository.TaskRepository.
func (f *FakeRepository) Create(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	f.record("create")
	if f.CreateErr != nil {
		return domain.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(draft), nil
}

// Update implements repository.TaskRepository.
func (f *FakeRepository) Update(ctx context.Context, id string, draft domain.Draft) (domain.Task, error) {
	f.record("update:" + id)
	if f.UpdateErr != nil {
		return domain.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return domain.Task{}, errors.NewNotFoundError("task", id)
	}
	updated := apply(f.tasks[i], draft)
	updated.DateUpdated = f.now()
	f.tasks[i] = updated
	return updated, nil
}

// Delete implements repository.TaskRepository.
func (f *FakeRepository) Delete(ctx context.Context, id string) (domain.Task, error) {
	f.record("delete:" + id)
	if f.DeleteErr != nil {
		return domain.Task{}, f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return domain.Task{}, errors.NewNotFoundError("task", id)
	}
	deleted := f.tasks[i]
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return deleted, nil
}

func (f *FakeRepository) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

func (f *FakeRepository) insert(draft domain.Draft) domain.Task {
	now := f.now()
	task := apply(domain.Task{ID: fmt.Sprintf("%d", f.nextID), DateCreated: now}, draft)
	task.DateUpdated = now
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task
}

func (f *FakeRepository) find(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func apply(task domain.Task, draft domain.Draft) domain.Task {
	task.Name = draft.Name
	task.Category = draft.Category
	task.Priority = draft.Priority
	task.IsCompleted = draft.IsCompleted
	task.Deadline = time.Time{}
	if draft.Deadline != nil {
		task.Deadline = *draft.Deadline
	}
	return task
}
