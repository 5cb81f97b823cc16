// Package collection holds the authoritative in-memory list of tasks.
package collection

import (
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

const resourceTask = "task"

// TaskCollection owns the cached task list. Entries are unique by id and
// keep insertion order. The zero value is an empty collection. It is not
// safe for concurrent use; the controller serializes access.
type TaskCollection struct {
	tasks []domain.Task
	index map[string]int
}

// New creates an empty collection.
func New() *TaskCollection {
	return &TaskCollection{index: make(map[string]int)}
}

// ReplaceAll installs tasks as the authoritative list. The collection is
// left unchanged if two tasks share an id.
func (c *TaskCollection) ReplaceAll(tasks []domain.Task) error {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, exists := index[t.ID]; exists {
			return errors.NewDuplicateIDError(resourceTask, t.ID)
		}
		index[t.ID] = i
	}

	c.tasks = append(make([]domain.Task, 0, len(tasks)), tasks...)
	c.index = index
	return nil
}

// Insert appends a new task.
func (c *TaskCollection) Insert(task domain.Task) error {
	if _, exists := c.index[task.ID]; exists {
		return errors.NewDuplicateIDError(resourceTask, task.ID)
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.index[task.ID] = len(c.tasks)
	c.tasks = append(c.tasks, task)
	return nil
}

// Replace swaps the entry with the given id for task, keeping its position.
func (c *TaskCollection) Replace(id string, task domain.Task) error {
	i, ok := c.index[id]
	if !ok {
		return errors.NewNotFoundError(resourceTask, id)
	}
	if task.ID != id {
		if _, clash := c.index[task.ID]; clash {
			return errors.NewDuplicateIDError(resourceTask, task.ID)
		}
		delete(c.index, id)
		c.index[task.ID] = i
	}
	c.tasks[i] = task
	return nil
}

// Remove deletes the entry with the given id.
func (c *TaskCollection) Remove(id string) error {
	i, ok := c.index[id]
	if !ok {
		return errors.NewNotFoundError(resourceTask, id)
	}

	c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.tasks); j++ {
		c.index[c.tasks[j].ID] = j
	}
	return nil
}

// Get returns the task with the given id.
func (c *TaskCollection) Get(id string) (domain.Task, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Task{}, false
	}
	return c.tasks[i], true
}

// Contains reports whether a task with the given id is present.
func (c *TaskCollection) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Len returns the number of tasks.
func (c *TaskCollection) Len() int {
	return len(c.tasks)
}

// Tasks returns a copy of the list in insertion order.
func (c *TaskCollection) Tasks() []domain.Task {
	out := make([]domain.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}
