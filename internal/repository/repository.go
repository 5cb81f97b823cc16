// Package repository defines the persistence boundary for tasks.
package repository

import (
	"context"

	"task-tracker/internal/domain"
)

// TaskRepository persists tasks. Implementations assign ids and the
// DateCreated/DateUpdated timestamps; callers never set them.
//
// Get, Update and Delete report a missing id with an error for which
// errors.IsNotFound returns true. Any other failure of the store is a
// transport, timeout or database error.
type TaskRepository interface {
	List(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id string) (domain.Task, error)
	Create(ctx context.Context, draft domain.Draft) (domain.Task, error)
	Update(ctx context.Context, id string, draft domain.Draft) (domain.Task, error)
	// Delete removes the task and returns the deleted record.
	Delete(ctx context.Context, id string) (domain.Task, error)
}

// Closer is implemented by repositories holding resources.
type Closer interface {
	Close() error
}

// Close releases repo's resources if it holds any.
func Close(repo TaskRepository) error {
	if c, ok := repo.(Closer); ok {
		return c.Close()
	}
	return nil
}
