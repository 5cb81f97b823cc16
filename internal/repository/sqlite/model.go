package sqlite

import "time"

// Task is a row of the tasks table. Optional columns are pointers so that
// NULL round-trips.
type Task struct {
	ID          string
	Name        string
	Category    *string
	Priority    *string
	Deadline    *time.Time
	DateCreated time.Time
	DateUpdated time.Time
	IsCompleted bool
}
