package sqlite

import (
	"database/sql"
	"fmt"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// taskColumns is the column list ScanTask expects, in order.
const taskColumns = `id, name, category, priority, deadline, date_created, date_updated, is_completed`

// ScanTask scans a single task from a database row
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	var (
		category, priority, deadline sql.NullString
		created, updated             string
	)

	err := scanner.Scan(
		&task.ID,
		&task.Name,
		&category,
		&priority,
		&deadline,
		&created,
		&updated,
		&task.IsCompleted,
	)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		task.Category = &category.String
	}
	if priority.Valid {
		task.Priority = &priority.String
	}
	if deadline.Valid {
		d, err := ParseTimeFromDB(deadline.String)
		if err != nil {
			return nil, fmt.Errorf("deadline: %w", err)
		}
		task.Deadline = &d
	}
	if task.DateCreated, err = ParseTimeFromDB(created); err != nil {
		return nil, fmt.Errorf("date_created: %w", err)
	}
	if task.DateUpdated, err = ParseTimeFromDB(updated); err != nil {
		return nil, fmt.Errorf("date_updated: %w", err)
	}

	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}
