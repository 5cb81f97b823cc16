package domain

import (
	"fmt"
	"strings"
	"time"
)

// WireTask is the JSON shape of a task exchanged with the remote store.
// Timestamps travel as ISO-8601 strings.
type WireTask struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Deadline    string  `json:"deadline,omitempty"`
	DateCreated string  `json:"dateCreated,omitempty"`
	DateUpdated string  `json:"dateUpdated,omitempty"`
	IsCompleted bool    `json:"isCompleted"`
}

// timestampLayouts are tried in order when reading a timestamp. Servers that
// omit the zone offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp or date.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatTimestamp renders t as RFC3339 with nanoseconds, or "" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// TaskMapper handles conversion between domain tasks and their wire form.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToWire converts a domain Task to its wire form.
func (m *TaskMapper) ToWire(task Task) WireTask {
	return WireTask{
		ID:          task.ID,
		Name:        task.Name,
		Category:    optionalString(task.Category),
		Priority:    optionalString(string(task.Priority)),
		Deadline:    FormatTimestamp(task.Deadline),
		DateCreated: FormatTimestamp(task.DateCreated),
		DateUpdated: FormatTimestamp(task.DateUpdated),
		IsCompleted: task.IsCompleted,
	}
}

// DraftToWire converts a draft to the full task body sent on writes. id is
// empty for creates.
func (m *TaskMapper) DraftToWire(id string, draft Draft) WireTask {
	w := WireTask{
		ID:          id,
		Name:        draft.Name,
		Category:    optionalString(draft.Category),
		Priority:    optionalString(string(draft.Priority)),
		IsCompleted: draft.IsCompleted,
	}
	if draft.Deadline != nil {
		w.Deadline = FormatTimestamp(*draft.Deadline)
	}
	return w
}

// FromWire converts a wire task to a domain Task.
func (m *TaskMapper) FromWire(w WireTask) (Task, error) {
	task := Task{
		ID:          w.ID,
		Name:        w.Name,
		IsCompleted: w.IsCompleted,
	}
	if w.Category != nil {
		task.Category = *w.Category
	}
	if w.Priority != nil {
		task.Priority = Priority(*w.Priority)
	}

	var err error
	if task.Deadline, err = parseOptional(w.Deadline); err != nil {
		return Task{}, fmt.Errorf("deadline: %w", err)
	}
	if task.DateCreated, err = parseOptional(w.DateCreated); err != nil {
		return Task{}, fmt.Errorf("dateCreated: %w", err)
	}
	if task.DateUpdated, err = parseOptional(w.DateUpdated); err != nil {
		return Task{}, fmt.Errorf("dateUpdated: %w", err)
	}
	return task, nil
}

// ToDraft converts a wire body received on a write into a draft.
func (m *TaskMapper) ToDraft(w WireTask) (Draft, error) {
	task, err := m.FromWire(w)
	if err != nil {
		return Draft{}, err
	}
	return task.Draft(), nil
}

// FromWireSlice converts a slice of wire tasks to domain Tasks.
func (m *TaskMapper) FromWireSlice(ws []WireTask) ([]Task, error) {
	tasks := make([]Task, len(ws))
	for i, w := range ws {
		task, err := m.FromWire(w)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", w.ID, err)
		}
		tasks[i] = task
	}
	return tasks, nil
}

// ToWireSlice converts a slice of domain Tasks to wire tasks.
func (m *TaskMapper) ToWireSlice(tasks []Task) []WireTask {
	ws := make([]WireTask, len(tasks))
	for i, task := range tasks {
		ws[i] = m.ToWire(task)
	}
	return ws
}

func parseOptional(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return ParseTimestamp(s)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
