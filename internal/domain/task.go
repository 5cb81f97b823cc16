package domain

import (
	"strings"
	"time"
)

// Priority is the urgency label of a task. The zero value means no priority.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Rank maps a priority onto its sort weight. Unrecognized values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// IsKnown reports whether p is one of Low, Medium or High.
func (p Priority) IsKnown() bool {
	return p.Rank() > 0
}

// ParsePriority matches s case-insensitively against the known priorities.
// An empty string yields PriorityNone; anything else is rejected.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityNone, true
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return PriorityNone, false
	}
}

// Task is a persisted task record. ID and the two timestamps are assigned by
// the repository and are never set by the client.
type Task struct {
	ID          string
	Name        string
	Category    string
	Priority    Priority
	Deadline    time.Time
	DateCreated time.Time
	DateUpdated time.Time
	IsCompleted bool
}

// Draft returns the client-editable fields of the task.
func (t Task) Draft() Draft {
	d := Draft{
		Name:        t.Name,
		Category:    t.Category,
		Priority:    t.Priority,
		IsCompleted: t.IsCompleted,
	}
	if !t.Deadline.IsZero() {
		deadline := t.Deadline
		d.Deadline = &deadline
	}
	return d
}

// IsOverdue reports whether an open task's deadline lies before now.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && !t.Deadline.IsZero() && t.Deadline.Before(now)
}

// String returns the task name for display purposes.
func (t Task) String() string {
	return t.Name
}

// Draft holds a task's field values before the repository assigns an id and
// timestamps. A nil Deadline means the deadline is absent.
type Draft struct {
	Name        string
	Category    string
	Priority    Priority
	Deadline    *time.Time
	IsCompleted bool
}

// NewDraft creates a draft with the given name and deadline and the
// defaults of the add form: Medium priority, not completed.
func NewDraft(name string, deadline time.Time) Draft {
	return Draft{
		Name:     name,
		Priority: PriorityMedium,
		Deadline: &deadline,
	}
}

// WithCompleted returns a copy of the draft with IsCompleted set.
func (d Draft) WithCompleted(completed bool) Draft {
	d.IsCompleted = completed
	return d
}

// DateOf returns midnight of t's calendar date in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

// DateLayout is the form's deadline input format.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date as midnight in loc. Full RFC3339
// timestamps are accepted as well and keep their own offset.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
