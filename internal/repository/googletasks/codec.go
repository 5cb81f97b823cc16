package googletasks

import (
	"bufio"
	"strings"
	"time"

	tasks "google.golang.org/api/tasks/v1"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

const (
	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"

	keyCategory = "category"
	keyPriority = "priority"
	keyCreated  = "created"
)

// Codec converts between domain tasks and Google Tasks items. Google Tasks
// has no category, priority or creation time, so those travel as
// "key: value" lines at the top of the notes, followed by whatever else the
// notes held. Values are trimmed, so a category keeps no surrounding spaces,
// and a category must fit on one line.
type Codec struct{}

// NewCodec creates a Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Encode builds the item sent on insert.
func (c *Codec) Encode(draft domain.Draft, created time.Time) (*tasks.Task, error) {
	return c.encode(draft, created, "")
}

// EncodeUpdate builds the item replacing current. The creation time and any
// free text in current's notes are carried over.
func (c *Codec) EncodeUpdate(draft domain.Draft, current *tasks.Task) (*tasks.Task, error) {
	item, err := c.encode(draft, c.Decode(current).DateCreated, freeText(current.Notes))
	if err != nil {
		return nil, err
	}
	item.Id = current.Id
	return item, nil
}

func (c *Codec) encode(draft domain.Draft, created time.Time, text string) (*tasks.Task, error) {
	if strings.ContainsAny(draft.Category, "\r\n") {
		return nil, errors.NewInvalidInputError(keyCategory, draft.Category, "must be a single line")
	}

	item := &tasks.Task{
		Title:  draft.Name,
		Status: statusNeedsAction,
		Notes:  encodeNotes(draft, created) + text,
	}
	if draft.IsCompleted {
		item.Status = statusCompleted
	}
	if draft.Deadline != nil {
		// the API keeps only the date part of due
		y, m, d := draft.Deadline.Date()
		item.Due = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	}
	return item, nil
}

// Decode converts an API item. Unparseable timestamps are left zero and
// unknown priorities are dropped.
func (c *Codec) Decode(item *tasks.Task) domain.Task {
	meta := decodeNotes(item.Notes)
	task := domain.Task{
		ID:          item.Id,
		Name:        item.Title,
		Category:    meta[keyCategory],
		IsCompleted: item.Status == statusCompleted,
	}
	if p := domain.Priority(meta[keyPriority]); p.IsKnown() {
		task.Priority = p
	}
	if due, err := time.Parse(time.RFC3339, item.Due); err == nil {
		task.Deadline = due
	}
	if updated, err := time.Parse(time.RFC3339, item.Updated); err == nil {
		task.DateUpdated = updated
	}
	if created, err := time.Parse(time.RFC3339, meta[keyCreated]); err == nil {
		task.DateCreated = created
	} else {
		task.DateCreated = task.DateUpdated
	}
	return task
}

func encodeNotes(draft domain.Draft, created time.Time) string {
	var b strings.Builder
	if category := strings.TrimSpace(draft.Category); category != "" {
		b.WriteString(keyCategory + ": " + category + "\n")
	}
	if draft.Priority != domain.PriorityNone {
		b.WriteString(keyPriority + ": " + string(draft.Priority) + "\n")
	}
	if !created.IsZero() {
		b.WriteString(keyCreated + ": " + created.UTC().Format(time.RFC3339) + "\n")
	}
	return b.String()
}

// metaKey returns the metadata key a notes line carries, if any.
func metaKey(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	switch key {
	case keyCategory, keyPriority, keyCreated:
		return key, strings.TrimSpace(value), true
	}
	return "", "", false
}

func decodeNotes(notes string) map[string]string {
	meta := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(notes))
	for scanner.Scan() {
		if key, value, ok := metaKey(scanner.Text()); ok {
			meta[key] = value
		}
	}
	return meta
}

// freeText returns the notes without the metadata lines.
func freeText(notes string) string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(notes))
	for scanner.Scan() {
		if _, _, ok := metaKey(scanner.Text()); !ok {
			lines = append(lines, scanner.Text())
		}
	}
	text := strings.Join(lines, "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
