// Package view derives the filtered, sorted task list and its facets.
package view

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"task-tracker/internal/domain"
)

// Projection is the result of Project.
type Projection struct {
	// View holds the tasks passing the filter, in sort order.
	View []domain.Task
	// Categories lists distinct non-empty categories of the full input, first-seen order.
	Categories []string
	// Priorities lists distinct non-empty priorities of the full input, first-seen order.
	Priorities []domain.Priority
}

// Project filters and sorts tasks. It does not modify its input.
//
// Name and category compare under the root collation, so case does not
// dominate ("apple" < "Banana" < "Cherry"). Equal keys fall back to id
// ascending, whatever the order, which makes the result deterministic.
func Project(tasks []domain.Task, filter domain.FilterSpec, sortSpec domain.SortSpec) Projection {
	p := Projection{
		View:       Filter(tasks, filter),
		Categories: Categories(tasks),
		Priorities: Priorities(tasks),
	}
	Sort(p.View, sortSpec)
	return p
}

// Filter returns the tasks matching every criterion of spec.
func Filter(tasks []domain.Task, spec domain.FilterSpec) []domain.Task {
	m := newMatcher(spec)
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

type matcher struct {
	spec   domain.FilterSpec
	folder cases.Caser
	needle string
}

func newMatcher(spec domain.FilterSpec) *matcher {
	m := &matcher{spec: spec, folder: cases.Fold()}
	if spec.Search != "" {
		m.needle = m.folder.String(spec.Search)
	}
	return m
}

func (m *matcher) match(t domain.Task) bool {
	if m.spec.Category != "" && m.spec.Category != t.Category {
		return false
	}
	if m.spec.Priority != domain.PriorityNone && m.spec.Priority != t.Priority {
		return false
	}
	if m.spec.Completed != nil && *m.spec.Completed != t.IsCompleted {
		return false
	}
	if m.needle != "" {
		return strings.Contains(m.folder.String(t.Name), m.needle) ||
			strings.Contains(m.folder.String(t.Category), m.needle)
	}
	return true
}

// Sort orders tasks in place.
func Sort(tasks []domain.Task, spec domain.SortSpec) {
	byKey := comparator(spec.SortBy)
	desc := spec.Order == domain.SortDesc

	slices.SortFunc(tasks, func(a, b domain.Task) int {
		c := byKey(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func comparator(field domain.SortField) func(a, b domain.Task) int {
	switch field {
	case domain.SortByName:
		col := collate.New(language.Und)
		return func(a, b domain.Task) int {
			return col.CompareString(a.Name, b.Name)
		}
	case domain.SortByCategory:
		col := collate.New(language.Und)
		return func(a, b domain.Task) int {
			return col.CompareString(a.Category, b.Category)
		}
	case domain.SortByPriority:
		return func(a, b domain.Task) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		}
	case domain.SortByDeadline:
		return func(a, b domain.Task) int {
			return a.Deadline.Compare(b.Deadline)
		}
	default:
		return func(a, b domain.Task) int {
			return a.DateCreated.Compare(b.DateCreated)
		}
	}
}

// Categories returns the distinct non-empty categories in first-seen order.
func Categories(tasks []domain.Task) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range tasks {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

// Priorities returns the distinct non-empty priorities in first-seen order.
func Priorities(tasks []domain.Task) []domain.Priority {
	seen := make(map[domain.Priority]bool)
	out := []domain.Priority{}
	for _, t := range tasks {
		if t.Priority != domain.PriorityNone && !seen[t.Priority] {
			seen[t.Priority] = true
			out = append(out, t.Priority)
		}
	}
	return out
}
