package view

import "task-tracker/internal/domain"

// Stats counts tasks by completion.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// Summarize counts over the given tasks. Callers pass the unfiltered list.
func Summarize(tasks []domain.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.IsCompleted {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
