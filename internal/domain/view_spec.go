package domain

import "strings"

// FilterSpec selects which tasks appear in the view. Every criterion is
// optional; the zero value matches every task.
type FilterSpec struct {
	Category string
	Priority Priority
	// Completed is tri-state: nil matches both, otherwise it must equal the task's flag.
	Completed *bool
	// Search is matched case-insensitively against name and category.
	Search string
}

// IsActive reports whether any criterion is set.
func (f FilterSpec) IsActive() bool {
	return f.Category != "" || f.Priority != PriorityNone || f.Completed != nil || f.Search != ""
}

// SortField names the key a view is ordered by.
type SortField string

const (
	SortByDateCreated SortField = "dateCreated"
	SortByDeadline    SortField = "deadline"
	SortByName        SortField = "name"
	SortByCategory    SortField = "category"
	SortByPriority    SortField = "priority"
)

// SortOrder is either ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortSpec orders the view.
type SortSpec struct {
	SortBy SortField
	Order  SortOrder
}

// DefaultSortSpec orders newest tasks first.
func DefaultSortSpec() SortSpec {
	return SortSpec{SortBy: SortByDateCreated, Order: SortDesc}
}

// ParseSortField accepts the field names case-insensitively. Unknown names
// fall back to dateCreated and report false.
func ParseSortField(s string) (SortField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "datecreated", "created", "":
		return SortByDateCreated, true
	case "deadline":
		return SortByDeadline, true
	case "name":
		return SortByName, true
	case "category":
		return SortByCategory, true
	case "priority":
		return SortByPriority, true
	default:
		return SortByDateCreated, false
	}
}

// ParseSortOrder accepts "asc" or "desc". Anything else yields desc and false.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return SortAsc, true
	case "desc", "descending", "":
		return SortDesc, true
	default:
		return SortDesc, false
	}
}
