package sqlite

import (
	"time"
)

// FormatTimeForDB formats a time.Time value as an RFC3339 string with
// nanoseconds, normalized to UTC, so stored values sort lexically.
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatDeadlineForDB formats a deadline keeping its zone offset, so the
// calendar date reads back unchanged. Returns nil if the pointer is nil.
func FormatDeadlineForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

// ParseTimeFromDB parses a time string written by FormatTimeForDB
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// FormatStringPtrForDB returns nil for a nil or empty string
func FormatStringPtrForDB(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
