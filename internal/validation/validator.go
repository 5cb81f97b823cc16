package validation

import (
	"strings"
	"time"

	"task-tracker/internal/domain"
)

// Field names reported in FieldError.Field.
const (
	FieldName     = "name"
	FieldDeadline = "deadline"
)

// Validator checks task drafts before they are sent to the repository.
type Validator struct {
	now      func() time.Time
	location *time.Location
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// WithLocation sets the time zone in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.location = loc
		}
	}
}

// NewValidator creates a new validator instance
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns nil when the draft may be submitted, or a *ValidationError
// listing the failing fields. Only name and deadline are checked.
func (v *Validator) Validate(draft domain.Draft) error {
	validationError := NewValidationError()
	v.checkName(draft, validationError)
	v.checkDeadline(draft, validationError)

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ValidateField re-checks a single field. It is used to clear a previously
// shown error once the user edits that field.
func (v *Validator) ValidateField(draft domain.Draft, field string) error {
	validationError := NewValidationError()
	switch field {
	case FieldName:
		v.checkName(draft, validationError)
	case FieldDeadline:
		v.checkDeadline(draft, validationError)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// Today returns midnight of the current date in the validator's location.
func (v *Validator) Today() time.Time {
	return domain.DateOf(v.now().In(v.location))
}

func (v *Validator) checkName(draft domain.Draft, ve *ValidationError) {
	if strings.TrimSpace(draft.Name) == "" {
		ve.AddRequiredError(FieldName, "Task name")
	}
}

func (v *Validator) checkDeadline(draft domain.Draft, ve *ValidationError) {
	if draft.Deadline == nil || draft.Deadline.IsZero() {
		ve.AddRequiredError(FieldDeadline, "Deadline")
		return
	}
	if v.IsPastDate(*draft.Deadline) {
		ve.AddPastDeadlineError(FieldDeadline, draft.Deadline.Format(time.DateOnly))
	}
}

// IsPastDate reports whether t's calendar date is strictly before today.
// Time of day is ignored on both sides.
func (v *Validator) IsPastDate(t time.Time) bool {
	y, m, d := t.Date()
	deadline := time.Date(y, m, d, 0, 0, 0, 0, v.location)
	return deadline.Before(v.Today())
}
