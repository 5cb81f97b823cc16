package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		errors   []FieldError
		expected string
		contains bool
	}{
		{"No errors", []FieldError{}, "validation error", false},
		{"Single error", []FieldError{{Field: "name", Message: "is required"}}, "validation error for field 'name': is required", false},
		{"Multiple errors", []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "deadline", Message: "is required"},
		}, "multiple validation errors", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			if tt.contains {
				assert.Contains(t, ve.Error(), tt.expected)
			} else {
				assert.Equal(t, tt.expected, ve.Error())
			}
		})
	}
}

func TestValidationError_AddRequiredError(t *testing.T) {
	ve := NewValidationError()
	assert.False(t, ve.HasErrors())

	ve.AddRequiredError(FieldName, "Task name")

	require.Len(t, ve.Errors, 1)
	assert.True(t, ve.HasErrors())
	assert.Equal(t, FieldName, ve.Errors[0].Field)
	assert.Equal(t, ErrorTypeRequired, ve.Errors[0].Type)
	assert.Equal(t, "Task name is required", ve.Errors[0].Message)
}

func TestValidationError_AddPastDeadlineError(t *testing.T) {
	ve := NewValidationError()
	ve.AddPastDeadlineError(FieldDeadline, "2020-01-01")

	require.Len(t, ve.Errors, 1)
	assert.Equal(t, ErrorTypePastDeadline, ve.Errors[0].Type)
	assert.Equal(t, "Deadline cannot be in the past", ve.Errors[0].Message)
	assert.Equal(t, "2020-01-01", ve.Errors[0].Value)
}

func TestValidationError_AddFormatAndValueErrors(t *testing.T) {
	ve := NewValidationError()
	ve.AddInvalidFormatError("deadline", "2026-13-01", "YYYY-MM-DD")
	ve.AddInvalidValueError("priority", "Urgent", "must be Low, Medium or High")

	require.Len(t, ve.Errors, 2)
	assert.Equal(t, ErrorTypeInvalidFormat, ve.Errors[0].Type)
	assert.Contains(t, ve.Errors[0].Message, "YYYY-MM-DD")
	assert.Equal(t, ErrorTypeInvalidValue, ve.Errors[1].Type)
	assert.Contains(t, ve.Errors[1].Message, "must be Low, Medium or High")
}

func TestValidationError_GetFieldErrors(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError(FieldName, "Task name")
	ve.AddInvalidValueError(FieldName, " ", "blank")
	ve.AddRequiredError(FieldDeadline, "Deadline")

	assert.Len(t, ve.GetFieldErrors(FieldName), 2)
	assert.Len(t, ve.GetFieldErrors(FieldDeadline), 1)
	assert.Empty(t, ve.GetFieldErrors("missing"))
}

func TestValidationError_FieldMessages(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError(FieldName, "Task name")
	ve.AddInvalidValueError(FieldName, " ", "blank")
	ve.AddPastDeadlineError(FieldDeadline, "2020-01-01")

	assert.Equal(t, map[string]string{
		FieldName:     "Task name is required",
		FieldDeadline: "Deadline cannot be in the past",
	}, ve.FieldMessages())
}

func TestValidationError_ClearField(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError(FieldName, "Task name")
	ve.AddRequiredError(FieldDeadline, "Deadline")

	ve.ClearField(FieldName)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, FieldDeadline, ve.Errors[0].Field)

	ve.ClearField(FieldDeadline)
	assert.False(t, ve.HasErrors())
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	ve := NewValidationError()
	assert.Equal(t, "Input validation failed", ve.GetUserFriendlyMessage())

	ve.AddRequiredError(FieldName, "Task name")
	assert.Equal(t, "Task name is required", ve.GetUserFriendlyMessage())

	ve.AddRequiredError(FieldDeadline, "Deadline")
	msg := ve.GetUserFriendlyMessage()
	assert.Contains(t, msg, "Multiple validation errors occurred")
	assert.Contains(t, msg, "- Deadline is required")
}

func TestAsValidationError(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError(FieldName, "Task name")
	wrapped := fmt.Errorf("create: %w", ve)

	got, ok := AsValidationError(wrapped)
	require.True(t, ok)
	assert.Same(t, ve, got)
	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsValidationError(fmt.Errorf("plain")))
}
