package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by stores when a set, snapshot, or question id
// does not resolve to a row. Handlers translate it to a 404.
var ErrNotFound = errors.New("not found")

type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError describes a single failed field during import validation.
type FieldError struct {
	QuestionID string `json:"question_id"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

// ValidationError carries every field error found in an import payload.
// Imports are all-or-nothing: one ValidationError rejects the whole file.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, fmt.Sprintf("%s/%s: %s", d.QuestionID, d.Field, d.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InvalidStateError rejects an operation before it mutates anything:
// submitting an out-of-range choice, re-answering a question, creating a
// snapshot with no wrong questions.
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Op + ": " + e.Reason
}

func NewInvalidState(op, reason string) *InvalidStateError {
	return &InvalidStateError{Op: op, Reason: reason}
}
