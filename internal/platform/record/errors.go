package record

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("unique constraint violated")
	// ErrForbidden is returned when an authenticated principal acts on a
	// tenant it does not belong to.
	ErrForbidden = errors.New("principal does not belong to tenant")
)

// NonFieldErrors collects messages that do not belong to a single field.
const NonFieldErrors = "non_field_errors"

// ValidationError maps payload fields to human readable messages.
type ValidationError struct {
	Fields map[string][]string
	cause  error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) merge(other *ValidationError) {
	for f, msgs := range other.Fields {
		for _, m := range msgs {
			e.Add(f, m)
		}
	}
	if e.cause == nil {
		e.cause = other.cause
	}
}

// Err returns nil when no messages were recorded.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}

// NewConflict reports a uniqueness violation on field.
func NewConflict(field, title string) *ValidationError {
	e := &ValidationError{cause: ErrConflict}
	e.Add(field, fmt.Sprintf("%s with this %s already exists.", strings.ToLower(title), strings.ReplaceAll(field, "_", " ")))
	return e
}
