// Package apperr defines the error kinds shared by the stores and the API.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers.
type Kind int

const (
	// Internal is any failure that is not one of the other kinds.
	Internal Kind = iota
	// Validation is malformed or out-of-range input.
	Validation
	// NotFound means a referenced entity does not exist.
	NotFound
	// Conflict is a uniqueness violation or an illegal state change.
	Conflict
	// Unavailable means the persistent store cannot be reached.
	Unavailable
)

func (kind Kind) String() string {
	switch kind {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unavailable:
		return "storage_unavailable"
	default:
		return "internal"
	}
}

// Issue describes a problem with a single input field.
type Issue struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
}

// Error is an error with a Kind.
type Error struct {
	Kind    Kind
	Message string
	Issues  []Issue
	Err     error
}

func (e *Error) Error() string {
	message := e.Message

	if message == "" && len(e.Issues) > 0 {
		parts := make([]string, len(e.Issues))

		for i, issue := range e.Issues {
			parts[i] = issue.Path + ": " + issue.Problem
		}

		message = strings.Join(parts, "; ")
	}

	if message == "" {
		message = e.Kind.String()
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", message, e.Err)
	}

	return message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrValidation  = &Error{Kind: Validation}
	ErrNotFound    = &Error{Kind: NotFound}
	ErrConflict    = &Error{Kind: Conflict}
	ErrUnavailable = &Error{Kind: Unavailable}
)

// Invalid creates a Validation error for one field.
func Invalid(path, problem string) *Error {
	return &Error{Kind: Validation, Issues: []Issue{{Path: path, Problem: problem}}}
}

// NotFoundf creates a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf creates a Conflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or Internal when it has none.
func KindOf(err error) Kind {
	var appErr *Error

	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return Internal
}

// MessageOf returns a message for err which is safe to show to a caller.
//
// Wrapped driver errors are left out; errors without a kind yield "".
func MessageOf(err error) string {
	var appErr *Error

	if !errors.As(err, &appErr) {
		return ""
	}

	if appErr.Message != "" {
		return appErr.Message
	}

	if len(appErr.Issues) > 0 {
		return "validation failed"
	}

	return appErr.Kind.String()
}

// IssuesOf returns the field issues carried by err.
func IssuesOf(err error) []Issue {
	var appErr *Error

	if errors.As(err, &appErr) {
		return appErr.Issues
	}

	return nil
}

// Issues collects field problems while validating input.
type Issues []Issue

// Add records a problem with a field.
func (issues *Issues) Add(path, problem string) {
	*issues = append(*issues, Issue{Path: path, Problem: problem})
}

// Merge records the issues from a Validation error, or returns err if it is
// some other error.
func (issues *Issues) Merge(err error) error {
	if err == nil {
		return nil
	}

	if KindOf(err) != Validation {
		return err
	}

	*issues = append(*issues, IssuesOf(err)...)

	return nil
}

// Err returns a Validation error if any issues were added.
func (issues Issues) Err() error {
	if len(issues) == 0 {
		return nil
	}

	return &Error{Kind: Validation, Issues: issues}
}
