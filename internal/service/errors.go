package service

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every error a service returns wraps exactly one of these, so the
// transport can choose a status code with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// Error is a kind plus a caller-facing message and an optional cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrMemberNotFound      = newError(ErrNotFound, "member not found")
	ErrAdminNotFound       = newError(ErrNotFound, "admin not found")
	ErrTaskNotFound        = newError(ErrNotFound, "task not found")
	ErrHelpRequestNotFound = newError(ErrNotFound, "help request not found")
	ErrAssignmentNotFound  = newError(ErrNotFound, "assignment not found")

	ErrNotAssigned        = newError(ErrForbidden, "not assigned to this task")
	ErrPrivilegedRole     = newError(ErrForbidden, "only an admin can grant the admin or manager role")
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid email or password")
	ErrUnauthenticated    = newError(ErrUnauthorized, "authentication required")

	ErrEmailTaken  = newError(ErrConflict, "email has already been taken")
	ErrOverdueTask = newError(ErrConflict, "cannot request help on overdue task")
)

// ValidationError collects per-field messages. No mutation is applied when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Err returns nil when no field failed.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
