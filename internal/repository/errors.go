package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrHelpRequestNotFound is returned when a help request is not found
	ErrHelpRequestNotFound = errors.New("help request not found")

	// ErrAssignmentNotFound is returned when a (task, member) pair has no assignment
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrMemberNotFound is returned by destructive member operations on a missing row
	ErrMemberNotFound = errors.New("member not found")

	// ErrDuplicate is returned when a write hits a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
