package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Constraint violations. Never retried.
	ErrDuplicate      = errors.New("duplicate value")
	ErrForeignKey     = errors.New("record is referenced by another record")
	ErrMissingField   = errors.New("required field is missing")
	ErrCheckViolation = errors.New("value out of allowed range")
	ErrUndefinedTable = errors.New("unknown table or column")

	// Optimistic-lock failure. Requires conflict resolution or a re-read.
	ErrVersionConflict = errors.New("version conflict")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrLocalDataNotAvailable means no cached credentials exist, so an
	// offline login cannot be attempted.
	ErrLocalDataNotAvailable = errors.New("local auth data not available")
)

// DuplicateError reports a unique-constraint violation, carrying the field
// whose value already exists. It matches ErrDuplicate via errors.Is.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Field, e.Value)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// VersionConflictError reports a failed conditional write, carrying the
// version the writer expected and the version the server holds. It matches
// ErrVersionConflict via errors.Is.
type VersionConflictError struct {
	Expected int64
	Actual   int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected %d, server has %d", e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// IsConstraint reports whether err is one of the non-retryable constraint
// violations (duplicate, foreign key, not-null, check, undefined table).
func IsConstraint(err error) bool {
	return errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrForeignKey) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrCheckViolation) ||
		errors.Is(err, ErrUndefinedTable)
}

// UserMessage translates err into an actionable sentence for the UI. Raw
// backend diagnostics are never exposed; unclassified errors fall back to a
// generic retry prompt.
func UserMessage(err error) string {
	var dup *DuplicateError
	switch {
	case errors.As(err, &dup):
		return fmt.Sprintf("A record with %s %q already exists. Edit the existing one instead?", dup.Field, dup.Value)
	case errors.Is(err, ErrDuplicate):
		return "This name already exists. Edit the existing record instead?"
	case errors.Is(err, ErrForeignKey):
		return "This record is used by a recipe and cannot be deleted."
	case errors.Is(err, ErrMissingField):
		return "A required field is missing."
	case errors.Is(err, ErrCheckViolation):
		return "A value is out of the allowed range."
	case errors.Is(err, ErrVersionConflict):
		return "Someone else changed this record. Review the latest version before saving."
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrNotFound):
		return "This record no longer exists."
	default:
		return "Something went wrong. Please try again."
	}
}
