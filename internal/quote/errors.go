package quote

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict matches every *ConflictError.
	ErrConflict = errors.New("quote: conflicting modules")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("quote: invalid selection")
	// ErrSessionNotFound indicates the quote session does not exist or expired.
	ErrSessionNotFound = errors.New("quote: session not found")
	// ErrArchiveUnavailable indicates saved quotes are disabled (no database).
	ErrArchiveUnavailable = errors.New("quote: saved quotes unavailable")
)

// ConflictError reports a selection rejected by a mutual exclusion rule.
type ConflictError struct {
	ModuleID      string
	ConflictsWith string
	Message       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("quote: %s cannot be combined with %s", e.ModuleID, e.ConflictsWith)
}

// Is lets errors.Is(err, ErrConflict) match.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ValidationError reports a rejected input. The ledger is left unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("quote: invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
