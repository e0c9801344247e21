package session

import "fmt"

// ErrValidation indicates a missing or malformed required field.
// No mutation is applied when it is returned.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrNotFound indicates an operation referenced an unknown session.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("session %q not found", e.ID)
}

// ErrInvariant indicates an illegal state change, such as a non-monotonic
// status transition, a window over capacity or a score outside [0,1].
type ErrInvariant struct {
	Reason string
}

func (e *ErrInvariant) Error() string {
	return "invariant violation: " + e.Reason
}

func invariantf(format string, args ...any) *ErrInvariant {
	return &ErrInvariant{Reason: fmt.Sprintf(format, args...)}
}
