package session

import (
	"cmp"
	"context"
	"slices"
	"time"
)

// Store persists Session aggregates. Implementations must return copies
// from Get and List so callers cannot mutate stored state.
type Store interface {
	// Create stores a new session in status initializing.
	Create(ctx context.Context, id string, patient PatientInfo) error

	// Get returns the session or *ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Update applies patch atomically or returns an error without mutation.
	Update(ctx context.Context, id string, patch Patch) error

	// List returns the sessions matching filter, oldest first.
	List(ctx context.Context, filter Filter) ([]*Session, error)

	// Delete removes a session. Deleting an unknown session is *ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// Filter selects sessions in List.
type Filter struct {
	// Status restricts to one status when non-empty.
	Status Status

	// IdleSince restricts to sessions last updated before this time.
	IdleSince time.Time

	// Limit caps the number of results when positive.
	Limit int
}

// Match reports whether s passes the filter.
func (f Filter) Match(s *Session) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if !f.IdleSince.IsZero() && !s.LastUpdated.Before(f.IdleSince) {
		return false
	}
	return true
}

// SortAndLimit orders sessions by start time then ID and applies the
// filter's limit.
func SortAndLimit(sessions []*Session, f Filter) []*Session {
	slices.SortFunc(sessions, func(a, b *Session) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if f.Limit > 0 && len(sessions) > f.Limit {
		sessions = sessions[:f.Limit]
	}
	return sessions
}

// ValidateID returns *ErrValidation for an empty session ID.
func ValidateID(id string) error {
	if id == "" {
		return &ErrValidation{Field: "id", Reason: "must not be empty"}
	}
	return nil
}
