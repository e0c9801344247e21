package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store keyed by session ID.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{sessions: make(map[string]*Session), now: now}
}

func (m *MemoryStore) Create(_ context.Context, id string, patient PatientInfo) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		return invariantf("session %q already exists", id)
	}
	m.sessions[id] = New(id, patient, m.now())
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, patch Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return &ErrNotFound{ID: id}
	}
	if err := patch.Apply(s, m.now()); err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, filter Filter) ([]*Session, error) {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if filter.Match(s) {
			out = append(out, s.Clone())
		}
	}
	m.mu.RUnlock()
	return SortAndLimit(out, filter), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return &ErrNotFound{ID: id}
	}
	delete(m.sessions, id)
	return nil
}
