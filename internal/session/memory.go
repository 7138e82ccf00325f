package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a mutex-guarded map. It is the default
// backend; state lives for the process lifetime only.
type MemoryStore struct {
	grace time.Duration

	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty store whose sweep keeps sessions for grace
// past their expiry.
func NewMemoryStore(grace time.Duration) *MemoryStore {
	return &MemoryStore{
		grace:    grace,
		sessions: make(map[string]Session),
	}
}

// Put inserts a session, rejecting duplicate IDs.
func (m *MemoryStore) Put(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrDuplicateID
	}
	m.sessions[s.ID] = s
	return nil
}

// Get returns the session with the given ID.
func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

// Delete removes a session. Deleting an absent ID is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sweep evicts sessions whose grace window has fully elapsed.
func (m *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt.Add(m.grace)) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
