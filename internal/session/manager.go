package session

import (
	"fmt"
	"sync"
)

// Manager keeps the sessions opened through the HTTP API.
// All sessions share one Locator, as they share one pointer file.
type Manager struct {
	Locator *Locator

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(locator *Locator) *Manager {
	return &Manager{
		Locator:  locator,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Start() *Session {
	s := New(m.Locator)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// End ends the session and forgets it.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s.End()
}
