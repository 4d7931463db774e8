package directory

import (
	"context"
	"sync"

	goRevoke "github.com/MrEthical07/goRevoke"
)

// Memory is an in-process [goRevoke.UserDirectory] for tests and examples.
// Put and Deactivate exist so tests can model directory-side changes that the
// engine must pick up on the next refresh.
type Memory struct {
	mu    sync.RWMutex
	byID  map[string]goRevoke.User
	byTag map[string]string // username -> id
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		byID:  make(map[string]goRevoke.User),
		byTag: make(map[string]string),
	}
}

// Put inserts or replaces a user record.
func (m *Memory) Put(user goRevoke.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[user.ID] = user
	m.byTag[user.Username] = user.ID
}

// Deactivate clears the active flag of an existing user.
func (m *Memory) Deactivate(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[id]; ok {
		user.Active = false
		m.byID[id] = user
	}
}

// LookupByUsername implements [goRevoke.UserDirectory].
func (m *Memory) LookupByUsername(_ context.Context, username string) (*goRevoke.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byTag[username]
	if !ok {
		return nil, goRevoke.ErrUserNotFound
	}
	user := m.byID[id]
	return &user, nil
}

// LookupByID implements [goRevoke.UserDirectory].
func (m *Memory) LookupByID(_ context.Context, id string) (*goRevoke.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.byID[id]
	if !ok {
		return nil, goRevoke.ErrUserNotFound
	}
	return &user, nil
}
