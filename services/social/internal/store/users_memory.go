package store

import (
	"context"
	"sync"
	"time"
)

// InMemoryUserStore is a development-only in-memory implementation of
// UserStore and TrustStore.
type InMemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]User
	events map[string]struct{} // applied trust event keys
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:  make(map[string]User),
		events: make(map[string]struct{}),
	}
}

func (s *InMemoryUserStore) Ensure(_ context.Context, id, displayName string) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		if u.DisplayName == "" && displayName != "" {
			u.DisplayName = displayName
			s.users[id] = u
		}
		return u, false, nil
	}
	u := User{
		ID:          id,
		DisplayName: displayName,
		Role:        RoleUser,
		CreatedAt:   time.Now().UTC(),
	}
	s.users[id] = u
	return u, true, nil
}

func (s *InMemoryUserStore) Get(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *InMemoryUserStore) SetDarkMode(_ context.Context, id string, on bool) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.DarkMode = on
	s.users[id] = u
	return u, nil
}

func (s *InMemoryUserStore) SetRole(_ context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		u = User{ID: id, CreatedAt: time.Now().UTC()}
	}
	u.Role = role
	s.users[id] = u
	return nil
}

func (s *InMemoryUserStore) AddTrust(_ context.Context, userID string, delta int, eventKey, _ string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		u = User{ID: userID, Role: RoleUser, CreatedAt: time.Now().UTC()}
	}
	if eventKey != "" {
		if _, seen := s.events[eventKey]; seen {
			return false, u.Trust, nil
		}
		s.events[eventKey] = struct{}{}
	}
	u.Trust += delta
	s.users[userID] = u
	return true, u.Trust, nil
}

func (s *InMemoryUserStore) Trust(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID].Trust, nil
}
