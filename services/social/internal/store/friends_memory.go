package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryFriendStore is a development-only in-memory implementation.
type InMemoryFriendStore struct {
	mu       sync.RWMutex
	requests map[string]FriendRequest
	edges    map[string]Friendship
}

func NewInMemoryFriendStore() *InMemoryFriendStore {
	return &InMemoryFriendStore{
		requests: make(map[string]FriendRequest),
		edges:    make(map[string]Friendship),
	}
}

func (s *InMemoryFriendStore) UpsertRequest(_ context.Context, from, to string, now time.Time) (FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := FriendRequest{ID: RequestID(from, to), From: from, To: to, Status: RequestPending, CreatedAt: now}
	s.requests[r.ID] = r
	return r, nil
}

func (s *InMemoryFriendStore) GetRequest(_ context.Context, id string) (FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return FriendRequest{}, ErrNotFound
	}
	return r, nil
}

func (s *InMemoryFriendStore) Accept(_ context.Context, id string, now time.Time) (Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return Friendship{}, ErrNotFound
	}
	r.Status = RequestAccepted
	s.requests[id] = r

	if f, exists := s.edges[id]; exists {
		return f, nil
	}
	f := Friendship{ID: id, From: r.From, To: r.To, CreatedAt: now}
	s.edges[id] = f
	return f, nil
}

func (s *InMemoryFriendStore) ListIncoming(_ context.Context, userID string) ([]FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []FriendRequest{}
	for _, r := range s.requests {
		if r.To == userID && r.Status == RequestPending {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemoryFriendStore) ListFriendships(_ context.Context, userID string) ([]Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Friendship{}
	for _, f := range s.edges {
		if f.From == userID || f.To == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
