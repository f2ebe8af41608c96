package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCommentStore is a development-only in-memory implementation.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[string]Comment // id -> comment
	order    []string
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{comments: make(map[string]Comment)}
}

func (s *InMemoryCommentStore) Create(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if _, exists := s.comments[c.ID]; exists {
		return Comment{}, ErrConflict
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.comments[c.ID] = c
	s.order = append(s.order, c.ID)
	return c, nil
}

func (s *InMemoryCommentStore) Get(_ context.Context, id string) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return c, nil
}

func (s *InMemoryCommentStore) ListByPost(_ context.Context, postID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Comment{}
	for _, id := range s.order {
		if c := s.comments[id]; c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
