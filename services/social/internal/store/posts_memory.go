package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryPostStore is a development-only in-memory implementation.
type InMemoryPostStore struct {
	mu    sync.RWMutex
	posts map[string]Post
	likes map[string]map[string]Like // postID -> userID -> like
	seq   map[string]int             // insertion order for stable listing
	next  int
}

func NewInMemoryPostStore() *InMemoryPostStore {
	return &InMemoryPostStore{
		posts: make(map[string]Post),
		likes: make(map[string]map[string]Like),
		seq:   make(map[string]int),
	}
}

func (s *InMemoryPostStore) Create(_ context.Context, p Post) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if _, exists := s.posts[p.ID]; exists {
		return Post{}, ErrConflict
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Likes = 0
	s.posts[p.ID] = p
	s.seq[p.ID] = s.next
	s.next++
	return p, nil
}

func (s *InMemoryPostStore) Get(_ context.Context, id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (s *InMemoryPostStore) List(_ context.Context, limit int) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryPostStore) Like(_ context.Context, postID, userID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return false, ErrNotFound
	}
	if s.likes[postID] == nil {
		s.likes[postID] = make(map[string]Like)
	}
	if _, liked := s.likes[postID][userID]; liked {
		return false, nil
	}
	s.likes[postID][userID] = Like{PostID: postID, UserID: userID, CreatedAt: now}
	p.Likes++
	s.posts[postID] = p
	return true, nil
}
