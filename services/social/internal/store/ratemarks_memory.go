package store

import (
	"context"
	"sync"
	"time"
)

// InMemoryRateMarkStore serializes marks per key behind a striped lock set.
type InMemoryRateMarkStore struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	marks sync.Map // key -> time.Time
}

func NewInMemoryRateMarkStore() *InMemoryRateMarkStore {
	return &InMemoryRateMarkStore{locks: make(map[string]*sync.Mutex)}
}

func (s *InMemoryRateMarkStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *InMemoryRateMarkStore) Mark(_ context.Context, userID, action string, now time.Time, window time.Duration) (bool, error) {
	key := rateKey(userID, action)
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if v, ok := s.marks.Load(key); ok {
		if now.Sub(v.(time.Time)) < window {
			return false, nil
		}
	}
	s.marks.Store(key, now)
	return true, nil
}

func (s *InMemoryRateMarkStore) Release(_ context.Context, userID, action string, at time.Time) error {
	key := rateKey(userID, action)
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if v, ok := s.marks.Load(key); ok && v.(time.Time).Equal(at) {
		s.marks.Delete(key)
	}
	return nil
}

// Last returns the stored mark, if any.
func (s *InMemoryRateMarkStore) Last(userID, action string) (time.Time, bool) {
	v, ok := s.marks.Load(rateKey(userID, action))
	if !ok {
		return time.Time{}, false
	}
	return v.(time.Time), true
}
