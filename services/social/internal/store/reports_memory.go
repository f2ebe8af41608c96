package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryReportStore is a development-only in-memory implementation.
type InMemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]Report
	order   []string
}

func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{reports: make(map[string]Report)}
}

func (s *InMemoryReportStore) Append(_ context.Context, r Report) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if _, exists := s.reports[r.ID]; exists {
		return Report{}, ErrConflict
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.PenaltyApplied = false
	s.reports[r.ID] = r
	s.order = append(s.order, r.ID)
	return r, nil
}

func (s *InMemoryReportStore) Get(_ context.Context, id string) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return Report{}, ErrNotFound
	}
	return r, nil
}

func (s *InMemoryReportStore) List(_ context.Context, limit int) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Report{}
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.reports[s.order[i]])
	}
	return out, nil
}

func (s *InMemoryReportStore) MarkPenaltyApplied(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return ErrNotFound
	}
	r.PenaltyApplied = true
	s.reports[id] = r
	return nil
}

func (s *InMemoryReportStore) ListPending(_ context.Context, limit int) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Report{}
	for _, id := range s.order {
		if limit > 0 && len(out) == limit {
			break
		}
		if r := s.reports[id]; !r.PenaltyApplied {
			out = append(out, r)
		}
	}
	return out, nil
}
