package store

import (
	"context"
	"sort"
	"sync"
)

// InMemoryDeviceStore is a development-only in-memory implementation.
type InMemoryDeviceStore struct {
	mu      sync.RWMutex
	devices map[string]map[string]Device // userID -> fingerprint -> device
}

func NewInMemoryDeviceStore() *InMemoryDeviceStore {
	return &InMemoryDeviceStore{devices: make(map[string]map[string]Device)}
}

func (s *InMemoryDeviceStore) Register(_ context.Context, d Device) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.Fingerprint == "" {
		d.Fingerprint = Fingerprint(d.Token)
	}
	if s.devices[d.UserID] == nil {
		s.devices[d.UserID] = make(map[string]Device)
	}
	s.devices[d.UserID][d.Fingerprint] = d
	return d, nil
}

func (s *InMemoryDeviceStore) ListByUser(_ context.Context, userID string) ([]Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Device{}
	for _, d := range s.devices[userID] {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fingerprint < out[j].Fingerprint })
	return out, nil
}
