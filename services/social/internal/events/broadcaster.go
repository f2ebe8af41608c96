package events

import (
	"context"
	"sync"
)

// Broadcaster fans events out to in-process subscribers. A subscriber that
// falls behind loses events rather than stalling publishers.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	buffer int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broadcaster{subs: make(map[int]chan Event), buffer: buffer}
}

func (b *Broadcaster) Publish(_ context.Context, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel of events and a cancel func that closes it.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}

func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
