package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestInMemoryRateMarkStore_Window(t *testing.T) {
	s := NewInMemoryRateMarkStore()
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ok, _ := s.Mark(ctx, "u", "post", t0, time.Minute)
	if !ok {
		t.Fatal("first mark should pass")
	}
	ok, _ = s.Mark(ctx, "u", "post", t0.Add(59*time.Second), time.Minute)
	if ok {
		t.Fatal("mark inside window should fail")
	}
	if last, _ := s.Last("u", "post"); !last.Equal(t0) {
		t.Fatalf("denied mark must not move the timestamp, got %s", last)
	}
	ok, _ = s.Mark(ctx, "u", "post", t0.Add(time.Minute), time.Minute)
	if !ok {
		t.Fatal("mark at exactly the window should pass")
	}

	// Other actions and users are independent.
	if ok, _ := s.Mark(ctx, "u", "comment", t0, time.Minute); !ok {
		t.Fatal("different action should pass")
	}
	if ok, _ := s.Mark(ctx, "v", "post", t0, time.Minute); !ok {
		t.Fatal("different user should pass")
	}
}

func TestInMemoryRateMarkStore_ConcurrentSingleWinner(t *testing.T) {
	s := NewInMemoryRateMarkStore()
	ctx := context.Background()
	now := time.Now()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Mark(ctx, "u", "post", now, time.Minute); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestInMemoryRateMarkStore_Release(t *testing.T) {
	s := NewInMemoryRateMarkStore()
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _ = s.Mark(ctx, "u", "post", t0, time.Minute)
	// A stale release leaves the current mark alone.
	if err := s.Release(ctx, "u", "post", t0.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if last, ok := s.Last("u", "post"); !ok || !last.Equal(t0) {
		t.Fatalf("stale release removed the mark: %s %v", last, ok)
	}

	if err := s.Release(ctx, "u", "post", t0); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Last("u", "post"); ok {
		t.Fatal("expected mark to be released")
	}
	if ok, _ := s.Mark(ctx, "u", "post", t0.Add(time.Second), time.Minute); !ok {
		t.Fatal("mark after release should pass")
	}
	if err := s.Release(ctx, "nobody", "post", t0); err != nil {
		t.Fatalf("release without a mark: %v", err)
	}
}
