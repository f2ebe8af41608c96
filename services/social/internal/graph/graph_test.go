package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

func newGraph() (*Graph, *store.InMemoryFriendStore, *events.Recorder) {
	fs := store.NewInMemoryFriendStore()
	rec := events.NewRecorder(32)
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return New(fs, rec, nil).WithClock(func() time.Time { return now }), fs, rec
}

func TestSendRequest_Validation(t *testing.T) {
	g, _, _ := newGraph()
	ctx := context.Background()

	if _, err := g.SendRequest(ctx, "a", "a"); !errors.Is(err, policy.ErrInvalidArgument) {
		t.Fatalf("self request: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := g.SendRequest(ctx, "", "b"); !errors.Is(err, policy.ErrInvalidArgument) {
		t.Fatalf("empty from: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSendRequest_ResendOverwrites(t *testing.T) {
	g, _, _ := newGraph()
	ctx := context.Background()

	r1, err := g.SendRequest(ctx, "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	r2, err := g.SendRequest(ctx, "a", "b")
	if err != nil {
		t.Fatalf("resend must not error: %v", err)
	}
	if r1.ID != r2.ID {
		t.Fatalf("expected same request id, got %s and %s", r1.ID, r2.ID)
	}
	incoming, _ := g.Incoming(ctx, "b")
	if len(incoming) != 1 {
		t.Fatalf("expected a single pending request, got %d", len(incoming))
	}
}

func TestApprove_IdempotentSingleEdge(t *testing.T) {
	g, fs, rec := newGraph()
	ctx := context.Background()

	r, _ := g.SendRequest(ctx, "a", "b")
	if _, err := g.Approve(ctx, "b", r.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := g.Approve(ctx, "b", r.ID); err != nil {
		t.Fatalf("second approve: %v", err)
	}

	edges, _ := fs.ListFriendships(ctx, "a")
	if len(edges) != 1 {
		t.Fatalf("expected exactly one edge, got %d", len(edges))
	}

	var accepted int
	for _, ev := range rec.Drain() {
		if ev.Type == events.FriendAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected one friend.accepted event, got %d", accepted)
	}
}

func TestApprove_OnlyRecipient(t *testing.T) {
	g, _, _ := newGraph()
	ctx := context.Background()

	r, _ := g.SendRequest(ctx, "a", "b")
	if _, err := g.Approve(ctx, "a", r.ID); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := g.Approve(ctx, "c", r.ID); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApprove_NotFound(t *testing.T) {
	g, _, _ := newGraph()
	if _, err := g.Approve(context.Background(), "b", store.RequestID("a", "b")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApprove_SeparatorInUserIDs(t *testing.T) {
	g, _, _ := newGraph()
	ctx := context.Background()

	r1, _ := g.SendRequest(ctx, "a_b", "c")
	if _, err := g.Approve(ctx, "c", r1.ID); err != nil {
		t.Fatalf("approve r1: %v", err)
	}
	r2, _ := g.SendRequest(ctx, "a", "b_c")
	if r1.ID == r2.ID {
		t.Fatalf("expected distinct request ids, both %q", r1.ID)
	}
	edge, err := g.Approve(ctx, "b_c", r2.ID)
	if err != nil {
		t.Fatalf("approve r2: %v", err)
	}
	if edge.From != "a" || edge.To != "b_c" {
		t.Fatalf("expected edge a -> b_c, got %+v", edge)
	}

	for user, want := range map[string]string{"a": "b_c", "b_c": "a", "a_b": "c", "c": "a_b"} {
		friends, _ := g.ListFriendsOf(ctx, user)
		if len(friends) != 1 || friends[0] != want {
			t.Fatalf("friends(%s): expected [%s], got %v", user, want, friends)
		}
	}
}

func TestListFriendsOf_Undirected(t *testing.T) {
	g, _, _ := newGraph()
	ctx := context.Background()

	r1, _ := g.SendRequest(ctx, "a", "b")
	r2, _ := g.SendRequest(ctx, "c", "a")
	r3, _ := g.SendRequest(ctx, "b", "a")
	_, _ = g.Approve(ctx, "b", r1.ID)
	_, _ = g.Approve(ctx, "a", r2.ID)
	_, _ = g.Approve(ctx, "a", r3.ID)

	friends, err := g.ListFriendsOf(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(friends) != 2 || friends[0] != "b" || friends[1] != "c" {
		t.Fatalf("expected [b c], got %v", friends)
	}

	ok, _ := g.AreFriends(ctx, "b", "a")
	if !ok {
		t.Fatal("friendship must be visible from both sides")
	}
	ok, _ = g.AreFriends(ctx, "b", "c")
	if ok {
		t.Fatal("b and c are not friends")
	}
}
