// Package graph implements the friend-request lifecycle and the friendship
// edges it produces.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/example/socialtrust/internal/platform/logging"
	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

type Graph struct {
	friends store.FriendStore
	obs     events.Observer
	log     *zap.Logger
	now     func() time.Time
}

func New(friends store.FriendStore, obs events.Observer, log *zap.Logger) *Graph {
	if obs == nil {
		obs = events.Nop{}
	}
	return &Graph{
		friends: friends,
		obs:     obs,
		log:     logging.Named(log, "graph"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Used by tests.
func (g *Graph) WithClock(now func() time.Time) *Graph {
	g.now = now
	return g
}

// SendRequest upserts a pending request from -> to. Re-sending overwrites.
func (g *Graph) SendRequest(ctx context.Context, from, to string) (store.FriendRequest, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return store.FriendRequest{}, fmt.Errorf("%w: both users are required", policy.ErrInvalidArgument)
	}
	if from == to {
		return store.FriendRequest{}, fmt.Errorf("%w: cannot befriend yourself", policy.ErrInvalidArgument)
	}

	r, err := g.friends.UpsertRequest(ctx, from, to, g.now())
	if err != nil {
		return store.FriendRequest{}, fmt.Errorf("upsert friend request: %w", err)
	}
	g.obs.Publish(ctx, events.New(events.FriendRequested, from, map[string]any{
		"request_id": r.ID,
		"to":         to,
	}))
	return r, nil
}

// Approve accepts the request and creates its friendship edge. Only the
// recipient may approve. Approving twice returns the same edge.
func (g *Graph) Approve(ctx context.Context, approverID, requestID string) (store.Friendship, error) {
	r, err := g.friends.GetRequest(ctx, requestID)
	if err != nil {
		return store.Friendship{}, err
	}
	if r.To != approverID {
		return store.Friendship{}, fmt.Errorf("%w: only the recipient can approve", policy.ErrForbidden)
	}

	wasAccepted := r.Status == store.RequestAccepted
	f, err := g.friends.Accept(ctx, requestID, g.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Friendship{}, err
		}
		return store.Friendship{}, fmt.Errorf("accept friend request: %w", err)
	}
	if !wasAccepted {
		g.obs.Publish(ctx, events.New(events.FriendAccepted, approverID, map[string]any{
			"request_id": f.ID,
			"from":       f.From,
			"to":         f.To,
		}))
	}
	g.log.Debug("friend request approved", zap.String("user_id", approverID), zap.String("request_id", requestID))
	return f, nil
}

// ListFriendsOf returns the other side of every edge touching userID, sorted.
func (g *Graph) ListFriendsOf(ctx context.Context, userID string) ([]string, error) {
	edges, err := g.friends.ListFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := lo.Uniq(lo.Map(edges, func(f store.Friendship, _ int) string {
		return f.Other(userID)
	}))
	sort.Strings(ids)
	return ids, nil
}

func (g *Graph) AreFriends(ctx context.Context, a, b string) (bool, error) {
	ids, err := g.ListFriendsOf(ctx, a)
	if err != nil {
		return false, err
	}
	return lo.Contains(ids, b), nil
}

// Incoming returns pending requests addressed to userID.
func (g *Graph) Incoming(ctx context.Context, userID string) ([]store.FriendRequest, error) {
	return g.friends.ListIncoming(ctx, userID)
}
