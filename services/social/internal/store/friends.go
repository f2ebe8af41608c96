package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	// RequestDeclined is reserved; nothing transitions into it yet.
	RequestDeclined = "declined"
)

// FriendRequest is keyed by (From, To); ID is RequestID(From, To).
type FriendRequest struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Friendship shares the ID of the request that created it. Storage is
// directional (From, To) but membership is checked on both sides.
type Friendship struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	CreatedAt time.Time `json:"created_at"`
}

// Other returns the side of the edge that is not userID.
func (f Friendship) Other(userID string) string {
	if f.From == userID {
		return f.To
	}
	return f.From
}

// requestNamespace scopes the name-based request IDs.
var requestNamespace = uuid.MustParse("5f1c3e1a-8d2b-4f57-9a0e-3b6d2c7e9f41")

// RequestID is the storage key of the request from -> to. User IDs are
// opaque, so both sides are length-prefixed before hashing; ("a_b", "c") and
// ("a", "b_c") never share a key.
func RequestID(from, to string) string {
	name := fmt.Sprintf("%d:%s%d:%s", len(from), from, len(to), to)
	return uuid.NewSHA1(requestNamespace, []byte(name)).String()
}

type FriendStore interface {
	// UpsertRequest writes a pending request for (from, to), overwriting any
	// previous one for the same pair.
	UpsertRequest(ctx context.Context, from, to string, now time.Time) (FriendRequest, error)
	GetRequest(ctx context.Context, id string) (FriendRequest, error)
	// Accept moves the request to accepted and creates its friendship edge
	// in one step. Both writes are idempotent; an existing edge is returned
	// unchanged.
	Accept(ctx context.Context, id string, now time.Time) (Friendship, error)
	// ListIncoming returns pending requests addressed to userID, oldest first.
	ListIncoming(ctx context.Context, userID string) ([]FriendRequest, error)
	// ListFriendships returns every edge that has userID on either side.
	ListFriendships(ctx context.Context, userID string) ([]Friendship, error)
}
