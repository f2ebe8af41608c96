// Package events carries notifications of successful mutations to whoever
// observes them: the SSE stream, NATS subscribers, tests.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	PostCreated     = "post.created"
	CommentCreated  = "comment.created"
	PostLiked       = "post.liked"
	FriendRequested = "friend.requested"
	FriendAccepted  = "friend.accepted"
	ReportFiled     = "report.filed"
	TrustChanged    = "trust.changed"
	ProfileUpdated  = "profile.updated"
)

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	UserID     string         `json:"user_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

func New(typ, userID string, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Observer receives events after the mutation they describe is durable.
// Publish must not block the caller for long and never reports failure.
type Observer interface {
	Publish(ctx context.Context, ev Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Multi fans an event out to every observer in order.
type Multi []Observer

func (m Multi) Publish(ctx context.Context, ev Event) {
	for _, o := range m {
		if o != nil {
			o.Publish(ctx, ev)
		}
	}
}

// Recorder keeps every published event. Used by tests.
type Recorder struct {
	ch chan Event
}

func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Event, size)}
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	select {
	case r.ch <- ev:
	default:
	}
}

// Drain returns everything recorded so far.
func (r *Recorder) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-r.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
