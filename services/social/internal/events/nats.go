package events

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	StreamName    = "SOCIAL_EVENTS"
	StreamSubject = "social.>"
	subjectPrefix = "social."
)

// AsyncPublisher is the subset of nats.JetStreamContext the publisher needs.
type AsyncPublisher interface {
	PublishAsync(subj string, data []byte, opts ...nats.PubOpt) (nats.PubAckFuture, error)
}

// NATSPublisher forwards events to JetStream under social.<type>.
// A nil receiver or nil JetStream context is a no-op.
type NATSPublisher struct {
	js  AsyncPublisher
	log *zap.Logger
}

func NewNATSPublisher(js AsyncPublisher, log *zap.Logger) *NATSPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &NATSPublisher{js: js, log: log}
}

// Subject returns the JetStream subject for an event type.
func Subject(typ string) string {
	return subjectPrefix + typ
}

func (p *NATSPublisher) Publish(_ context.Context, ev Event) {
	if p == nil || p.js == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(Subject(ev.Type), data); err != nil {
		p.log.Warn("events: publish failed", zap.String("type", ev.Type), zap.Error(err))
	}
}
