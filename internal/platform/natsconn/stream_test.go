package natsconn

import (
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

type fakeStreams struct {
	info    *nats.StreamInfo
	infoErr error
	added   *nats.StreamConfig
	updated *nats.StreamConfig
}

func (f *fakeStreams) StreamInfo(string, ...nats.JSOpt) (*nats.StreamInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeStreams) AddStream(cfg *nats.StreamConfig, _ ...nats.JSOpt) (*nats.StreamInfo, error) {
	f.added = cfg
	return &nats.StreamInfo{Config: *cfg}, nil
}

func (f *fakeStreams) UpdateStream(cfg *nats.StreamConfig, _ ...nats.JSOpt) (*nats.StreamInfo, error) {
	f.updated = cfg
	return &nats.StreamInfo{Config: *cfg}, nil
}

func TestEnsureStream_Creates(t *testing.T) {
	f := &fakeStreams{infoErr: nats.ErrStreamNotFound}
	if err := EnsureStream(f, "SOCIAL", "social.>", time.Hour); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if f.added == nil || f.added.Name != "SOCIAL" || f.added.Subjects[0] != "social.>" {
		t.Fatalf("unexpected stream config: %+v", f.added)
	}
}

func TestEnsureStream_AddsMissingSubject(t *testing.T) {
	f := &fakeStreams{info: &nats.StreamInfo{Config: nats.StreamConfig{Name: "SOCIAL", Subjects: []string{"other.>"}}}}
	if err := EnsureStream(f, "SOCIAL", "social.>", time.Hour); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if f.updated == nil || len(f.updated.Subjects) != 2 {
		t.Fatalf("expected update with both subjects, got %+v", f.updated)
	}
}

func TestEnsureStream_NoopWhenCovered(t *testing.T) {
	f := &fakeStreams{info: &nats.StreamInfo{Config: nats.StreamConfig{Name: "SOCIAL", Subjects: []string{"social.>"}}}}
	if err := EnsureStream(f, "SOCIAL", "social.>", time.Hour); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if f.added != nil || f.updated != nil {
		t.Fatal("expected no changes")
	}
}

func TestEnsureStream_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeStreams{infoErr: boom}
	if err := EnsureStream(f, "SOCIAL", "social.>", time.Hour); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
