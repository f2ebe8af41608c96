package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster(4)
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(context.Background(), New(PostCreated, "u1", nil))

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != PostCreated {
				t.Fatalf("subscriber %d: unexpected type %q", i, ev.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event", i)
		}
	}

	cancel1()
	cancel1()
	if b.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber after cancel, got %d", b.Subscribers())
	}
	if _, open := <-ch1; open {
		t.Fatal("expected cancelled channel to be closed")
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(1)
	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(context.Background(), New(PostLiked, "u1", nil))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestMulti_SkipsNil(t *testing.T) {
	rec := NewRecorder(4)
	m := Multi{nil, rec, Nop{}}
	m.Publish(context.Background(), New(TrustChanged, "u1", map[string]any{"score": 1}))
	got := rec.Drain()
	if len(got) != 1 || got[0].Type != TrustChanged {
		t.Fatalf("unexpected events: %+v", got)
	}
}

type fakeJS struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeJS) PublishAsync(subj string, data []byte, _ ...nats.PubOpt) (nats.PubAckFuture, error) {
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil, f.err
}

func TestNATSPublisher_Subject(t *testing.T) {
	js := &fakeJS{}
	p := NewNATSPublisher(js, nil)
	p.Publish(context.Background(), New(ReportFiled, "u1", map[string]any{"report_id": "r1"}))

	if len(js.subjects) != 1 || js.subjects[0] != "social.report.filed" {
		t.Fatalf("unexpected subjects: %v", js.subjects)
	}
	var ev Event
	if err := json.Unmarshal(js.payloads[0], &ev); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ev.Data["report_id"] != "r1" {
		t.Fatalf("unexpected payload: %+v", ev)
	}
}

func TestNATSPublisher_NilSafe(t *testing.T) {
	var p *NATSPublisher
	p.Publish(context.Background(), New(PostCreated, "u1", nil))

	NewNATSPublisher(nil, nil).Publish(context.Background(), New(PostCreated, "u1", nil))

	failing := NewNATSPublisher(&fakeJS{err: errors.New("down")}, nil)
	failing.Publish(context.Background(), New(PostCreated, "u1", nil))
}
