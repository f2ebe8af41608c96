// Package worker repairs reports whose trust penalty did not land when the
// report was filed.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/socialtrust/internal/platform/logging"
	"github.com/example/socialtrust/internal/platform/natsconn"
	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/moderation"
	"github.com/example/socialtrust/services/social/internal/store"
)

const durableName = "social_penalty_repair"

// Repairer settles pending report penalties.
type Repairer interface {
	Repair(ctx context.Context, reportID string) (store.Report, error)
	SweepPending(ctx context.Context, limit int) (int, error)
}

// JetStream is the subset of nats.JetStreamContext the worker uses.
type JetStream interface {
	natsconn.StreamManager
	PullSubscribe(subj, durable string, opts ...nats.SubOpt) (*nats.Subscription, error)
}

type PenaltyWorker struct {
	Log      *zap.Logger
	Repairer Repairer
	// JS is optional; without it only the periodic sweep runs.
	JS JetStream

	Interval   time.Duration
	BatchSize  int
	MaxDeliver int
}

func NewPenaltyWorker(log *zap.Logger, r Repairer, js JetStream, interval time.Duration) *PenaltyWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PenaltyWorker{
		Log:        logging.Named(log, "penalty-worker"),
		Repairer:   r,
		JS:         js,
		Interval:   interval,
		BatchSize:  100,
		MaxDeliver: 5,
	}
}

// Run blocks until ctx is cancelled or the consumer fails.
func (w *PenaltyWorker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	if w.JS != nil {
		if err := natsconn.EnsureStream(w.JS, events.StreamName, events.StreamSubject, 7*24*time.Hour); err != nil {
			return err
		}
		sub, err := w.JS.PullSubscribe(events.Subject(moderation.PenaltyPending), durableName)
		if err != nil {
			return err
		}
		go func() { errCh <- w.consumeLoop(ctx, sub) }()
	}

	w.sweep(ctx)
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *PenaltyWorker) sweep(ctx context.Context) {
	n, err := w.Repairer.SweepPending(ctx, w.BatchSize)
	if err != nil {
		w.Log.Warn("penalty sweep failed", zap.Int("settled", n), zap.Error(err))
		return
	}
	if n > 0 {
		w.Log.Info("penalty sweep settled reports", zap.Int("settled", n))
	}
}

func (w *PenaltyWorker) consumeLoop(ctx context.Context, sub *nats.Subscription) error {
	w.Log.Info("consumer started", zap.String("subject", sub.Subject))
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := sub.Fetch(10, nats.MaxWait(2*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, m := range msgs {
			w.handle(ctx, m)
		}
	}
}

// Msg is the subset of *nats.Msg acknowledged by handle.
type Msg interface {
	Ack(opts ...nats.AckOpt) error
	NakWithDelay(delay time.Duration, opts ...nats.AckOpt) error
}

func (w *PenaltyWorker) handle(ctx context.Context, m *nats.Msg) {
	delivered := uint64(1)
	if md, err := m.Metadata(); err == nil && md != nil {
		delivered = md.NumDelivered
	}
	w.process(ctx, m, m.Data, delivered)
}

// process settles the report named in data. Bad payloads and exhausted
// retries are acked and left to the periodic sweep.
func (w *PenaltyWorker) process(ctx context.Context, m Msg, data []byte, delivered uint64) {
	var ev events.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		w.Log.Warn("bad payload", zap.Error(err))
		_ = m.Ack()
		return
	}
	reportID, _ := ev.Data["report_id"].(string)
	if reportID == "" {
		w.Log.Warn("penalty message without report_id", zap.String("event_id", ev.ID))
		_ = m.Ack()
		return
	}
	if w.MaxDeliver > 0 && int(delivered) > w.MaxDeliver {
		w.Log.Warn("max deliveries exceeded", zap.String("report_id", reportID), zap.Uint64("attempt", delivered))
		_ = m.Ack()
		return
	}

	r, err := w.Repairer.Repair(ctx, reportID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = m.Ack()
			return
		}
		w.Log.Warn("penalty repair failed", zap.String("report_id", reportID), zap.Uint64("attempt", delivered), zap.Error(err))
		_ = m.NakWithDelay(backoffDelay(delivered))
		return
	}
	w.Log.Info("penalty repaired", zap.String("report_id", r.ID), zap.Bool("applied", r.PenaltyApplied))
	_ = m.Ack()
}

func backoffDelay(numDelivered uint64) time.Duration {
	// 1st failure -> 1s, 2nd -> 2s, 3rd -> 4s ... capped
	attempt := int(numDelivered)
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 7 {
		return 60 * time.Second
	}
	sec := 1 << (attempt - 1)
	if sec > 60 {
		sec = 60
	}
	return time.Duration(sec) * time.Second
}
