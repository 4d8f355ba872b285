package service

import (
	"context"
	"sync/atomic"
	"time"

	eventqueue "github.com/okian/ringside/internal/adapters/mq/queue"
	workerpool "github.com/okian/ringside/internal/adapters/mq/worker"
	"github.com/okian/ringside/internal/domain/dedupe"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/reporter"
	"github.com/okian/ringside/pkg/logger"
)

const idlePollInterval = 2 * time.Millisecond

// session is everything that lives between one Start and the matching Stop.
type session struct {
	id        string
	startedAt time.Time
	rep       *reporter.Reporter
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool
	logger    logger.Logger

	pending     atomic.Int64
	stopFlusher context.CancelFunc
	flusherDone chan struct{}
}

// Record implements worker.Recorder for queued events.
func (ss *session) Record(_ context.Context, e model.Event) error { //nolint:gocritic // hugeParam: Event is passed by value for channel semantics
	defer ss.pending.Add(-1)
	return ss.rep.Record(e.Kind, e.Category, e.Participant)
}

// waitIdle blocks until every accepted event has been applied.
func (ss *session) waitIdle(ctx context.Context) error {
	if ss.pending.Load() == 0 {
		return nil
	}
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()
	for ss.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// runFlusher persists both universes every interval until ctx ends.
func (ss *session) runFlusher(ctx context.Context, interval time.Duration) {
	defer close(ss.flusherDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ss.rep.Flush(ctx); err != nil && ctx.Err() == nil {
				ss.logger.Warn(ctx, "periodic flush failed", logger.Error(err))
			}
		}
	}
}

// shutdown drains queued events, stops the flusher and releases the reporter.
func (ss *session) shutdown(ctx context.Context) {
	if err := ss.pool.Shutdown(ctx); err != nil {
		ss.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	if ss.stopFlusher != nil {
		ss.stopFlusher()
		<-ss.flusherDone
	}
	ss.rep.Close(ctx)
}
