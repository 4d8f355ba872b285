// Package worker applies queued telemetry events to the active session.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ringside/internal/adapters/mq/queue"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/pkg/logger"
	"github.com/okian/ringside/pkg/metrics"
)

const defaultPoolSize = 2

// Recorder applies one event to a tally.
type Recorder interface {
	Record(ctx context.Context, e model.Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue() <-chan queue.Event
}

// ClosableQueue is a Queue the pool can stop at shutdown.
type ClosableQueue interface {
	Queue
	Close() error
}

// InMemoryWorker drains a queue into a Recorder.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	name     string
	logger   logger.Logger

	processed atomic.Uint64
	failed    atomic.Uint64
	done      chan struct{}
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, r Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		recorder: r,
		name:     "worker",
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run applies events until the queue is closed and drained or ctx is done.
// It must be called at most once.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, e); err != nil {
				w.logger.Warn(ctx, "event rejected",
					logger.String("event_id", e.EventID),
					logger.String("kind", string(e.Kind)),
					logger.String("category", e.Category),
					logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Processed returns how many events were applied successfully.
func (w *InMemoryWorker) Processed() uint64 { return w.processed.Load() }

// Failed returns how many events the recorder refused.
func (w *InMemoryWorker) Failed() uint64 { return w.failed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, e queue.Event) error { //nolint:gocritic // hugeParam: Event is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.recorder.Record(ctx, e); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("record event %s: %w", e.EventID, err)
	}
	w.processed.Add(1)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   ClosableQueue
	logger  logger.Logger

	startOnce sync.Once
	started   atomic.Bool
}

// NewPool creates workerCount workers reading q and applying to r.
func NewPool(workerCount int, q ClosableQueue, r Recorder) *Pool {
	if workerCount < 1 {
		workerCount = defaultPoolSize
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, r, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start runs every worker in its own goroutine. Later calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.started.Store(true)
		for _, w := range p.workers {
			go w.Run(ctx)
		}
	})
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of events applied across all workers.
func (p *Pool) Processed() uint64 {
	var n uint64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Failed returns the number of events refused across all workers.
func (p *Pool) Failed() uint64 {
	var n uint64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

// Shutdown closes the queue and waits for the workers to drain it. It returns
// an error if ctx ends first.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	if !p.started.Load() {
		return nil
	}
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker shutdown: %w", ctx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
