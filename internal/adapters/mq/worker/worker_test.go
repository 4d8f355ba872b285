package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/ringside/internal/adapters/mq/queue"
	worker "github.com/okian/ringside/internal/adapters/mq/worker"
	model "github.com/okian/ringside/internal/domain/model"
	logging "github.com/okian/ringside/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	if err := logging.Init(); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}

type mockRecorder struct {
	mu     sync.Mutex
	seen   []string
	reject map[string]error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{reject: make(map[string]error)}
}

func (m *mockRecorder) Record(_ context.Context, e model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.reject[e.Category]; ok {
		return err
	}
	m.seen = append(m.seen, e.EventID)
	return nil
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

func event(id, cat string) model.Event {
	return model.Event{EventID: id, Kind: model.KindOutcome, Category: cat, Participant: model.P2, TS: time.Now()}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		rec := newMockRecorder()
		rec.reject["BOGUS"] = errors.New("invalid category")
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("test-worker"))

		convey.Convey("When events are queued and the queue is closed", func() {
			ctx := context.Background()
			convey.So(q.Enqueue(ctx, event("e1", "THROW")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, event("e2", "BOGUS")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, event("e3", "BLOCK")), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)
			w.Run(ctx)

			convey.Convey("Then every event should be drained before Run returns", func() {
				convey.So(rec.count(), convey.ShouldEqual, 2)
				convey.So(w.Processed(), convey.ShouldEqual, 2)
				convey.So(w.Failed(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			convey.Convey("Then the worker should stop", func() {
				stopped := false
				select {
				case <-w.Done():
					stopped = true
				case <-time.After(time.Second):
				}
				convey.So(stopped, convey.ShouldBeTrue)
				_ = q.Close()
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a started pool", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		rec := newMockRecorder()
		p := worker.NewPool(4, q, rec)
		ctx := context.Background()
		p.Start(ctx)
		p.Start(ctx)

		convey.Convey("When many events are queued and the pool shuts down", func() {
			for i := 0; i < 500; i++ {
				convey.So(q.Enqueue(ctx, event(fmt.Sprintf("e%d", i), "KNOCKDOWN")), convey.ShouldBeNil)
			}
			sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err := p.Shutdown(sctx)

			convey.Convey("Then every event should be applied exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Size(), convey.ShouldEqual, 4)
				convey.So(rec.count(), convey.ShouldEqual, 500)
				convey.So(p.Processed(), convey.ShouldEqual, 500)
				convey.So(p.Failed(), convey.ShouldEqual, 0)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool that was never started", t, func() {
		q := queue.NewInMemoryQueue()
		p := worker.NewPool(0, q, newMockRecorder())

		convey.Convey("Then shutdown should return immediately", func() {
			convey.So(p.Size(), convey.ShouldEqual, 2)
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}
