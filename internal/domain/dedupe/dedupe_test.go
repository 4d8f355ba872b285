package dedupe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	dedupe "github.com/okian/ringside/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When an event is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "event-1")

			Convey("Then it should be new and remembered", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "event-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an event is unrecorded", func() {
			d.SeenAndRecord(ctx, "event-1")
			d.Unrecord(ctx, "event-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it should be accepted again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "event-1"), ShouldBeFalse)
			})
		})

		Convey("When the id is empty or very long", func() {
			long := strings.Repeat("a", 10000)
			So(d.SeenAndRecord(ctx, ""), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, long), ShouldBeFalse)

			Convey("Then both should be remembered", func() {
				So(d.SeenAndRecord(ctx, ""), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, long), ShouldBeTrue)
			})
		})
	})

	Convey("Given a bounded deduper of size 3", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, id := range []string{"e1", "e2", "e3", "e4"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("Then the oldest id should be forgotten first", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "e2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "e3"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "e4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "e1"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
		})

		Convey("When a remembered id is unrecorded", func() {
			d.Unrecord(ctx, "e3")

			Convey("Then the newest id should survive further inserts", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "e5"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "e6"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "e4"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a size 1 deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1))
		So(d.SeenAndRecord(ctx, ""), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, "x"), ShouldBeFalse)

		Convey("Then an evicted empty id should be forgotten", func() {
			So(d.Size(), ShouldEqual, 1)
			So(d.SeenAndRecord(ctx, ""), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		for _, size := range []int{0, -1} {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(size))
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("event-%d", i))
			}
			So(d.Size(), ShouldEqual, 1000)
			So(d.SeenAndRecord(ctx, "event-0"), ShouldBeTrue)
		}
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper shared by many goroutines", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const workers = 10
		const perWorker = 100

		Convey("When every goroutine submits the same ids", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						if !d.SeenAndRecord(context.Background(), fmt.Sprintf("event-%d", j)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each id should be accepted exactly once", func() {
				So(fresh, ShouldEqual, perWorker)
				So(d.Size(), ShouldEqual, perWorker)
			})
		})
	})
}
