package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/ringside/internal/adapters/repository"
	app "github.com/okian/ringside/internal/app"
	"github.com/okian/ringside/internal/config"
	"github.com/okian/ringside/internal/domain/category"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/pkg/logger"
	"github.com/okian/ringside/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestConfigLoading(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("RINGSIDE_ADDR", ":8080")
		t.Setenv("RINGSIDE_QUEUE_SIZE", "1000")
		t.Setenv("RINGSIDE_WORKER_COUNT", "4")
		t.Setenv("RINGSIDE_VIEWPOINT", "1")

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)

			svc := newService(cfg)
			convey.So(svc.GetStats()["viewpoint"], convey.ShouldEqual, 1)
			convey.So(svc.GetStats()["workerCount"], convey.ShouldEqual, 4)
		})
	})

	convey.Convey("Given an invalid viewpoint", t, func() {
		t.Setenv("RINGSIDE_VIEWPOINT", "2")

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestApplyLogging(t *testing.T) {
	convey.Convey("Invalid log settings fall back without failing", t, func() {
		cfg := config.New()
		cfg.LogLevel = "loud"
		cfg.LogFormat = "xml"
		convey.So(func() { applyLogging(context.Background(), cfg) }, convey.ShouldNotPanic)
	})
}

func TestMux(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a started service behind the mux", t, func() {
		cfg := config.New()
		cfg.FlushIntervalMS = 0
		store := repository.NewMemoryProvider()
		svc := newService(cfg, app.WithProvider(store), app.WithDataDir("mem"))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		convey.Convey("Then the API docs should be served", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then an event should reach the tally", func() {
			body := `{"event_id":"e1","kind":"outcome","category":"THROW","participant":1,"ts":"2024-05-01T10:00:00Z"}`
			resp, err := http.Post(srv.URL+"/events", "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusAccepted)

			snap, err := svc.Snapshot(ctx, model.KindOutcome, model.P2)
			convey.So(err, convey.ShouldBeNil)
			ord, _ := category.Outcomes().Ordinal("THROW")
			convey.So(snap[ord].Count, convey.ShouldEqual, 1)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a config bound to an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.DataDir = t.TempDir()

		convey.Convey("Then run should return cleanly once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			convey.So(run(ctx, cfg), convey.ShouldBeNil)
		})

		convey.Convey("Then run should apply the metrics settings", func() {
			defer metrics.Configure(metrics.WithMetricsEnabled(true), metrics.WithRefreshInterval(10*time.Second))
			cfg.MetricsEnabled = false
			cfg.MetricsRefreshMS = 250
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			convey.So(run(ctx, cfg), convey.ShouldBeNil)
			convey.So(metrics.Enabled(), convey.ShouldBeFalse)
			convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 250*time.Millisecond)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Metrics updaters stop with their context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		svc := newService(config.New())

		convey.So(func() {
			startSystemMetricsUpdater(ctx)
			startServiceMetricsUpdater(ctx, svc)
			updateSystemMetrics()
			updateServiceMetrics(svc)
		}, convey.ShouldNotPanic)
	})
}
