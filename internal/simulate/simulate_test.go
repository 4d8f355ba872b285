package simulate_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/ringside/internal/adapters/http/api"
	"github.com/okian/ringside/internal/adapters/repository"
	service "github.com/okian/ringside/internal/app"
	"github.com/okian/ringside/internal/domain/category"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/simulate"
	"github.com/okian/ringside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestGenerator(t *testing.T) {
	Convey("Given two generators with the same seed", t, func() {
		start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		a := simulate.NewGenerator(7).Generate(300, 40, start)
		b := simulate.NewGenerator(7).Generate(300, 40, start)

		Convey("Then they should produce the same match with fresh ids", func() {
			So(a, ShouldHaveLength, 300)
			for i := range a {
				So(a[i].Kind, ShouldEqual, b[i].Kind)
				So(a[i].Category, ShouldEqual, b[i].Category)
				So(a[i].Participant, ShouldEqual, b[i].Participant)
				So(a[i].EventID, ShouldNotEqual, b[i].EventID)
			}
		})

		Convey("Then every category should belong to its universe", func() {
			for _, e := range a {
				u := category.Actions()
				if e.Kind == string(model.KindOutcome) {
					u = category.Outcomes()
				}
				_, ok := u.Ordinal(e.Category)
				So(ok, ShouldBeTrue)
				So(e.Participant == 0 || e.Participant == 1, ShouldBeTrue)
			}
		})

		Convey("Then outcome counts should match the generated kinds", func() {
			counts := simulate.OutcomeCounts(a)
			n := 0
			for _, e := range a {
				if e.Kind == "outcome" {
					n++
				}
			}
			So(counts[0]+counts[1], ShouldEqual, n)
		})
	})

	Convey("A zero outcome share generates only actions", t, func() {
		for _, e := range simulate.NewGenerator(1).Generate(50, 0, time.Now()) {
			So(e.Kind, ShouldEqual, "action")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	Convey("Given a valid config", t, func() {
		cfg := simulate.Config{BaseURL: "http://x", NumEvents: 1, Workers: 1, Winner: simulate.WinnerAuto, OutcomePct: 30}
		So(cfg.Validate(), ShouldBeNil)

		Convey("Then each broken field should be reported", func() {
			broken := []func(c *simulate.Config){
				func(c *simulate.Config) { c.BaseURL = "" },
				func(c *simulate.Config) { c.NumEvents = 0 },
				func(c *simulate.Config) { c.Workers = 0 },
				func(c *simulate.Config) { c.FlushEvery = -1 },
				func(c *simulate.Config) { c.OutcomePct = 101 },
				func(c *simulate.Config) { c.Winner = 3 },
			}
			for _, mutate := range broken {
				c := cfg
				mutate(&c)
				So(errors.Is(c.Validate(), simulate.ErrInvalidConfig), ShouldBeTrue)
			}
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running server backed by in-memory destinations", t, func() {
		store := repository.NewMemoryProvider()
		svc := service.New(
			service.WithProvider(store),
			service.WithDataDir("mem"),
			service.WithFlushInterval(0),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		cfg := &simulate.Config{
			BaseURL:    srv.URL,
			NumEvents:  200,
			Workers:    4,
			FlushEvery: 50,
			Winner:     simulate.WinnerAuto,
			OutcomePct: 40,
			Seed:       42,
			Timeout:    5 * time.Second,
		}

		Convey("When a match is simulated", func() {
			var out bytes.Buffer
			stats, err := simulate.Run(ctx, cfg, &out)
			So(err, ShouldBeNil)

			Convey("Then every event should be accepted and flushed in batches", func() {
				So(stats.EventsSuccessful, ShouldEqual, 200)
				So(stats.EventsFailed, ShouldEqual, 0)
				So(stats.Flushes, ShouldEqual, 4)
				lines := strings.Count(store.Contents(repository.ActionPath("mem", model.P1)), "\n")
				So(lines, ShouldBeGreaterThanOrEqualTo, 5)
			})

			Convey("Then the feedback should be printed", func() {
				So(out.String(), ShouldStartWith, "session "+svc.SessionID())
				if stats.Winner == -1 {
					So(out.String(), ShouldContainSubstring, "no feedback")
				} else {
					So(out.String(), ShouldContainSubstring, "feedback ")
				}
			})
		})

		Convey("When the session is restarted first", func() {
			before := svc.SessionID()
			cfg.Restart = true
			cfg.Winner = -1
			var out bytes.Buffer
			stats, err := simulate.Run(ctx, cfg, &out)
			So(err, ShouldBeNil)
			So(stats.Winner, ShouldEqual, -1)
			So(svc.SessionID(), ShouldNotEqual, before)
			So(out.String(), ShouldContainSubstring, "no feedback")
		})
	})

	Convey("Given no server", t, func() {
		cfg := &simulate.Config{BaseURL: "http://127.0.0.1:1", NumEvents: 1, Workers: 1, Timeout: time.Second}
		_, err := simulate.Run(ctx, cfg, &bytes.Buffer{})
		So(errors.Is(err, simulate.ErrUnhealthy), ShouldBeTrue)
	})
}
