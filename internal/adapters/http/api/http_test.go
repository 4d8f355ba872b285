package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/ringside/internal/adapters/http/api"
	service "github.com/okian/ringside/internal/app"
	"github.com/okian/ringside/internal/domain/feedback"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/tally"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/internal/reporter"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDependencies struct {
	seen       map[string]bool
	enqueued   []model.Event
	enqueueErr error
	flushErr   error
	flushes    int
	endErr     error
	feedback   types.Feedback
	winners    []model.Participant
	snapshot   tally.Snapshot
	snapErr    error
	restarts   int
	restartErr error
	sessionID  string
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{seen: make(map[string]bool), sessionID: "session-1"}
}

func (m *mockDependencies) Enqueue(_ context.Context, e model.Event) (bool, error) {
	if m.enqueueErr != nil {
		return false, m.enqueueErr
	}
	if m.seen[e.EventID] {
		return true, nil
	}
	m.seen[e.EventID] = true
	m.enqueued = append(m.enqueued, e)
	return false, nil
}

func (m *mockDependencies) Flush(context.Context) error {
	m.flushes++
	return m.flushErr
}

func (m *mockDependencies) EndMatch(_ context.Context, winner model.Participant) (types.Feedback, error) {
	m.winners = append(m.winners, winner)
	if m.endErr != nil {
		return types.Feedback{}, m.endErr
	}
	fb := m.feedback
	fb.Winner = winner
	return fb, nil
}

func (m *mockDependencies) Snapshot(context.Context, model.Kind, model.Participant) (tally.Snapshot, error) {
	return m.snapshot, m.snapErr
}

func (m *mockDependencies) Restart(context.Context) error {
	m.restarts++
	if m.restartErr != nil {
		return m.restartErr
	}
	m.sessionID = fmt.Sprintf("session-%d", m.restarts+1)
	return nil
}

func (m *mockDependencies) SessionID() string { return m.sessionID }

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var resp map[string]string
	_ = json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("Health serves metrics", func() {
			So(do(mux, "GET", "/healthz", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Stats is reachable", func() {
			w := do(mux, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("An empty event body is rejected", func() {
			So(do(mux, "POST", "/events", `{}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Unknown paths are not found", func() {
			So(do(mux, "GET", "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Wrong methods are refused", func() {
			So(do(mux, "GET", "/events", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestEventsHandler_HandlePostEvent(t *testing.T) {
	const valid = `{"event_id":"e1","kind":"outcome","category":"HIT","participant":1,"ts":"2024-05-01T10:00:00Z"}`

	Convey("Given an events handler", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("A valid event is accepted", func() {
			w := do(mux, "POST", "/events", valid)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(w.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
			So(deps.enqueued, ShouldHaveLength, 1)
			e := deps.enqueued[0]
			So(e.Kind, ShouldEqual, model.KindOutcome)
			So(e.Category, ShouldEqual, "HIT")
			So(e.Participant, ShouldEqual, model.P2)

			Convey("And the same id is reported as a duplicate", func() {
				w := do(mux, "POST", "/events", valid)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("The success alias selects the outcome universe", func() {
			body := strings.Replace(valid, `"outcome"`, `"success"`, 1)
			So(do(mux, "POST", "/events", body).Code, ShouldEqual, http.StatusAccepted)
			So(deps.enqueued[0].Kind, ShouldEqual, model.KindOutcome)
		})

		Convey("Malformed requests are rejected", func() {
			cases := map[string]string{
				"bad json":            `{`,
				"missing event_id":    `{"kind":"action","category":"PUNCH","participant":0,"ts":"2024-05-01T10:00:00Z"}`,
				"missing category":    `{"event_id":"x","kind":"action","participant":0,"ts":"2024-05-01T10:00:00Z"}`,
				"missing participant": `{"event_id":"x","kind":"action","category":"PUNCH","ts":"2024-05-01T10:00:00Z"}`,
				"missing ts":          `{"event_id":"x","kind":"action","category":"PUNCH","participant":0}`,
				"bad kind":            `{"event_id":"x","kind":"combo","category":"PUNCH","participant":0,"ts":"2024-05-01T10:00:00Z"}`,
				"bad ts":              `{"event_id":"x","kind":"action","category":"PUNCH","participant":0,"ts":"yesterday"}`,
			}
			for name, body := range cases {
				w := do(mux, "POST", "/events", body)
				So(fmt.Sprintf("%s:%d", name, w.Code), ShouldEqual, fmt.Sprintf("%s:%d", name, http.StatusBadRequest))
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
			So(deps.enqueued, ShouldBeEmpty)
		})

		Convey("Service errors map to status codes", func() {
			deps.enqueueErr = fmt.Errorf("enqueue: %w", reporter.ErrInvalidCategory)
			So(do(mux, "POST", "/events", valid).Code, ShouldEqual, http.StatusBadRequest)

			deps.enqueueErr = service.ErrBackpressure
			w := do(mux, "POST", "/events", valid)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(decodeError(w)["code"], ShouldEqual, "backpressure")

			deps.enqueueErr = service.ErrNotStarted
			So(do(mux, "POST", "/events", valid).Code, ShouldEqual, http.StatusServiceUnavailable)

			deps.enqueueErr = errors.New("disk on fire")
			So(do(mux, "POST", "/events", valid).Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestSessionHandler(t *testing.T) {
	Convey("Given a session handler", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("Flush returns no content", func() {
			So(do(mux, "POST", "/flush", "").Code, ShouldEqual, http.StatusNoContent)
			So(deps.flushes, ShouldEqual, 1)
		})

		Convey("A failing flush is an internal error", func() {
			deps.flushErr = fmt.Errorf("flush: %w", reporter.ErrIOFailure)
			So(do(mux, "POST", "/flush", "").Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("Ending a match returns the selected feedback", func() {
			deps.feedback = types.Feedback{
				SessionID: "session-1",
				Key:       feedback.Key{Category: "HIT", Ordinal: 1, Count: 5, Side: feedback.SideWinner},
				Lines:     []feedback.Line{{Text: "nice", X: 10, Y: 500}},
			}
			w := do(mux, "POST", "/match/end", `{"winner":0}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp types.FeedbackResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Feedback, ShouldEqual, "HIT")
			So(resp.Side, ShouldEqual, "winner")
			So(resp.Count, ShouldEqual, 5)
			So(resp.Lines, ShouldHaveLength, 1)
			So(deps.winners, ShouldResemble, []model.Participant{model.P1})
		})

		Convey("A draw reports no feedback", func() {
			deps.feedback = types.Feedback{Key: feedback.None}
			w := do(mux, "POST", "/match/end", `{"winner":-1}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp types.FeedbackResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Feedback, ShouldEqual, "none")
			So(resp.Lines, ShouldBeEmpty)
		})

		Convey("Match end validates the winner", func() {
			So(do(mux, "POST", "/match/end", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, "POST", "/match/end", `{"winner":2}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, "POST", "/match/end", `nope`).Code, ShouldEqual, http.StatusBadRequest)
			So(deps.winners, ShouldBeEmpty)
		})

		Convey("Match end without a session is unavailable", func() {
			deps.endErr = service.ErrNotStarted
			So(do(mux, "POST", "/match/end", `{"winner":1}`).Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Restart returns the new session id", func() {
			w := do(mux, "POST", "/session/restart", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"session_id":"session-2"`)
		})

		Convey("A failing restart is an internal error", func() {
			deps.restartErr = errors.New("cannot open")
			So(do(mux, "POST", "/session/restart", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestTallyHandler_HandleGetTally(t *testing.T) {
	Convey("Given a tally handler", t, func() {
		deps := newMockDependencies()
		deps.snapshot = tally.Snapshot{{Category: "PUNCH", Count: 3}, {Category: "KICK", Count: 0}}
		mux := newMux(deps)

		Convey("It returns counts in column order", func() {
			w := do(mux, "GET", "/tally/action/0", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp types.TallyResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Kind, ShouldEqual, "action")
			So(resp.Participant, ShouldEqual, 0)
			So(resp.Counts, ShouldResemble, []types.TallyEntry{{Category: "PUNCH", Count: 3}, {Category: "KICK", Count: 0}})
		})

		Convey("It rejects unknown kinds and participants", func() {
			So(do(mux, "GET", "/tally/combo/0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, "GET", "/tally/action/2", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, "GET", "/tally/action/p1", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("It reports a missing session", func() {
			deps.snapErr = service.ErrNotStarted
			So(do(mux, "GET", "/tally/outcome/1", "").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health check request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return OK status", func() {
				handler.HandleHealth(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"queueLength": 7,
				"sessionID":   "abc",
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return stats", func() {
				handler.HandleStats(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)

				var response map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response["queueLength"], ShouldEqual, 7)
				So(response["sessionID"], ShouldEqual, "abc")
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Wrap classifies causes", t, func() {
		err := api.Wrap("op", fmt.Errorf("x: %w", reporter.ErrInvalidParticipant))
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, reporter.ErrInvalidParticipant), ShouldBeTrue)
		So(err.Error(), ShouldStartWith, "op: bad request")

		So(api.Wrap("op", nil), ShouldBeNil)
		So(errors.Is(api.Wrap("op", errors.New("boom")), api.ErrInternal), ShouldBeTrue)
		So(api.NewKind("op", api.ErrUnavailable).Error(), ShouldEqual, "op: no session running")
	})
}
