// Package service owns the telemetry session lifecycle: one reporter per
// session plus the queue, workers and flusher that feed it.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/ringside/internal/adapters/mq/queue"
	workerpool "github.com/okian/ringside/internal/adapters/mq/worker"
	"github.com/okian/ringside/internal/adapters/repository"
	"github.com/okian/ringside/internal/domain/category"
	"github.com/okian/ringside/internal/domain/dedupe"
	"github.com/okian/ringside/internal/domain/feedback"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/tally"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/internal/reporter"
	"github.com/okian/ringside/pkg/logger"
	"github.com/okian/ringside/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount   = 2
	defaultQueueSize     = 10_000
	defaultDedupeSize    = 100_000
	defaultFlushInterval = time.Second
	defaultStageWidth    = 960
	stopTimeout          = 10 * time.Second
)

// Service is the session controller. It is safe for concurrent use.
type Service struct {
	lifecycle sync.Mutex // serialises Start, Stop and Restart
	mu        sync.RWMutex
	sess      *session

	workerCount   int
	queueSize     int
	dedupeSize    int
	dataDir       string
	appendMode    bool
	legacySpacing bool
	viewpoint     model.Participant
	stageWidth    int
	flushInterval time.Duration
	provider      repository.Provider
	catalog       *feedback.Catalog
	renderer      feedback.Renderer
	actions       *category.Universe
	outcomes      *category.Universe

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   defaultWorkerCount,
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		dataDir:       ".",
		legacySpacing: true,
		viewpoint:     model.P1,
		stageWidth:    defaultStageWidth,
		flushInterval: defaultFlushInterval,
		actions:       category.Actions(),
		outcomes:      category.Outcomes(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.provider == nil {
		s.provider = repository.NewFileProvider()
	}
	if s.catalog == nil {
		s.catalog = feedback.DefaultCatalog()
	}
	return s
}

// Start opens a fresh session. It is a no-op while a session is running.
func (s *Service) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.start(ctx)
}

func (s *Service) start(ctx context.Context) error {
	if s.current() != nil {
		return nil
	}

	id := uuid.NewString()
	log := s.logger.Named("session")
	rep, err := reporter.New(ctx,
		reporter.WithLogger(log),
		reporter.WithProvider(s.provider),
		reporter.WithDataDir(s.dataDir),
		reporter.WithAppend(s.appendMode),
		reporter.WithLegacyHeaderSpacing(s.legacySpacing),
		reporter.WithViewpoint(s.viewpoint),
		reporter.WithUniverses(s.actions, s.outcomes),
	)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	ss := &session{
		id:        id,
		startedAt: time.Now(),
		rep:       rep,
		deduper:   dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)),
		queue:     eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize)),
		logger:    log,
	}
	ss.pool = workerpool.NewPool(s.workerCount, ss.queue, ss)
	ss.pool.Start(context.WithoutCancel(ctx))

	if s.flushInterval > 0 {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		ss.stopFlusher = cancel
		ss.flusherDone = make(chan struct{})
		go ss.runFlusher(fctx, s.flushInterval)
	}

	s.mu.Lock()
	s.sess = ss
	s.mu.Unlock()

	metrics.RecordSessionStarted()
	s.logger.Info(ctx, "session started",
		logger.String("session_id", id),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.String("data_dir", s.dataDir))
	return nil
}

// Stop drains queued events, persists the final rows and releases every
// destination of the running session.
func (s *Service) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stop()
}

func (s *Service) stop() {
	s.mu.Lock()
	ss := s.sess
	s.sess = nil
	s.mu.Unlock()
	if ss == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	ss.shutdown(ctx)

	metrics.RecordSessionStopped()
	s.logger.Info(ctx, "session stopped", logger.String("session_id", ss.id))
}

// Restart stops the running session, if any, and opens a new one.
func (s *Service) Restart(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stop()
	return s.start(ctx)
}

func (s *Service) current() *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

func (s *Service) require() (*session, error) {
	ss := s.current()
	if ss == nil {
		return nil, ErrNotStarted
	}
	return ss, nil
}

// Record applies e to the running session synchronously.
func (s *Service) Record(_ context.Context, e model.Event) error { //nolint:gocritic // hugeParam: Event mirrors the queued form
	ss, err := s.require()
	if err != nil {
		return err
	}
	return ss.rep.Record(e.Kind, e.Category, e.Participant)
}

// Enqueue validates e and submits it for asynchronous recording. It reports
// true when e.EventID was already seen, in which case nothing is queued.
// A full queue yields ErrBackpressure and the id is forgotten so the caller
// can retry.
func (s *Service) Enqueue(ctx context.Context, e model.Event) (bool, error) { //nolint:gocritic // hugeParam: Event mirrors the queued form
	ss, err := s.require()
	if err != nil {
		return false, err
	}
	if err := s.validate(e); err != nil {
		metrics.RecordEventRejected(string(e.Kind), "validation")
		return false, err
	}

	if ss.deduper.SeenAndRecord(ctx, e.EventID) {
		metrics.RecordEventDuplicate()
		return true, nil
	}

	ss.pending.Add(1)
	if err := ss.queue.Enqueue(ctx, e); err != nil {
		ss.pending.Add(-1)
		ss.deduper.Unrecord(ctx, e.EventID)
		if errors.Is(err, eventqueue.ErrFull) {
			return false, ErrBackpressure
		}
		if errors.Is(err, eventqueue.ErrClosed) {
			return false, ErrNotStarted
		}
		return false, err
	}
	return false, nil
}

// validate checks e against the session universes before it is queued, so
// callers learn about bad input synchronously.
func (s *Service) validate(e model.Event) error { //nolint:gocritic // hugeParam: Event mirrors the queued form
	if !e.Participant.Valid() {
		return fmt.Errorf("%w: %d", reporter.ErrInvalidParticipant, int(e.Participant))
	}
	var u *category.Universe
	switch e.Kind {
	case model.KindAction:
		u = s.actions
	case model.KindOutcome:
		u = s.outcomes
	default:
		return fmt.Errorf("%w: unknown kind %q", reporter.ErrInvalidCategory, e.Kind)
	}
	if _, ok := u.Ordinal(e.Category); !ok {
		return fmt.Errorf("%w: %q", reporter.ErrInvalidCategory, e.Category)
	}
	return nil
}

// Flush waits for accepted events to be applied, then persists one row per
// participant for both universes.
func (s *Service) Flush(ctx context.Context) error {
	ss, err := s.require()
	if err != nil {
		return err
	}
	if err := ss.waitIdle(ctx); err != nil {
		return err
	}
	return ss.rep.Flush(ctx)
}

// EndMatch waits for accepted events, persists the final rows and selects the
// feedback for winner. Lines are drawn on the renderer when one is set.
func (s *Service) EndMatch(ctx context.Context, winner model.Participant) (types.Feedback, error) {
	ss, err := s.require()
	if err != nil {
		return types.Feedback{}, err
	}
	if err := ss.waitIdle(ctx); err != nil {
		return types.Feedback{}, err
	}
	if err := ss.rep.Flush(ctx); err != nil {
		s.logger.Warn(ctx, "flush at match end failed", logger.String("session_id", ss.id), logger.Error(err))
	}

	key, err := ss.rep.SelectFeedback(winner)
	if err != nil {
		return types.Feedback{}, err
	}
	fb := types.Feedback{SessionID: ss.id, Winner: winner, Key: key}
	if key.IsNone() {
		s.logger.Info(ctx, "match ended in a draw", logger.String("session_id", ss.id))
		return fb, nil
	}

	lines, ok := s.catalog.Lookup(key)
	if !ok {
		s.logger.Warn(ctx, "no feedback lines for category",
			logger.String("category", key.Category),
			logger.String("side", key.Side.String()))
		return fb, nil
	}
	fb.Lines = feedback.Compose(lines, s.stageWidth)

	if s.renderer != nil {
		if err := feedback.Render(ctx, s.renderer, fb.Lines); err != nil {
			return fb, fmt.Errorf("%w: %w", ErrRender, err)
		}
	}
	s.logger.Info(ctx, "match ended",
		logger.String("session_id", ss.id),
		logger.Int("winner", int(winner)),
		logger.String("category", key.Category),
		logger.Uint64("count", key.Count),
		logger.String("side", key.Side.String()))
	return fb, nil
}

// Snapshot returns p's current counts for kind in the running session.
func (s *Service) Snapshot(ctx context.Context, kind model.Kind, p model.Participant) (tally.Snapshot, error) {
	ss, err := s.require()
	if err != nil {
		return nil, err
	}
	if err := ss.waitIdle(ctx); err != nil {
		return nil, err
	}
	return ss.rep.Snapshot(kind, p)
}

// SessionID returns the running session's id, or "" when stopped.
func (s *Service) SessionID() string {
	if ss := s.current(); ss != nil {
		return ss.id
	}
	return ""
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"started":     false,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"dataDir":     s.dataDir,
		"appendMode":  s.appendMode,
		"viewpoint":   int(s.viewpoint),
	}

	ss := s.current()
	if ss == nil {
		return stats
	}
	queueLen := ss.queue.Len()
	stats["started"] = true
	stats["sessionID"] = ss.id
	stats["sessionStarted"] = ss.startedAt.UTC().Format(time.RFC3339)
	stats["queueLength"] = queueLen
	stats["pending"] = ss.pending.Load()
	stats["dedupeEntries"] = ss.deduper.Size()
	stats["processed"] = ss.pool.Processed()
	stats["rejected"] = ss.pool.Failed()

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateWorkerCount(ss.pool.Size())
	return stats
}
