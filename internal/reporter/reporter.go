// Package reporter records per-participant action and outcome tallies for one
// session, persists them as delimited time-series rows and selects the
// feedback key once the match ends.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ringside/internal/adapters/repository"
	"github.com/okian/ringside/internal/domain/category"
	"github.com/okian/ringside/internal/domain/feedback"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/tally"
	"github.com/okian/ringside/pkg/logger"
	"github.com/okian/ringside/pkg/metrics"
)

// series is one universe's tally and the two destinations it is flushed to.
type series struct {
	kind   model.Kind
	tally  *tally.CategoryTally
	header string

	mu     sync.Mutex // serialises writes to sinks
	sinks  [2]repository.Sink
	closed bool
}

// Reporter owns the tallies and destinations of one session.
type Reporter struct {
	logger          logger.Logger
	provider        repository.Provider
	dataDir         string
	appendMode      bool
	legacySpacing   bool
	viewpoint       model.Participant
	actionUniverse  *category.Universe
	outcomeUniverse *category.Universe

	actions  *series
	outcomes *series

	closeMu sync.Mutex
	closed  atomic.Bool
}

// New creates a reporter and opens its four destinations, writing headers as
// needed. Any destination already opened is released if a later one fails.
func New(ctx context.Context, opts ...Option) (*Reporter, error) {
	r := &Reporter{
		logger:          logger.Get().Named("reporter"),
		provider:        repository.NewFileProvider(),
		dataDir:         ".",
		legacySpacing:   true,
		viewpoint:       model.P1,
		actionUniverse:  category.Actions(),
		outcomeUniverse: category.Outcomes(),
	}
	for _, opt := range opts {
		opt(r)
	}

	outcomeSep := OutcomeSeparator
	if !r.legacySpacing {
		outcomeSep = ActionSeparator
	}
	r.actions = &series{
		kind:   model.KindAction,
		tally:  tally.New(r.actionUniverse),
		header: EncodeHeader(r.actionUniverse.Names(), ActionSeparator),
	}
	r.outcomes = &series{
		kind:   model.KindOutcome,
		tally:  tally.New(r.outcomeUniverse),
		header: EncodeHeader(r.outcomeUniverse.Names(), outcomeSep),
	}

	for _, s := range []*series{r.actions, r.outcomes} {
		for _, p := range model.Participants {
			sink, err := r.open(s, p)
			if err != nil {
				r.releaseAll(ctx)
				return nil, err
			}
			s.sinks[p] = sink
		}
	}

	r.logger.Info(ctx, "reporter opened",
		logger.String("data_dir", r.dataDir),
		logger.Bool("append", r.appendMode),
		logger.Int("actions", r.actionUniverse.Len()),
		logger.Int("outcomes", r.outcomeUniverse.Len()))
	return r, nil
}

// open opens the destination for (s, p) and makes sure it starts with s's
// header.
func (r *Reporter) open(s *series, p model.Participant) (repository.Sink, error) {
	path := repository.PathFor(r.dataDir, s.kind, p)
	sink, err := r.provider.Open(path, r.appendMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	if existing, ok := sink.ExistingHeader(); ok {
		if headersEqual(existing, s.header) {
			return sink, nil
		}
		_ = sink.Close()
		return nil, fmt.Errorf("%w: %w: %s", ErrIOFailure, ErrHeaderMismatch, path)
	}

	if _, err := sink.Write([]byte(s.header)); err != nil {
		_ = sink.Close()
		return nil, fmt.Errorf("%w: write header %s: %w", ErrIOFailure, path, err)
	}
	if err := sink.Sync(); err != nil {
		_ = sink.Close()
		return nil, fmt.Errorf("%w: sync header %s: %w", ErrIOFailure, path, err)
	}
	return sink, nil
}

// RecordAction counts one action by p. It touches memory only.
func (r *Reporter) RecordAction(name string, p model.Participant) error {
	return r.record(r.actions, name, p)
}

// RecordOutcome counts one outcome achieved by p. It touches memory only.
func (r *Reporter) RecordOutcome(name string, p model.Participant) error {
	return r.record(r.outcomes, name, p)
}

// Record dispatches to RecordAction or RecordOutcome by kind.
func (r *Reporter) Record(kind model.Kind, name string, p model.Participant) error {
	s, err := r.series(kind)
	if err != nil {
		return err
	}
	return r.record(s, name, p)
}

func (r *Reporter) record(s *series, name string, p model.Participant) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if err := s.tally.Increment(name, p); err != nil {
		metrics.RecordEventRejected(string(s.kind), rejectReason(err))
		return err
	}
	metrics.RecordEventRecorded(string(s.kind), int(p))
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidParticipant):
		return "invalid_participant"
	case errors.Is(err, ErrInvalidCategory):
		return "invalid_category"
	}
	return "unknown"
}

// FlushActions appends one action row per participant.
func (r *Reporter) FlushActions(ctx context.Context) error {
	return r.flush(ctx, r.actions)
}

// FlushOutcomes appends one outcome row per participant.
func (r *Reporter) FlushOutcomes(ctx context.Context) error {
	return r.flush(ctx, r.outcomes)
}

// Flush flushes both universes. Both are attempted even if the first fails.
func (r *Reporter) Flush(ctx context.Context) error {
	return errors.Join(r.FlushActions(ctx), r.FlushOutcomes(ctx))
}

// flush writes each participant's current snapshot as one row and syncs it.
// Both participants are attempted even if the first fails. Tallies are left
// untouched so a failed flush can be retried.
func (r *Reporter) flush(ctx context.Context, s *series) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	var errs []error
	for _, p := range model.Participants {
		if err := r.writeRow(s, p); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		metrics.RecordFlushError(string(s.kind))
		return errors.Join(errs...)
	}

	metrics.RecordFlush(string(s.kind), time.Since(start))
	return nil
}

// writeRow appends p's snapshot to its sink. Callers hold s.mu.
func (r *Reporter) writeRow(s *series, p model.Participant) error {
	snap, err := s.tally.Snapshot(p)
	if err != nil {
		return err
	}
	sink := s.sinks[p]
	if _, err := sink.Write(EncodeRow(snap.Counts())); err != nil {
		return fmt.Errorf("%w: write %s row for %s: %w", ErrIOFailure, s.kind, p.Label(), err)
	}
	if err := sink.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s row for %s: %w", ErrIOFailure, s.kind, p.Label(), err)
	}
	return nil
}

// Close flushes both universes and releases all four destinations. Failures
// are logged and counted but not returned, and every destination is released
// even if an earlier step failed. Tallies are reset afterwards. Calling Close
// again is a no-op.
func (r *Reporter) Close(ctx context.Context) {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.closed.Load() {
		return
	}

	flushCtx := context.WithoutCancel(ctx)
	for _, s := range []*series{r.actions, r.outcomes} {
		if err := r.flush(flushCtx, s); err != nil {
			r.logger.Error(ctx, "final flush failed", logger.String("kind", string(s.kind)), logger.Error(err))
		}
	}
	r.closed.Store(true)
	r.releaseAll(ctx)

	for _, s := range []*series{r.actions, r.outcomes} {
		for _, p := range model.Participants {
			_ = s.tally.Reset(p)
		}
	}
	r.logger.Info(ctx, "reporter closed")
}

// releaseAll closes every open sink. It is also used to unwind a partially
// opened reporter.
func (r *Reporter) releaseAll(ctx context.Context) {
	for _, s := range []*series{r.actions, r.outcomes} {
		if s == nil {
			continue
		}
		s.mu.Lock()
		for p, sink := range s.sinks {
			if sink == nil {
				continue
			}
			if err := sink.Close(); err != nil {
				metrics.RecordCloseFailure()
				r.logger.Error(ctx, "release destination failed",
					logger.String("kind", string(s.kind)),
					logger.String("participant", model.Participant(p).Label()),
					logger.Error(err))
			}
			s.sinks[p] = nil
		}
		s.closed = true
		s.mu.Unlock()
	}
}

// SelectFeedback picks the feedback key for a finished match. A draw yields
// feedback.None without reading any tally. Otherwise the winner's dominant
// outcome is returned, framed as SideWinner when the viewpoint participant
// won and SideLoser when it lost. A closed reporter returns ErrClosed since
// its tallies have been reset.
func (r *Reporter) SelectFeedback(winner model.Participant) (feedback.Key, error) {
	if r.closed.Load() {
		return feedback.Key{}, ErrClosed
	}
	if winner == model.NoWinner {
		metrics.RecordFeedbackSelected("none", feedback.SideNone.String())
		return feedback.None, nil
	}
	snap, err := r.outcomes.tally.Snapshot(winner)
	if err != nil {
		return feedback.Key{}, err
	}
	top, err := feedback.Dominant(snap)
	if err != nil {
		return feedback.Key{}, err
	}

	side := feedback.SideLoser
	if winner == r.viewpoint {
		side = feedback.SideWinner
	}
	metrics.RecordFeedbackSelected(top.Category, side.String())
	return feedback.Key{
		Category: top.Category,
		Ordinal:  top.Ordinal,
		Count:    top.Count,
		Side:     side,
	}, nil
}

// Snapshot returns p's current counts for kind.
func (r *Reporter) Snapshot(kind model.Kind, p model.Participant) (tally.Snapshot, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	s, err := r.series(kind)
	if err != nil {
		return nil, err
	}
	return s.tally.Snapshot(p)
}

// Universe returns the category universe for kind.
func (r *Reporter) Universe(kind model.Kind) (*category.Universe, error) {
	s, err := r.series(kind)
	if err != nil {
		return nil, err
	}
	return s.tally.Universe(), nil
}

// Viewpoint returns the participant feedback is framed for.
func (r *Reporter) Viewpoint() model.Participant { return r.viewpoint }

// Closed reports whether Close has run.
func (r *Reporter) Closed() bool { return r.closed.Load() }

func (r *Reporter) series(kind model.Kind) (*series, error) {
	switch kind {
	case model.KindAction:
		return r.actions, nil
	case model.KindOutcome:
		return r.outcomes, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidCategory, kind)
}
