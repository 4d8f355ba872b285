package service

import (
	"time"

	"github.com/okian/ringside/internal/adapters/repository"
	"github.com/okian/ringside/internal/domain/category"
	"github.com/okian/ringside/internal/domain/feedback"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines per session.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many event ids are remembered for idempotency.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDataDir sets the directory tally destinations are written under.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithAppendMode keeps rows from earlier sessions instead of truncating.
func WithAppendMode(appendMode bool) Option {
	return func(s *Service) {
		s.appendMode = appendMode
	}
}

// WithLegacyHeaderSpacing controls the outcome header separator.
func WithLegacyHeaderSpacing(legacy bool) Option {
	return func(s *Service) {
		s.legacySpacing = legacy
	}
}

// WithViewpoint sets the participant feedback is framed for.
func WithViewpoint(p model.Participant) Option {
	return func(s *Service) {
		if p.Valid() {
			s.viewpoint = p
		}
	}
}

// WithStageWidth sets the width feedback lines are centred on.
func WithStageWidth(width int) Option {
	return func(s *Service) {
		if width > 0 {
			s.stageWidth = width
		}
	}
}

// WithFlushInterval sets how often tallies are persisted. Zero disables the
// periodic flusher.
func WithFlushInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.flushInterval = d
		}
	}
}

// WithProvider sets where destinations are opened.
func WithProvider(p repository.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithCatalog sets the feedback message catalog.
func WithCatalog(c *feedback.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithRenderer sets the on-screen collaborator feedback is drawn with.
func WithRenderer(r feedback.Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// WithUniverses overrides the action and outcome universes.
func WithUniverses(actions, outcomes *category.Universe) Option {
	return func(s *Service) {
		if actions != nil {
			s.actions = actions
		}
		if outcomes != nil {
			s.outcomes = outcomes
		}
	}
}
