package reporter

import (
	"github.com/okian/ringside/internal/adapters/repository"
	"github.com/okian/ringside/internal/domain/category"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/pkg/logger"
)

// Option applies a configuration option to the Reporter.
type Option func(*Reporter)

// WithLogger sets a custom logger for the reporter.
func WithLogger(l logger.Logger) Option {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProvider sets where destinations are opened. Defaults to files.
func WithProvider(p repository.Provider) Option {
	return func(r *Reporter) {
		if p != nil {
			r.provider = p
		}
	}
}

// WithDataDir sets the directory destination paths are rooted at.
func WithDataDir(dir string) Option {
	return func(r *Reporter) {
		if dir != "" {
			r.dataDir = dir
		}
	}
}

// WithAppend keeps existing destination content instead of truncating it.
func WithAppend(appendMode bool) Option {
	return func(r *Reporter) {
		r.appendMode = appendMode
	}
}

// WithLegacyHeaderSpacing controls whether outcome headers use ", " as their
// separator. When false both universes use ",".
func WithLegacyHeaderSpacing(legacy bool) Option {
	return func(r *Reporter) {
		r.legacySpacing = legacy
	}
}

// WithViewpoint sets the participant whose perspective frames feedback.
func WithViewpoint(p model.Participant) Option {
	return func(r *Reporter) {
		if p.Valid() {
			r.viewpoint = p
		}
	}
}

// WithUniverses overrides the action and outcome universes.
func WithUniverses(actions, outcomes *category.Universe) Option {
	return func(r *Reporter) {
		if actions != nil {
			r.actionUniverse = actions
		}
		if outcomes != nil {
			r.outcomeUniverse = outcomes
		}
	}
}
