// Package repository provides the append-capable text destinations that
// persisted tally snapshots are written to.
package repository

import (
	"io"
	"path/filepath"

	"github.com/okian/ringside/internal/domain/model"
)

// Directory and file layout under the data directory.
const (
	ActionDir  = "feedbackActionData"
	OutcomeDir = "feedbackSuccessData"
)

// Sink is one opened destination bound to a single tally series.
type Sink interface {
	io.Writer
	// Sync makes everything written so far durable.
	Sync() error
	// Close flushes and releases the destination. Calling it again is a no-op.
	Close() error
	// ExistingHeader returns the first line that was present when the sink was
	// opened in append mode, and whether the destination had any content.
	ExistingHeader() (string, bool)
}

// Provider opens destinations by path.
type Provider interface {
	// Open opens path for writing. In append mode existing content is kept and
	// new writes go to the end; otherwise the destination is truncated.
	Open(path string, appendMode bool) (Sink, error)
}

// ActionPath returns the action series destination for p.
func ActionPath(dataDir string, p model.Participant) string {
	return filepath.Join(dataDir, ActionDir, p.Label()+"ActionFile.csv")
}

// OutcomePath returns the outcome series destination for p.
func OutcomePath(dataDir string, p model.Participant) string {
	return filepath.Join(dataDir, OutcomeDir, p.Label()+"SuccessFile.csv")
}

// PathFor returns the destination for the given kind and participant.
func PathFor(dataDir string, kind model.Kind, p model.Participant) string {
	if kind == model.KindAction {
		return ActionPath(dataDir, p)
	}
	return OutcomePath(dataDir, p)
}

// firstLine returns data up to the first newline, without the terminator.
func firstLine(data []byte) string {
	for i, b := range data {
		if b == '\n' {
			return string(data[:i])
		}
	}
	return string(data)
}
